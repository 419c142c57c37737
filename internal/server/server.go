/*
Package server exposes the question pipeline and the raw market lookups over HTTP.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/metrics"
	"github.com/shanehull/stockchat/internal/pipeline"
	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/types"
)

const (
	Version = "1.0.0"

	shutdownTimeout = 10 * time.Second
)

type Asker interface {
	Ask(ctx context.Context, session, question string) pipeline.Answer
}

// Stocks is the subset of the market gateway the lookup endpoints use.
type Stocks interface {
	CurrentPrice(ctx context.Context, sym string) (types.PriceRecord, error)
	PriceHistory(ctx context.Context, sym, start, end string) (types.PriceHistoryRecord, error)
	Company(ctx context.Context, sym string) (types.CompanyRecord, error)
	Financials(ctx context.Context, sym, period string) (types.FinancialRecord, error)
}

type News interface {
	News(ctx context.Context, q iqx.NewsQuery) (types.NewsRecord, error)
}

type Conversations interface {
	Turns(session string) []types.Turn
	Last(session string) (types.Turn, bool)
	Clear(session string)
}

type SymbolValidator interface {
	Validate(ctx context.Context, symbol string) symbols.Validation
	ClearCache(ctx context.Context) error
}

// Executor runs a batch of planned backend calls.
type Executor interface {
	Execute(ctx context.Context, specs []types.CallSpec) *types.AggregatedContext
}

// Deps are the services behind the routes.
type Deps struct {
	Pipeline   Asker
	Stocks     Stocks
	News       News
	History    Conversations
	Symbols    SymbolValidator
	Aggregator Executor
}

type Server struct {
	addr   string
	deps   Deps
	router *gin.Engine
	log    zerolog.Logger
}

func New(addr string, deps Deps, log zerolog.Logger) *Server {
	s := &Server{addr: addr, deps: deps, log: log}
	s.router = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), s.observe())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})

	r.GET("/", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chat", s.chat)
		api.GET("/suggestions", s.suggestions)

		api.GET("/history/:session", s.history)
		api.DELETE("/history/:session", s.clearHistory)

		api.GET("/stock/:symbol", s.stockInfo)
		api.GET("/stock/:symbol/price", s.stockPrice)
		api.GET("/stocks/validate/:symbol", s.validateSymbol)
		api.GET("/symbols/suggest", s.suggestSymbols)
		api.DELETE("/symbols/cache", s.clearSymbolCache)

		api.GET("/news/:symbol", s.news)

		api.GET("/market/summary", s.marketSummary)
		api.POST("/stocks/compare", s.compareStocks)
		api.POST("/portfolio/analyze", s.analyzePortfolio)
	}
	return r
}

// observe logs each request and counts it by route.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.log.Info().Msg("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
