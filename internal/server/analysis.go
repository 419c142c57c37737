package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shanehull/stockchat/internal/plan"
	"github.com/shanehull/stockchat/internal/portfolio"
	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/types"
)

const maxCompareSymbols = 10

type compareRequest struct {
	Symbols []string `json:"symbols"`
	Metrics []string `json:"metrics"`
}

type portfolioRequest struct {
	Holdings []portfolio.Holding `json:"holdings"`
}

// prices pulls the closing price of every priced ticker out of data.
func prices(data *types.AggregatedContext) map[string]float64 {
	out := make(map[string]float64)
	for t := range data.Tickers {
		if rec, ok := data.Ticker(t, types.CategoryCurrentPrice); ok {
			if p, ok := rec.(types.PriceRecord); ok && p.Close > 0 {
				out[string(t)] = p.Close
			}
		}
	}
	return out
}

func (s *Server) marketSummary(c *gin.Context) {
	data := s.deps.Aggregator.Execute(c.Request.Context(), plan.MarketSummary())

	out := gin.H{}
	for _, sym := range plan.SummarySymbols {
		if rec, ok := data.Ticker(sym, types.CategoryCurrentPrice); ok {
			out[string(sym)] = rec
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      out,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) compareStocks(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Symbols) == 0 {
		fail(c, http.StatusBadRequest, "Stock symbols are required")
		return
	}
	if len(req.Symbols) > maxCompareSymbols {
		fail(c, http.StatusBadRequest, "Too many stock symbols")
		return
	}

	tickers := make([]types.Ticker, 0, len(req.Symbols))
	for _, raw := range req.Symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if !symbols.ValidFormat(sym) {
			fail(c, http.StatusBadRequest, "Invalid stock symbol: "+raw)
			return
		}
		tickers = append(tickers, types.Ticker(sym))
	}

	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = plan.DefaultCompareMetrics
	}
	data := s.deps.Aggregator.Execute(c.Request.Context(), plan.Compare(tickers, metrics))

	comparison := make(map[string]gin.H, len(tickers))
	for _, t := range tickers {
		row := gin.H{}
		if rec, ok := data.Ticker(t, types.CategoryCurrentPrice); ok {
			row[plan.MetricCurrentPrice] = rec
		}
		if rec, ok := data.Ticker(t, types.CategoryCompanyInfo); ok {
			if co, ok := rec.(types.CompanyRecord); ok && len(co.Overview) > 0 {
				row[plan.MetricCompanyOverview] = co.Overview
			}
		}
		if rec, ok := data.Ticker(t, types.CategoryFinancialReports); ok {
			row["financial_reports"] = rec
		}
		comparison[string(t)] = row
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"comparison":       comparison,
		"metrics_compared": metrics,
	})
}

func (s *Server) analyzePortfolio(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Holdings == nil {
		fail(c, http.StatusBadRequest, "Holdings data is required")
		return
	}
	holdings, err := portfolio.Normalize(req.Holdings)
	if err != nil {
		s.log.Debug().Err(err).Msg("Rejected portfolio holdings")
		fail(c, http.StatusBadRequest, "Invalid holdings format")
		return
	}

	data := s.deps.Aggregator.Execute(c.Request.Context(), plan.Prices(portfolio.Tickers(holdings)))
	report := portfolio.Analyze(holdings, prices(data))

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"holdings":          report.Holdings,
		"portfolio_summary": report.Summary,
		"unpriced":          report.Unpriced,
	})
}
