package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/shanehull/stockchat/internal/aggregate"
	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/classify"
	"github.com/shanehull/stockchat/internal/compose"
	"github.com/shanehull/stockchat/internal/history"
	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/market"
	"github.com/shanehull/stockchat/internal/pipeline"
	"github.com/shanehull/stockchat/internal/retrieval"
	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

// app holds every wired component a command might need.
type app struct {
	gemini     *ai.Gemini
	iqx        *iqx.Client
	gateway    *market.Gateway
	aggregator *aggregate.Aggregator
	store      vectorstore.Store
	extractor  *symbols.Extractor
	history    *history.Manager
	pipeline   *pipeline.Pipeline
	limiter    *rate.Limiter
	redis      *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

func newLimiter() *rate.Limiter {
	if cfg.Ingest.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(cfg.Ingest.RatePerSecond), 1)
}

func newStore(ctx context.Context) (vectorstore.Store, error) {
	if cfg.Weaviate.URL == "" {
		log.Info().Msg("No weaviate url configured, keeping statements in memory")
		return vectorstore.NewMemoryStore(cfg.Gemini.Dimensions), nil
	}

	store, err := vectorstore.NewWeaviateStore(cfg.Weaviate.URL, cfg.Weaviate.APIKey, cfg.Weaviate.Class, log)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// newSymbolCache prefers redis and falls back to memory when redis is unreachable.
func newSymbolCache(ctx context.Context) (symbols.Cache, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return symbols.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-memory symbol cache")
		_ = client.Close()
		return symbols.NewMemoryCache(), nil
	}
	return symbols.NewRedisCache(client, cfg.Redis.Prefix, log), client
}

// buildApp wires config, clients and the pipeline in dependency order.
func buildApp(ctx context.Context) (*app, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}

	gemini, err := ai.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel, cfg.Gemini.Dimensions, log)
	if err != nil {
		return nil, err
	}

	a := &app{gemini: gemini, limiter: newLimiter()}

	cache, redisClient := newSymbolCache(ctx)
	a.redis = redisClient

	var validator symbols.Validator
	if cfg.Pipeline.ValidateSymbols {
		validator = gemini
	}
	a.extractor = symbols.NewExtractor(cache, validator, log)

	a.store, err = newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.iqx = iqx.NewClient(cfg.IQX.NewsURL, cfg.IQX.InsightURL, cfg.IQX.Timeout, a.limiter, log)
	a.gateway = market.NewGateway(cfg.Market.BaseURL, cfg.Market.Timeout, a.iqx, log)

	a.aggregator = aggregate.New(a.gateway, cfg.Pipeline.Workers, cfg.Pipeline.CallTimeout, log)

	a.history, err = history.NewManager(cfg.Pipeline.HistoryDir, cfg.Pipeline.MaxHistory, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = pipeline.New(pipeline.Config{
		Extractor:  a.extractor,
		Classifier: classify.New(gemini, cfg.Pipeline.ClassifyTimeout, log),
		Aggregator: a.aggregator,
		Retriever:  retrieval.NewEngine(a.store, gemini, gemini, log),
		Composer:   compose.New(gemini, a.history, log),
		Now:        func() time.Time { return time.Now().In(loc) },
		Log:        log,
	})

	return a, nil
}
