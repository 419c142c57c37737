/*
Package ingest loads IQX financial statistics into the vector store.

Each ticker is fetched, flattened into one text chunk per reporting period, embedded in
batches and upserted with ids derived from ticker and period. Tickers run concurrently
up to a fixed limit and every outbound call waits on a shared rate limiter.
*/
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/metrics"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

const (
	DefaultWorkers   = 5
	DefaultBatchSize = 32
	DefaultRetries   = 3
)

// Source provides the raw financial data.
type Source interface {
	StatisticsFinancial(ctx context.Context, ticker string) ([]iqx.Statistic, error)
	FinancialStatement(ctx context.Context, ticker string, section iqx.Section) ([]iqx.StatementYear, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Workers    int
	BatchSize  int
	Retries    int
	Dimensions int
	// Statements also ingests the cash flow, income and balance sheet sections.
	Statements bool
	Limiter    *rate.Limiter
}

type Ingester struct {
	source   Source
	embedder Embedder
	store    vectorstore.Store
	opts     Options
	backoff  func(attempt int) time.Duration
	log      zerolog.Logger
}

func New(source Source, embedder Embedder, store vectorstore.Store, opts Options, log zerolog.Logger) *Ingester {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	return &Ingester{
		source:   source,
		embedder: embedder,
		store:    store,
		opts:     opts,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		log:      log,
	}
}

// Report summarises a run.
type Report struct {
	Tickers   int
	Succeeded int
	Points    int
	Failed    map[string]string
	Elapsed   time.Duration
}

// Run ingests every ticker. One ticker failing does not stop the others.
func (i *Ingester) Run(ctx context.Context, tickers []string) Report {
	start := time.Now()
	report := Report{Tickers: len(tickers), Failed: make(map[string]string)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, i.opts.Workers)
	processed := 0

	for _, ticker := range tickers {
		wg.Add(1)
		sem <- struct{}{}

		go func(t string) {
			defer wg.Done()
			defer func() { <-sem }()

			mu.Lock()
			processed++
			i.log.Info().Msgf("Processing... %d/%d (%s)", processed, len(tickers), t)
			mu.Unlock()

			n, err := i.IngestTicker(ctx, t)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				i.log.Error().Err(err).Str("ticker", t).Msg("Ingestion failed")
				report.Failed[t] = err.Error()
				return
			}
			report.Succeeded++
			report.Points += n
		}(ticker)
	}

	wg.Wait()
	report.Elapsed = time.Since(start)

	i.log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", len(report.Failed)).
		Int("points", report.Points).
		Dur("elapsed", report.Elapsed).
		Msg("Done ingesting")

	return report
}

// IngestTicker fetches, embeds and stores one ticker, returning the number of points written.
func (i *Ingester) IngestTicker(ctx context.Context, ticker string) (int, error) {
	stats, err := i.source.StatisticsFinancial(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	docs := FlattenStatistics(ticker, stats)

	if i.opts.Statements {
		for _, section := range iqx.Sections {
			years, err := i.source.FinancialStatement(ctx, ticker, section)
			if err != nil {
				i.log.Warn().Err(err).Str("ticker", ticker).Str("section", string(section)).Msg("Skipping statement section")
				continue
			}
			docs = append(docs, FlattenStatement(ticker, section, years)...)
		}
	}

	if len(docs) == 0 {
		i.log.Info().Str("ticker", ticker).Msg("No data, skipping")
		return 0, nil
	}

	vectors, err := i.embed(ctx, docs)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	points := make([]vectorstore.Point, len(docs))
	for n, d := range docs {
		points[n] = vectorstore.Point{
			ID:        d.ID(),
			Vector:    vectors[n],
			Ticker:    d.Ticker,
			Text:      d.Text,
			Section:   d.Section,
			Timestamp: now,
		}
	}

	if err := i.store.Upsert(ctx, points); err != nil {
		metrics.IngestedPoints.WithLabelValues("error").Add(float64(len(points)))
		return 0, fmt.Errorf("failed to upsert points: %w", err)
	}
	metrics.IngestedPoints.WithLabelValues("ok").Add(float64(len(points)))

	i.log.Info().Str("ticker", ticker).Int("points", len(points)).Msg("Ingested")
	return len(points), nil
}

// embed returns one vector per document, in order. A batch that keeps failing is
// embedded text by text, and a text that still fails gets a zero vector.
func (i *Ingester) embed(ctx context.Context, docs []Document) ([][]float32, error) {
	out := make([][]float32, 0, len(docs))

	for start := 0; start < len(docs); start += i.opts.BatchSize {
		end := min(start+i.opts.BatchSize, len(docs))
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			texts = append(texts, d.Text)
		}

		batch, err := i.embedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			i.log.Warn().Err(err).Int("batch_start", start).Msg("Batch embedding failed, embedding one by one")
			batch = i.embedEach(ctx, texts)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (i *Ingester) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= i.opts.Retries; attempt++ {
		if err := i.wait(ctx); err != nil {
			return nil, err
		}
		vecs, err := i.embedder.EmbedBatch(ctx, texts)
		if err == nil && len(vecs) == len(texts) {
			return vecs, nil
		}
		if err == nil {
			err = fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(texts))
		}
		lastErr = err

		if attempt < i.opts.Retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(i.backoff(attempt)):
			}
		}
	}
	return nil, fmt.Errorf("failed to embed batch after %d attempts: %w", i.opts.Retries, lastErr)
}

func (i *Ingester) embedEach(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for n, t := range texts {
		var vec []float32
		err := i.wait(ctx)
		if err == nil {
			vec, err = i.embedder.Embed(ctx, t)
		}
		if err != nil || (i.opts.Dimensions > 0 && len(vec) != i.opts.Dimensions) {
			i.log.Warn().Err(err).Msg("Single embedding failed, storing zero vector")
			vec = make([]float32, i.opts.Dimensions)
			metrics.IngestedPoints.WithLabelValues("zero_vector").Inc()
		}
		out[n] = vec
	}
	return out
}

func (i *Ingester) wait(ctx context.Context) error {
	if i.opts.Limiter == nil {
		return nil
	}
	if err := i.opts.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}
	return nil
}
