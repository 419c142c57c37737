package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/types"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

type fakeSource struct {
	stats      map[string][]iqx.Statistic
	statements map[iqx.Section][]iqx.StatementYear
}

func (f *fakeSource) StatisticsFinancial(_ context.Context, ticker string) ([]iqx.Statistic, error) {
	stats, ok := f.stats[ticker]
	if !ok {
		return nil, iqx.ErrNotFound
	}
	return stats, nil
}

func (f *fakeSource) FinancialStatement(_ context.Context, _ string, section iqx.Section) ([]iqx.StatementYear, error) {
	years, ok := f.statements[section]
	if !ok {
		return nil, errors.New("section unavailable")
	}
	return years, nil
}

type fakeEmbedder struct {
	mu          sync.Mutex
	dim         int
	batchFails  int
	batchCalls  int
	failSingles map[string]bool
}

func (f *fakeEmbedder) vector(text string) []float32 {
	v := make([]float32, f.dim)
	v[len(text)%f.dim] = 1
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	for marker := range f.failSingles {
		if strings.Contains(text, marker) {
			return nil, errors.New("quota exceeded")
		}
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batchCalls++
	fail := f.batchCalls <= f.batchFails
	f.mu.Unlock()
	if fail {
		return nil, errors.New("503 unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func vcbStats() []iqx.Statistic {
	return []iqx.Statistic{
		{Year: 2023, Quarter: 5, Values: map[string]any{"pe": 15.2, "roe": 0.21, "ticker": "VCB"}},
		{Year: 2024, Quarter: 1, Values: map[string]any{"pe": 14.8, "revenue": 1.2e13}},
		{Year: 2024, Quarter: 0, Values: map[string]any{"pe": 14.0}},
		{Year: 2024, Quarter: 2, Values: map[string]any{"unrelated": 1.0}},
	}
}

func newTestIngester(src Source, emb Embedder, store vectorstore.Store, opts Options) *Ingester {
	i := New(src, emb, store, opts, zerolog.Nop())
	i.backoff = func(int) time.Duration { return 0 }
	return i
}

func TestFlattenStatistics(t *testing.T) {
	docs := FlattenStatistics("VCB", vcbStats())
	require.Len(t, docs, 2)

	assert.Equal(t, "statistics-financial (Q5/2023)\npe: 15.2\nroe: 0.21", docs[0].Text)
	assert.Equal(t, "statistics-financial (Q1/2024)\npe: 14.8\nrevenue: 12000000000000", docs[1].Text)
	assert.Equal(t, vectorstore.SectionStatistics, docs[0].Section)
	assert.Equal(t, types.AnnualPeriod(2023), types.ParsePeriod(docs[0].Text))
}

func TestFlattenStatement(t *testing.T) {
	years := []iqx.StatementYear{
		{Year: 2020, Values: map[string]float64{"isa1": 1}},
		{Year: 2023, Values: map[string]float64{"isa10": 10, "isa2": 2, "isa3": 0, "other": 5}},
		{Year: 2021, Values: map[string]float64{"isa1": 3}},
		{Year: 2022, Values: map[string]float64{"isa1": 4}},
	}
	docs := FlattenStatement("FPT", iqx.SectionIncomeStatement, years)
	require.Len(t, docs, 3)

	assert.True(t, strings.HasPrefix(docs[0].Text, "financial-statement INCOME_STATEMENT (Q5/2021)"))
	assert.Equal(t, "financial-statement INCOME_STATEMENT (Q5/2023)\nISA2: 2\nISA10: 10", docs[2].Text)
	assert.Equal(t, SectionStatement, docs[2].Section)
}

func TestDocumentIDIsStable(t *testing.T) {
	a := Document{Ticker: "VCB", Section: vectorstore.SectionStatistics, Text: "statistics-financial (Q5/2023)\npe: 15"}
	b := Document{Ticker: "VCB", Section: vectorstore.SectionStatistics, Text: "statistics-financial (Q5/2023)\npe: 16"}
	c := Document{Ticker: "FPT", Section: vectorstore.SectionStatistics, Text: a.Text}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestRunIngestsAndReportsFailures(t *testing.T) {
	src := &fakeSource{stats: map[string][]iqx.Statistic{"VCB": vcbStats(), "HPG": vcbStats()}}
	store := vectorstore.NewMemoryStore(4)
	ing := newTestIngester(src, &fakeEmbedder{dim: 4}, store, Options{Workers: 2, Dimensions: 4})

	report := ing.Run(context.Background(), []string{"VCB", "HPG", "ZZZ"})

	assert.Equal(t, 3, report.Tickers)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 4, report.Points)
	require.Contains(t, report.Failed, "ZZZ")
	assert.Contains(t, report.Failed["ZZZ"], "failed to fetch statistics")

	points, err := store.Scroll(context.Background(), vectorstore.Filter{Ticker: "VCB", Section: vectorstore.SectionStatistics}, 0)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestReingestReplacesPoints(t *testing.T) {
	src := &fakeSource{stats: map[string][]iqx.Statistic{"VCB": vcbStats()}}
	store := vectorstore.NewMemoryStore(4)
	ing := newTestIngester(src, &fakeEmbedder{dim: 4}, store, Options{Dimensions: 4})

	_, err := ing.IngestTicker(context.Background(), "VCB")
	require.NoError(t, err)
	src.stats["VCB"][0].Values["pe"] = 16.0
	_, err = ing.IngestTicker(context.Background(), "VCB")
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
}

func TestEmbedFallsBackToSinglesAndZeroVectors(t *testing.T) {
	src := &fakeSource{stats: map[string][]iqx.Statistic{"VCB": vcbStats()}}
	emb := &fakeEmbedder{dim: 4, batchFails: 10, failSingles: map[string]bool{"Q1/2024": true}}
	store := vectorstore.NewMemoryStore(4)
	ing := newTestIngester(src, emb, store, Options{Retries: 2, Dimensions: 4})

	n, err := ing.IngestTicker(context.Background(), "VCB")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, emb.batchCalls)

	points, err := store.Scroll(context.Background(), vectorstore.Filter{Ticker: "VCB"}, 0)
	require.NoError(t, err)
	for _, p := range points {
		if strings.Contains(p.Text, "Q1/2024") {
			assert.Equal(t, []float32{0, 0, 0, 0}, p.Vector)
		} else {
			assert.NotEqual(t, []float32{0, 0, 0, 0}, p.Vector)
		}
	}
}

func TestBatchRetrySucceeds(t *testing.T) {
	src := &fakeSource{stats: map[string][]iqx.Statistic{"VCB": vcbStats()}}
	emb := &fakeEmbedder{dim: 4, batchFails: 1}
	ing := newTestIngester(src, emb, vectorstore.NewMemoryStore(4), Options{Dimensions: 4, BatchSize: 1})

	n, err := ing.IngestTicker(context.Background(), "VCB")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, emb.batchCalls)
}

func TestStatementsAreOptional(t *testing.T) {
	src := &fakeSource{
		stats: map[string][]iqx.Statistic{"FPT": vcbStats()},
		statements: map[iqx.Section][]iqx.StatementYear{
			iqx.SectionIncomeStatement: {{Year: 2023, Values: map[string]float64{"isa1": 100}}},
		},
	}
	store := vectorstore.NewMemoryStore(4)
	ing := newTestIngester(src, &fakeEmbedder{dim: 4}, store, Options{Dimensions: 4, Statements: true})

	n, err := ing.IngestTicker(context.Background(), "FPT")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	points, err := store.Scroll(context.Background(), vectorstore.Filter{Section: SectionStatement}, 0)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Contains(t, points[0].Text, "ISA1: 100")
}

func TestNoDataIsNotAnError(t *testing.T) {
	src := &fakeSource{stats: map[string][]iqx.Statistic{"NEW": {}}}
	store := vectorstore.NewMemoryStore(4)
	ing := newTestIngester(src, &fakeEmbedder{dim: 4}, store, Options{Dimensions: 4})

	n, err := ing.IngestTicker(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.Len())
}
