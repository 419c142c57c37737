package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/stockchat/internal/aggregate"
	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/classify"
	"github.com/shanehull/stockchat/internal/compose"
	"github.com/shanehull/stockchat/internal/history"
	"github.com/shanehull/stockchat/internal/retrieval"
	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/types"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

type recordingGen struct {
	mu      sync.Mutex
	prompts []string
}

func (g *recordingGen) Generate(_ context.Context, prompt string, _ ai.Options) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return fmt.Sprintf("answer %d", len(g.prompts)), nil
}

func (g *recordingGen) all() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

type embedder struct{}

func (embedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type rejectValidator struct{}

func (rejectValidator) ValidateSymbol(context.Context, string) (bool, error) {
	return false, nil
}

type callLog struct {
	mu    sync.Mutex
	specs []types.CallSpec
}

func (l *callLog) backend() aggregate.Backend {
	return aggregate.BackendFunc(func(_ context.Context, spec types.CallSpec) (types.Record, error) {
		l.mu.Lock()
		l.specs = append(l.specs, spec)
		l.mu.Unlock()

		sym := spec.Param(types.ParamSymbol)
		if sym == "ZZZ" {
			return nil, errors.New("dial tcp: connection refused")
		}
		switch spec.Service() {
		case types.ServiceCurrentPrice:
			return types.PriceRecord{Symbol: sym, Close: 65.7}, nil
		case types.ServiceCompanyInfo:
			return types.CompanyRecord{Symbol: sym}, nil
		case types.ServiceFinancialReports:
			return types.FinancialRecord{Symbol: sym, Period: spec.Param(types.ParamPeriod)}, nil
		default:
			return types.TableRecord{Title: spec.Service().Name()}, nil
		}
	})
}

func statements(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	var points []vectorstore.Point
	id := uint64(1)
	for y := 2019; y <= 2024; y++ {
		points = append(points, vectorstore.Point{
			ID: id, Vector: []float32{1, 0}, Ticker: "VIC", Section: vectorstore.SectionStatistics,
			Text: fmt.Sprintf("statistics-financial (Q5/%d)\nnetProfit: %d", y, y),
		})
		id++
		for q := 1; q <= 4; q++ {
			points = append(points, vectorstore.Point{
				ID: id, Vector: []float32{0, 1}, Ticker: "VIC", Section: vectorstore.SectionStatistics,
				Text: fmt.Sprintf("statistics-financial (Q%d/%d)\nnetProfit: %d", q, y, y*10+q),
			})
			id++
		}
	}
	s := vectorstore.NewMemoryStore(2)
	require.NoError(t, s.Upsert(context.Background(), points))
	return s
}

type fixture struct {
	p     *Pipeline
	gen   *recordingGen
	calls *callLog
	hist  *history.Manager
}

func newFixture(t *testing.T, store vectorstore.Store, validator symbols.Validator) fixture {
	t.Helper()
	gen := &recordingGen{}
	calls := &callLog{}
	hist, err := history.NewManager(t.TempDir(), 10, zerolog.Nop())
	require.NoError(t, err)

	var engine *retrieval.Engine
	if store != nil {
		engine = retrieval.NewEngine(store, embedder{}, gen, zerolog.Nop())
	}

	p := New(Config{
		Extractor:  symbols.NewExtractor(nil, validator, zerolog.Nop()),
		Classifier: classify.New(nil, 0, zerolog.Nop()),
		Aggregator: aggregate.New(calls.backend(), 4, time.Second, zerolog.Nop()),
		Retriever:  engine,
		Composer:   compose.New(gen, hist, zerolog.Nop()),
		Now:        func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) },
		Log:        zerolog.Nop(),
	})
	return fixture{p: p, gen: gen, calls: calls, hist: hist}
}

func TestScenarioPriceToday(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "Giá VCB hôm nay")

	assert.True(t, ans.Success)
	assert.Equal(t, types.LabelPrice, ans.Label)
	assert.Equal(t, []types.Ticker{"VCB"}, ans.Symbols)
	require.Len(t, ans.Plan, 1)
	assert.Equal(t, types.ServiceCurrentPrice, ans.Plan[0].Service())
	assert.Equal(t, map[string]string{types.ParamSymbol: "VCB"}, ans.Plan[0].Params())
	assert.Equal(t, []string{"VCB"}, ans.Sources)
	assert.Equal(t, "answer 1", ans.Response)
	assert.Equal(t, StageReturned, ans.Stage)
	assert.Len(t, f.hist.Turns("s1"), 1)
}

func TestScenarioAnnualStatements(t *testing.T) {
	f := newFixture(t, statements(t), nil)

	ans := f.p.Ask(context.Background(), "s1", "BCTC VIC 3 năm gần nhất")

	assert.True(t, ans.Success)
	assert.Equal(t, types.LabelFinancialDetail, ans.Label)
	assert.Equal(t, []types.Ticker{"VIC"}, ans.Symbols)
	assert.Equal(t, []string{"VIC"}, ans.Sources)
	assert.Equal(t, 3, ans.ContextUsed)
	assert.Empty(t, f.calls.specs)

	prompts := f.gen.all()
	require.Len(t, prompts, 1)
	p := prompts[0]
	assert.Equal(t, 3, strings.Count(p, "[Năm "))
	assert.Contains(t, p, "[Năm 2024]")
	assert.Contains(t, p, "[Năm 2022]")
	assert.NotContains(t, p, "[Năm 2021]")
	assert.NotContains(t, p, "[Q")
}

func TestScenarioGreeting(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "xin chào")

	assert.True(t, ans.Success)
	assert.Equal(t, types.LabelGeneral, ans.Label)
	assert.Empty(t, ans.Plan)
	assert.Empty(t, ans.Sources)
	assert.Empty(t, f.calls.specs)

	prompts := f.gen.all()
	require.Len(t, prompts, 1)
	assert.NotContains(t, prompts[0], "Dữ liệu đã thu thập")
	assert.Contains(t, prompts[0], "**CÂU HỎI HIỆN TẠI:** xin chào")
}

func TestScenarioFailingBackend(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "Thông tin công ty ZZZ và VCB")

	assert.True(t, ans.Success)
	assert.Equal(t, types.LabelCompany, ans.Label)
	assert.Equal(t, []types.Ticker{"VCB", "ZZZ"}, ans.Symbols)

	require.NotNil(t, ans.Context)
	_, ok := ans.Context.Ticker("ZZZ", types.CategoryCompanyInfo)
	assert.False(t, ok)
	_, ok = ans.Context.Ticker("VCB", types.CategoryCompanyInfo)
	assert.True(t, ok)
	require.Len(t, ans.Context.Errors, 1)
	assert.Equal(t, "Error calling get_company_info: dial tcp: connection refused", ans.Context.Errors[0])
	assert.Equal(t, []string{"VCB"}, ans.Sources)
	assert.NotContains(t, ans.Response, "connection refused")
}

func TestRetrievalFallsBackToReports(t *testing.T) {
	f := newFixture(t, vectorstore.NewMemoryStore(2), nil)

	ans := f.p.Ask(context.Background(), "s1", "BCTC FPT năm gần nhất")

	assert.True(t, ans.Success)
	require.Len(t, ans.Plan, 1)
	assert.Equal(t, types.ServiceFinancialReports, ans.Plan[0].Service())
	assert.Equal(t, "year", ans.Plan[0].Param(types.ParamPeriod))
	assert.Equal(t, []string{"FPT"}, ans.Sources)

	prompts := f.gen.all()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "financial_reports")
}

func TestPriceHistoryFromDateRange(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "Giá HPG 7 ngày qua")

	require.Len(t, ans.Plan, 1)
	assert.Equal(t, types.ServicePriceHistory, ans.Plan[0].Service())
	assert.Equal(t, "2025-03-05", ans.Plan[0].Param(types.ParamStartDate))
	assert.Equal(t, "2025-03-12", ans.Plan[0].Param(types.ParamEndDate))
}

func TestUnknownSymbolGetsSuggestions(t *testing.T) {
	f := newFixture(t, nil, rejectValidator{})

	ans := f.p.Ask(context.Background(), "s1", "Giá cổ phiếu VCX")

	assert.True(t, ans.Success)
	assert.Contains(t, ans.Response, "Thay vì `VCX`")
	assert.Contains(t, ans.Response, "`VCB`")
	assert.Empty(t, f.gen.all())
	assert.Empty(t, f.calls.specs)
	assert.Len(t, f.hist.Turns("s1"), 1)
}

func TestMarketQuestionWithoutSymbols(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "Xu hướng thị trường chứng khoán")

	assert.Equal(t, types.LabelMarket, ans.Label)
	require.Len(t, ans.Plan, 1)
	assert.Equal(t, types.ServiceTopGainers, ans.Plan[0].Service())
	assert.Equal(t, []string{"market_data"}, ans.Sources)
}

func TestUnrelatedQuestionSkipsData(t *testing.T) {
	f := newFixture(t, nil, nil)

	ans := f.p.Ask(context.Background(), "s1", "Có tin gì mới không?")

	assert.True(t, ans.Success)
	assert.Equal(t, types.LabelGeneral, ans.Label)
	assert.Empty(t, ans.Plan)
	assert.Empty(t, f.calls.specs)

	prompts := f.gen.all()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "**CÂU HỎI HIỆN TẠI:** Có tin gì mới không?")
}

func TestPanicBecomesApology(t *testing.T) {
	gen := &recordingGen{}
	p := New(Config{
		Extractor:  symbols.NewExtractor(nil, nil, zerolog.Nop()),
		Classifier: classify.New(nil, 0, zerolog.Nop()),
		Aggregator: aggregate.New(nil, 1, time.Second, zerolog.Nop()),
		Composer:   compose.New(gen, nil, zerolog.Nop()),
		Log:        zerolog.Nop(),
	})
	p.composer = nil

	ans := p.Ask(context.Background(), "s1", "Giá VCB hôm nay")

	assert.False(t, ans.Success)
	assert.Equal(t, compose.ApologyInternal, ans.Response)
	assert.Empty(t, ans.Sources)
}
