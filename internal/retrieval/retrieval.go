/*
Package retrieval answers financial statement questions from the vector store.

Questions asking for the latest figures skip similarity search: points for the ticker are
scrolled by exact metadata, ordered by reporting period and cut to the requested number of
years or quarters. Other questions use nearest-neighbour search and are then shown newest
first.
*/
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/types"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

const (
	searchLimit = 15

	// FailureMessage is shown when retrieval cannot produce an answer.
	FailureMessage = "Không thể truy vấn dữ liệu tài chính. Vui lòng thử lại sau."

	systemPrompt = "Bạn là chuyên gia tài chính Việt Nam."
)

// ErrNoContext means the store holds nothing for the ticker.
var ErrNoContext = errors.New("no financial statements stored")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string, opts ai.Options) (string, error)
}

type Engine struct {
	store    vectorstore.Store
	embedder Embedder
	gen      Generator
	log      zerolog.Logger
}

func NewEngine(store vectorstore.Store, embedder Embedder, gen Generator, log zerolog.Logger) *Engine {
	return &Engine{store: store, embedder: embedder, gen: gen, log: log}
}

// Strategy names how context records were chosen.
type Strategy string

const (
	StrategyTemporal Strategy = "temporal"
	StrategySemantic Strategy = "semantic"
)

// Context is the rendered evidence for one ticker.
type Context struct {
	Strategy Strategy
	Intent   Intent
	Points   []vectorstore.Point
	Rendered string
}

// Result never carries a panic or a raw error to the user; Err is for logs only.
type Result struct {
	Success     bool         `json:"success"`
	Ticker      types.Ticker `json:"ticker"`
	Answer      string       `json:"answer,omitempty"`
	ContextUsed int          `json:"context_used"`
	Message     string       `json:"message,omitempty"`
	Err         error        `json:"-"`
}

// Record converts a successful result into the aggregated context payload.
func (r Result) Record() types.RetrievalRecord {
	return types.RetrievalRecord{Answer: r.Answer, ContextUsed: r.ContextUsed}
}

// Retrieve gathers context for ticker, asks the generator and reports the outcome.
func (e *Engine) Retrieve(ctx context.Context, question string, ticker types.Ticker) (res Result) {
	res.Ticker = ticker
	defer func() {
		if r := recover(); r != nil {
			res = e.failure(ticker, fmt.Errorf("retrieval panicked: %v", r))
		}
	}()

	c, err := e.Gather(ctx, question, ticker)
	if err != nil {
		return e.failure(ticker, err)
	}
	if len(c.Points) == 0 {
		return e.failure(ticker, ErrNoContext)
	}

	answer, err := e.gen.Generate(ctx, BuildPrompt(ticker, question, c), ai.Options{System: systemPrompt})
	if err != nil {
		return e.failure(ticker, fmt.Errorf("failed to generate answer: %w", err))
	}

	e.log.Info().
		Str("ticker", string(ticker)).
		Str("strategy", string(c.Strategy)).
		Int("context_used", len(c.Points)).
		Msg("Financial answer generated")

	return Result{
		Success:     true,
		Ticker:      ticker,
		Answer:      answer,
		ContextUsed: len(c.Points),
	}
}

func (e *Engine) failure(ticker types.Ticker, err error) Result {
	e.log.Error().Err(err).Str("ticker", string(ticker)).Msg("Financial retrieval failed")
	return Result{Ticker: ticker, Message: FailureMessage, Err: err}
}

// Gather selects and renders the context records without calling the generator.
func (e *Engine) Gather(ctx context.Context, question string, ticker types.Ticker) (Context, error) {
	intent := ParseIntent(question)
	e.log.Debug().Str("ticker", string(ticker)).Str("intent", intent.String()).Msg("Retrieval intent")

	if intent.Latest {
		return e.temporal(ctx, intent, ticker)
	}
	return e.semantic(ctx, question, intent, ticker)
}

func (e *Engine) temporal(ctx context.Context, intent Intent, ticker types.Ticker) (Context, error) {
	// Every statistics point is read so periods are ranked before any truncation.
	points, err := e.store.Scroll(ctx, vectorstore.Filter{
		Ticker:  string(ticker),
		Section: vectorstore.SectionStatistics,
	}, 0)
	if err != nil {
		return Context{}, fmt.Errorf("failed to scroll statements: %w", err)
	}

	selected := SelectRecent(points, intent)
	return Context{
		Strategy: StrategyTemporal,
		Intent:   intent,
		Points:   selected,
		Rendered: renderTemporal(selected),
	}, nil
}

func (e *Engine) semantic(ctx context.Context, question string, intent Intent, ticker types.Ticker) (Context, error) {
	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return Context{}, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := e.store.Search(ctx, vec, vectorstore.Filter{Ticker: string(ticker)}, searchLimit)
	if err != nil {
		return Context{}, fmt.Errorf("failed to search statements: %w", err)
	}

	points := make([]vectorstore.Point, len(hits))
	for i, h := range hits {
		points[i] = h.Point
	}
	sortByPeriod(points)

	return Context{
		Strategy: StrategySemantic,
		Intent:   intent,
		Points:   points,
		Rendered: renderSemantic(points),
	}, nil
}

// SelectRecent orders points newest first and keeps the most recent annual and quarterly
// records allowed by intent. Annual and quarterly points are separated before truncation.
func SelectRecent(points []vectorstore.Point, intent Intent) []vectorstore.Point {
	sorted := make([]vectorstore.Point, len(points))
	copy(sorted, points)
	sortByPeriod(sorted)

	annualN, quarterN := intent.caps()

	var annual, quarterly []vectorstore.Point
	for _, p := range sorted {
		period := p.Period()
		switch {
		case period.IsZero():
			continue
		case period.Annual && len(annual) < annualN:
			annual = append(annual, p)
		case !period.Annual && len(quarterly) < quarterN:
			quarterly = append(quarterly, p)
		}
	}

	return append(annual, quarterly...)
}

// sortByPeriod orders by (year, slot) descending. Ties keep their input order.
func sortByPeriod(points []vectorstore.Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Period().After(points[j].Period())
	})
}

func renderTemporal(points []vectorstore.Point) string {
	blocks := make([]string, 0, len(points))
	for _, p := range points {
		period := p.Period()
		label := period.Tag()
		if period.Annual {
			label = fmt.Sprintf("Năm %d", period.Year)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, p.Text))
	}
	return strings.Join(blocks, "\n\n")
}

func renderSemantic(points []vectorstore.Point) string {
	blocks := make([]string, 0, len(points))
	for i, p := range points {
		blocks = append(blocks, fmt.Sprintf("[Điểm %d]\n%s", i+1, p.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt fills the analyst template for one ticker.
func BuildPrompt(ticker types.Ticker, question string, c Context) string {
	return fmt.Sprintf(promptTemplate, ticker, c.Rendered, question, c.Intent.Note())
}

const promptTemplate = `Bạn là chuyên gia phân tích tài chính. Dưới đây là dữ liệu tài chính THỰC TẾ của công ty %s:

%s

Câu hỏi: %s%s

YÊU CẦU QUAN TRỌNG:
- CHỈ sử dụng dữ liệu được cung cấp ở trên, KHÔNG tự bịa số liệu
- Nếu dữ liệu không đủ để trả lời, hãy nói rõ "Không có đủ dữ liệu"
- Khi trả lời về NĂM, dùng dữ liệu Q5 (tổng hợp cả năm)
- Khi trả lời về QUÝ, dùng dữ liệu Q1-Q4
- Trích dẫn chính xác kỳ báo cáo (Năm 2024, Q1/2024...)
- Ưu tiên dữ liệu mới nhất khi trả lời

Trả lời:`
