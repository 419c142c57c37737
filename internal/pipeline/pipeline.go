/*
Package pipeline answers one question end to end.

A request moves through Received, Classified, Planned, then Aggregated or Retrieved,
Composed and Returned. No stage is retried and no stage failure halts the request: a
classification failure becomes the general label, a retrieval failure falls back to
yearly report aggregation and a failed backend call only leaves a gap in the context.
Anything unexpected is caught at the top and turned into a polite apology.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/aggregate"
	"github.com/shanehull/stockchat/internal/classify"
	"github.com/shanehull/stockchat/internal/compose"
	"github.com/shanehull/stockchat/internal/metrics"
	"github.com/shanehull/stockchat/internal/plan"
	"github.com/shanehull/stockchat/internal/retrieval"
	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/types"
)

// Stage is the last state a request reached.
type Stage string

const (
	StageReceived   Stage = "received"
	StageClassified Stage = "classified"
	StagePlanned    Stage = "planned"
	StageAggregated Stage = "aggregated"
	StageRetrieved  Stage = "retrieved"
	StageComposed   Stage = "composed"
	StageReturned   Stage = "returned"
)

type Pipeline struct {
	extractor  *symbols.Extractor
	classifier *classify.Classifier
	aggregator *aggregate.Aggregator
	retriever  *retrieval.Engine
	composer   *compose.Composer
	now        func() time.Time
	log        zerolog.Logger
}

// Config wires the stages. Retriever may be nil, in which case financial detail
// questions always use report aggregation. Now defaults to time.Now.
type Config struct {
	Extractor  *symbols.Extractor
	Classifier *classify.Classifier
	Aggregator *aggregate.Aggregator
	Retriever  *retrieval.Engine
	Composer   *compose.Composer
	Now        func() time.Time
	Log        zerolog.Logger
}

func New(cfg Config) *Pipeline {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		extractor:  cfg.Extractor,
		classifier: cfg.Classifier,
		aggregator: cfg.Aggregator,
		retriever:  cfg.Retriever,
		composer:   cfg.Composer,
		now:        now,
		log:        cfg.Log,
	}
}

// Answer is what a caller gets back for one question. ContextUsed counts the stored
// statement records the answer was built from.
type Answer struct {
	Response    string                   `json:"response"`
	Success     bool                     `json:"success"`
	Label       types.Label              `json:"label,omitempty"`
	Symbols     []types.Ticker           `json:"symbols"`
	Sources     []string                 `json:"sources"`
	ContextUsed int                      `json:"context_used"`
	Plan        []types.CallSpec         `json:"-"`
	Stage       Stage                    `json:"-"`
	Context     *types.AggregatedContext `json:"-"`
}

// Ask runs the full pipeline for question within session.
func (p *Pipeline) Ask(ctx context.Context, session, question string) (ans Answer) {
	start := time.Now()
	ans = Answer{Stage: StageReceived, Symbols: []types.Ticker{}, Sources: []string{}}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("panic", fmt.Sprint(r)).Str("stage", string(ans.Stage)).Msg("Pipeline failed")
			metrics.Outcomes.WithLabelValues("error").Inc()
			ans = Answer{
				Response: compose.ApologyInternal,
				Symbols:  []types.Ticker{},
				Sources:  []string{},
				Stage:    StageReturned,
			}
		}
		metrics.PipelineLatency.Observe(time.Since(start).Seconds())
	}()

	extracted := p.extractor.Extract(ctx, question)
	label := p.classifier.Classify(ctx, question)
	ans.Label, ans.Stage = label, StageClassified
	if extracted.Valid != nil {
		ans.Symbols = extracted.Valid
	}
	metrics.Questions.WithLabelValues(string(label)).Inc()

	p.log.Info().
		Str("label", string(label)).
		Interface("symbols", extracted.Valid).
		Strs("invalid", extracted.Invalid).
		Msg("Question classified")

	if extracted.Empty() && len(extracted.Invalid) > 0 && needsSymbol(label) {
		ans.Response = symbols.FormatSuggestions(extracted.Invalid, symbols.SuggestionsFor(extracted.Invalid))
		ans.Success, ans.Stage = true, StageReturned
		p.composer.Record(session, question, ans.Response)
		metrics.Outcomes.WithLabelValues("no_symbol").Inc()
		return ans
	}

	if extracted.Empty() && needsSymbol(label) && !symbols.IsStockRelated(question) {
		p.log.Info().Str("label", string(label)).Msg("Question not stock related, answering conversationally")
		label = types.LabelGeneral
		ans.Label = label
	}

	var dr *classify.DateRange
	if r, ok := classify.ParseDateRange(question, p.now()); ok {
		dr = &r
	}
	ans.Plan = plan.PlanWithDates(extracted.Valid, label, dr)
	ans.Stage = StagePlanned

	var resp compose.Response
	if label == types.LabelFinancialDetail && len(extracted.Valid) > 0 {
		resp = p.financial(ctx, session, question, extracted.Valid, &ans)
	} else {
		ans.Context = p.aggregator.Execute(ctx, ans.Plan)
		ans.Stage = StageAggregated
		resp = p.composer.Compose(ctx, session, question, label, extracted.Valid, ans.Context)
	}

	ans.Response, ans.Sources, ans.ContextUsed = resp.Answer, resp.Sources, resp.ContextUsed
	ans.Success, ans.Stage = true, StageReturned

	outcome := "answered"
	if len(ans.Sources) == 0 && label != types.LabelGeneral {
		outcome = "no_data"
	}
	metrics.Outcomes.WithLabelValues(outcome).Inc()
	return ans
}

// financial answers from stored statements. When every ticker succeeds the answers are
// returned directly; otherwise successful answers are kept in the context and failed
// tickers are filled in from yearly report calls.
func (p *Pipeline) financial(ctx context.Context, session, question string, tickers []types.Ticker, ans *Answer) compose.Response {
	results := make([]retrieval.Result, 0, len(tickers))
	var failed []types.Ticker

	for _, t := range tickers {
		if p.retriever == nil {
			failed = append(failed, t)
			continue
		}
		r := p.retriever.Retrieve(ctx, question, t)
		if !r.Success {
			failed = append(failed, t)
		}
		results = append(results, r)
	}
	ans.Stage = StageRetrieved

	if len(failed) == 0 {
		resp := p.composer.ComposeRetrieved(session, question, results)
		ans.Stage = StageComposed
		return resp
	}

	metrics.RetrievalFallbacks.Inc()
	p.log.Warn().Interface("tickers", failed).Msg("Statement retrieval failed, falling back to reports")

	ans.Plan = plan.Fallback(failed)
	data := p.aggregator.Execute(ctx, ans.Plan)
	used := 0
	for _, r := range results {
		if r.Success {
			data.PutTicker(r.Ticker, types.CategoryFinancialDetail, r.Record())
			used += r.ContextUsed
		}
	}
	ans.Context = data
	ans.Stage = StageAggregated

	resp := p.composer.Compose(ctx, session, question, types.LabelFinancialDetail, tickers, data)
	resp.ContextUsed = used
	ans.Stage = StageComposed
	return resp
}

// needsSymbol reports whether label only makes sense for a named ticker.
func needsSymbol(label types.Label) bool {
	return label != types.LabelGeneral && label != types.LabelMarket
}
