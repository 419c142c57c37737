/*
Package compose turns fetched data into the final answer.

Data is serialised to compact JSON and placed into a prompt chosen by label: news
questions get a summary template with article links, everything else gets a short
factual template. A general question with no data is sent to the model as a plain
conversation turn with the recent history attached. Every answer, including apologies,
is recorded in the session history.
*/
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/history"
	"github.com/shanehull/stockchat/internal/retrieval"
	"github.com/shanehull/stockchat/internal/types"
)

// promptHistoryTurns is how many past exchanges a conversational prompt includes.
const promptHistoryTurns = 2

type Generator interface {
	Generate(ctx context.Context, prompt string, opts ai.Options) (string, error)
}

type Composer struct {
	gen     Generator
	history *history.Manager
	log     zerolog.Logger
}

// New returns a Composer. A nil history manager disables recording.
func New(gen Generator, hist *history.Manager, log zerolog.Logger) *Composer {
	return &Composer{gen: gen, history: hist, log: log}
}

// Response is the answer plus the context keys it was built from. ContextUsed counts
// stored statement records behind retrieved answers.
type Response struct {
	Answer      string   `json:"response"`
	Sources     []string `json:"sources"`
	ContextUsed int      `json:"context_used"`
}

// Compose builds the prompt for label, generates the answer and records the exchange.
func (c *Composer) Compose(ctx context.Context, session, question string, label types.Label, symbols []types.Ticker, data *types.AggregatedContext) Response {
	resp := Response{Sources: data.Sources()}

	prompt, opts, err := c.Prompt(session, question, label, symbols, data)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to build prompt")
		resp.Answer = ApologyGeneration
		c.record(session, question, resp.Answer)
		return resp
	}

	answer, err := c.gen.Generate(ctx, prompt, opts)
	if err != nil {
		c.log.Error().Err(err).Str("label", string(label)).Msg("Answer generation failed")
		answer = ApologyGeneration
	}

	resp.Answer = answer
	c.record(session, question, answer)
	return resp
}

// Prompt returns the prompt and options Compose would send. It has no side effects.
func (c *Composer) Prompt(session, question string, label types.Label, symbols []types.Ticker, data *types.AggregatedContext) (string, ai.Options, error) {
	if data.Empty() && label == types.LabelGeneral {
		return c.conversational(session, question), ai.Options{System: personaPrompt}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", ai.Options{}, fmt.Errorf("failed to encode context: %w", err)
	}

	if label == types.LabelNews {
		return fmt.Sprintf(newsPrompt, raw, question), ai.Options{}, nil
	}
	return fmt.Sprintf(genericPrompt, question, joinTickers(symbols), label, raw), ai.Options{}, nil
}

func (c *Composer) conversational(session, question string) string {
	var b strings.Builder
	if c.history != nil {
		if turns := c.history.Recent(session, promptHistoryTurns); len(turns) > 0 {
			b.WriteString(strings.TrimPrefix(historyHeader, "\n\n"))
			for _, t := range turns {
				fmt.Fprintf(&b, historyTurn, t.User, t.AI)
			}
		}
	}
	fmt.Fprintf(&b, strings.TrimPrefix(questionFooter, "\n\n"), question)
	return b.String()
}

// ComposeRetrieved joins per-ticker financial answers. With more than one ticker each
// answer is headed by its ticker; failed lookups contribute their failure message.
func (c *Composer) ComposeRetrieved(session, question string, results []retrieval.Result) Response {
	resp := Response{Sources: []string{}}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		text := r.Answer
		if !r.Success {
			text = r.Message
		} else {
			resp.Sources = append(resp.Sources, string(r.Ticker))
			resp.ContextUsed += r.ContextUsed
		}
		if len(results) > 1 {
			text = fmt.Sprintf("## %s\n\n%s", r.Ticker, text)
		}
		parts = append(parts, text)
	}

	resp.Answer = strings.Join(parts, "\n\n")
	if resp.Answer == "" {
		resp.Answer = ApologyGeneration
	}
	c.record(session, question, resp.Answer)
	return resp
}

// Record stores an answer produced outside Compose, such as symbol suggestions.
func (c *Composer) Record(session, question, answer string) {
	c.record(session, question, answer)
}

func (c *Composer) record(session, question, answer string) {
	if c.history == nil {
		return
	}
	c.history.Append(session, types.Turn{User: question, AI: answer})
}

func joinTickers(symbols []types.Ticker) string {
	if len(symbols) == 0 {
		return "không có"
	}
	s := make([]string, len(symbols))
	for i, t := range symbols {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}
