/*
Package classify assigns one label from a closed set to a question.

A short generation call is tried first. If it fails, times out or replies with anything
outside the label set, a fixed keyword table decides instead, and questions that match no
keyword are labelled general.
*/
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/metrics"
	"github.com/shanehull/stockchat/internal/types"
)

const DefaultTimeout = 10 * time.Second

type Generator interface {
	Generate(ctx context.Context, prompt string, opts ai.Options) (string, error)
}

type Classifier struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// New returns a Classifier. A nil generator uses the keyword table only.
func New(gen Generator, timeout time.Duration, log zerolog.Logger) *Classifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Classifier{gen: gen, timeout: timeout, log: log}
}

// Classify never fails; the worst case is LabelGeneral.
func (c *Classifier) Classify(ctx context.Context, question string) types.Label {
	if c.gen != nil {
		label, err := c.classifyLLM(ctx, question)
		if err == nil {
			metrics.Classifications.WithLabelValues("llm", string(label)).Inc()
			return label
		}
		c.log.Debug().Err(err).Msg("LLM classification unavailable, using keywords")
	}

	label := KeywordLabel(question)
	metrics.Classifications.WithLabelValues("keyword", string(label)).Inc()
	return label
}

func (c *Classifier) classifyLLM(ctx context.Context, question string) (label types.Label, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classification call panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.gen.Generate(ctx, fmt.Sprintf(classificationPrompt, question), ai.Options{
		Temperature: 0.1,
		MaxTokens:   10,
	})
	if err != nil {
		return "", fmt.Errorf("failed to classify question: %w", err)
	}

	return types.ParseLabel(reply)
}

const classificationPrompt = `Classify this Vietnamese stock market question into ONE category:

Question: "%s"

Categories:
- financial_detail: Hỏi về BCTC, tài sản, nợ, doanh thu, lợi nhuận, chỉ tiêu tài chính (CFA1, ISA1...), ROE/ROA/PE theo năm/quý
- price: Hỏi về giá cổ phiếu hiện tại hoặc lịch sử
- news: Hỏi về tin tức, bài viết
- company: Hỏi về thông tin công ty, lãnh đạo, cổ đông
- comparison: So sánh nhiều mã
- market: Top tăng/giảm, thống kê thị trường
- general: Câu hỏi chung không liên quan CK

Reply with ONLY the category name (one word), no explanation.`
