package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/stockchat/internal/ai"
	"github.com/shanehull/stockchat/internal/types"
)

type stubGenerator struct {
	reply  string
	err    error
	block  bool
	prompt string
	opts   ai.Options
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	s.prompt, s.opts = prompt, opts
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func TestClassifyUsesLLMReply(t *testing.T) {
	gen := &stubGenerator{reply: "financial_detail\n"}
	c := New(gen, time.Second, zerolog.Nop())

	assert.Equal(t, types.LabelFinancialDetail, c.Classify(context.Background(), "Giá VCB hôm nay"))
	assert.Contains(t, gen.prompt, `Question: "Giá VCB hôm nay"`)
	assert.InDelta(t, 0.1, gen.opts.Temperature, 1e-6)
	assert.Equal(t, int32(10), gen.opts.MaxTokens)
}

func TestClassifyFallsBackToKeywords(t *testing.T) {
	cases := []struct {
		name string
		gen  Generator
	}{
		{"no generator", nil},
		{"provider error", &stubGenerator{err: errors.New("503")}},
		{"out of set reply", &stubGenerator{reply: "I think this is about prices"}},
		{"timeout", &stubGenerator{block: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.gen, 20*time.Millisecond, zerolog.Nop())
			assert.Equal(t, types.LabelPrice, c.Classify(context.Background(), "Giá VCB hôm nay"))
		})
	}
}

func TestKeywordLabel(t *testing.T) {
	cases := map[string]types.Label{
		"Giá VCB hôm nay":                types.LabelPrice,
		"So sánh VCB và TCB":             types.LabelComparison,
		"So sánh giá VCB với TCB":        types.LabelComparison,
		"Tin tức mới nhất về FPT":        types.LabelNews,
		"BCTC VIC 3 năm gần nhất":        types.LabelFinancialDetail,
		"Doanh thu của FPT quý gần nhất": types.LabelFinancialDetail,
		"Cổ đông lớn của FPT là ai":      types.LabelCompany,
		// "tin về" inside "thông tin về" hits the news row first
		"Thông tin về công ty Vingroup":       types.LabelNews,
		"Xu hướng thị trường chứng khoán":     types.LabelMarket,
		"Top tăng mạnh nhất hôm nay":          types.LabelMarket,
		"xin chào":                            types.LabelGeneral,
		"Phân tích báo cáo tài chính của HPG": types.LabelFinancialDetail,
	}
	for q, want := range cases {
		assert.Equal(t, want, KeywordLabel(q), q)
	}
}

func TestKeywordLabelAlwaysInClosedSet(t *testing.T) {
	for _, q := range []string{"", "???", "abc xyz", "GIÁ", "12345"} {
		got := KeywordLabel(q)
		_, err := types.ParseLabel(string(got))
		require.NoError(t, err, q)
	}
}
