package symbols

import (
	"context"
	"fmt"
	"strings"
)

const defaultSuggestLimit = 5

var stockIndicators = []string{
	"giá", "price", "cổ phiếu", "stock", "chứng khoán",
	"phân tích", "analysis", "chart", "báo cáo", "report",
	"tài chính", "financial", "p/e", "roe", "roa",
}

// Suggest returns known tickers starting with prefix. Prefixes shorter than two
// characters return nothing.
func Suggest(prefix string, limit int) []string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len([]rune(prefix)) < 2 {
		return []string{}
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	out := []string{}
	for _, s := range knownSorted {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Validation explains whether a single symbol is accepted.
type Validation struct {
	Symbol     string `json:"symbol"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason"`
	Confidence string `json:"confidence,omitempty"`
}

// Validate checks one symbol against the cache, the vocabulary and the format rule.
// Known and malformed symbols are written back to the cache.
func (e *Extractor) Validate(ctx context.Context, symbol string) Validation {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	v := Validation{Symbol: symbol}

	switch {
	case symbol == "":
		v.Reason = "Empty symbol"
	case e.cache.IsValid(ctx, symbol):
		v.Valid, v.Reason = true, "Cached as valid"
	case e.cache.IsInvalid(ctx, symbol):
		v.Reason = "Cached as invalid"
	case IsKnown(symbol):
		e.cache.MarkValid(ctx, symbol)
		v.Valid, v.Reason = true, "Known symbol"
	case !ValidFormat(symbol):
		e.cache.MarkInvalid(ctx, symbol)
		v.Reason = "Invalid format"
	default:
		v.Valid, v.Reason, v.Confidence = true, "Format valid, unknown symbol", "low"
	}
	return v
}

// IsStockRelated is a cheap check for whether text is about stocks at all.
func IsStockRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range stockIndicators {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, tok := range tokenize(text) {
		if symbolShape.MatchString(tok) || IsKnown(strings.ToUpper(tok)) {
			return true
		}
	}
	return false
}

// FormatSuggestions renders the help text shown when a question only names unknown
// symbols. At most three alternatives are listed per symbol.
func FormatSuggestions(invalid []string, suggestions map[string][]string) string {
	var b strings.Builder
	b.WriteString("Tôi không tìm thấy mã cổ phiếu hợp lệ trong câu hỏi của bạn.\n\n")

	for _, sym := range invalid {
		alts := suggestions[sym]
		if len(alts) == 0 {
			continue
		}
		if len(alts) > 3 {
			alts = alts[:3]
		}
		fmt.Fprintf(&b, "**Thay vì `%s`, bạn có thể muốn hỏi về:**\n", sym)
		for _, s := range alts {
			fmt.Fprintf(&b, "• `%s`\n", s)
		}
		b.WriteString("\n")
	}

	b.WriteString("💡 **Gợi ý**: Hãy sử dụng mã cổ phiếu chính xác (ví dụ: VCB, FPT, HPG) để nhận được thông tin chi tiết.")
	return b.String()
}

// SuggestionsFor builds FormatSuggestions input for a set of rejected symbols using
// their first two letters as the prefix.
func SuggestionsFor(invalid []string) map[string][]string {
	out := make(map[string][]string, len(invalid))
	for _, sym := range invalid {
		r := []rune(sym)
		if len(r) < 2 {
			continue
		}
		out[sym] = Suggest(string(r[:2]), 3)
	}
	return out
}
