package ingest

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/vectorstore"
)

// SectionStatement is the section name stored for financial statement chunks.
const SectionStatement = "financial-statement"

const (
	statementYears   = 3
	statementMetrics = 30
)

// importantFields are the statistics kept for each reporting period, in output order.
var importantFields = []string{
	"marketCap", "pe", "pb", "ps", "roe", "roa", "eps", "bvps",
	"grossMargin", "ebitMargin", "afterTaxProfitMargin",
	"currentRatio", "quickRatio", "debtPerEquity", "debtToEquity",
	"revenue", "grossProfit", "netProfit", "totalAssets", "totalEquity",
}

var statementPrefixes = []string{"cfa", "isa", "bsa"}

// Document is one chunk of text waiting to be embedded.
type Document struct {
	Ticker  string
	Section string
	Text    string
}

// ID is stable for a ticker, section and period so re-ingesting replaces old points.
func (d Document) ID() uint64 {
	header, _, _ := strings.Cut(d.Text, "\n")
	h := fnv.New64a()
	_, _ = h.Write([]byte(d.Ticker + "\x00" + d.Section + "\x00" + header))
	return h.Sum64()
}

// FlattenStatistics renders each period as a "statistics-financial (Qn/yyyy)" header
// followed by one "key: value" line per important field present. Periods with no
// quarter or no important fields are skipped.
func FlattenStatistics(ticker string, stats []iqx.Statistic) []Document {
	docs := make([]Document, 0, len(stats))
	for _, s := range stats {
		period := s.Period()
		if period.IsZero() {
			continue
		}

		var lines []string
		for _, key := range importantFields {
			if v, ok := formatValue(s.Values[key]); ok {
				lines = append(lines, fmt.Sprintf("%s: %s", key, v))
			}
		}
		if len(lines) == 0 {
			continue
		}

		docs = append(docs, Document{
			Ticker:  ticker,
			Section: vectorstore.SectionStatistics,
			Text:    fmt.Sprintf("%s (%s)\n%s", vectorstore.SectionStatistics, period.Tag(), strings.Join(lines, "\n")),
		})
	}
	return docs
}

// FlattenStatement renders the latest years of a statement section. Only non-zero cash
// flow, income and balance sheet codes are kept, at most thirty per year.
func FlattenStatement(ticker string, section iqx.Section, years []iqx.StatementYear) []Document {
	sorted := make([]iqx.StatementYear, len(years))
	copy(sorted, years)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	if len(sorted) > statementYears {
		sorted = sorted[len(sorted)-statementYears:]
	}

	docs := make([]Document, 0, len(sorted))
	for _, y := range sorted {
		var keys []string
		for k, v := range y.Values {
			if v != 0 && hasStatementPrefix(k) {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			continue
		}
		sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
		if len(keys) > statementMetrics {
			keys = keys[:statementMetrics]
		}

		lines := make([]string, len(keys))
		for i, k := range keys {
			lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(k), strconv.FormatFloat(y.Values[k], 'f', 0, 64))
		}
		docs = append(docs, Document{
			Ticker:  ticker,
			Section: SectionStatement,
			Text:    fmt.Sprintf("%s %s (Q5/%d)\n%s", SectionStatement, section, y.Year, strings.Join(lines, "\n")),
		})
	}
	return docs
}

func hasStatementPrefix(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range statementPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// naturalLess orders isa2 before isa10.
func naturalLess(a, b string) bool {
	pa, na := splitNumber(a)
	pb, nb := splitNumber(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitNumber(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, -1
	}
	return s[:i], n
}

func formatValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return fmt.Sprint(x), true
	}
}
