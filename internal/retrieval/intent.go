package retrieval

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	annualCap    = 5
	quarterlyCap = 8
	blendAnnual  = 3
	blendQuarter = 6
)

var (
	latestWords    = []string{"mới nhất", "gần đây", "gần nhất", "hiện tại", "năm nay", "latest", "recent", "current"}
	annualWords    = []string{"năm", "year", "annual", "hàng năm", "yearly"}
	quarterlyWords = []string{"quý", "quarter", "quarterly"}

	yearCount    = regexp.MustCompile(`(\d+)\s*(năm|years?)`)
	quarterCount = regexp.MustCompile(`(\d+)\s*(quý|quarters?)`)
)

// Intent is the temporal reading of a question.
type Intent struct {
	Latest    bool
	Annual    bool
	Quarterly bool
	// Years and Quarters are explicit counts such as "3 năm"; zero when absent.
	Years    int
	Quarters int
}

func ParseIntent(question string) Intent {
	q := strings.ToLower(question)
	return Intent{
		Latest:    containsAny(q, latestWords),
		Annual:    containsAny(q, annualWords),
		Quarterly: containsAny(q, quarterlyWords),
		Years:     count(yearCount, q),
		Quarters:  count(quarterCount, q),
	}
}

// caps returns how many annual and quarterly records the temporal strategy keeps.
// Explicit counts can lower the defaults but never raise them.
func (i Intent) caps() (annual, quarterly int) {
	switch {
	case i.Annual && !i.Quarterly:
		annual, quarterly = annualCap, 0
	case i.Quarterly && !i.Annual:
		annual, quarterly = 0, quarterlyCap
	default:
		annual, quarterly = blendAnnual, blendQuarter
	}
	if i.Years > 0 && i.Years < annual {
		annual = i.Years
	}
	if i.Quarters > 0 && i.Quarters < quarterly {
		quarterly = i.Quarters
	}
	return annual, quarterly
}

// Note is the period granularity line appended to the question in the prompt.
func (i Intent) Note() string {
	switch {
	case i.Annual:
		return "\nLƯU Ý: Dữ liệu Q5 là tổng hợp THEO NĂM (annual summary), sử dụng khi trả lời về năm."
	case i.Quarterly:
		return "\nLƯU Ý: Dữ liệu Q1-Q4 là theo QUÝ (quarterly), sử dụng khi trả lời về quý."
	default:
		return ""
	}
}

func (i Intent) String() string {
	var parts []string
	if i.Latest {
		parts = append(parts, "latest")
	}
	if i.Annual {
		parts = append(parts, "annual")
	}
	if i.Quarterly {
		parts = append(parts, "quarterly")
	}
	if len(parts) == 0 {
		return "general"
	}
	return strings.Join(parts, ", ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func count(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
