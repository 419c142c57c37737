/*
Package types holds the domain vocabulary shared by the query pipeline: tickers,
classification labels, reporting periods, backend services and the records they return.
*/
package types

import (
	"fmt"
	"strings"
)

// Ticker identifies one listed company, e.g. VCB.
type Ticker string

func (t Ticker) String() string {
	return string(t)
}

// Label is the single category assigned to a question.
type Label string

const (
	LabelPrice           Label = "price"
	LabelNews            Label = "news"
	LabelCompany         Label = "company"
	LabelFinancialDetail Label = "financial-detail"
	LabelComparison      Label = "comparison"
	LabelMarket          Label = "market"
	LabelGeneral         Label = "general"
)

// Labels is the closed set, in the order the classification prompt lists them.
var Labels = []Label{
	LabelFinancialDetail,
	LabelPrice,
	LabelNews,
	LabelCompany,
	LabelComparison,
	LabelMarket,
	LabelGeneral,
}

// ParseLabel maps a raw model reply onto the closed set. The underscore spelling
// used in prompts is accepted as an alias.
func ParseLabel(s string) (Label, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.Trim(norm, ".\"'`*")
	norm = strings.ReplaceAll(norm, "_", "-")

	for _, l := range Labels {
		if string(l) == norm {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown label %q", s)
}

// Turn is one exchange of a conversation.
type Turn struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}
