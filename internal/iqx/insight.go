package iqx

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shanehull/stockchat/internal/types"
)

// Section selects one financial statement.
type Section string

const (
	SectionCashFlow        Section = "CASH_FLOW"
	SectionIncomeStatement Section = "INCOME_STATEMENT"
	SectionBalanceSheet    Section = "BALANCE_SHEET"
)

var Sections = []Section{SectionCashFlow, SectionIncomeStatement, SectionBalanceSheet}

// annualQuarter is how statistics-financial marks a full-year row.
const annualQuarter = 5

// Statistic is one reporting period of the statistics-financial feed.
type Statistic struct {
	Year    int
	Quarter int
	Values  map[string]any
}

// Period returns the reporting period, or the zero Period when the row has no quarter.
func (s Statistic) Period() types.Period {
	switch {
	case s.Year == 0 || s.Quarter == 0:
		return types.Period{}
	case s.Quarter == annualQuarter:
		return types.AnnualPeriod(s.Year)
	default:
		return types.QuarterPeriod(s.Year, s.Quarter)
	}
}

// StatementYear is one year of a financial statement keyed by IQX field code.
type StatementYear struct {
	Year   int
	Values map[string]float64
}

// StatisticsFinancial returns every reporting period IQX holds for ticker.
func (c *Client) StatisticsFinancial(ctx context.Context, ticker string) ([]Statistic, error) {
	endpoint := fmt.Sprintf("%s/company/%s/statistics-financial", c.insightURL, url.PathEscape(strings.ToUpper(ticker)))

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch statistics for %s: %w", ticker, err)
	}

	out := make([]Statistic, 0, len(body.Data))
	for _, row := range body.Data {
		year, _ := toInt(row["year"])
		quarter, _ := toInt(row["quarter"])
		out = append(out, Statistic{Year: year, Quarter: quarter, Values: row})
	}
	return out, nil
}

// FinancialStatement returns the yearly figures of one statement section.
func (c *Client) FinancialStatement(ctx context.Context, ticker string, section Section) ([]StatementYear, error) {
	endpoint := fmt.Sprintf("%s/company/%s/financial-statement?section=%s",
		c.insightURL, url.PathEscape(strings.ToUpper(ticker)), url.QueryEscape(string(section)))

	var body struct {
		Data struct {
			Years []map[string]any `json:"years"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", section, ticker, err)
	}

	out := make([]StatementYear, 0, len(body.Data.Years))
	for _, row := range body.Data.Years {
		year, ok := toInt(row["yearReport"])
		if !ok || year == 0 {
			continue
		}
		values := make(map[string]float64)
		for k, v := range row {
			if k == "yearReport" {
				continue
			}
			if f, ok := toFloat(v); ok {
				values[k] = f
			}
		}
		out = append(out, StatementYear{Year: year, Values: values})
	}
	return out, nil
}
