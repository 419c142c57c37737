/*
Package plan turns extracted symbols and a question label into the ordered list of backend
calls that answer it. Every function here is pure.
*/
package plan

import (
	"strconv"

	"github.com/shanehull/stockchat/internal/classify"
	"github.com/shanehull/stockchat/internal/types"
)

const (
	DefaultNewsLimit   = 10
	DefaultMarketLimit = 10
	DefaultIndex       = "VNINDEX"
)

// perSymbol maps each ticker-scoped label to the one service called for every symbol.
var perSymbol = map[types.Label]types.Service{
	types.LabelFinancialDetail: types.ServiceRAGQuery,
	types.LabelPrice:           types.ServiceCurrentPrice,
	types.LabelNews:            types.ServiceStockNews,
	types.LabelCompany:         types.ServiceCompanyInfo,
	types.LabelComparison:      types.ServiceCurrentPrice,
}

// Plan returns the calls for label, one per symbol in input order. Market questions get a
// single ranking call whatever the symbols; general questions get none.
func Plan(symbols []types.Ticker, label types.Label) []types.CallSpec {
	if label == types.LabelMarket {
		return []types.CallSpec{
			types.NewCallSpec(types.ServiceTopGainers, map[string]string{
				types.ParamIndex: DefaultIndex,
				types.ParamLimit: strconv.Itoa(DefaultMarketLimit),
			}),
		}
	}

	svc, ok := perSymbol[label]
	if !ok || len(symbols) == 0 {
		return []types.CallSpec{}
	}

	specs := make([]types.CallSpec, 0, len(symbols))
	for _, sym := range symbols {
		params := map[string]string{types.ParamSymbol: string(sym)}
		if svc == types.ServiceStockNews {
			params[types.ParamLimit] = strconv.Itoa(DefaultNewsLimit)
		}
		specs = append(specs, types.NewCallSpec(svc, params))
	}
	return specs
}

// PlanWithDates is Plan refined by a date range found in the question. News calls get the
// range as update_from/update_to. Price calls become history calls over the range unless
// the range is just today.
func PlanWithDates(symbols []types.Ticker, label types.Label, dr *classify.DateRange) []types.CallSpec {
	specs := Plan(symbols, label)
	if dr == nil {
		return specs
	}

	for i, spec := range specs {
		sym := spec.Param(types.ParamSymbol)

		switch spec.Service() {
		case types.ServiceStockNews:
			params := spec.Params()
			params[types.ParamUpdateFrom] = dr.StartDate()
			params[types.ParamUpdateTo] = dr.EndDate()
			specs[i] = types.NewCallSpec(types.ServiceStockNews, params)
		case types.ServiceCurrentPrice:
			if label != types.LabelPrice || dr.Today() {
				continue
			}
			specs[i] = types.NewCallSpec(types.ServicePriceHistory, map[string]string{
				types.ParamSymbol:    sym,
				types.ParamStartDate: dr.StartDate(),
				types.ParamEndDate:   dr.EndDate(),
			})
		}
	}
	return specs
}

// Fallback builds the yearly report calls used when statement retrieval fails.
func Fallback(symbols []types.Ticker) []types.CallSpec {
	specs := make([]types.CallSpec, 0, len(symbols))
	for _, sym := range symbols {
		specs = append(specs, types.NewCallSpec(types.ServiceFinancialReports, map[string]string{
			types.ParamSymbol: string(sym),
			types.ParamPeriod: "year",
		}))
	}
	return specs
}

// SummarySymbols are priced for the market summary.
var SummarySymbols = []types.Ticker{"VN30", "VCB", "VIC", "HPG", "FPT", "TCB"}

// MarketSummary prices every summary symbol.
func MarketSummary() []types.CallSpec {
	return Prices(SummarySymbols)
}

// Prices returns one current price call per distinct symbol.
func Prices(symbols []types.Ticker) []types.CallSpec {
	specs := make([]types.CallSpec, 0, len(symbols))
	seen := make(map[types.Ticker]bool, len(symbols))
	for _, sym := range symbols {
		if seen[sym] {
			continue
		}
		seen[sym] = true
		specs = append(specs, types.NewCallSpec(types.ServiceCurrentPrice, map[string]string{
			types.ParamSymbol: string(sym),
		}))
	}
	return specs
}

// Metrics a stock comparison can ask for.
const (
	MetricCurrentPrice    = "current_price"
	MetricCompanyOverview = "company_overview"
	MetricFinancial       = "financial_metrics"
)

// DefaultCompareMetrics is used when a comparison names no metrics.
var DefaultCompareMetrics = []string{MetricCurrentPrice, MetricCompanyOverview}

// Compare returns the calls behind each requested metric for every symbol, grouped by
// symbol. Unknown metrics are ignored.
func Compare(symbols []types.Ticker, metrics []string) []types.CallSpec {
	if len(metrics) == 0 {
		metrics = DefaultCompareMetrics
	}
	want := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		want[m] = true
	}

	var specs []types.CallSpec
	for _, sym := range symbols {
		params := map[string]string{types.ParamSymbol: string(sym)}
		if want[MetricCurrentPrice] {
			specs = append(specs, types.NewCallSpec(types.ServiceCurrentPrice, params))
		}
		if want[MetricCompanyOverview] {
			specs = append(specs, types.NewCallSpec(types.ServiceCompanyInfo, params))
		}
		if want[MetricFinancial] {
			specs = append(specs, types.NewCallSpec(types.ServiceFinancialReports, map[string]string{
				types.ParamSymbol: string(sym),
				types.ParamPeriod: "year",
			}))
		}
	}
	return specs
}
