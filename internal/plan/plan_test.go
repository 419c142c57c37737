package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/stockchat/internal/classify"
	"github.com/shanehull/stockchat/internal/types"
)

func TestPlanIsPure(t *testing.T) {
	syms := []types.Ticker{"VCB", "FPT"}
	for _, label := range types.Labels {
		assert.Equal(t, Plan(syms, label), Plan(syms, label), label)
	}
}

func TestPlanNoSymbols(t *testing.T) {
	for _, label := range types.Labels {
		if label == types.LabelMarket {
			continue
		}
		assert.Empty(t, Plan(nil, label), label)
	}
}

func TestPlanPricePerSymbolInOrder(t *testing.T) {
	specs := Plan([]types.Ticker{"VCB", "FPT"}, types.LabelPrice)
	require.Len(t, specs, 2)
	for i, sym := range []string{"VCB", "FPT"} {
		assert.Equal(t, types.ServiceCurrentPrice, specs[i].Service())
		assert.Equal(t, map[string]string{types.ParamSymbol: sym}, specs[i].Params())
	}
}

func TestPlanTable(t *testing.T) {
	syms := []types.Ticker{"HPG"}
	cases := map[types.Label]types.Service{
		types.LabelFinancialDetail: types.ServiceRAGQuery,
		types.LabelNews:            types.ServiceStockNews,
		types.LabelCompany:         types.ServiceCompanyInfo,
		types.LabelComparison:      types.ServiceCurrentPrice,
	}
	for label, svc := range cases {
		specs := Plan(syms, label)
		require.Len(t, specs, 1, label)
		assert.Equal(t, svc, specs[0].Service(), label)
	}

	news := Plan(syms, types.LabelNews)[0]
	assert.Equal(t, 10, news.IntParam(types.ParamLimit, 0))

	assert.Empty(t, Plan(syms, types.LabelGeneral))
}

func TestPlanMarketIsSymbolIndependent(t *testing.T) {
	for _, syms := range [][]types.Ticker{nil, {"VCB", "FPT"}} {
		specs := Plan(syms, types.LabelMarket)
		require.Len(t, specs, 1)
		assert.Equal(t, types.ServiceTopGainers, specs[0].Service())
		assert.Equal(t, "VNINDEX", specs[0].Param(types.ParamIndex))
		assert.Equal(t, 10, specs[0].IntParam(types.ParamLimit, 0))
	}
}

func TestPlanWithDates(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	syms := []types.Ticker{"VIC"}

	dr, ok := classify.ParseDateRange("Lịch sử giá VIC trong 3 tháng qua", now)
	require.True(t, ok)
	specs := PlanWithDates(syms, types.LabelPrice, &dr)
	require.Len(t, specs, 1)
	assert.Equal(t, types.ServicePriceHistory, specs[0].Service())
	assert.Equal(t, "2024-12-12", specs[0].Param(types.ParamStartDate))
	assert.Equal(t, "2025-03-12", specs[0].Param(types.ParamEndDate))

	today, _ := classify.ParseDateRange("Giá VIC hôm nay", now)
	specs = PlanWithDates(syms, types.LabelPrice, &today)
	assert.Equal(t, types.ServiceCurrentPrice, specs[0].Service())

	specs = PlanWithDates(syms, types.LabelNews, &dr)
	assert.Equal(t, "2024-12-12", specs[0].Param(types.ParamUpdateFrom))
	assert.Equal(t, "10", specs[0].Param(types.ParamLimit))

	specs = PlanWithDates(syms, types.LabelComparison, &dr)
	assert.Equal(t, types.ServiceCurrentPrice, specs[0].Service())

	assert.Equal(t, Plan(syms, types.LabelPrice), PlanWithDates(syms, types.LabelPrice, nil))
}

func TestFallback(t *testing.T) {
	specs := Fallback([]types.Ticker{"VIC", "VHM"})
	require.Len(t, specs, 2)
	assert.Equal(t, types.ServiceFinancialReports, specs[1].Service())
	assert.Equal(t, "VHM", specs[1].Param(types.ParamSymbol))
	assert.Equal(t, "year", specs[1].Param(types.ParamPeriod))
}

func TestMarketSummary(t *testing.T) {
	specs := MarketSummary()
	require.Len(t, specs, len(SummarySymbols))
	for i, spec := range specs {
		assert.Equal(t, types.ServiceCurrentPrice, spec.Service())
		assert.Equal(t, string(SummarySymbols[i]), spec.Param(types.ParamSymbol))
	}
}

func TestPricesDeduplicates(t *testing.T) {
	specs := Prices([]types.Ticker{"VCB", "FPT", "VCB"})
	require.Len(t, specs, 2)
	assert.Equal(t, "VCB", specs[0].Param(types.ParamSymbol))
	assert.Equal(t, "FPT", specs[1].Param(types.ParamSymbol))
}

func TestCompare(t *testing.T) {
	specs := Compare([]types.Ticker{"VCB", "FPT"}, nil)
	require.Len(t, specs, 4)
	assert.Equal(t, types.ServiceCurrentPrice, specs[0].Service())
	assert.Equal(t, types.ServiceCompanyInfo, specs[1].Service())
	assert.Equal(t, "FPT", specs[2].Param(types.ParamSymbol))

	specs = Compare([]types.Ticker{"HPG"}, []string{MetricFinancial, "dividends"})
	require.Len(t, specs, 1)
	assert.Equal(t, types.ServiceFinancialReports, specs[0].Service())
	assert.Equal(t, "year", specs[0].Param(types.ParamPeriod))
}
