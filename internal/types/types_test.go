package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	cases := map[string]Label{
		"price":            LabelPrice,
		" News\n":          LabelNews,
		"financial_detail": LabelFinancialDetail,
		"financial-detail": LabelFinancialDetail,
		"Market.":          LabelMarket,
		"`general`":        LabelGeneral,
	}
	for in, want := range cases {
		got, err := ParseLabel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLabel("the question is about price")
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	p := ParsePeriod("statistics-financial (Q5/2023)\npe: 12.1")
	assert.True(t, p.Annual)
	assert.Equal(t, 2023, p.Year)
	assert.Equal(t, 5, p.Slot())
	assert.Equal(t, "Năm 2023", p.String())

	q := ParsePeriod("statistics-financial (Q3/2024)")
	assert.False(t, q.Annual)
	assert.Equal(t, 3, q.Quarter)
	assert.Equal(t, "Q3/2024", q.Tag())

	assert.True(t, ParsePeriod("no tag here").IsZero())
}

func TestPeriodOrdering(t *testing.T) {
	assert.True(t, AnnualPeriod(2024).After(QuarterPeriod(2024, 4)))
	assert.True(t, QuarterPeriod(2024, 1).After(AnnualPeriod(2023)))
	assert.False(t, QuarterPeriod(2023, 2).After(QuarterPeriod(2023, 3)))
}

func TestEveryServiceIsMapped(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Services {
		assert.False(t, seen[s.Name()], "duplicate service %s", s.Name())
		seen[s.Name()] = true

		if s.TickerScoped() {
			assert.NotEmpty(t, s.Category(), s.Name())
			assert.Empty(t, s.Bucket(), s.Name())
		} else {
			assert.NotEmpty(t, s.Bucket(), s.Name())
			assert.NotEqual(t, BucketMisc, s.Bucket(), s.Name())
		}
	}
}

func TestServiceByName(t *testing.T) {
	s, ok := ServiceByName("get_insider_deal")
	require.True(t, ok)
	assert.Equal(t, CategoryInsiderDeals, s.Category())

	s, ok = ServiceByName("get_weather")
	assert.False(t, ok)
	assert.Equal(t, BucketMisc, s.Bucket())
}

func TestCallSpecIsImmutable(t *testing.T) {
	params := map[string]string{ParamSymbol: "VCB"}
	spec := NewCallSpec(ServiceCurrentPrice, params)
	params[ParamSymbol] = "FPT"

	tk, ok := spec.Ticker()
	require.True(t, ok)
	assert.Equal(t, Ticker("VCB"), tk)

	spec.Params()[ParamSymbol] = "HPG"
	assert.Equal(t, "VCB", spec.Param(ParamSymbol))
}

func TestAggregatedContextJSON(t *testing.T) {
	c := NewAggregatedContext()
	c.PutTicker("VCB", CategoryCurrentPrice, PriceRecord{Symbol: "VCB", Close: 65.2})
	c.PutBucket(BucketMarket, ServiceTopGainers.Name(), TableRecord{Title: "top"})

	assert.Equal(t, []string{"VCB", "market_data"}, c.Sources())

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), ErrorsKey)

	c.Errors = append(c.Errors, "Error calling get_company_info: boom")
	raw, err = json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"errors":["Error calling get_company_info: boom"]`)
	assert.Equal(t, []string{"VCB", "market_data"}, c.Sources())
}
