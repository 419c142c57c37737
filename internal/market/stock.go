package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shanehull/stockchat/internal/types"
)

type ohlcvResponse struct {
	Data []types.Bar `json:"data"`
}

func (g *Gateway) bars(ctx context.Context, sym, start, end string) ([]types.Bar, error) {
	if len(sym) < 3 {
		return nil, fmt.Errorf("invalid symbol %q", sym)
	}
	params := url.Values{}
	params.Set("start", start)
	params.Set("end", end)
	params.Set("interval", "1D")

	var body ohlcvResponse
	if err := g.getJSON(ctx, "/stocks/"+url.PathEscape(sym)+"/ohlcv", params, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", sym, err)
	}
	return body.Data, nil
}

// CurrentPrice returns the latest daily bar with the change against the bar before it.
func (g *Gateway) CurrentPrice(ctx context.Context, sym string) (types.PriceRecord, error) {
	sym = strings.ToUpper(sym)
	now := g.now()

	bars, err := g.bars(ctx, sym, now.Add(-currentWindow).Format(dateLayout), now.Format(dateLayout))
	if err != nil {
		return types.PriceRecord{}, err
	}
	if len(bars) == 0 {
		return types.PriceRecord{}, fmt.Errorf("%w for %s", ErrNoData, sym)
	}

	last := bars[len(bars)-1]
	rec := types.PriceRecord{
		Symbol:    sym,
		Timestamp: last.Time,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Close:     last.Close,
		Volume:    last.Volume,
		Source:    "market-gateway",
	}

	change, pct := 0.0, 0.0
	if len(bars) > 1 {
		prev := bars[len(bars)-2].Close
		change = last.Close - prev
		if prev != 0 {
			pct = change / prev * 100
		}
	}
	rec.Change, rec.ChangePercent = &change, &pct
	return rec, nil
}

// PriceHistory returns daily bars between start and end (YYYY-MM-DD) with a summary.
func (g *Gateway) PriceHistory(ctx context.Context, sym, start, end string) (types.PriceHistoryRecord, error) {
	sym = strings.ToUpper(sym)
	if start == "" || end == "" {
		return types.PriceHistoryRecord{}, fmt.Errorf("price history for %s needs start and end dates", sym)
	}

	bars, err := g.bars(ctx, sym, start, end)
	if err != nil {
		return types.PriceHistoryRecord{}, err
	}
	if bars == nil {
		bars = []types.Bar{}
	}

	return types.PriceHistoryRecord{
		Symbol:   sym,
		Start:    start,
		End:      end,
		Interval: "1D",
		Bars:     bars,
		Summary:  Summarize(bars),
	}, nil
}

// Summarize computes range statistics, or nil for no bars.
func Summarize(bars []types.Bar) *types.PriceSummary {
	if len(bars) == 0 {
		return nil
	}

	s := &types.PriceSummary{High: bars[0].High, Low: bars[0].Low}
	var closes float64
	for _, b := range bars {
		if b.High > s.High {
			s.High = b.High
		}
		if b.Low < s.Low {
			s.Low = b.Low
		}
		closes += b.Close
		s.TotalVolume += b.Volume
	}
	s.AverageClose = closes / float64(len(bars))

	first, last := bars[0].Close, bars[len(bars)-1].Close
	s.Change = last - first
	if first != 0 {
		s.ChangePercent = s.Change / first * 100
	}
	return s
}

// Company returns the profile, shareholders, officers, subsidiaries and events.
func (g *Gateway) Company(ctx context.Context, sym string) (types.CompanyRecord, error) {
	sym = strings.ToUpper(sym)
	var rec types.CompanyRecord
	if err := g.getJSON(ctx, "/stocks/"+url.PathEscape(sym)+"/company", nil, &rec); err != nil {
		return types.CompanyRecord{}, fmt.Errorf("failed to fetch company info for %s: %w", sym, err)
	}
	rec.Symbol = sym
	return rec, nil
}

// Financials returns the reports for period, year or quarter (default year).
func (g *Gateway) Financials(ctx context.Context, sym, period string) (types.FinancialRecord, error) {
	sym = strings.ToUpper(sym)
	if period == "" {
		period = "year"
	}
	params := url.Values{}
	params.Set("period", period)

	var rec types.FinancialRecord
	if err := g.getJSON(ctx, "/stocks/"+url.PathEscape(sym)+"/financials", params, &rec); err != nil {
		return types.FinancialRecord{}, fmt.Errorf("failed to fetch financial reports for %s: %w", sym, err)
	}
	rec.Symbol, rec.Period = sym, period
	return rec, nil
}
