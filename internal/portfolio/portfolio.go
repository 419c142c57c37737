/*
Package portfolio values stock holdings against current prices and reports the gain or
loss per position and for the whole portfolio.
*/
package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shanehull/stockchat/internal/symbols"
	"github.com/shanehull/stockchat/internal/types"
)

var ErrNoHoldings = errors.New("no holdings")

type Holding struct {
	Symbol   string  `json:"symbol"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
}

type Position struct {
	Shares          float64 `json:"shares"`
	AvgPrice        float64 `json:"avg_price"`
	CurrentPrice    float64 `json:"current_price"`
	InvestedValue   float64 `json:"invested_value"`
	CurrentValue    float64 `json:"current_value"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}

type Summary struct {
	TotalInvested        float64 `json:"total_invested"`
	TotalCurrentValue    float64 `json:"total_current_value"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
}

// Report holds only the positions that could be priced; Unpriced lists the rest.
type Report struct {
	Holdings map[string]Position `json:"holdings"`
	Summary  Summary             `json:"portfolio_summary"`
	Unpriced []string            `json:"unpriced"`
}

// Normalize upper-cases symbols and rejects holdings with a bad symbol or a
// non-positive share count or price.
func Normalize(holdings []Holding) ([]Holding, error) {
	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}
	out := make([]Holding, len(holdings))
	for i, h := range holdings {
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
		if !symbols.ValidFormat(h.Symbol) {
			return nil, fmt.Errorf("invalid symbol %q", h.Symbol)
		}
		if h.Shares <= 0 || h.AvgPrice <= 0 {
			return nil, fmt.Errorf("shares and avg_price must be positive for %s", h.Symbol)
		}
		out[i] = h
	}
	return out, nil
}

// Tickers lists the holding symbols in input order.
func Tickers(holdings []Holding) []types.Ticker {
	out := make([]types.Ticker, len(holdings))
	for i, h := range holdings {
		out[i] = types.Ticker(h.Symbol)
	}
	return out
}

// Analyze values holdings at prices. A symbol with no positive price is skipped and
// left out of the totals. Repeated symbols are merged into one position.
func Analyze(holdings []Holding, prices map[string]float64) Report {
	r := Report{Holdings: make(map[string]Position), Unpriced: []string{}}

	for _, h := range holdings {
		price := prices[h.Symbol]
		if price <= 0 {
			r.Unpriced = append(r.Unpriced, h.Symbol)
			continue
		}

		p := r.Holdings[h.Symbol]
		invested := p.InvestedValue + h.Shares*h.AvgPrice
		p.Shares += h.Shares
		p.AvgPrice = invested / p.Shares
		p.CurrentPrice = price
		p.InvestedValue = invested
		p.CurrentValue = p.Shares * price
		p.GainLoss = p.CurrentValue - p.InvestedValue
		p.GainLossPercent = percent(p.GainLoss, p.InvestedValue)
		r.Holdings[h.Symbol] = p
	}

	for _, p := range r.Holdings {
		r.Summary.TotalInvested += p.InvestedValue
		r.Summary.TotalCurrentValue += p.CurrentValue
	}
	r.Summary.TotalGainLoss = r.Summary.TotalCurrentValue - r.Summary.TotalInvested
	r.Summary.TotalGainLossPercent = percent(r.Summary.TotalGainLoss, r.Summary.TotalInvested)
	return r
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
