/*
Package market is the client for the market data gateway. Gateway implements the
aggregator backend for every declared service: stock prices and history, company
profiles, financial reports, trading statistics, funds, market rankings and valuation,
commodities and macro indicators. Stock news comes from IQX.
*/
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/types"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"

	dateLayout       = "2006-01-02"
	currentWindow    = 3 * 24 * time.Hour
	defaultNewsLimit = 10
	defaultIndex     = "VNINDEX"
	defaultTopLimit  = "10"
)

var (
	// ErrUnknownService is returned for services the gateway does not serve.
	ErrUnknownService = errors.New("unknown service")
	ErrNotFound       = errors.New("not found")
	ErrNoData         = errors.New("no data returned")
)

// NewsSource fetches ticker news.
type NewsSource interface {
	News(ctx context.Context, q iqx.NewsQuery) (types.NewsRecord, error)
}

type Gateway struct {
	http    *http.Client
	baseURL string
	news    NewsSource
	now     func() time.Time
	log     zerolog.Logger
}

// NewGateway returns a Gateway for baseURL. A nil news source makes news calls fail.
func NewGateway(baseURL string, timeout time.Duration, news NewsSource, log zerolog.Logger) *Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		news:    news,
		now:     time.Now,
		log:     log,
	}
}

// Fetch runs one planned call.
func (g *Gateway) Fetch(ctx context.Context, spec types.CallSpec) (types.Record, error) {
	sym := strings.ToUpper(spec.Param(types.ParamSymbol))
	svc := spec.Service()

	switch svc {
	case types.ServiceCurrentPrice:
		rec, err := g.CurrentPrice(ctx, sym)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case types.ServicePriceHistory:
		rec, err := g.PriceHistory(ctx, sym, spec.Param(types.ParamStartDate), spec.Param(types.ParamEndDate))
		if err != nil {
			return nil, err
		}
		return rec, nil
	case types.ServiceCompanyInfo:
		rec, err := g.Company(ctx, sym)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case types.ServiceFinancialReports:
		rec, err := g.Financials(ctx, sym, spec.Param(types.ParamPeriod))
		if err != nil {
			return nil, err
		}
		return rec, nil
	case types.ServiceStockNews:
		return g.stockNews(ctx, sym, spec)

	case types.ServiceOrderStats:
		return g.table(ctx, svc, "/stocks/"+url.PathEscape(sym)+"/trading/order_stats", nil)
	case types.ServiceForeignTrade:
		return g.table(ctx, svc, "/stocks/"+url.PathEscape(sym)+"/trading/foreign_trade", nil)
	case types.ServicePropTrade:
		return g.table(ctx, svc, "/stocks/"+url.PathEscape(sym)+"/trading/prop_trade", nil)
	case types.ServiceInsiderDeal:
		return g.table(ctx, svc, "/stocks/"+url.PathEscape(sym)+"/trading/insider_deal", nil)

	case types.ServiceFundNAV:
		return g.table(ctx, svc, "/funds/"+url.PathEscape(sym)+"/nav", nil)
	case types.ServiceFundTopHolding:
		return g.table(ctx, svc, "/funds/"+url.PathEscape(sym)+"/top_holding", nil)
	case types.ServiceFundIndustryHolding:
		return g.table(ctx, svc, "/funds/"+url.PathEscape(sym)+"/industry_holding", nil)
	case types.ServiceFundAssetHolding:
		return g.table(ctx, svc, "/funds/"+url.PathEscape(sym)+"/asset_holding", nil)
	case types.ServiceFundListing:
		return g.table(ctx, svc, "/funds", query(spec, map[string]string{types.ParamFundType: "type"}, nil))

	case types.ServiceAllSymbols:
		return g.table(ctx, svc, "/market/symbols", nil)
	case types.ServicePriceBoard:
		return g.table(ctx, svc, "/market/board", query(spec, map[string]string{types.ParamSymbols: "symbols"}, nil))
	case types.ServiceTopGainers, types.ServiceTopLosers, types.ServiceTopByValue,
		types.ServiceTopByVolume, types.ServiceTopForeignBuy, types.ServiceTopForeignSell:
		return g.table(ctx, svc, "/market/top/"+ranking(svc), query(spec,
			map[string]string{types.ParamIndex: "index", types.ParamLimit: "limit", types.ParamDate: "date"},
			map[string]string{"index": defaultIndex, "limit": defaultTopLimit}))
	case types.ServiceMarketPE, types.ServiceMarketPB, types.ServiceMarketEvaluation:
		return g.series(ctx, svc, "/market/valuation/"+valuationMetric(svc), query(spec,
			map[string]string{types.ParamIndex: "index", types.ParamDuration: "duration"},
			map[string]string{"index": defaultIndex, "duration": valuationDuration(svc)}))

	case types.ServiceGoldVN, types.ServiceGoldGlobal, types.ServiceOilCrude:
		return g.series(ctx, svc, "/commodities/"+strings.TrimPrefix(svc.Name(), "get_"), dateRange(spec))
	case types.ServiceCommodityPrice:
		kind := spec.Param(types.ParamCommodity)
		if kind == "" {
			return nil, fmt.Errorf("missing %s parameter", types.ParamCommodity)
		}
		return g.series(ctx, svc, "/commodities/"+url.PathEscape(kind), dateRange(spec))

	case types.ServiceGDP, types.ServiceCPI, types.ServiceIndustryProduction,
		types.ServiceRetail, types.ServiceImportExport:
		params := dateRange(spec)
		params.Set("period", macroPeriod(svc, spec.Param(types.ParamPeriod)))
		return g.series(ctx, svc, "/macro/"+strings.TrimPrefix(svc.Name(), "get_"), params)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownService, svc.Name())
}

func ranking(svc types.Service) string {
	return strings.TrimPrefix(strings.TrimPrefix(svc.Name(), "get_top_"), "get_")
}

func valuationMetric(svc types.Service) string {
	switch svc {
	case types.ServiceMarketPE:
		return "pe"
	case types.ServiceMarketPB:
		return "pb"
	default:
		return "evaluation"
	}
}

func valuationDuration(svc types.Service) string {
	if svc == types.ServiceMarketEvaluation {
		return "5M"
	}
	return "5Y"
}

func macroPeriod(svc types.Service, requested string) string {
	if requested != "" {
		return requested
	}
	if svc == types.ServiceGDP {
		return "quarter"
	}
	return "month"
}

// query copies spec params into URL values under new names, filling defaults.
func query(spec types.CallSpec, names map[string]string, defaults map[string]string) url.Values {
	v := url.Values{}
	for param, key := range names {
		if val := spec.Param(param); val != "" {
			v.Set(key, val)
		}
	}
	for key, val := range defaults {
		if v.Get(key) == "" {
			v.Set(key, val)
		}
	}
	return v
}

func dateRange(spec types.CallSpec) url.Values {
	return query(spec, map[string]string{types.ParamStartDate: "start", types.ParamEndDate: "end"}, nil)
}

func (g *Gateway) table(ctx context.Context, svc types.Service, path string, params url.Values) (types.Record, error) {
	var body struct {
		Data []types.Row `json:"data"`
	}
	if err := g.getJSON(ctx, path, params, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []types.Row{}
	}
	return types.TableRecord{Title: svc.Name(), Rows: body.Data}, nil
}

func (g *Gateway) series(ctx context.Context, svc types.Service, path string, params url.Values) (types.Record, error) {
	var body struct {
		Unit string              `json:"unit"`
		Data []types.SeriesPoint `json:"data"`
	}
	if err := g.getJSON(ctx, path, params, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []types.SeriesPoint{}
	}
	return types.SeriesRecord{Name: svc.Name(), Unit: body.Unit, Points: body.Data}, nil
}

func (g *Gateway) stockNews(ctx context.Context, sym string, spec types.CallSpec) (types.Record, error) {
	if g.news == nil {
		return nil, errors.New("news source not configured")
	}
	rec, err := g.news.News(ctx, iqx.NewsQuery{
		Ticker:     sym,
		PageSize:   spec.IntParam(types.ParamLimit, defaultNewsLimit),
		UpdateFrom: spec.Param(types.ParamUpdateFrom),
		UpdateTo:   spec.Param(types.ParamUpdateTo),
		Sentiment:  spec.Param(types.ParamSentiment),
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := g.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch URL %s: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.log.Warn().Err(err).Str("url", endpoint).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
