package types

import (
	"encoding/json"
	"strconv"
)

// Category names the slot a ticker-scoped result is stored under.
type Category string

const (
	CategoryCurrentPrice     Category = "current_price"
	CategoryPriceHistory     Category = "price_history"
	CategoryCompanyInfo      Category = "company_info"
	CategoryFinancialReports Category = "financial_reports"
	CategoryNews             Category = "news"
	CategoryOrderStats       Category = "order_stats"
	CategoryForeignTrade     Category = "foreign_trade"
	CategoryPropTrade        Category = "prop_trade"
	CategoryInsiderDeals     Category = "insider_deals"
	CategoryFundNAV          Category = "fund_nav"
	CategoryFundHoldings     Category = "fund_holdings"
	CategoryFundIndustry     Category = "fund_industry"
	CategoryFundAssets       Category = "fund_assets"
	CategoryFinancialDetail  Category = "financial_detail"
)

// Bucket names the top-level slot for results that are not about one ticker.
type Bucket string

const (
	BucketMarket    Bucket = "market_data"
	BucketCommodity Bucket = "commodity_data"
	BucketMacro     Bucket = "macro_data"
	BucketMisc      Bucket = "misc_data"
)

// Service is one backend operation. Every variant is declared below together with
// the category or bucket its results land in, so no declared service can be unmapped.
type Service struct {
	name     string
	category Category
	bucket   Bucket
}

func tickerService(name string, c Category) Service {
	return Service{name: name, category: c}
}

func marketService(name string, b Bucket) Service {
	return Service{name: name, bucket: b}
}

var (
	ServiceCurrentPrice        = tickerService("get_current_price", CategoryCurrentPrice)
	ServicePriceHistory        = tickerService("get_stock_price_history", CategoryPriceHistory)
	ServiceCompanyInfo         = tickerService("get_company_info", CategoryCompanyInfo)
	ServiceFinancialReports    = tickerService("get_financial_reports", CategoryFinancialReports)
	ServiceStockNews           = tickerService("get_stock_news", CategoryNews)
	ServiceOrderStats          = tickerService("get_order_stats", CategoryOrderStats)
	ServiceForeignTrade        = tickerService("get_foreign_trade", CategoryForeignTrade)
	ServicePropTrade           = tickerService("get_prop_trade", CategoryPropTrade)
	ServiceInsiderDeal         = tickerService("get_insider_deal", CategoryInsiderDeals)
	ServiceFundNAV             = tickerService("get_fund_nav", CategoryFundNAV)
	ServiceFundTopHolding      = tickerService("get_fund_top_holding", CategoryFundHoldings)
	ServiceFundIndustryHolding = tickerService("get_fund_industry_holding", CategoryFundIndustry)
	ServiceFundAssetHolding    = tickerService("get_fund_asset_holding", CategoryFundAssets)
	ServiceRAGQuery            = tickerService("rag_query", CategoryFinancialDetail)

	ServiceAllSymbols       = marketService("get_all_symbols", BucketMarket)
	ServicePriceBoard       = marketService("get_price_board", BucketMarket)
	ServiceTopGainers       = marketService("get_top_gainers", BucketMarket)
	ServiceTopLosers        = marketService("get_top_losers", BucketMarket)
	ServiceTopByValue       = marketService("get_top_by_value", BucketMarket)
	ServiceTopByVolume      = marketService("get_top_by_volume", BucketMarket)
	ServiceTopForeignBuy    = marketService("get_top_foreign_buy", BucketMarket)
	ServiceTopForeignSell   = marketService("get_top_foreign_sell", BucketMarket)
	ServiceMarketPE         = marketService("get_market_pe", BucketMarket)
	ServiceMarketPB         = marketService("get_market_pb", BucketMarket)
	ServiceMarketEvaluation = marketService("get_market_evaluation", BucketMarket)
	ServiceFundListing      = marketService("get_fund_listing", BucketMarket)

	ServiceGoldVN         = marketService("get_gold_vn", BucketCommodity)
	ServiceGoldGlobal     = marketService("get_gold_global", BucketCommodity)
	ServiceOilCrude       = marketService("get_oil_crude", BucketCommodity)
	ServiceCommodityPrice = marketService("get_commodity_price", BucketCommodity)

	ServiceGDP                = marketService("get_gdp", BucketMacro)
	ServiceCPI                = marketService("get_cpi", BucketMacro)
	ServiceIndustryProduction = marketService("get_industry_production", BucketMacro)
	ServiceRetail             = marketService("get_retail", BucketMacro)
	ServiceImportExport       = marketService("get_import_export", BucketMacro)
)

// Services lists every declared backend operation.
var Services = []Service{
	ServiceCurrentPrice, ServicePriceHistory, ServiceCompanyInfo, ServiceFinancialReports,
	ServiceStockNews, ServiceOrderStats, ServiceForeignTrade, ServicePropTrade,
	ServiceInsiderDeal, ServiceFundNAV, ServiceFundTopHolding, ServiceFundIndustryHolding,
	ServiceFundAssetHolding, ServiceRAGQuery,
	ServiceAllSymbols, ServicePriceBoard, ServiceTopGainers, ServiceTopLosers,
	ServiceTopByValue, ServiceTopByVolume, ServiceTopForeignBuy, ServiceTopForeignSell,
	ServiceMarketPE, ServiceMarketPB, ServiceMarketEvaluation, ServiceFundListing,
	ServiceGoldVN, ServiceGoldGlobal, ServiceOilCrude, ServiceCommodityPrice,
	ServiceGDP, ServiceCPI, ServiceIndustryProduction, ServiceRetail, ServiceImportExport,
}

var servicesByName = func() map[string]Service {
	m := make(map[string]Service, len(Services))
	for _, s := range Services {
		m[s.name] = s
	}
	return m
}()

// ServiceByName resolves a wire name. Unknown names resolve to a misc_data service
// so callers can still report them; ok is false in that case.
func ServiceByName(name string) (s Service, ok bool) {
	if s, ok := servicesByName[name]; ok {
		return s, true
	}
	return marketService(name, BucketMisc), false
}

func (s Service) Name() string {
	return s.name
}

// TickerScoped reports whether results are stored under a ticker.
func (s Service) TickerScoped() bool {
	return s.category != ""
}

func (s Service) Category() Category {
	return s.category
}

func (s Service) Bucket() Bucket {
	return s.bucket
}

func (s Service) String() string {
	return s.name
}

// Parameter names used by the planner and the backends.
const (
	ParamSymbol     = "symbol"
	ParamLimit      = "limit"
	ParamIndex      = "index"
	ParamStartDate  = "start_date"
	ParamEndDate    = "end_date"
	ParamPeriod     = "period"
	ParamDuration   = "duration"
	ParamDate       = "date"
	ParamSymbols    = "symbols"
	ParamFundType   = "fund_type"
	ParamCommodity  = "commodity_type"
	ParamUpdateFrom = "update_from"
	ParamUpdateTo   = "update_to"
	ParamSentiment  = "sentiment"
)

// CallSpec is a planned backend invocation. It is immutable: the parameter map is
// copied on construction and only exposed through accessors.
type CallSpec struct {
	service Service
	params  map[string]string
}

func NewCallSpec(s Service, params map[string]string) CallSpec {
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return CallSpec{service: s, params: cp}
}

func (c CallSpec) Service() Service {
	return c.service
}

func (c CallSpec) Param(key string) string {
	return c.params[key]
}

// IntParam returns the parameter as an int, or def when absent or malformed.
func (c CallSpec) IntParam(key string, def int) int {
	v, ok := c.params[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Params returns a copy of the parameter map.
func (c CallSpec) Params() map[string]string {
	cp := make(map[string]string, len(c.params))
	for k, v := range c.params {
		cp[k] = v
	}
	return cp
}

// Ticker returns the symbol parameter, if any.
func (c CallSpec) Ticker() (Ticker, bool) {
	s := c.params[ParamSymbol]
	return Ticker(s), s != ""
}

func (c CallSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Service string            `json:"service"`
		Params  map[string]string `json:"params"`
	}{c.service.name, c.params})
}
