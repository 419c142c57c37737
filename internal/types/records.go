package types

// Record is the payload of one successful backend call. Each category has its own
// concrete shape so prompt assembly never depends on an undocumented blob.
type Record interface {
	record()
}

type PriceRecord struct {
	Symbol        string   `json:"symbol"`
	Timestamp     string   `json:"timestamp"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Close         float64  `json:"close"`
	Volume        int64    `json:"volume"`
	Change        *float64 `json:"price_change,omitempty"`
	ChangePercent *float64 `json:"price_change_percent,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// Bar is one OHLCV row.
type Bar struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type PriceSummary struct {
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	AverageClose  float64 `json:"average_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	TotalVolume   int64   `json:"total_volume"`
}

type PriceHistoryRecord struct {
	Symbol   string        `json:"symbol"`
	Start    string        `json:"start_date"`
	End      string        `json:"end_date"`
	Interval string        `json:"interval"`
	Bars     []Bar         `json:"data"`
	Summary  *PriceSummary `json:"summary,omitempty"`
}

// Row is one table row as returned by the data gateway.
type Row map[string]any

type CompanyRecord struct {
	Symbol       string `json:"symbol"`
	Overview     []Row  `json:"overview,omitempty"`
	Shareholders []Row  `json:"shareholders,omitempty"`
	Officers     []Row  `json:"officers,omitempty"`
	Subsidiaries []Row  `json:"subsidiaries,omitempty"`
	Events       []Row  `json:"events,omitempty"`
}

type FinancialRecord struct {
	Symbol          string `json:"symbol"`
	Period          string `json:"period"`
	IncomeStatement []Row  `json:"income_statement,omitempty"`
	BalanceSheet    []Row  `json:"balance_sheet,omitempty"`
	CashFlow        []Row  `json:"cash_flow,omitempty"`
	Ratios          []Row  `json:"ratios,omitempty"`
}

type Article struct {
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Source      string `json:"source,omitempty"`
	Sentiment   string `json:"sentiment,omitempty"`
	PublishedAt string `json:"update_date,omitempty"`
}

type NewsRecord struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	Articles    []Article `json:"news"`
	Total       int       `json:"total_articles"`
	Page        int       `json:"current_page"`
	PageSize    int       `json:"page_size"`
}

// TableRecord carries row-shaped results: trading statistics, fund tables, rankings
// and listings.
type TableRecord struct {
	Title string `json:"title"`
	Rows  []Row  `json:"data"`
}

type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SeriesRecord carries a time series: valuation multiples, commodity prices and
// macro indicators.
type SeriesRecord struct {
	Name   string        `json:"name"`
	Unit   string        `json:"unit,omitempty"`
	Points []SeriesPoint `json:"data"`
}

// RetrievalRecord is the outcome of a financial statement lookup.
type RetrievalRecord struct {
	Answer      string `json:"answer"`
	ContextUsed int    `json:"context_used"`
}

func (PriceRecord) record()        {}
func (PriceHistoryRecord) record() {}
func (CompanyRecord) record()      {}
func (FinancialRecord) record()    {}
func (NewsRecord) record()         {}
func (TableRecord) record()        {}
func (SeriesRecord) record()       {}
func (RetrievalRecord) record()    {}
