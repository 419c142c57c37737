package types

import (
	"encoding/json"
	"sort"
)

// ErrorsKey is the top-level key failed calls are reported under.
const ErrorsKey = "errors"

// AggregatedContext is the merged result of a batch of calls. A missing key means the
// data was not fetched or the fetch failed; it never means an empty result.
type AggregatedContext struct {
	Tickers map[Ticker]map[Category]Record
	Buckets map[Bucket]map[string]Record
	Errors  []string
}

func NewAggregatedContext() *AggregatedContext {
	return &AggregatedContext{
		Tickers: make(map[Ticker]map[Category]Record),
		Buckets: make(map[Bucket]map[string]Record),
	}
}

func (c *AggregatedContext) PutTicker(t Ticker, cat Category, rec Record) {
	if c.Tickers[t] == nil {
		c.Tickers[t] = make(map[Category]Record)
	}
	c.Tickers[t][cat] = rec
}

func (c *AggregatedContext) PutBucket(b Bucket, service string, rec Record) {
	if c.Buckets[b] == nil {
		c.Buckets[b] = make(map[string]Record)
	}
	c.Buckets[b][service] = rec
}

func (c *AggregatedContext) Ticker(t Ticker, cat Category) (Record, bool) {
	rec, ok := c.Tickers[t][cat]
	return rec, ok
}

// Empty reports whether no call produced data. Errors alone do not count as data.
func (c *AggregatedContext) Empty() bool {
	return c == nil || (len(c.Tickers) == 0 && len(c.Buckets) == 0)
}

// Sources lists the top-level data keys in sorted order, without the errors key.
func (c *AggregatedContext) Sources() []string {
	if c == nil {
		return []string{}
	}
	keys := make([]string, 0, len(c.Tickers)+len(c.Buckets))
	for t := range c.Tickers {
		keys = append(keys, string(t))
	}
	for b := range c.Buckets {
		keys = append(keys, string(b))
	}
	sort.Strings(keys)
	return keys
}

func (c *AggregatedContext) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Tickers)+len(c.Buckets)+1)
	for t, cats := range c.Tickers {
		out[string(t)] = cats
	}
	for b, recs := range c.Buckets {
		out[string(b)] = recs
	}
	if len(c.Errors) > 0 {
		out[ErrorsKey] = c.Errors
	}
	return json.Marshal(out)
}
