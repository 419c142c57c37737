/*
Package iqx provides a client for the IQX news and company insight APIs.
*/
package iqx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shanehull/stockchat/internal/types"
)

const (
	DefaultNewsURL    = "https://proxy.iqx.vn/proxy/ai/api/v2"
	DefaultInsightURL = "https://proxy.iqx.vn/proxy/trading/api/iq-insight-service/v1"

	defaultPageSize = 12
	defaultLanguage = "vi"
	newsSource      = "IQX News API"
)

// ErrNotFound is returned when IQX has nothing for the ticker.
var ErrNotFound = errors.New("not found")

type Client struct {
	http       *http.Client
	newsURL    string
	insightURL string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient returns a Client. Empty URLs use the public endpoints; a nil limiter
// leaves requests unthrottled.
func NewClient(newsURL, insightURL string, timeout time.Duration, limiter *rate.Limiter, log zerolog.Logger) *Client {
	if newsURL == "" {
		newsURL = DefaultNewsURL
	}
	if insightURL == "" {
		insightURL = DefaultInsightURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		newsURL:    strings.TrimRight(newsURL, "/"),
		insightURL: strings.TrimRight(insightURL, "/"),
		limiter:    limiter,
		log:        log,
	}
}

// NewsQuery filters the news_info endpoint. Zero values are left out of the request.
type NewsQuery struct {
	Ticker     string
	Page       int
	PageSize   int
	Industry   string
	UpdateFrom string
	UpdateTo   string
	Sentiment  string
	Source     string
	Language   string
}

func (q NewsQuery) values() url.Values {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.Language == "" {
		q.Language = defaultLanguage
	}

	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("page", strconv.Itoa(q.Page))
	set("ticker", strings.ToUpper(q.Ticker))
	set("industry", q.Industry)
	set("update_from", q.UpdateFrom)
	set("update_to", q.UpdateTo)
	set("sentiment", q.Sentiment)
	set("newsfrom", q.Source)
	set("language", q.Language)
	set("page_size", strconv.Itoa(q.PageSize))
	return v
}

type newsResponse struct {
	News         []newsItem `json:"news_info"`
	TotalRecords int        `json:"total_records"`
	Name         string     `json:"name"`
}

type newsItem struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	ShortContent string `json:"short_content"`
	Source       string `json:"news_source"`
	Sentiment    string `json:"sentiment"`
	UpdateDate   string `json:"update_date"`
}

// News fetches one page of articles for q.Ticker.
func (c *Client) News(ctx context.Context, q NewsQuery) (types.NewsRecord, error) {
	symbol := strings.ToUpper(q.Ticker)
	params := q.values()
	endpoint := c.newsURL + "/news_info?" + params.Encode()

	c.log.Info().Str("ticker", symbol).Msg("Fetching news from IQX")

	var body newsResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return types.NewsRecord{}, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	pageSize, _ := strconv.Atoi(params.Get("page_size"))
	page, _ := strconv.Atoi(params.Get("page"))

	rec := types.NewsRecord{
		Symbol:      symbol,
		CompanyName: body.Name,
		Articles:    make([]types.Article, 0, len(body.News)),
		Total:       body.TotalRecords,
		Page:        page,
		PageSize:    pageSize,
	}
	if rec.CompanyName == "" {
		rec.CompanyName = symbol
	}
	for _, n := range body.News {
		rec.Articles = append(rec.Articles, types.Article{
			Title:       stripHTML(n.Title),
			Summary:     stripHTML(n.ShortContent),
			Slug:        n.Slug,
			Source:      n.Source,
			Sentiment:   n.Sentiment,
			PublishedAt: n.UpdateDate,
		})
	}
	return rec, nil
}

// TotalPages is the page count for a news result.
func TotalPages(rec types.NewsRecord) int {
	if rec.PageSize <= 0 {
		return 0
	}
	return (rec.Total + rec.PageSize - 1) / rec.PageSize
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch URL %s: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn().Err(err).Str("url", endpoint).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}
