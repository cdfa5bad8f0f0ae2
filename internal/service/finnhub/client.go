package finnhub

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/service/ratelimit"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Finnhub's free tier allows 60 calls/minute; keep a burst well under it.
const (
	rateLimitKey      = "finnhub"
	rateLimitCapacity = 30
	rateLimitRefill   = 1 // tokens per second
)

// Client fetches daily candles and company news from the Finnhub REST
// API. It implements repository.PriceProvider and repository.NewsProvider.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter // nil disables throttling
	log     *logger.Logger
}

// Option configures Client.
type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithRateLimiter throttles outbound calls through the given limiter.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func NewClient(apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    xhttp.NewClient(),
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type candleResponse struct {
	Close      []float64 `json:"c"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}

func (c *Client) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, rateLimitKey, rateLimitCapacity, rateLimitRefill)
}

// DailyCloses fetches daily close prices for the inclusive date range,
// ordered by date ascending.
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", ticker, err)
	}

	var resp candleResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/candle",
		Headers: map[string]string{
			"X-Finnhub-Token": c.apiKey,
		},
		QueryParams: map[string]string{
			"symbol":     ticker,
			"resolution": "D",
			"from":       fmt.Sprintf("%d", from.Unix()),
			"to":         fmt.Sprintf("%d", to.Add(24*time.Hour-time.Second).Unix()),
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", ticker, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("fetch candles for %s: status %q", ticker, resp.Status)
	}
	if len(resp.Close) != len(resp.Timestamps) {
		return nil, fmt.Errorf("fetch candles for %s: %d closes vs %d timestamps",
			ticker, len(resp.Close), len(resp.Timestamps))
	}

	series := make(models.PriceSeries, len(resp.Close))
	for i := range resp.Close {
		series[i] = models.PricePoint{
			Date:  time.Unix(resp.Timestamps[i], 0).UTC(),
			Close: resp.Close[i],
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	c.log.Debug("candles fetched",
		logger.String("ticker", ticker),
		logger.Int("closes", len(series)))
	return series, nil
}

type newsEntry struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// CompanyNews fetches headlines for the ticker over the date range,
// most recent first, as the API returns them.
func (c *Client) CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}

	var entries []newsEntry
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/company-news",
		Headers: map[string]string{
			"X-Finnhub-Token": c.apiKey,
		},
		QueryParams: map[string]string{
			"symbol": ticker,
			"from":   from.Format(util.ISODate),
			"to":     to.Format(util.ISODate),
		},
	}, &entries)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, e := range entries {
		if e.Headline == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Datetime: time.Unix(e.Datetime, 0).UTC(),
			Headline: e.Headline,
			Source:   e.Source,
			URL:      e.URL,
		})
	}
	return items, nil
}
