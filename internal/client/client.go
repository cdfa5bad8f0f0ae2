package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
)

// Client talks to the forecast service API: submission with a bounded
// retry on transient transport failures, and status reads.
type Client struct {
	http           *xhttp.Client
	baseURL        string
	submitAttempts int
	submitBackoff  time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	log            *logger.Logger
}

// Option configures Client.
type Option func(*Client)

func WithSubmitRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.submitAttempts = attempts
		c.submitBackoff = backoff
	}
}

func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// withSleep replaces the backoff wait, tests only.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:           xhttp.NewClient(),
		baseURL:        baseURL,
		submitAttempts: 2,
		submitBackoff:  5 * time.Second,
		sleep:          sleepCtx,
		log:            log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// envelope mirrors the server's response wrapper with the payload
// left raw for typed decoding.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Submit sends the forecast request. Transient transport failures
// (timeouts, gateway errors) are retried with a fixed backoff up to
// the configured attempt budget; anything else fails immediately, a
// rejected request stays rejected no matter how often it is resent.
func (c *Client) Submit(ctx context.Context, req *models.SubmitForecastRequest) (*models.SubmitForecastResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.submitAttempts; attempt++ {
		if attempt > 1 {
			c.log.Warn("retrying submit",
				logger.Int("attempt", attempt),
				logger.Error(lastErr))
			if err := c.sleep(ctx, c.submitBackoff); err != nil {
				return nil, err
			}
		}

		var env envelope
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + "/api/predict",
			Body:   req,
		}, &env)
		if err == nil {
			var resp models.SubmitForecastResponse
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				return nil, fmt.Errorf("decode submit response: %w", err)
			}
			return &resp, nil
		}
		if !xhttp.IsTransient(err) {
			return nil, fmt.Errorf("submit: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("submit failed after %d attempts: %w", c.submitAttempts, lastErr)
}

// Status fetches the current job record for a request id.
func (c *Client) Status(ctx context.Context, requestID string) (*models.JobStatusResponse, error) {
	var env envelope
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/status/" + requestID,
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", requestID, err)
	}
	var resp models.JobStatusResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &resp, nil
}
