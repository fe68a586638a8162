package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// Client is an HTTP client wrapper with retry, rate limiting and
// logging. All outbound HTTP requests go through this client.
type Client struct {
	rc      *resty.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// New creates an HTTP client from config. The resty instance is
// created here and nowhere else.
func New(cfg *config.Config, log *logger.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.Provider.RequestTimeout).
		SetHeader("User-Agent", cfg.Provider.UserAgent).
		SetRetryCount(cfg.Provider.MaxRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	rc.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return IsRetryableError(resp.StatusCode())
	})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.WithFields(map[string]interface{}{
			"method":      resp.Request.Method,
			"url":         resp.Request.URL,
			"status_code": resp.StatusCode(),
			"duration":    resp.Time(),
		}).Debug("HTTP request completed")
		return nil
	})

	return &Client{
		rc:      rc,
		limiter: newLimiter(cfg.Provider.RatePerSecond, cfg.Provider.RateBurst),
		logger:  log,
	}
}

// NewWithTimeout creates a client with a custom timeout.
func NewWithTimeout(cfg *config.Config, log *logger.Logger, timeout time.Duration) *Client {
	client := New(cfg, log)
	client.rc.SetTimeout(timeout)
	return client
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// WithRetry configures retry behavior.
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.rc.SetRetryCount(maxRetries)
	c.rc.SetRetryWaitTime(initialDelay)
	return c
}

// DisableRetry disables automatic retry.
func (c *Client) DisableRetry() *Client {
	c.rc.SetRetryCount(0)
	return c
}

// Get performs a GET request. A non-2xx status is not an error here;
// callers decide what statuses mean.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	return resp, nil
}

// GetJSON performs a GET request and decodes a JSON response body.
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), url)
	}

	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}

	return nil
}

// Resty returns the underlying resty client for advanced usage.
func (c *Client) Resty() *resty.Client {
	return c.rc
}

// IsRetryableError checks if a status code should be retried.
func IsRetryableError(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == 429
}
