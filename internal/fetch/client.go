package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"guidepress/internal/cache"
	"guidepress/internal/config"
	"guidepress/internal/logging"
	"guidepress/internal/services"
)

// maxBodySize caps a single downloaded resource at 64 MB.
const maxBodySize int64 = 64 * 1024 * 1024

// Cache is the subset of the cache store API the client consults.
// *cache.Store satisfies it; tests substitute fakes.
type Cache interface {
	Get(ctx context.Context, url string, maxAge time.Duration) (*cache.Entry, bool, error)
	Put(ctx context.Context, url, contentType string, body []byte) error
}

// Result is a fetched resource.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	FromCache   bool
}

// Client fetches guide resources politely.
type Client struct {
	httpClient    *http.Client
	userAgent     string
	pageTimeout   time.Duration
	imageTimeout  time.Duration
	requestDelay  time.Duration
	retryAttempts int
	retryDelay    time.Duration
	cache         Cache
	cacheMaxAge   time.Duration
	logger        *slog.Logger

	lastRequest time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache attaches a fetch cache consulted before the network.
func WithCache(store Cache, maxAge time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheMaxAge = maxAge
	}
}

// NewClient creates a fetch client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		httpClient:    &http.Client{},
		userAgent:     cfg.Fetch.UserAgent,
		pageTimeout:   time.Duration(cfg.Fetch.PageTimeout) * time.Second,
		imageTimeout:  time.Duration(cfg.Fetch.ImageTimeout) * time.Second,
		requestDelay:  time.Duration(cfg.Fetch.RequestDelayMS) * time.Millisecond,
		retryAttempts: cfg.Fetch.RetryAttempts,
		retryDelay:    time.Duration(cfg.Fetch.RetryDelayMS) * time.Millisecond,
		logger:        logging.NewComponentLogger(logger, "fetch"),
	}
	if client.retryAttempts < 1 {
		client.retryAttempts = 1
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Page fetches a guide page, honouring the inter-request delay.
func (c *Client) Page(ctx context.Context, url string) (*Result, error) {
	return c.fetch(ctx, url, c.pageTimeout)
}

// Image fetches an image resource with the shorter image timeout.
func (c *Client) Image(ctx context.Context, url string) (*Result, error) {
	return c.fetch(ctx, url, c.imageTimeout)
}

func (c *Client) fetch(ctx context.Context, url string, timeout time.Duration) (*Result, error) {
	if c.cache != nil {
		entry, ok, err := c.cache.Get(ctx, url, c.cacheMaxAge)
		if err != nil {
			c.logger.Warn("cache read failed", logging.String("url", url), logging.Error(err))
		} else if ok {
			c.logger.Debug("cache hit", logging.String("url", url))
			return &Result{URL: url, Body: entry.Body, ContentType: entry.ContentType, FromCache: true}, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying request",
				logging.String("url", url),
				logging.Int("attempt", attempt))
			if err := sleepContext(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
		if err := c.waitPoliteDelay(ctx); err != nil {
			return nil, err
		}

		result, err := c.doRequest(ctx, url, timeout)
		if err == nil {
			if c.cache != nil {
				if putErr := c.cache.Put(ctx, url, result.ContentType, result.Body); putErr != nil {
					c.logger.Warn("cache write failed", logging.String("url", url), logging.Error(putErr))
				}
			}
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, services.Wrap(services.ErrFetch, "fetching", "get", url, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string, timeout time.Duration) (*Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.lastRequest = time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		URL:         url,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// waitPoliteDelay sleeps until the configured gap since the previous network
// request has elapsed. Cache hits do not count as requests.
func (c *Client) waitPoliteDelay(ctx context.Context) error {
	if c.requestDelay <= 0 || c.lastRequest.IsZero() {
		return nil
	}
	remaining := c.requestDelay - time.Since(c.lastRequest)
	if remaining <= 0 {
		return nil
	}
	return sleepContext(ctx, remaining)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
