package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/extgraph/pkg/buildinfo"
	"github.com/matzehuels/extgraph/pkg/cache"
	"github.com/matzehuels/extgraph/pkg/errors"
)

// Defaults for NewClient.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultTimeout  = 30 * time.Second

	// maxBody bounds a fetched document.
	maxBody = 64 << 20
)

// Client performs cached GET requests with retry.
type Client struct {
	HTTP     *http.Client
	Header   http.Header
	Cache    cache.Cache // nil disables caching
	TTL      time.Duration
	Attempts int
	Delay    time.Duration
}

// NewClient creates a client caching responses in c for ttl.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "extgraph/"+buildinfo.Get().Version)
	return &Client{
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Header:   h,
		Cache:    c,
		TTL:      ttl,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Get fetches url. A cached body is returned when present.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	key := "http:" + cache.Hash([]byte(url))
	if c.Cache != nil {
		if body, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
			return body, nil
		}
	}

	var body []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		body, err = c.fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		_ = c.Cache.Set(ctx, key, body, c.TTL)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "get %s: %s", url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %s", url, resp.Status)}
	case resp.StatusCode >= 400:
		return nil, errors.New(errors.ErrCodeInvalidInput, "get %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	return body, nil
}
