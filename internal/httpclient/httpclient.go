// Package httpclient posts JSON to HTTP endpoints with optional bearer auth
// and retries on rate limiting and server errors.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	maxRetries     = 3
	maxErrBody     = 512
	defaultTimeout = 10 * time.Second
	defaultBackoff = time.Second
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sends "Authorization: Bearer <token>" with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHeaders adds fixed headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// WithBackoff sets the first retry delay; later retries double it. A
// Retry-After header on a 429 overrides it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// Client sends JSON requests to one URL.
type Client struct {
	url     string
	token   string
	headers map[string]string
	backoff time.Duration
	http    *http.Client
}

// New returns a Client for url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:     url,
		backoff: defaultBackoff,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON marshals payload and POSTs it. A 429 or 5xx is retried up to
// three times; any other non-2xx response is returned at once as *APIError.
// Waiting between attempts stops when ctx is done.
func (c *Client) PostJSON(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	var lastErr *APIError
	for attempt := range maxRetries + 1 {
		if attempt > 0 {
			t := time.NewTimer(c.delay(attempt, lastErr))
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%w (last: %w)", ctx.Err(), lastErr)
			case <-t.C:
			}
		}

		apiErr, err := c.do(ctx, body)
		if err != nil {
			return err
		}
		if apiErr == nil {
			return nil
		}
		if !apiErr.Temporary() {
			return apiErr
		}
		lastErr = apiErr
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (*APIError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil, nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			apiErr.retryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr, nil
}

func (c *Client) delay(attempt int, last *APIError) time.Duration {
	if last != nil && last.retryAfter > 0 {
		return last.retryAfter
	}
	return c.backoff << (attempt - 1)
}
