// Package base holds the HTTP plumbing used to reach the Trello REST API: a
// client that caps concurrency and trips a circuit breaker on server errors,
// and a Transport that adapts it to endpoint invocations.
package base

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/olgasafonova/trello-mcp-server/internal/infra"
	"github.com/olgasafonova/trello-mcp-server/metrics"
)

const (
	DefaultTimeout        = 30 * time.Second
	MaxConcurrentRequests = 5
	MaxResponseSize       = 10 << 20 // bytes read from one response
	DefaultUserAgent      = "trello-mcp-server/1.0"
)

// Client sends each request exactly once. Callers see every HTTP status;
// only transport failures and 5xx responses count against the breaker.
type Client struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	CircuitBreaker *infra.CircuitBreaker

	maxConcurrent int64
	slots         *semaphore.Weighted
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) { client.HTTPClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) { client.Logger = l }
}

// WithTimeout sets the whole-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.HTTPClient = newHTTPClient(d)
		}
	}
}

// WithMaxConcurrent caps requests in flight. Non-positive values are ignored.
func WithMaxConcurrent(n int) ClientOption {
	return func(client *Client) {
		if n > 0 {
			client.maxConcurrent = int64(n)
		}
	}
}

// WithCircuitBreaker replaces the default breaker.
func WithCircuitBreaker(cb *infra.CircuitBreaker) ClientOption {
	return func(client *Client) { client.CircuitBreaker = cb }
}

// NewClient creates a client. State changes of its breaker are logged and
// exported as a gauge.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient:     newHTTPClient(DefaultTimeout),
		Logger:         slog.Default(),
		CircuitBreaker: infra.NewCircuitBreaker(),
		maxConcurrent:  MaxConcurrentRequests,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.slots = semaphore.NewWeighted(c.maxConcurrent)

	c.CircuitBreaker.OnStateChange(func(from, to infra.CircuitState) {
		metrics.SetCircuitBreakerState(int(to))
		c.Logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
	})
	return c
}

// MaxConcurrent reports the in-flight request cap.
func (c *Client) MaxConcurrent() int {
	return int(c.maxConcurrent)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.HTTPClient.CloseIdleConnections()
}

// CircuitBreakerStats returns the current circuit breaker state
func (c *Client) CircuitBreakerStats() infra.CircuitBreakerStats {
	return c.CircuitBreaker.Stats()
}

// acquire takes a request slot, counting the wait when none is free.
func (c *Client) acquire(ctx context.Context) error {
	if c.slots.TryAcquire(1) {
		return nil
	}
	metrics.RateLimitWaits.Inc()
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a request slot: %w", err)
	}
	return nil
}

func (c *Client) release() {
	c.slots.Release(1)
}

// RequestConfig describes one outbound request.
type RequestConfig struct {
	Method    string // GET when empty
	URL       string
	Body      []byte // sent as application/json when non-nil
	UserAgent string // DefaultUserAgent when empty
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DoRequest sends cfg once. Non-2xx responses are returned, not turned into
// errors. Errors never include the query string, which carries credentials.
// A request abandoned by its own caller does not count against the breaker.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) (*Response, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	if !c.CircuitBreaker.Allow() {
		stats := c.CircuitBreaker.Stats()
		return nil, &infra.ErrCircuitOpen{
			State:    stats.State,
			RetryAt:  stats.RetryAt,
			Failures: stats.ConsecutiveFails,
		}
	}

	req, err := newRequest(ctx, cfg)
	if err != nil {
		c.CircuitBreaker.Release()
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return nil, fmt.Errorf("request failed: %w", redactURLError(err))
	}

	data, err := readAndClose(resp)
	if err != nil {
		c.recordFailure(ctx)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.CircuitBreaker.RecordFailure()
		c.Logger.Warn("Trello server error",
			"method", req.Method,
			"status", resp.StatusCode,
			"body", truncate(string(data), 200))
	} else {
		c.CircuitBreaker.RecordSuccess()
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// recordFailure charges a transport failure to the breaker unless the
// caller's context ended first.
func (c *Client) recordFailure(ctx context.Context) {
	if ctx.Err() != nil {
		c.CircuitBreaker.Release()
		return
	}
	c.CircuitBreaker.RecordFailure()
}

func newRequest(ctx context.Context, cfg RequestConfig) (*http.Request, error) {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if cfg.Body != nil {
		body = bytes.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", redactURLError(err))
	}

	req.Header.Set("Accept", "application/json")
	if cfg.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	return req, nil
}

// readAndClose reads at most MaxResponseSize bytes and closes the body
func readAndClose(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return body, nil
}

// redactURLError strips the query string from a *url.Error.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		} else {
			urlErr.URL = "<redacted>"
		}
	}
	return err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			MaxConnsPerHost:       50,
			IdleConnTimeout:       120 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}
