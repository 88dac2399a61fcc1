package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to one Matrix server.
type Client struct {
	baseURL     string
	http        *http.Client
	rateLimiter *RateLimiter
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base      *http.Client
	timeout   time.Duration
	rateLimit RateLimitConfig
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// to add the bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.base = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithRateLimit sets the client-side rate limit.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(o *clientOptions) { o.rateLimit = cfg }
}

// NewClient creates a client for the server at baseURL. An empty token
// sends unauthenticated requests.
func NewClient(baseURL, token string, opts ...Option) *Client {
	o := clientOptions{
		base:      http.DefaultClient,
		timeout:   DefaultTimeout,
		rateLimit: DefaultRateLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{
		Transport: o.base.Transport,
		Timeout:   o.timeout,
	}
	if token != "" {
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   o.base.Transport,
		}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        hc,
		rateLimiter: NewRateLimiter(o.rateLimit),
	}
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes the JSON response into out.
// body and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrNoServer
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("%s %s", method, req.URL.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.decodeError(resp)
		if apiErr.RetryAfter > 0 {
			c.rateLimiter.Backoff(apiErr.RetryAfter)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", domain.ErrTransport, path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.Redacted(),
	}

	var payload struct {
		ErrCode      string `json:"errcode"`
		Error        string `json:"error"`
		RetryAfterMS int64  `json:"retry_after_ms"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &payload) == nil {
		apiErr.ErrCode = payload.ErrCode
		apiErr.Message = payload.Error
		apiErr.RetryAfter = time.Duration(payload.RetryAfterMS) * time.Millisecond
	}
	return apiErr
}
