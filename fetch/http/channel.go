package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/time/rate"
)

// MaxBodySize bounds the number of bytes read from a third party response.
var MaxBodySize int64 = 1 << 20

// Option is an option configuring a HTTP channel.
type Option func(cfg *chanConfig)

type chanConfig struct {
	client   *http.Client
	headers  http.Header
	statuses []int
	limiter  *rate.Limiter
}

// WithClient configures the HTTP client the channel should use to make
// requests.
func WithClient(c *http.Client) Option {
	return func(cfg *chanConfig) {
		cfg.client = c
	}
}

// WithHeader adds a header sent with every request, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(cfg *chanConfig) {
		cfg.headers.Add(key, value)
	}
}

// WithSuccessStatusCode configures the HTTP status code(s) that will indicate a
// successful request.
func WithSuccessStatusCode(codes ...int) Option {
	return func(cfg *chanConfig) {
		cfg.statuses = codes
	}
}

// WithLimiter makes every request wait on the limiter first. The wait is
// bounded by the request context.
func WithLimiter(l *rate.Limiter) Option {
	return func(cfg *chanConfig) {
		cfg.limiter = l
	}
}

// Channel performs single GET requests against third party services.
type Channel struct {
	client   *http.Client
	headers  http.Header
	statuses []int
	limiter  *rate.Limiter
}

// Get fetches the body at url. Non success statuses are returned as an
// [HTTPError].
func (c *Channel) Get(ctx context.Context, url string) ([]byte, error) {
	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	return c.do(ctx, hr)
}

// PostJSON sends v as a JSON body to url and returns the response body.
func (c *Channel) PostJSON(ctx context.Context, url string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON request: %w", err)
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	return c.do(ctx, hr, "Content-Type", "application/json")
}

func (c *Channel) do(ctx context.Context, hr *http.Request, headers ...string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	hr.Header = c.headers.Clone()
	for i := 0; i+1 < len(headers); i += 2 {
		hr.Header.Set(headers[i], headers[i+1])
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(hr.Header))

	res, err := c.client.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("doing HTTP request: %w", err)
	}
	defer res.Body.Close()

	if !slices.Contains(c.statuses, res.StatusCode) {
		return nil, NewHTTPError(fmt.Sprintf("HTTP Request failed. %s %s → %d", hr.Method, hr.URL, res.StatusCode), res.StatusCode, res.Header)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading HTTP response: %w", err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Channel) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding JSON response from %s: %w", url, err)
	}
	return nil
}

func NewChannel(options ...Option) *Channel {
	cfg := chanConfig{headers: http.Header{}}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{}
	}
	if len(cfg.statuses) == 0 {
		cfg.statuses = append(cfg.statuses, http.StatusOK)
	}
	return &Channel{
		client:   cfg.client,
		headers:  cfg.headers,
		statuses: cfg.statuses,
		limiter:  cfg.limiter,
	}
}
