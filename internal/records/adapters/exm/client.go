// Package exm reads the ANS registry balances snapshot from an EXM read
// gateway.
package exm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"ansdns/internal/records/metrics"
	"ansdns/internal/records/models"
)

// DefaultBaseURL is the public EXM read gateway.
const DefaultBaseURL = "https://api.exm.dev/read"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 32 << 20
)

var tracer = otel.Tracer("ansdns/internal/records/adapters/exm")

// Client calls GET {baseURL}/{ans_contract} and decodes {"balances": [...]}.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMetrics records fetch latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New constructs a balances client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	Balances *[]models.Balance `json:"balances"`
}

// Balances fetches the current holder list of the ANS registry at
// ansContract.
func (c *Client) Balances(ctx context.Context, ansContract string) (balances []models.Balance, err error) {
	ctx, span := tracer.Start(ctx, "exm.Balances", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	start := time.Now()
	defer func() {
		c.metrics.ObserveFetch("exm", err, start)
		if err != nil {
			span.RecordError(err)
		}
	}()

	endpoint := c.baseURL + "/" + url.PathEscape(ansContract)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build exm request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read exm response: %w", err)
	}
	return parseResponse(resp.StatusCode, body)
}

func parseResponse(status int, body []byte) ([]models.Balance, error) {
	if status != http.StatusOK {
		return nil, fmt.Errorf("exm returned HTTP %d", status)
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode exm response: %w", err)
	}
	if r.Balances == nil {
		return nil, fmt.Errorf("exm response has no balances")
	}
	return *r.Balances, nil
}
