// Package molecule resolves Arweave public keys to account addresses through
// a molecule "ota" endpoint.
package molecule

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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ansdns/internal/records/metrics"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes bounds the resolver response; a valid one is a few dozen bytes.
const maxBodyBytes = 64 << 10

var tracer = otel.Tracer("ansdns/internal/records/adapters/molecule")

// Client calls GET {base}/{jwk_n} and expects {"address": "..."}.
type Client struct {
	http    *http.Client
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithMetrics records lookup latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// New constructs a resolver client.
func New(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	Address *string `json:"address"`
}

// ResolveAddress fetches the address for jwkN from the molecule rooted at
// base. The returned address is not syntax-checked here.
func (c *Client) ResolveAddress(ctx context.Context, base, jwkN string) (address string, err error) {
	ctx, span := tracer.Start(ctx, "molecule.ResolveAddress", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	start := time.Now()
	defer func() {
		c.metrics.ObserveFetch("molecule", err, start)
		if err != nil {
			span.RecordError(err)
		}
	}()

	endpoint := strings.TrimRight(base, "/") + "/" + url.PathEscape(jwkN)
	span.SetAttributes(attribute.String("molecule.base", base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build molecule request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("molecule request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read molecule response: %w", err)
	}
	return parseResponse(resp.StatusCode, body)
}

func parseResponse(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", fmt.Errorf("molecule returned HTTP %d", status)
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode molecule response: %w", err)
	}
	if r.Address == nil {
		return "", fmt.Errorf("molecule response has no address")
	}
	return *r.Address, nil
}
