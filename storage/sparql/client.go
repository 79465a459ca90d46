// Package sparql implements the staging store over the SPARQL 1.1 Protocol.
//
// Queries are packaged templates addressed by name and bound with named
// parameters; updates are rendered from diffs as DELETE DATA and INSERT
// DATA in a single request. Transient failures (network errors, 5xx and
// 429 responses) are retried with backoff; other 4xx responses are not.
// Both kinds surface as store failures once retries are exhausted.
package sparql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/pkg/retry"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	acceptNTriples  = "application/n-triples"

	// maxErrorBody bounds how much of an error response is quoted.
	maxErrorBody = 512
)

// Config holds the store endpoints and transport policy.
type Config struct {
	QueryEndpoint  string
	UpdateEndpoint string
	Username       string
	Password       string
	Timeout        time.Duration
	RateLimit      float64 // requests per second, 0 is unlimited
	Burst          int
	Retry          retry.Config
}

// Validate checks the configuration.
func (c Config) Validate() error {
	for name, endpoint := range map[string]string{"query_endpoint": c.QueryEndpoint, "update_endpoint": c.UpdateEndpoint} {
		if endpoint == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", name+" is required")
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", "invalid "+name)
		}
	}
	if c.RateLimit < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "rate_limit cannot be negative")
	}
	return nil
}

// Client is a storage.Store backed by a SPARQL endpoint.
type Client struct {
	config     Config
	templates  fs.FS
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metric.Metrics
	logger     *slog.Logger

	mu     sync.RWMutex
	parsed map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a client reading query templates from templates.
func NewClient(config Config, templates fs.FS, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if templates == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Client", "NewClient", "templates are required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		config:     config,
		templates:  templates,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
		parsed:     make(map[string]string),
	}
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "sparql")
	return c, nil
}

// Construct runs the named construct template and decodes the N-Triples
// response.
func (c *Client) Construct(ctx context.Context, q storage.Query) (*graph.Graph, error) {
	text, err := c.template(q.Name)
	if err != nil {
		return nil, err
	}
	query, err := Bind(text, q.Params)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, "construct", c.config.QueryEndpoint, "query", query)
	if err != nil {
		return nil, err
	}
	g, err := graph.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrStoreRejected, err), "Client", "Construct", "decode response")
	}
	c.logger.Debug("Construct completed", "query", q.String(), "triples", g.Len())
	return g, nil
}

// Update submits diff as one update request. An empty diff sends nothing.
func (c *Client) Update(ctx context.Context, diff *graph.Diff) error {
	if diff.IsEmpty() {
		return nil
	}
	text, err := UpdateText(diff)
	if err != nil {
		return err
	}
	_, err = c.post(ctx, "update", c.config.UpdateEndpoint, "update", text)
	return err
}

func (c *Client) template(name string) (string, error) {
	c.mu.RLock()
	text, ok := c.parsed[name]
	c.mu.RUnlock()
	if ok {
		return text, nil
	}

	data, err := fs.ReadFile(c.templates, name)
	if err != nil {
		return "", errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrTemplateNotFound, name), "Client", "template", "load template")
	}

	c.mu.Lock()
	c.parsed[name] = string(data)
	c.mu.Unlock()
	return string(data), nil
}

func (c *Client) post(ctx context.Context, operation, endpoint, field, text string) ([]byte, error) {
	start := time.Now()

	policy := c.config.Retry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("Store request failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"delay", delay,
			"error", err)
	}

	body, err := retry.DoWithResult(ctx, policy, func() ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, retry.NonRetryable(errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrRateLimited, err), "Client", "post", "wait for rate limiter"))
			}
		}
		return c.send(ctx, endpoint, field, text)
	})
	c.metrics.RecordStoreRequest(operation, err, time.Since(start))
	return body, err
}

func (c *Client) send(ctx context.Context, endpoint, field, text string) ([]byte, error) {
	form := url.Values{field: {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, retry.NonRetryable(errors.WrapInvalid(err, "Client", "send", "create request"))
	}
	req.Header.Set("Content-Type", contentTypeForm)
	if field == "query" {
		req.Header.Set("Accept", acceptNTriples)
	}
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err), "Client", "send", "send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err), "Client", "send", "read response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: HTTP %d: %s", errors.ErrStoreUnavailable, resp.StatusCode, snippet(body)),
			"Client", "send", "check response")
	default:
		return nil, retry.NonRetryable(errors.WrapInvalid(
			fmt.Errorf("%w: HTTP %d: %s", errors.ErrStoreRejected, resp.StatusCode, snippet(body)),
			"Client", "send", "check response"))
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
