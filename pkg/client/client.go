// Package client provides the batch dashboard HTTP client with structured
// error handling and conditional GET support.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batchdash_requests_total",
		Help: "Total backend requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "batchdash_request_duration_seconds",
		Help:    "Backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batchdash_errors_total",
		Help: "Total backend errors by kind",
	}, []string{"kind"})
)

// Client is the backend HTTP client.
type Client struct {
	httpClient *http.Client
	validators *cache.Store
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8080"
	BaseURL string

	// User-Agent header sent with every request
	UserAgent string

	// Timeout bounds a single request including reading the body
	Timeout time.Duration

	// ValidatorCacheSize is the number of ETag-validated bodies kept for
	// conditional requests. 0 disables conditional requests.
	ValidatorCacheSize int

	// Header is added to every request (e.g. a session cookie)
	Header http.Header
}

// DefaultConfig returns a default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:            baseURL,
		UserAgent:          "batch-dashboard/0.1.0",
		Timeout:            30 * time.Second,
		ValidatorCacheSize: cache.DefaultSize,
	}
}

// Response is a successful backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// NotModified is true when the body was answered from the validator cache
	// after a 304.
	NotModified bool
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https (got %q)", u.Scheme)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	logger := log.With().Str("component", "batch-client").Logger()

	var validators *cache.Store
	if cfg.ValidatorCacheSize > 0 {
		validators, err = cache.NewStore("validators", cfg.ValidatorCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create validator cache: %w", err)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		validators: validators,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     logger,
	}, nil
}

// Do performs an HTTP request and maps the outcome onto Response or *Error.
// Requests are never retried.
func (c *Client) Do(req *http.Request) (*Response, error) {
	endpoint := req.URL.Path

	// Start request timing
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check validator cache for conditional GET
	validatorKey := req.URL.String()
	var validator *cache.Entry
	if c.validators != nil && req.Method == http.MethodGet {
		if entry, err := c.validators.Get(validatorKey); err == nil && cache.ShouldMakeConditionalRequest(entry) {
			validator = entry
			cache.AddConditionalHeaders(req, entry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", entry.ETag).
				Msg("Making conditional request")
		}
	}

	// Step 2: Set headers
	for key, values := range c.config.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing backend request")

	// Step 3: Execute
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, c.fail(newTransportError(0, "request failed", err))
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotModified && validator != nil:
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		cache.NotModifiedResponses.Inc()
		return &Response{
			StatusCode:  http.StatusOK,
			Header:      resp.Header,
			Body:        validator.Body,
			NotModified: true,
		}, nil

	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn().Str("endpoint", endpoint).Msg("Backend requires authentication")
		return nil, c.fail(newAuthError())

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, c.fail(c.errorFromResponse(resp))
	}

	// Step 4: Success, remember validator
	entry, err := cache.ResponseToEntry(resp, time.Now())
	if err != nil {
		return nil, c.fail(newTransportError(resp.StatusCode, "read response body", err))
	}
	if c.validators != nil && req.Method == http.MethodGet && entry.ETag != "" {
		if err := c.validators.Set(validatorKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache validator")
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       entry.Body,
	}, nil
}

// errorFromResponse builds the error for a non-2xx, non-401 response.
func (c *Client) errorFromResponse(resp *http.Response) *Error {
	statusText := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if statusText == "" {
		statusText = http.StatusText(resp.StatusCode)
	}
	generic := fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, statusText)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(resp.StatusCode, generic, err)
	}

	var apiErr batch.APIError
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&apiErr); err != nil {
		return newTransportError(resp.StatusCode, generic, nil)
	}
	if apiErr.Message == "" && apiErr.Reason == "" {
		return newTransportError(resp.StatusCode, generic, nil)
	}
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}
	return newAPIError(resp.StatusCode, &apiErr)
}

func (c *Client) fail(e *Error) *Error {
	errorsTotal.WithLabelValues(string(e.Kind)).Inc()
	c.logger.Debug().
		Str("kind", string(e.Kind)).
		Int("status", e.StatusCode).
		Msg("Error classified")
	return e
}

// Get performs a GET request. path is resolved against the base URL and may
// carry a query string.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON performs a GET request and decodes the JSON body into T.
func GetJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T

	resp, err := c.Get(ctx, path)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, c.fail(newTransportError(resp.StatusCode, "decode response", err))
	}
	return out, nil
}

// Close releases the validator cache.
func (c *Client) Close() error {
	if c.validators != nil {
		c.validators.Purge()
	}
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
