// Package client provides the HTTP transport for the document database with
// throttle tracking, retries and request metrics.
//
// Client implements the single round-trip capability the listing engine in
// package cosmos consumes. Retries of one request live here and only here;
// callers above never replay a request themselves.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/ratelimit"
	"github.com/Sternrassler/docdb-client/pkg/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	docdbRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdb_requests_total",
		Help: "Total document database requests by method, status and resource type",
	}, []string{"method", "status", "resource"})

	docdbRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docdb_request_duration_seconds",
		Help:    "Document database request duration in seconds by method",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	docdbErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdb_errors_total",
		Help: "Total document database errors by class",
	}, []string{"class"})
)

// DefaultAPIVersion is sent as x-ms-version when Config.APIVersion is empty.
const DefaultAPIVersion = "2018-12-31"

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors and 408 timeouts.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassThrottled represents 429 throttling.
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the document database HTTP transport.
type Client struct {
	httpClient *http.Client
	throttle   *ratelimit.Tracker
	endpoint   *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the account endpoint, e.g. "https://acme.documents.example.net".
	Endpoint string

	// Account names the throttle scope. Defaults to the first label of the
	// endpoint host.
	Account string

	// Redis shares throttle state between processes (optional).
	Redis *redis.Client

	// UserAgent header (REQUIRED)
	UserAgent string

	// APIVersion is sent as x-ms-version.
	APIVersion string

	// Timeout bounds one HTTP round trip.
	Timeout time.Duration

	// Retry
	MaxAttempts    int // including the initial request
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(endpoint, userAgent string) Config {
	return Config{
		Endpoint:       endpoint,
		UserAgent:      userAgent,
		APIVersion:     DefaultAPIVersion,
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// New creates a new transport client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme must be http or https (got %q)", endpoint.Scheme)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("endpoint host is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.MaxAttempts)
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Account == "" {
		cfg.Account = accountFromHost(endpoint.Hostname())
	}

	logger := log.With().Str("component", "docdb-transport").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		throttle: ratelimit.NewTracker(cfg.Redis, cfg.Account, logger),
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Do performs an HTTP request with throttle gating, retries and metrics.
// Responses with non-retryable error statuses are returned to the caller
// without an error; the caller decides how to surface them.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	method := req.Method
	rt := resource.Label(ctx)
	logger := c.logger.With().Str("resource", rt).Logger()

	startTime := time.Now()
	defer func() {
		docdbRequestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Wait out an open throttle window
	if err := c.throttle.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr)
		}
		// Throttle state is advisory; the server throttles again if needed.
		logger.Warn().Err(fmt.Errorf("throttle state: %w", err)).Msg("Throttle gate unavailable, sending request")
	}

	// Step 2: Stamp protocol headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headers.Version, c.config.APIVersion)

	logger.Debug().
		Str("path", req.URL.Path).
		Str("method", method).
		Msg("Executing request")

	// Step 3: Execute with retry
	var resp *http.Response
	retryErr := retryWithBackoff(ctx, c.retryConfig(), func(attempt int) (ErrorClass, error) {
		if attempt > 1 {
			if err := rewindBody(req); err != nil {
				return "", err
			}
		}
		req.Header.Set(headers.Date, time.Now().UTC().Format(http.TimeFormat))

		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			logger.Error().Err(reqErr).Str("path", req.URL.Path).Msg("HTTP request failed")
			class := c.classifyError(nil, reqErr)
			docdbErrorsTotal.WithLabelValues(string(class)).Inc()
			docdbRequestsTotal.WithLabelValues(method, "network_error", rt).Inc()
			return class, reqErr
		}

		if err := c.throttle.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
			logger.Warn().Err(err).Msg("Failed to record throttle state")
		}

		docdbRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode), rt).Inc()

		if resp.StatusCode < 400 {
			return "", nil
		}

		class := c.classifyError(resp, nil)
		docdbErrorsTotal.WithLabelValues(string(class)).Inc()

		logger.Warn().
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Str("activity_id", resp.Header.Get(headers.ActivityID)).
			Msg("Request error")

		if !shouldRetry(class) {
			return class, nil
		}

		retryAfter, _ := headers.RetryAfterFromHeaders(resp.Header)
		resp.Body.Close()
		return class, &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    http.StatusText(resp.StatusCode),
			ActivityID: resp.Header.Get(headers.ActivityID),
			RetryAfter: retryAfter,
		}
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassThrottled
	case resp.StatusCode == http.StatusRequestTimeout:
		return ErrorClassServer
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

func (c *Client) retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       c.config.MaxAttempts,
		InitialBackoff:    c.config.InitialBackoff,
		MaxBackoff:        c.config.MaxBackoff,
		BackoffMultiplier: 2.0,
	}
}

// Endpoint returns the parsed account endpoint.
func (c *Client) Endpoint() *url.URL {
	u := *c.endpoint
	return &u
}

// Account returns the account name used to scope throttling and sessions.
func (c *Client) Account() string {
	return c.config.Account
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func rewindBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

func accountFromHost(host string) string {
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}
