// Package client provides the HTTP client for the positionstack geocoding API
// with explicit timeouts, response decoding and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Sternrassler/geocode-cache/pkg/geocode"
)

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocache_upstream_requests_total",
		Help: "Total upstream geocoding requests by operation and status",
	}, []string{"operation", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocache_upstream_request_duration_seconds",
		Help:    "Upstream geocoding request duration in seconds by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocache_upstream_errors_total",
		Help: "Total classified upstream errors by kind",
	}, []string{"kind"})
)

// Upstream operations, also the endpoint path segments.
const (
	OpForward = "forward"
	OpReverse = "reverse"
)

// DefaultBaseURL is the positionstack v1 API root.
const DefaultBaseURL = "http://api.positionstack.com/v1"

// maxBodySize caps how much of an upstream body is read.
const maxBodySize = 4 << 20

// Client calls the upstream geocoding API.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*upstreamResponse]
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root; "/forward" and "/reverse" are appended.
	BaseURL string

	// AccessKey is the positionstack access_key credential (REQUIRED).
	AccessKey string

	// Timeout bounds each upstream call, including reading the body.
	Timeout time.Duration

	// UserAgent header sent upstream.
	UserAgent string

	// Breaker is the optional circuit breaker.
	Breaker BreakerConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(accessKey string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		AccessKey: accessKey,
		Timeout:   10 * time.Second,
		UserAgent: "geocode-cache/0.1.0",
		Breaker:   DefaultBreakerConfig(),
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.AccessKey == "" {
		return nil, fmt.Errorf("access key is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	logger := log.With().Str("component", "upstream").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, logger)
	}
	return c, nil
}

// Forward resolves an address to the coordinates of the first result.
func (c *Client) Forward(ctx context.Context, address string) (geocode.Coordinates, error) {
	results, err := c.lookup(ctx, OpForward, address, "Error fetching data for address: "+address)
	if err != nil {
		return geocode.Coordinates{}, err
	}

	if len(results) == 0 {
		c.logger.Warn().Str("address", address).Msg("No geocoding data found for address")
		return geocode.Coordinates{}, c.fail(OpForward, geocode.NewError(geocode.KindInvalidInput, MsgInvalidAddress))
	}

	first := results[0]
	if first.Latitude == nil || first.Longitude == nil {
		return geocode.Coordinates{}, c.fail(OpForward, malformedError(http.StatusOK, errors.New("result without latitude/longitude")))
	}

	return geocode.Coordinates{Latitude: *first.Latitude, Longitude: *first.Longitude}, nil
}

// Reverse resolves a "{lat},{lon}" query to the label of the first result.
func (c *Client) Reverse(ctx context.Context, query string) (string, error) {
	results, err := c.lookup(ctx, OpReverse, query, "Error fetching data for coordinates: "+query)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		c.logger.Warn().Str("query", query).Msg("No reverse geocoding data found for coordinates")
		return "", c.fail(OpReverse, geocode.NewError(geocode.KindInvalidInput, MsgInvalidCoordinate))
	}

	first := results[0]
	if first.Label == nil {
		return "", c.fail(OpReverse, malformedError(http.StatusOK, errors.New("result without label")))
	}

	return *first.Label, nil
}

// lookup performs a GET against one endpoint and decodes the result list.
func (c *Client) lookup(ctx context.Context, op, query, unreachableMsg string) ([]result, error) {
	start := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	req, err := c.newRequest(ctx, op, query)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug().
		Str("operation", op).
		Str("query", query).
		Msg("Executing upstream request")

	resp, err := c.do(func() (*upstreamResponse, error) {
		return c.roundTrip(req)
	})
	if err != nil {
		status := "network_error"
		if errors.Is(err, errCircuitOpen) {
			status = "circuit_open"
		}
		upstreamRequestsTotal.WithLabelValues(op, status).Inc()
		c.logger.Error().Err(err).Str("operation", op).Str("query", query).Msg("Upstream request failed")
		return nil, c.fail(op, transportError(unreachableMsg, err))
	}

	upstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.status)).Inc()
	c.logger.Debug().Str("operation", op).Int("status", resp.status).Msg("Upstream response received")

	if !is2xx(resp.status) {
		c.logger.Warn().
			Str("operation", op).
			Str("query", query).
			Int("status", resp.status).
			Bytes("body", truncate(resp.body, 512)).
			Msg("Upstream error response")
		return nil, c.fail(op, classifyStatus(resp.status))
	}

	results, err := decodeResults(resp.body)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", op).Str("query", query).Msg("Error parsing upstream response")
		return nil, c.fail(op, malformedError(resp.status, err))
	}
	return results, nil
}

func (c *Client) newRequest(ctx context.Context, op, query string) (*http.Request, error) {
	params := url.Values{}
	params.Set("access_key", c.config.AccessKey)
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/"+op+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	return req, nil
}

// upstreamResponse is a fully read upstream response.
type upstreamResponse struct {
	status int
	body   []byte
}

func (c *Client) roundTrip(req *http.Request) (*upstreamResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &upstreamResponse{status: resp.StatusCode, body: body}, nil
}

// fail records a classified error and returns it.
func (c *Client) fail(op string, err *geocode.Error) error {
	upstreamErrorsTotal.WithLabelValues(string(err.Kind)).Inc()
	c.logger.Debug().
		Str("operation", op).
		Str("kind", string(err.Kind)).
		Int("status", err.StatusCode).
		Msg("Error classified")
	return err
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// result is one entry of the upstream "data" array.
type result struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Label     *string  `json:"label"`
}

// decodeResults parses {"data": [ {...}, ... ]}.
// A missing or null "data", and non-object entries such as the nested empty
// array positionstack returns when nothing matches, yield no results.
func decodeResults(body []byte) ([]result, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	data := strings.TrimSpace(string(envelope.Data))
	if data == "" || data == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Data, &items); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}

	results := make([]result, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(string(item))
		if !strings.HasPrefix(trimmed, "{") {
			continue
		}
		var r result
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}
