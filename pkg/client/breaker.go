package client

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

var upstreamBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "geocache_upstream_breaker_state",
	Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
})

// BreakerConfig configures the optional upstream circuit breaker.
// The breaker never retries: while open, calls fail fast as UpstreamUnreachable.
type BreakerConfig struct {
	// Enabled turns the breaker on.
	Enabled bool

	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32

	// OpenTimeout is how long the circuit stays open before a probe is let through.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns a disabled breaker with sensible thresholds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:     false,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// serverStatusError carries a 5xx response through the breaker so that it
// counts as a failure while the caller still classifies the status.
type serverStatusError struct {
	resp *upstreamResponse
}

func (e *serverStatusError) Error() string {
	return "upstream server error"
}

func newBreaker(cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[*upstreamResponse] {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	upstreamBreakerState.Set(0)

	return gobreaker.NewCircuitBreaker[*upstreamResponse](gobreaker.Settings{
		Name:        "positionstack",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			upstreamBreakerState.Set(float64(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Upstream circuit breaker state change")
		},
	})
}

// do executes one upstream round trip, through the breaker when enabled.
func (c *Client) do(fn func() (*upstreamResponse, error)) (*upstreamResponse, error) {
	if c.breaker == nil {
		return fn()
	}

	resp, err := c.breaker.Execute(func() (*upstreamResponse, error) {
		r, err := fn()
		if err != nil {
			return nil, err
		}
		if r.status >= 500 {
			return nil, &serverStatusError{resp: r}
		}
		return r, nil
	})

	var sse *serverStatusError
	if errors.As(err, &sse) {
		return sse.resp, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn().Err(err).Msg("Upstream call rejected by circuit breaker")
		return nil, errCircuitOpen
	}
	return resp, err
}

var errCircuitOpen = errors.New("upstream circuit open")
