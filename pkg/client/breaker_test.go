package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/geocode-cache/internal/testutil"
	"github.com/Sternrassler/geocode-cache/pkg/geocode"
)

func newBreakerClient(t *testing.T, baseURL string, maxFailures uint32) *Client {
	t.Helper()

	cfg := DefaultConfig(testAccessKey)
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.Breaker = BreakerConfig{
		Enabled:     true,
		MaxFailures: maxFailures,
		OpenTimeout: time.Minute,
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.breaker == nil {
		t.Fatal("breaker not created")
	}
	return c
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig()
	if cfg.Enabled {
		t.Error("breaker should be disabled by default")
	}
	if cfg.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cfg.MaxFailures)
	}
	if cfg.OpenTimeout != 30*time.Second {
		t.Errorf("OpenTimeout = %v, want 30s", cfg.OpenTimeout)
	}
}

func TestBreaker_DisabledByDefault(t *testing.T) {
	c, err := New(DefaultConfig(testAccessKey))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.breaker != nil {
		t.Error("breaker should be nil when disabled")
	}
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/forward", testutil.NewServerErrorResponse())

	c := newBreakerClient(t, mock.URL(), 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Forward(ctx, "Berlin")
		var gerr *geocode.Error
		if !errors.As(err, &gerr) || gerr.Kind != geocode.KindUpstreamUnreachable || gerr.StatusCode != 500 {
			t.Fatalf("call %d: err = %v, want classified 500", i, err)
		}
	}

	// Circuit is open now: no upstream call, still UpstreamUnreachable.
	_, err := c.Forward(ctx, "Berlin")
	if !errors.Is(err, geocode.ErrUpstreamUnreachable) {
		t.Fatalf("err = %v, want UpstreamUnreachable", err)
	}
	if !errors.Is(err, errCircuitOpen) {
		t.Errorf("err = %v, want circuit open cause", err)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("requests = %d, want 2", mock.RequestCount())
	}
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/forward", testutil.NewUnauthorizedResponse())

	c := newBreakerClient(t, mock.URL(), 2)

	for i := 0; i < 5; i++ {
		_, err := c.Forward(context.Background(), "Berlin")
		if !errors.Is(err, geocode.ErrUnauthorized) {
			t.Fatalf("call %d: err = %v, want Unauthorized", i, err)
		}
	}
	if mock.RequestCount() != 5 {
		t.Errorf("requests = %d, want 5", mock.RequestCount())
	}
}

func TestBreaker_SuccessPassesThrough(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/reverse", testutil.NewReverseResponse("Berlin, Germany"))

	c := newBreakerClient(t, mock.URL(), 1)

	label, err := c.Reverse(context.Background(), "52.52,13.40")
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if label != "Berlin, Germany" {
		t.Errorf("label = %q", label)
	}
}
