package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultClearInterval is how often a Purger empties its store.
const DefaultClearInterval = 60 * time.Second

// Clearable is a cache that supports a whole-cache clear.
type Clearable interface {
	Name() string
	Clear() int
}

// Purger clears one cache on a fixed interval.
// It implements suture.Service.
type Purger struct {
	cache    Clearable
	interval time.Duration
	logger   zerolog.Logger
}

// NewPurger creates a purger for c. A non-positive interval falls back to
// DefaultClearInterval.
func NewPurger(c Clearable, interval time.Duration, logger zerolog.Logger) *Purger {
	if interval <= 0 {
		interval = DefaultClearInterval
	}
	return &Purger{
		cache:    c,
		interval: interval,
		logger:   logger.With().Str("cache", c.Name()).Logger(),
	}
}

// Serve clears the cache every interval until ctx is canceled.
func (p *Purger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug().Dur("interval", p.interval).Msg("Cache purger started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("Cache purger stopped")
			return ctx.Err()
		case <-ticker.C:
			dropped := p.cache.Clear()
			p.logger.Info().Int("dropped", dropped).Msg("Cache cleared")
		}
	}
}

// String names the purger in supervisor events.
func (p *Purger) String() string {
	return "purger:" + p.cache.Name()
}
