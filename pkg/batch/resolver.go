package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/geocode-cache/pkg/geocode"
)

// Config holds resolver configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel lookups.
	MaxConcurrency int

	// Timeout bounds each individual lookup.
	Timeout time.Duration
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// Forwarder performs a single forward lookup. *geocode.Service implements it.
type Forwarder interface {
	ForwardGeocode(ctx context.Context, address string) (geocode.Coordinates, error)
}

// Result is the outcome of resolving one address.
type Result struct {
	Index       int
	Address     string
	Coordinates geocode.Coordinates
	Err         error
}

// Resolver resolves address lists on a bounded worker pool.
type Resolver struct {
	lookup Forwarder
	config Config
	logger zerolog.Logger
}

// NewResolver creates a resolver. Non-positive config values fall back to defaults.
func NewResolver(lookup Forwarder, config Config) *Resolver {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Resolver{
		lookup: lookup,
		config: config,
		logger: log.With().Str("component", "batch").Logger(),
	}
}

// Resolve looks up every address and returns one Result per input, in
// input order. Addresses not dispatched before ctx is cancelled carry
// ctx.Err() as their error.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) []Result {
	start := time.Now()

	results := make([]Result, len(addresses))
	processed := make([]bool, len(addresses))
	for i, address := range addresses {
		results[i] = Result{Index: i, Address: address}
	}
	if len(addresses) == 0 {
		return results
	}

	workers := r.config.MaxConcurrency
	if workers > len(addresses) {
		workers = len(addresses)
	}

	r.logger.Info().
		Int("addresses", len(addresses)).
		Int("workers", workers).
		Msg("Starting batch resolve")

	queue := make(chan int)
	go func() {
		defer close(queue)
		for i := range addresses {
			select {
			case queue <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Each index is received by exactly one worker, so workers write their
	// slots of results and processed without locking.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go r.worker(ctx, queue, results, processed, &wg, w)
	}
	wg.Wait()

	failed := 0
	for i := range results {
		if !processed[i] {
			results[i].Err = ctx.Err()
		}
		if results[i].Err != nil {
			failed++
		}
	}

	r.logger.Info().
		Int("addresses", len(addresses)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch resolve complete")

	return results
}

// worker processes indices from the queue.
func (r *Resolver) worker(ctx context.Context, queue <-chan int, results []Result, processed []bool, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	resolved := 0

	for i := range queue {
		if ctx.Err() != nil {
			r.logger.Debug().
				Int("worker_id", workerID).
				Int("resolved", resolved).
				Msg("Worker stopping (context cancelled)")
			return
		}

		lookupCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
		coords, err := r.lookup.ForwardGeocode(lookupCtx, results[i].Address)
		cancel()

		if err != nil {
			r.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("address", results[i].Address).
				Msg("Address lookup failed")
		}

		results[i].Coordinates = coords
		results[i].Err = err
		processed[i] = true
		resolved++
	}

	if resolved > 0 {
		r.logger.Debug().
			Int("worker_id", workerID).
			Int("resolved", resolved).
			Msg("Worker completed")
	}
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}
