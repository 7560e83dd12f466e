package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by cache name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocache_cache_hits_total",
			Help: "Total number of geocoding cache hits",
		},
		[]string{"cache"}, // "geocoding", "reverse-geocoding"
	)

	// CacheMisses tracks cache misses by cache name
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocache_cache_misses_total",
			Help: "Total number of geocoding cache misses",
		},
		[]string{"cache"},
	)

	// CacheClears tracks whole-cache clears
	CacheClears = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocache_cache_clears_total",
			Help: "Total number of whole-cache clears",
		},
		[]string{"cache"},
	)

	// CacheEntries tracks the current number of entries per cache
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geocache_cache_entries",
			Help: "Current number of entries in the geocoding cache",
		},
		[]string{"cache"},
	)
)
