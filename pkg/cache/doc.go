// Package cache provides the in-memory lookup caches used by the geocoding service.
//
// A Store is a concurrency-safe key/value map with a single bulk Clear.
// Entries carry no expiry of their own: they live until the next Clear,
// which a Purger invokes on a fixed interval independent of lookup traffic.
//
// # Basic Usage
//
//	forward := cache.NewStore[geocode.Coordinates](cache.ForwardCacheName)
//
//	forward.Put(cache.ForwardKey("Berlin"), geocode.Coordinates{Latitude: 52.52, Longitude: 13.40})
//	if coords, ok := forward.Get(cache.ForwardKey("Berlin")); ok {
//		// hit
//	}
//
// # Scheduled Clearing
//
//	purger := cache.NewPurger(forward, 60*time.Second, logger)
//	go purger.Serve(ctx) // or add it to a suture.Supervisor
//
// # Keys
//
// Keys are built from the literal lookup arguments without normalization:
// "Berlin" and "berlin" are different keys, as are "52.5,13.4" and
// "52.50,13.40".
//
// # Metrics
//
//   - geocache_cache_hits_total{cache} - Cache hits
//   - geocache_cache_misses_total{cache} - Cache misses
//   - geocache_cache_clears_total{cache} - Whole-cache clears
//   - geocache_cache_entries{cache} - Current number of entries
package cache
