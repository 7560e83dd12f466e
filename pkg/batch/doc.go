// Package batch resolves many addresses concurrently through the lookup
// service.
//
// The resolver runs a bounded worker pool so that a large input list does not
// open an unbounded number of upstream connections. Every lookup goes through
// the normal cache path, so repeated addresses in one batch are served from
// the cache once the first lookup has completed.
//
// Example usage:
//
//	resolver := batch.NewResolver(service, batch.DefaultConfig())
//	for _, r := range resolver.Resolve(ctx, []string{"Berlin", "Paris"}) {
//		if r.Err != nil {
//			continue
//		}
//		fmt.Println(r.Address, r.Coordinates.Latitude, r.Coordinates.Longitude)
//	}
//
// The resolver:
//   - Spawns a worker pool (default 10 workers)
//   - Bounds every lookup with its own timeout (default 15s)
//   - Returns one Result per input, in input order
//   - Reports failures per result and never aborts the batch
//   - Stops dispatching new lookups when the context is cancelled
package batch
