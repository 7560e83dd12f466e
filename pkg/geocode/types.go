// Package geocode implements cached forward and reverse geocoding on top of
// an upstream geocoding API.
package geocode

import "context"

// Coordinates is a forward geocoding result.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Upstream is the geocoding API the service falls back to on a cache miss.
// Implementations classify their failures as *Error.
type Upstream interface {
	// Forward resolves a free-text address to the first matching coordinates.
	Forward(ctx context.Context, address string) (Coordinates, error)

	// Reverse resolves a "{lat},{lon}" query to the first matching label.
	Reverse(ctx context.Context, query string) (string, error)
}
