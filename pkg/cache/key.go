package cache

// Cache names, one store per lookup kind.
const (
	ForwardCacheName = "geocoding"
	ReverseCacheName = "reverse-geocoding"
)

// ForwardKey returns the cache key for a forward lookup.
// The address is used verbatim, so keys are case and whitespace sensitive.
func ForwardKey(address string) string {
	return address
}

// ReverseKey returns the cache key for a reverse lookup.
// Format: "{latitude},{longitude}" from the caller's literal strings.
//
// Example:
//
//	ReverseKey("40.7638435", "-73.9729691") // "40.7638435,-73.9729691"
func ReverseKey(latitude, longitude string) string {
	return latitude + "," + longitude
}
