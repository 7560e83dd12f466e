package geocode

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/geocode-cache/pkg/cache"
)

// cacheExemptAddress is never cached, in any letter case.
const cacheExemptAddress = "goa"

// Validation messages.
const (
	MsgAddressRequired    = "Address is required"
	MsgInvalidCoordinates = "Invalid latitude or longitude provided"
)

// Cache is the storage the service consults before calling upstream.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Put(key string, value V)
}

// Service resolves addresses and coordinates, caching successful results.
// It is safe for concurrent use.
type Service struct {
	upstream Upstream
	forward  Cache[Coordinates]
	reverse  Cache[string]
	logger   zerolog.Logger
}

// NewService creates a lookup service. forward and reverse must be distinct caches.
func NewService(upstream Upstream, forward Cache[Coordinates], reverse Cache[string]) *Service {
	return &Service{
		upstream: upstream,
		forward:  forward,
		reverse:  reverse,
		logger:   log.With().Str("component", "geocode").Logger(),
	}
}

// ForwardGeocode returns the coordinates of address.
//
// The address is the cache key, verbatim. "goa" in any letter case bypasses
// the cache entirely: it is neither read nor stored.
func (s *Service) ForwardGeocode(ctx context.Context, address string) (Coordinates, error) {
	if address == "" {
		return Coordinates{}, NewError(KindInvalidInput, MsgAddressRequired)
	}

	key := cache.ForwardKey(address)
	cacheable := !IsCacheExempt(address)

	if cacheable {
		if coords, ok := s.forward.Get(key); ok {
			s.logger.Debug().Str("address", address).Bool("cache_hit", true).Msg("Forward geocoding served from cache")
			return coords, nil
		}
	}

	s.logger.Info().Str("address", address).Msg("Attempting to get forward geocoding")

	coords, err := s.upstream.Forward(ctx, address)
	if err != nil {
		return Coordinates{}, err
	}

	if cacheable {
		s.forward.Put(key, coords)
	}

	s.logger.Info().
		Str("address", address).
		Bool("cached", cacheable).
		Msg("Successfully fetched geocoding data")
	return coords, nil
}

// ReverseGeocode returns the address label at latitude/longitude.
//
// Both arguments are validated before the cache or upstream is touched.
// The cache key is built from the literal strings, so "52.5" and "52.50"
// are cached separately.
func (s *Service) ReverseGeocode(ctx context.Context, latitude, longitude string) (string, error) {
	if !ValidLatitude(latitude) || !ValidLongitude(longitude) {
		s.logger.Warn().
			Str("latitude", latitude).
			Str("longitude", longitude).
			Msg("Invalid latitude or longitude provided")
		return "", NewError(KindInvalidInput, MsgInvalidCoordinates)
	}

	key := cache.ReverseKey(latitude, longitude)

	if label, ok := s.reverse.Get(key); ok {
		s.logger.Debug().Str("coordinates", key).Bool("cache_hit", true).Msg("Reverse geocoding served from cache")
		return label, nil
	}

	s.logger.Info().Str("coordinates", key).Msg("Attempting to get reverse geocoding")

	label, err := s.upstream.Reverse(ctx, key)
	if err != nil {
		return "", err
	}

	s.reverse.Put(key, label)

	s.logger.Info().Str("coordinates", key).Msg("Successfully fetched reverse geocoding data")
	return label, nil
}

// IsCacheExempt reports whether forward lookups of address skip the cache.
func IsCacheExempt(address string) bool {
	return strings.EqualFold(address, cacheExemptAddress)
}

// ValidLatitude reports whether s parses as a number in [-90, 90].
func ValidLatitude(s string) bool {
	return inRange(s, 90)
}

// ValidLongitude reports whether s parses as a number in [-180, 180].
func ValidLongitude(s string) bool {
	return inRange(s, 180)
}

// inRange parses s, ignoring surrounding whitespace, and checks |v| <= limit.
// NaN and infinities fail the comparison.
func inRange(s string, limit float64) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return false
	}
	return v >= -limit && v <= limit
}
