package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrNoMatch is returned by a Provider when the service definitively reports
// that the location string matches nothing. It is a negative result, not a
// transient failure, and is never retried.
var ErrNoMatch = errors.New("geocoder: no match for location")

// Coordinate is a resolved geographic position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}

// Provider resolves a free-text location name to a coordinate. Any geocoding
// backend satisfying this contract is substitutable.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, location string) (Coordinate, error)
}

// Resolver wraps a Provider with the resolution failure policy: transient
// failures are retried with a fixed delay up to a maximum attempt count, a
// definitive no-match returns immediately, and every failure mode degrades to
// a nil coordinate. Resolve never returns an error past this boundary.
type Resolver struct {
	provider    Provider
	maxAttempts int
	retryDelay  time.Duration
}

// NewResolver builds a Resolver. maxAttempts <= 0 falls back to 3 attempts
// and retryDelay <= 0 to 1.5s.
func NewResolver(provider Provider, maxAttempts int, retryDelay time.Duration) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = 1500 * time.Millisecond
	}
	return &Resolver{
		provider:    provider,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Resolve resolves a location string, returning nil when the location is
// unresolvable (no match, exhausted retries, or cancelled context).
func (r *Resolver) Resolve(ctx context.Context, location string) *Coordinate {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		coord, err := r.provider.Geocode(ctx, location)
		if err == nil {
			return &coord
		}

		if errors.Is(err, ErrNoMatch) {
			log.Printf("geocode: %s found no match for %q", r.provider.Name(), location)
			return nil
		}

		log.Printf("geocode: %s attempt %d/%d failed for %q: %v",
			r.provider.Name(), attempt, r.maxAttempts, location, err)

		if attempt == r.maxAttempts {
			break
		}

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("geocode: resolution of %q cancelled: %v", location, ctx.Err())
			return nil
		case <-timer.C:
		}
	}

	log.Printf("geocode: giving up on %q after %d attempts", location, r.maxAttempts)
	return nil
}
