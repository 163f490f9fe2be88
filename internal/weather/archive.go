package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Archive retrieves an hourly weather time series for a coordinate over a
// date span (inclusive calendar dates). Any compatible provider is
// substitutable.
type Archive interface {
	Fetch(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) ([]Observation, error)
}

// RetryArchive wraps an Archive with a caller-level retry loop for failures
// the HTTP-level retries did not absorb. On exhausted attempts it returns the
// last error; it never substitutes an empty series.
type RetryArchive struct {
	inner       Archive
	maxAttempts int
	retryDelay  time.Duration
}

// NewRetryArchive builds a RetryArchive. maxAttempts <= 0 falls back to 3
// and retryDelay <= 0 to 60s.
func NewRetryArchive(inner Archive, maxAttempts int, retryDelay time.Duration) *RetryArchive {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = 60 * time.Second
	}
	return &RetryArchive{
		inner:       inner,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

func (r *RetryArchive) Fetch(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) ([]Observation, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		observations, err := r.inner.Fetch(ctx, latitude, longitude, startDate, endDate)
		if err == nil {
			return observations, nil
		}
		lastErr = err

		log.Printf("weather: archive fetch attempt %d/%d failed for (%.4f, %.4f): %v",
			attempt, r.maxAttempts, latitude, longitude, err)

		if attempt == r.maxAttempts {
			break
		}

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("archive fetch failed after %d attempts: %w", r.maxAttempts, lastErr)
}
