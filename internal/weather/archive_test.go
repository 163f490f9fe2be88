package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyArchive fails a fixed number of times before succeeding.
type flakyArchive struct {
	calls        int
	failures     int
	observations []Observation
}

func (f *flakyArchive) Fetch(ctx context.Context, lat, lon float64, start, end time.Time) ([]Observation, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("read timeout")
	}
	return f.observations, nil
}

func TestRetryArchive_EventualSuccess(t *testing.T) {
	inner := &flakyArchive{failures: 2, observations: hourly("2024-03-01", 9)}
	r := NewRetryArchive(inner, 3, time.Millisecond)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	observations, err := r.Fetch(context.Background(), 12.95, 77.67, start, start)

	require.NoError(t, err)
	assert.Len(t, observations, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryArchive_ExhaustedRetriesFail(t *testing.T) {
	inner := &flakyArchive{failures: 10}
	r := NewRetryArchive(inner, 3, time.Millisecond)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := r.Fetch(context.Background(), 12.95, 77.67, start, start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, inner.calls)
}

func TestRetryArchive_CancelledContextStopsRetrying(t *testing.T) {
	inner := &flakyArchive{failures: 10}
	r := NewRetryArchive(inner, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := r.Fetch(ctx, 12.95, 77.67, start, start)

	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
