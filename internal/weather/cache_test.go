package weather

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingArchive serves a fixed series and counts upstream fetches.
type countingArchive struct {
	calls        int
	observations []Observation
	err          error
}

func (c *countingArchive) Fetch(ctx context.Context, lat, lon float64, start, end time.Time) ([]Observation, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.observations, nil
}

func TestCachedArchive_RepeatedFetchHitsCache(t *testing.T) {
	inner := &countingArchive{observations: hourly("2024-03-01", 9, 10)}
	cached := NewCachedArchive(inner, "")

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	second, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "identical request parameters must not re-fetch")
}

func TestCachedArchive_DistinctParametersMiss(t *testing.T) {
	inner := &countingArchive{observations: hourly("2024-03-01", 9)}
	cached := NewCachedArchive(inner, "")

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	_, err = cached.Fetch(context.Background(), 12.97, 77.59, start, start)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedArchive_ErrorsAreNotCached(t *testing.T) {
	inner := &countingArchive{err: errors.New("upstream down")}
	cached := NewCachedArchive(inner, "")

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.Error(t, err)

	inner.err = nil
	inner.observations = hourly("2024-03-01", 9)

	_, err = cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedArchive_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "weather_responses.gob")
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	inner := &countingArchive{observations: hourly("2024-03-01", 9, 10)}
	cached := NewCachedArchive(inner, path)

	_, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	require.NoError(t, cached.Persist())

	// A fresh process loads the persisted responses and never goes upstream.
	reloadedInner := &countingArchive{err: errors.New("should not be called")}
	reloaded := NewCachedArchive(reloadedInner, path)

	observations, err := reloaded.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	assert.Len(t, observations, 2)
	assert.Equal(t, 0, reloadedInner.calls)
}

func TestCachedArchive_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather_responses.gob")
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	inner := &countingArchive{observations: hourly("2024-03-01", 9)}
	cached := NewCachedArchive(inner, path)

	_, err := cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	require.NoError(t, cached.Persist())

	require.NoError(t, cached.Clear())

	_, err = cached.Fetch(context.Background(), 12.95, 77.67, start, start)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "a cleared cache fetches upstream again")
}
