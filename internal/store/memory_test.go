package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-enrichment/internal/pipeline"
)

func runAt(ts time.Time, goldRows int) pipeline.RunSummary {
	return pipeline.RunSummary{
		StartedAt:  ts,
		FinishedAt: ts.Add(time.Minute),
		GoldRows:   goldRows,
	}
}

func TestMemoryStore_GetLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)

	_, err := s.GetLatest()
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC()
	s.SaveRun(runAt(now.Add(-2*time.Hour), 100))
	s.SaveRun(runAt(now, 150))

	latest, err := s.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, 150, latest.GoldRows)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.SaveRun(runAt(now.Add(time.Duration(i)*time.Minute), i))
	}

	runs, err := s.GetRange(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].GoldRows)
	assert.Equal(t, 4, runs[1].GoldRows)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)

	now := time.Now().UTC()
	s.SaveRun(runAt(now.Add(-3*time.Hour), 1))
	s.SaveRun(runAt(now, 2))

	runs, err := s.GetRange(now.Add(-24*time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].GoldRows)
}

func TestMemoryStore_GetRange(t *testing.T) {
	s := NewMemoryStore(0, 0)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.SaveRun(runAt(base.Add(time.Duration(i)*time.Hour), i))
	}

	runs, err := s.GetRange(base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = s.GetRange(base.Add(10*time.Hour), base.Add(11*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}
