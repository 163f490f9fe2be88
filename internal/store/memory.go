package store

import (
	"errors"
	"sync"
	"time"

	"ride-enrichment/internal/pipeline"
)

// ErrNotFound is returned when no run matches the request.
var ErrNotFound = errors.New("no pipeline runs recorded")

// MemoryStore is a concurrency-safe in-memory history of pipeline runs,
// ordered by start time of insertion.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []pipeline.RunSummary

	// retention configuration
	maxHistory int           // max number of runs kept (0 = unlimited)
	maxAge     time.Duration // max age of kept runs (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRun appends a run summary and enforces retention.
func (s *MemoryStore) SaveRun(run pipeline.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.runs) {
			s.runs = s.runs[i:]
		}
	}
}

// GetLatest returns the most recent run.
func (s *MemoryStore) GetLatest() (pipeline.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return pipeline.RunSummary{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// GetRange returns all runs started between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]pipeline.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []pipeline.RunSummary
	for _, run := range s.runs {
		if !run.StartedAt.Before(from) && !run.StartedAt.After(to) {
			result = append(result, run)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
