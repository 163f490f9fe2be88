package weather

import (
	"sort"
	"sync"
	"time"
)

// Observation is one hourly weather row for a location. Values are exactly
// what the upstream archive delivered; no unit conversion happens here.
type Observation struct {
	Location      string    `json:"location"`
	Timestamp     time.Time `json:"timestamp"` // always UTC
	Temperature2m float64   `json:"temperature_2m"`
	Rain          float64   `json:"rain"`
	Snowfall      float64   `json:"snowfall"`
	WindSpeed10m  float64   `json:"wind_speed_10m"`
	WindSpeed100m float64   `json:"wind_speed_100m"`
}

// Table is a concurrency-safe long-form weather table: per-location
// observation series kept sorted by timestamp, supporting nearest-in-time
// lookups for the enrichment join.
type Table struct {
	mu     sync.RWMutex
	series map[string][]Observation
	rows   int
}

func NewTable() *Table {
	return &Table{series: make(map[string][]Observation)}
}

// Append tags every observation with the location and merges it into that
// location's series, keeping the series time-sorted.
func (t *Table) Append(location string, observations []Observation) {
	if len(observations) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.series[location]
	for _, obs := range observations {
		obs.Location = location
		s = append(s, obs)
	}
	sort.Slice(s, func(i, j int) bool {
		return s[i].Timestamp.Before(s[j].Timestamp)
	})
	t.series[location] = s
	t.rows += len(observations)
}

// Nearest returns the observation for the location whose timestamp is closest
// to ts, provided the distance is within tolerance. An exact tie between the
// earlier and later neighbour resolves to the earlier one.
func (t *Table) Nearest(location string, ts time.Time, tolerance time.Duration) (Observation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.series[location]
	if len(s) == 0 || ts.IsZero() {
		return Observation{}, false
	}

	// First index with timestamp >= ts.
	idx := sort.Search(len(s), func(i int) bool {
		return !s[i].Timestamp.Before(ts)
	})

	best := -1
	var bestDiff time.Duration

	if idx > 0 {
		best = idx - 1
		bestDiff = ts.Sub(s[idx-1].Timestamp)
	}
	if idx < len(s) {
		diff := s[idx].Timestamp.Sub(ts)
		if best == -1 || diff < bestDiff {
			best = idx
			bestDiff = diff
		}
	}

	if best == -1 || bestDiff > tolerance {
		return Observation{}, false
	}
	return s[best], true
}

// Len returns the total number of observations across all locations.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Locations returns the location keys present in the table, sorted.
func (t *Table) Locations() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.series))
	for k := range t.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Series returns a copy of one location's observation series.
func (t *Table) Series(location string) []Observation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.series[location]
	out := make([]Observation, len(s))
	copy(out, s)
	return out
}
