package pipeline

import (
	"context"
	"log"
	"sort"
	"sync"

	"ride-enrichment/internal/geocode"
	"ride-enrichment/internal/ride"
)

// LocationTable maps every distinct location string in the ride dataset to
// its resolved coordinate. A nil coordinate marks an unresolvable location;
// the entry stays so downstream stages see exactly one row per location.
type LocationTable map[string]*geocode.Coordinate

// Keys returns the location strings in the table, sorted.
func (t LocationTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolved counts the locations with a non-nil coordinate.
func (t LocationTable) Resolved() int {
	n := 0
	for _, c := range t {
		if c != nil {
			n++
		}
	}
	return n
}

// LocationResolver is the resolution contract the builder needs; satisfied by
// geocode.Resolver.
type LocationResolver interface {
	Resolve(ctx context.Context, location string) *geocode.Coordinate
}

// BuildLocationTable computes the union of pickup and drop location strings
// and resolves each distinct string exactly once, fanning out up to
// concurrency calls at a time. Empty location strings are not resolvable and
// are left out of the table.
func BuildLocationTable(ctx context.Context, ds *ride.Dataset, resolver LocationResolver, concurrency int) LocationTable {
	if concurrency <= 0 {
		concurrency = 1
	}

	unique := make(map[string]struct{})
	for _, rec := range ds.Records {
		if rec.PickupLocation != "" {
			unique[rec.PickupLocation] = struct{}{}
		}
		if rec.DropLocation != "" {
			unique[rec.DropLocation] = struct{}{}
		}
	}

	log.Printf("pipeline: resolving %d unique locations across %d rides", len(unique), len(ds.Records))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		sem   = make(chan struct{}, concurrency)
		table = make(LocationTable, len(unique))
	)

	for loc := range unique {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			coord := resolver.Resolve(ctx, loc)

			mu.Lock()
			table[loc] = coord
			mu.Unlock()
		}()
	}
	wg.Wait()

	log.Printf("pipeline: resolved %d/%d locations", table.Resolved(), len(table))
	return table
}
