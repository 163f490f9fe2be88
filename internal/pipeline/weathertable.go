package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"ride-enrichment/internal/ride"
	"ride-enrichment/internal/weather"
)

// BuildWeatherTable fetches the hourly weather series for every resolvable
// location over one shared date span, [min ride date, max ride date], and
// concatenates the tagged series into a single table. Unresolvable locations
// are skipped with a log line; individual fetch failures are tolerated. The
// stage fails only when no location yields any rows.
func BuildWeatherTable(ctx context.Context, ds *ride.Dataset, locations LocationTable, archive weather.Archive) (*weather.Table, error) {
	startDate, endDate, ok := dateSpan(ds)
	if !ok {
		return nil, fmt.Errorf("no ride has a valid event timestamp; cannot determine weather date span")
	}

	log.Printf("pipeline: fetching weather for %s..%s across %d locations",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), len(locations))

	table := weather.NewTable()
	var failed int

	for _, loc := range locations.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		coord := locations[loc]
		if coord == nil {
			log.Printf("pipeline: skipping weather for %q: no resolved coordinates", loc)
			continue
		}

		observations, err := archive.Fetch(ctx, coord.Latitude, coord.Longitude, startDate, endDate)
		if err != nil {
			failed++
			log.Printf("pipeline: weather fetch failed for %q: %v", loc, err)
			continue
		}

		table.Append(loc, observations)
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("weather table is empty: %d locations skipped or failed, none produced rows", len(locations))
	}

	log.Printf("pipeline: weather table has %d rows for %d locations (%d fetches failed)",
		table.Len(), len(table.Locations()), failed)
	return table, nil
}

// dateSpan returns the inclusive calendar date range covering every ride with
// a valid event timestamp.
func dateSpan(ds *ride.Dataset) (time.Time, time.Time, bool) {
	var minDate, maxDate time.Time
	found := false

	for _, rec := range ds.Records {
		if rec.EventTime.IsZero() {
			continue
		}
		d := rec.EventDate()
		if !found {
			minDate, maxDate = d, d
			found = true
			continue
		}
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	return minDate, maxDate, found
}
