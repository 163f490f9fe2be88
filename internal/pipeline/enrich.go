package pipeline

import (
	"time"

	"ride-enrichment/internal/ride"
	"ride-enrichment/internal/weather"
)

// Enrich extends every ride record with pickup/drop coordinates (exact-key
// left joins against the location table) and the nearest-in-time weather
// observation on each side (grouped as-of joins within tolerance). Rides with
// missing enrichment keep nil fields; no row is ever dropped, so the output
// has exactly one gold record per input record.
func Enrich(ds *ride.Dataset, locations LocationTable, wx *weather.Table, tolerance time.Duration) []ride.GoldRecord {
	gold := make([]ride.GoldRecord, 0, len(ds.Records))

	for _, rec := range ds.Records {
		g := ride.GoldRecord{Record: rec}

		if coord := locations[rec.PickupLocation]; coord != nil {
			g.PickupLatitude = f64(coord.Latitude)
			g.PickupLongitude = f64(coord.Longitude)
		}
		if coord := locations[rec.DropLocation]; coord != nil {
			g.DropLatitude = f64(coord.Latitude)
			g.DropLongitude = f64(coord.Longitude)
		}

		if obs, ok := wx.Nearest(rec.PickupLocation, rec.EventTime, tolerance); ok {
			g.PickupTemperature2m = f64(obs.Temperature2m)
			g.PickupRain = f64(obs.Rain)
			g.PickupSnowfall = f64(obs.Snowfall)
			g.PickupWindSpeed10m = f64(obs.WindSpeed10m)
			g.PickupWindSpeed100m = f64(obs.WindSpeed100m)
		}
		if obs, ok := wx.Nearest(rec.DropLocation, rec.EventTime, tolerance); ok {
			g.DropTemperature2m = f64(obs.Temperature2m)
			g.DropRain = f64(obs.Rain)
			g.DropSnowfall = f64(obs.Snowfall)
			g.DropWindSpeed10m = f64(obs.WindSpeed10m)
			g.DropWindSpeed100m = f64(obs.WindSpeed100m)
		}

		gold = append(gold, g)
	}

	return gold
}

func f64(v float64) *float64 {
	return &v
}
