package geocode

import (
	"context"

	"github.com/kelvins/geocoder"

	"ride-enrichment/internal/common"
)

// GoogleProvider resolves locations through the Google Geocoding API via the
// kelvins/geocoder client. The library holds the API key in a package-level
// variable, so only one GoogleProvider should be constructed per process.
type GoogleProvider struct {
	name string
}

func NewGoogleProvider(apiKey string) *GoogleProvider {
	geocoder.ApiKey = apiKey
	return &GoogleProvider{name: "google"}
}

func (p *GoogleProvider) Name() string {
	return p.name
}

func (p *GoogleProvider) Geocode(ctx context.Context, location string) (Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return Coordinate{}, err
	}

	// The client exposes structured addresses only; the free-text location
	// string rides in the street field and is formatted verbatim.
	address := geocoder.Address{Street: location}

	loc, err := geocoder.Geocoding(address)
	if err != nil {
		// The client surfaces the API status string as the error text.
		if common.HasAny(err.Error(), "ZERO_RESULTS", "no results") {
			return Coordinate{}, ErrNoMatch
		}
		return Coordinate{}, err
	}

	return Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}
