package pipeline

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"ride-enrichment/internal/config"
	"ride-enrichment/internal/geocode"
	"ride-enrichment/internal/ride"
	"ride-enrichment/internal/weather"
)

// RunSummary describes one silver-to-gold pipeline run. It is what the run
// history store keeps and the operational API serves.
type RunSummary struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	RideCount         int `json:"rideCount"`
	UniqueLocations   int `json:"uniqueLocations"`
	ResolvedLocations int `json:"resolvedLocations"`
	WeatherRows       int `json:"weatherRows"`
	GoldRows          int `json:"goldRows"`

	// Locations is the resolved location table of this run; nil values mark
	// locations that failed to geocode.
	Locations map[string]*geocode.Coordinate `json:"locations,omitempty"`

	// Error is set when the run halted before producing a gold dataset.
	Error string `json:"error,omitempty"`
}

// Pipeline wires the resolver, the weather archive stack and the dataset I/O
// into the silver-to-gold batch flow.
type Pipeline struct {
	cfg      *config.AppConfig
	resolver LocationResolver
	archive  weather.Archive
	cache    *weather.CachedArchive
}

// New assembles a Pipeline from configuration: the selected geocoding
// provider behind the retrying resolver, and the Open-Meteo archive behind
// the response cache and the caller-level retry loop.
func New(cfg *config.AppConfig) (*Pipeline, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var provider geocode.Provider
	switch cfg.GeocodeProvider {
	case "google":
		provider = geocode.NewGoogleProvider(cfg.GoogleAPIKey)
	case "nominatim":
		provider = geocode.NewNominatimProvider(httpClient)
	default:
		return nil, fmt.Errorf("unknown geocode provider %q", cfg.GeocodeProvider)
	}

	resolver := geocode.NewResolver(provider, cfg.GeocodeMaxAttempts, cfg.GeocodeRetryDelay)

	cache := weather.NewCachedArchive(weather.NewOpenMeteoArchive(httpClient), cfg.WeatherCacheFile)
	archive := weather.NewRetryArchive(cache, cfg.WeatherMaxAttempts, cfg.WeatherRetryDelay)

	return &Pipeline{
		cfg:      cfg,
		resolver: resolver,
		archive:  archive,
		cache:    cache,
	}, nil
}

// Run executes one full silver-to-gold pass: read, validate, build the
// location table, build the weather table, enrich, write. The returned
// summary is populated as far as the run got; on a fatal stage error it
// carries the error text and is returned alongside the error.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: time.Now().UTC()}

	err := p.run(ctx, summary)
	summary.FinishedAt = time.Now().UTC()

	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, summary *RunSummary) error {
	log.Printf("pipeline: starting silver to gold transformation")

	ds, err := ride.ReadSilverCSV(p.cfg.SilverDataFile)
	if err != nil {
		return err
	}
	if err := ride.Validate(ds); err != nil {
		return fmt.Errorf("silver dataset validation: %w", err)
	}
	summary.RideCount = len(ds.Records)
	log.Printf("pipeline: loaded %d silver rides from %s", len(ds.Records), p.cfg.SilverDataFile)

	locations := BuildLocationTable(ctx, ds, p.resolver, p.cfg.GeocodeConcurrency)
	summary.UniqueLocations = len(locations)
	summary.ResolvedLocations = locations.Resolved()
	summary.Locations = locations

	// The response cache is worth keeping even when a later stage fails.
	defer func() {
		if err := p.cache.Persist(); err != nil {
			log.Printf("pipeline: could not persist weather cache: %v", err)
		}
	}()

	wx, err := BuildWeatherTable(ctx, ds, locations, p.archive)
	if err != nil {
		return fmt.Errorf("weather table: %w", err)
	}
	summary.WeatherRows = wx.Len()

	gold := Enrich(ds, locations, wx, p.cfg.JoinTolerance)
	summary.GoldRows = len(gold)

	if err := ride.WriteGoldCSV(p.cfg.GoldDataFile, ds.Columns, gold); err != nil {
		return err
	}

	log.Printf("pipeline: wrote %d gold rides to %s", len(gold), p.cfg.GoldDataFile)
	return nil
}
