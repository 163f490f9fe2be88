package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds every knob of the enrichment pipeline. All values come from
// the environment, optionally seeded from a .env file.
type AppConfig struct {
	// Silver input and gold output CSV paths.
	SilverDataFile string `validate:"required"`
	GoldDataFile   string `validate:"required"`

	// Geocoding provider: "nominatim" (default, no key) or "google".
	GeocodeProvider string `validate:"oneof=nominatim google"`
	GoogleAPIKey    string

	// Retry budget for a single location resolution.
	GeocodeMaxAttempts int `validate:"min=1"`
	GeocodeRetryDelay  time.Duration

	// Upper bound on concurrent geocoding calls.
	GeocodeConcurrency int `validate:"min=1"`

	// Retry budget for a single weather archive fetch, on top of the
	// HTTP-level retries.
	WeatherMaxAttempts int `validate:"min=1"`
	WeatherRetryDelay  time.Duration

	// WeatherCacheFile persists the archive response cache between runs.
	// Empty disables persistence.
	WeatherCacheFile string

	// JoinTolerance bounds the nearest-timestamp weather join.
	JoinTolerance time.Duration `validate:"required"`

	// Timeout for outbound HTTP calls.
	HTTPTimeout time.Duration

	// Serve mode: scheduler interval, API port, run history retention.
	FetchInterval  time.Duration
	Port           string
	RunsMaxHistory int
	RunsMaxAge     time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.SilverDataFile = os.Getenv("SILVER_DATA_FILE")
	cfg.GoldDataFile = os.Getenv("GOLD_DATA_FILE")

	cfg.GeocodeProvider = getenvDefault("GEOCODE_PROVIDER", "nominatim")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	cfg.GeocodeMaxAttempts = getenvInt("GEOCODE_MAX_ATTEMPTS", 3)
	cfg.GeocodeConcurrency = getenvInt("GEOCODE_CONCURRENCY", 4)

	var err error
	if cfg.GeocodeRetryDelay, err = getenvDuration("GEOCODE_RETRY_DELAY", "1.5s"); err != nil {
		return nil, err
	}

	cfg.WeatherMaxAttempts = getenvInt("WEATHER_MAX_ATTEMPTS", 3)
	if cfg.WeatherRetryDelay, err = getenvDuration("WEATHER_RETRY_DELAY", "60s"); err != nil {
		return nil, err
	}
	cfg.WeatherCacheFile = getenvDefault("WEATHER_CACHE_FILE", "data/cache/weather_responses.gob")

	if cfg.JoinTolerance, err = getenvDuration("WEATHER_JOIN_TOLERANCE", "1h"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	// Scheduler interval for serve mode: default one batch run per day.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "24h"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.RunsMaxHistory = getenvInt("RUNS_MAX_HISTORY", 50)
	if cfg.RunsMaxAge, err = getenvDuration("RUNS_MAX_AGE", "168h"); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.GeocodeProvider == "google" && cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GEOCODE_PROVIDER=google requires GOOGLE_GEOCODER_API_KEY")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
