package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SILVER_DATA_FILE", "data/silver/rides.csv")
	t.Setenv("GOLD_DATA_FILE", "data/gold/rides.csv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nominatim", cfg.GeocodeProvider)
	assert.Equal(t, 3, cfg.GeocodeMaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.GeocodeRetryDelay)
	assert.Equal(t, 3, cfg.WeatherMaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.WeatherRetryDelay)
	assert.Equal(t, time.Hour, cfg.JoinTolerance)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_MissingRequiredPaths(t *testing.T) {
	t.Setenv("SILVER_DATA_FILE", "")
	t.Setenv("GOLD_DATA_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_GoogleProviderRequiresKey(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOCODE_PROVIDER", "google")
	t.Setenv("GOOGLE_GEOCODER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_GEOCODER_API_KEY")
}

func TestLoad_InvalidProviderRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOCODE_PROVIDER", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("WEATHER_JOIN_TOLERANCE", "one hour")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_JOIN_TOLERANCE")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOCODE_MAX_ATTEMPTS", "5")
	t.Setenv("GEOCODE_RETRY_DELAY", "2s")
	t.Setenv("WEATHER_CACHE_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.GeocodeMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.GeocodeRetryDelay)
}
