package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ride-enrichment/internal/httpx"
)

const (
	hourlyVariables = "temperature_2m,rain,snowfall,wind_speed_10m,wind_speed_100m"

	// Hourly timestamps in archive responses carry no zone suffix; the
	// request pins timezone=UTC.
	openMeteoTimeLayout = "2006-01-02T15:04"

	dateParamLayout = "2006-01-02"
)

// OpenMeteoArchive implements Archive against the Open-Meteo historical
// weather API. One request covers the full date span for a coordinate.
type OpenMeteoArchive struct {
	name    string
	baseURL string
	client  *httpx.Client
}

func NewOpenMeteoArchive(client *http.Client) *OpenMeteoArchive {
	return &OpenMeteoArchive{
		name:    "openmeteo-archive",
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		client:  httpx.NewClient("openmeteo-archive", client, httpx.DefaultBackoff),
	}
}

func (a *OpenMeteoArchive) Name() string {
	return a.name
}

func (a *OpenMeteoArchive) Fetch(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) ([]Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", latitude))
		values.Set("longitude", fmt.Sprintf("%f", longitude))
		values.Set("start_date", startDate.Format(dateParamLayout))
		values.Set("end_date", endDate.Format(dateParamLayout))
		values.Set("hourly", hourlyVariables)
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", a.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := a.client.Do(ctx, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature2m []float64 `json:"temperature_2m"`
			Rain          []float64 `json:"rain"`
			Snowfall      []float64 `json:"snowfall"`
			WindSpeed10m  []float64 `json:"wind_speed_10m"`
			WindSpeed100m []float64 `json:"wind_speed_100m"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}

	n := len(payload.Hourly.Time)
	if n == 0 {
		return nil, fmt.Errorf("archive response contains no hourly data")
	}
	for name, series := range map[string][]float64{
		"temperature_2m":  payload.Hourly.Temperature2m,
		"rain":            payload.Hourly.Rain,
		"snowfall":        payload.Hourly.Snowfall,
		"wind_speed_10m":  payload.Hourly.WindSpeed10m,
		"wind_speed_100m": payload.Hourly.WindSpeed100m,
	} {
		if len(series) != n {
			return nil, fmt.Errorf("archive series %s has %d values for %d timestamps", name, len(series), n)
		}
	}

	observations := make([]Observation, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, payload.Hourly.Time[i], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse archive timestamp %q: %w", payload.Hourly.Time[i], err)
		}

		observations = append(observations, Observation{
			Timestamp:     ts,
			Temperature2m: payload.Hourly.Temperature2m[i],
			Rain:          payload.Hourly.Rain[i],
			Snowfall:      payload.Hourly.Snowfall[i],
			WindSpeed10m:  payload.Hourly.WindSpeed10m[i],
			WindSpeed100m: payload.Hourly.WindSpeed100m[i],
		})
	}

	return observations, nil
}
