package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ride-enrichment/internal/httpx"
)

const nominatimUserAgent = "ride-enrichment/1.0"

// NominatimProvider resolves locations against the OpenStreetMap Nominatim
// search API. No API key is required, but the usage policy mandates a
// descriptive User-Agent.
type NominatimProvider struct {
	name    string
	baseURL string
	client  *httpx.Client
}

func NewNominatimProvider(client *http.Client) *NominatimProvider {
	return &NominatimProvider{
		name:    "nominatim",
		baseURL: "https://nominatim.openstreetmap.org/search",
		client:  httpx.NewClient("nominatim", client, httpx.DefaultBackoff),
	}
}

func (p *NominatimProvider) Name() string {
	return p.name
}

func (p *NominatimProvider) Geocode(ctx context.Context, location string) (Coordinate, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", location)
		values.Set("format", "json")
		values.Set("limit", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", nominatimUserAgent)
		return req, nil
	}

	resp, err := p.client.Do(ctx, buildRequest)
	if err != nil {
		return Coordinate{}, err
	}
	defer resp.Body.Close()

	// Nominatim returns lat/lon as JSON strings.
	var payload []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Coordinate{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(payload) == 0 {
		return Coordinate{}, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(payload[0].Lat, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse nominatim latitude %q: %w", payload[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(payload[0].Lon, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse nominatim longitude %q: %w", payload[0].Lon, err)
	}

	return Coordinate{Latitude: lat, Longitude: lon}, nil
}
