package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

// StationMetadata is the subset of Weather Underground station information
// needed to register the paired Windy station.
type StationMetadata struct {
	StationID string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation *float64
}

// WeatherUndergroundClient fetches current PWS observations from the
// Weather Underground API. It implements bridge.Fetcher.
type WeatherUndergroundClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker

	mu       sync.RWMutex
	metadata map[string]StationMetadata
}

func NewWeatherUndergroundClient(client *http.Client, apiKey string) *WeatherUndergroundClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wunderground",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WeatherUndergroundClient{
		apiKey:   apiKey,
		baseURL:  "https://api.weather.com/v2/pws/observations/current",
		client:   client,
		circuit:  cb,
		metadata: make(map[string]StationMetadata),
	}
}

// wuPayload mirrors the PWS current-observations response. The metric block
// carries temp/dewpt in Celsius, wind in km/h, pressure in mbar and
// precipTotal as the daily-cumulative mm; the imperial block is its
// Fahrenheit/mph/inHg/inch counterpart.
type wuPayload struct {
	Observations []struct {
		StationID  string    `json:"stationID"`
		ObsTimeUTC time.Time `json:"obsTimeUtc"`
		Lat        float64   `json:"lat"`
		Lon        float64   `json:"lon"`
		WindDir    *int      `json:"winddir"`
		Humidity   *float64  `json:"humidity"`
		UV         *float64  `json:"uv"`
		Metric     struct {
			Temp        *float64 `json:"temp"`
			WindSpeed   *float64 `json:"windSpeed"`
			WindGust    *float64 `json:"windGust"`
			Dewpt       *float64 `json:"dewpt"`
			Pressure    *float64 `json:"pressure"`
			PrecipTotal *float64 `json:"precipTotal"`
			Elev        *float64 `json:"elev"`
		} `json:"metric"`
		Imperial struct {
			Temp        *float64 `json:"temp"`
			WindSpeed   *float64 `json:"windSpeed"`
			WindGust    *float64 `json:"windGust"`
			Dewpt       *float64 `json:"dewpt"`
			Pressure    *float64 `json:"pressure"`
			PrecipTotal *float64 `json:"precipTotal"`
		} `json:"imperial"`
	} `json:"observations"`
}

// FetchCurrent pulls the latest observation for a station.
func (c *WeatherUndergroundClient) FetchCurrent(ctx context.Context, stationID string) (bridge.Observation, error) {
	payload, err := c.fetch(ctx, stationID)
	if err != nil {
		return bridge.Observation{}, err
	}

	obs := payload.Observations[0]

	return bridge.Observation{
		StationID:        stationID,
		Timestamp:        obs.ObsTimeUTC,
		TemperatureC:     obs.Metric.Temp,
		TemperatureF:     obs.Imperial.Temp,
		WindSpeedKmh:     obs.Metric.WindSpeed,
		WindSpeedMph:     obs.Imperial.WindSpeed,
		WindDirectionDeg: obs.WindDir,
		WindGustKmh:      obs.Metric.WindGust,
		WindGustMph:      obs.Imperial.WindGust,
		HumidityPct:      obs.Humidity,
		DewpointC:        obs.Metric.Dewpt,
		DewpointF:        obs.Imperial.Dewpt,
		PressureMbar:     obs.Metric.Pressure,
		PressureInHg:     obs.Imperial.Pressure,
		PrecipTotalMm:    obs.Metric.PrecipTotal,
		PrecipTotalIn:    obs.Imperial.PrecipTotal,
		UVIndex:          obs.UV,
	}, nil
}

// StationMetadata returns station name and position, caching per station
// since stations do not move between cycles.
func (c *WeatherUndergroundClient) StationMetadata(ctx context.Context, stationID string) (StationMetadata, error) {
	c.mu.RLock()
	meta, ok := c.metadata[stationID]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	payload, err := c.fetch(ctx, stationID)
	if err != nil {
		return StationMetadata{}, err
	}

	obs := payload.Observations[0]
	meta = StationMetadata{
		StationID: stationID,
		Name:      obs.StationID,
		Latitude:  obs.Lat,
		Longitude: obs.Lon,
		Elevation: obs.Metric.Elev,
	}

	c.mu.Lock()
	c.metadata[stationID] = meta
	c.mu.Unlock()

	return meta, nil
}

// ClearMetadataCache drops all cached station metadata.
func (c *WeatherUndergroundClient) ClearMetadataCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = make(map[string]StationMetadata)
}

func (c *WeatherUndergroundClient) fetch(ctx context.Context, stationID string) (*wuPayload, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: weather underground api key is not configured", bridge.ErrAuth)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("stationId", stationID)
		values.Set("format", "json")
		values.Set("units", "m")
		values.Set("apiKey", c.apiKey)

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	classify := func(resp *http.Response) error {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid weather underground api key", bridge.ErrAuth)
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: station %s", bridge.ErrStationNotFound, stationID)
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: weather underground api", bridge.ErrRateLimited)
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%w: weather underground api returned status %d: %s", bridge.ErrConnection, resp.StatusCode, body)
		}
		return nil
	}

	resp, err := doRequestWithBreaker(ctx, c.client, c.circuit, buildRequest, classify)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload wuPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: invalid response from weather underground api: %v", bridge.ErrConnection, err)
	}

	if len(payload.Observations) == 0 {
		return nil, fmt.Errorf("%w: no observations for station %s", bridge.ErrStationNotFound, stationID)
	}

	return &payload, nil
}
