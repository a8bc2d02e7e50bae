package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

const wuTestData = `{
  "observations": [
    {
      "stationID": "KTEST123",
      "obsTimeUtc": "2025-10-15T12:00:00Z",
      "lat": 47.60,
      "lon": -122.33,
      "winddir": 270,
      "humidity": 65.0,
      "uv": 5.7,
      "metric": {
        "temp": 20.0,
        "windSpeed": 18.0,
        "windGust": 25.0,
        "dewpt": 13.0,
        "pressure": 1013.25,
        "precipTotal": 5.0,
        "elev": 52.0
      },
      "imperial": {
        "temp": 68.0,
        "windSpeed": 11.2,
        "windGust": 15.5,
        "dewpt": 55.4,
        "pressure": 29.92,
        "precipTotal": 0.2
      }
    }
  ]
}`

func newWUClient(serverURL string) *WeatherUndergroundClient {
	c := NewWeatherUndergroundClient(&http.Client{}, "test-key")
	c.baseURL = serverURL
	return c
}

func TestFetchCurrentParsesObservation(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, wuTestData)
	}))
	defer server.Close()

	client := newWUClient(server.URL)

	obs, err := client.FetchCurrent(context.Background(), "KTEST123")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "stationId=KTEST123")
	assert.Contains(t, gotQuery, "units=m")
	assert.Contains(t, gotQuery, "apiKey=test-key")

	assert.Equal(t, "KTEST123", obs.StationID)
	assert.True(t, obs.Timestamp.Equal(time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 20.0, *obs.TemperatureC)
	assert.Equal(t, 68.0, *obs.TemperatureF)
	assert.Equal(t, 18.0, *obs.WindSpeedKmh)
	assert.Equal(t, 25.0, *obs.WindGustKmh)
	assert.Equal(t, 270, *obs.WindDirectionDeg)
	assert.Equal(t, 65.0, *obs.HumidityPct)
	assert.Equal(t, 1013.25, *obs.PressureMbar)
	assert.Equal(t, 5.0, *obs.PrecipTotalMm)
	assert.Equal(t, 0.2, *obs.PrecipTotalIn)
	assert.Equal(t, 5.7, *obs.UVIndex)
}

func TestFetchCurrentOmittedFieldsAreNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"observations":[{"stationID":"KTEST123","obsTimeUtc":"2025-10-15T12:00:00Z","metric":{"temp":20.0}}]}`)
	}))
	defer server.Close()

	client := newWUClient(server.URL)

	obs, err := client.FetchCurrent(context.Background(), "KTEST123")
	require.NoError(t, err)

	assert.Equal(t, 20.0, *obs.TemperatureC)
	assert.Nil(t, obs.WindSpeedKmh)
	assert.Nil(t, obs.HumidityPct)
	assert.Nil(t, obs.PrecipTotalMm)
	assert.Nil(t, obs.UVIndex)
}

func TestFetchCurrentStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, bridge.ErrAuth},
		{http.StatusNotFound, bridge.ErrStationNotFound},
		{http.StatusTooManyRequests, bridge.ErrRateLimited},
		{http.StatusInternalServerError, bridge.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newWUClient(server.URL)

			_, err := client.FetchCurrent(context.Background(), "KTEST123")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchCurrentEmptyObservations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"observations":[]}`)
	}))
	defer server.Close()

	client := newWUClient(server.URL)

	_, err := client.FetchCurrent(context.Background(), "KTEST123")
	assert.ErrorIs(t, err, bridge.ErrStationNotFound)
}

func TestFetchCurrentMissingAPIKey(t *testing.T) {
	client := NewWeatherUndergroundClient(&http.Client{}, "")

	_, err := client.FetchCurrent(context.Background(), "KTEST123")
	assert.ErrorIs(t, err, bridge.ErrAuth)
}

func TestStationMetadataCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, wuTestData)
	}))
	defer server.Close()

	client := newWUClient(server.URL)

	meta, err := client.StationMetadata(context.Background(), "KTEST123")
	require.NoError(t, err)
	assert.Equal(t, 47.60, meta.Latitude)
	assert.Equal(t, -122.33, meta.Longitude)
	require.NotNil(t, meta.Elevation)
	assert.Equal(t, 52.0, *meta.Elevation)

	_, err = client.StationMetadata(context.Background(), "KTEST123")
	require.NoError(t, err)
	assert.Equal(t, 1, requests, "second lookup should hit the cache")

	client.ClearMetadataCache()

	_, err = client.StationMetadata(context.Background(), "KTEST123")
	require.NoError(t, err)
	assert.Equal(t, 2, requests, "cache clear should force a refetch")
}
