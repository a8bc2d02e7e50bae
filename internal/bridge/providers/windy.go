package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

// WindyStationInfo describes a station to register with the Windy PWS API.
type WindyStationInfo struct {
	StationIndex int
	Name         string
	Latitude     float64
	Longitude    float64
	Elevation    *float64
	TempHeight   *float64
	WindHeight   *float64
}

// WindyClient pushes observations to the Windy stations API. It implements
// bridge.Sender.
type WindyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWindyClient(client *http.Client, apiKey string) *WindyClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "windy",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WindyClient{
		apiKey:  apiKey,
		baseURL: "https://stations.windy.com/pws",
		client:  client,
		circuit: cb,
	}
}

// SendObservation submits one observation for a station. Windy takes its
// update as query parameters on a GET, with the API key in the URL path;
// only fields actually measured are included.
func (c *WindyClient) SendObservation(ctx context.Context, obs bridge.WindyObservation, stationID string) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: windy api key is not configured", bridge.ErrAuth)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("station", stationID)
		values.Set("dateutc", obs.Timestamp)

		setFloat(values, "temp", obs.Temp)
		setFloat(values, "tempf", obs.TempF)
		setFloat(values, "wind", obs.Wind)
		setFloat(values, "windspeedmph", obs.WindSpeedMph)
		setInt(values, "winddir", obs.WindDir)
		setFloat(values, "gust", obs.Gust)
		setFloat(values, "windgustmph", obs.WindGustMph)
		setFloat(values, "rh", obs.Humidity)
		setFloat(values, "dewpoint", obs.Dewpoint)
		setFloat(values, "pressure", obs.Pressure)
		setFloat(values, "mbar", obs.Mbar)
		setFloat(values, "baromin", obs.Baromin)
		setFloat(values, "precip", obs.Precip)
		setFloat(values, "rainin", obs.RainIn)
		setInt(values, "uv", obs.UV)

		u := fmt.Sprintf("%s/update/%s?%s", c.baseURL, c.apiKey, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	classify := func(resp *http.Response) error {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid windy api key", bridge.ErrAuth)
		case resp.StatusCode == http.StatusBadRequest:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%w: windy rejected observation: %s", bridge.ErrInvalidData, body)
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%w: windy api returned status %d: %s", bridge.ErrConnection, resp.StatusCode, body)
		}
		return nil
	}

	resp, err := doRequestWithBreaker(ctx, c.client, c.circuit, buildRequest, classify)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// RegisterStation creates (or confirms) a station on the Windy side. A 409
// means the station already exists, which counts as success.
func (c *WindyClient) RegisterStation(ctx context.Context, info WindyStationInfo) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: windy api key is not configured", bridge.ErrAuth)
	}

	buildRequest := func() (*http.Request, error) {
		payload := map[string]interface{}{
			"station": info.StationIndex,
			"name":    info.Name,
			"lat":     info.Latitude,
			"lon":     info.Longitude,
		}
		if info.Elevation != nil {
			payload["elevation"] = *info.Elevation
		}
		if info.TempHeight != nil {
			payload["tempheight"] = *info.TempHeight
		}
		if info.WindHeight != nil {
			payload["windheight"] = *info.WindHeight
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	}

	classify := func(resp *http.Response) error {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid windy api key", bridge.ErrAuth)
		case resp.StatusCode == http.StatusConflict:
			// Already registered.
			return nil
		case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%w: windy api returned status %d: %s", bridge.ErrConnection, resp.StatusCode, body)
		}
		return nil
	}

	resp, err := doRequestWithBreaker(ctx, c.client, c.circuit, buildRequest, classify)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

func setFloat(values url.Values, key string, v *float64) {
	if v != nil {
		values.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func setInt(values url.Values, key string, v *int) {
	if v != nil {
		values.Set(key, strconv.Itoa(*v))
	}
}
