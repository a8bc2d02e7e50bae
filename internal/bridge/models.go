package bridge

import (
	"time"
)

// StationPair maps a source (Weather Underground) station to the target
// (Windy) station it is synchronized with. Pairs are positional: the order
// from configuration is preserved for the process lifetime.
type StationPair struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// Observation is a raw reading from the source provider. Optional
// measurements are pointers; nil means the station did not report the field.
// Metric wind speeds arrive in km/h and precipitation totals are
// daily-cumulative, both converted during transformation.
type Observation struct {
	StationID string
	Timestamp time.Time

	TemperatureC     *float64
	TemperatureF     *float64
	WindSpeedKmh     *float64
	WindSpeedMph     *float64
	WindDirectionDeg *int
	WindGustKmh      *float64
	WindGustMph      *float64
	HumidityPct      *float64
	DewpointC        *float64
	DewpointF        *float64
	PressureMbar     *float64
	PressureInHg     *float64
	PrecipTotalMm    *float64
	PrecipTotalIn    *float64
	UVIndex          *float64
}

// WindyObservation is an observation in the target provider's wire format:
// wind in m/s, hourly (not daily) precipitation, integer UV index.
type WindyObservation struct {
	StationIndex int
	Timestamp    string

	Temp         *float64
	TempF        *float64
	Wind         *float64
	WindSpeedMph *float64
	WindDir      *int
	Gust         *float64
	WindGustMph  *float64
	Humidity     *float64
	Dewpoint     *float64
	Pressure     *float64 // always nil, Windy takes pressure via Mbar
	Mbar         *float64
	Baromin      *float64
	Precip       *float64
	RainIn       *float64
	UV           *int
}

// SyncResult records the outcome of a single station sync attempt.
type SyncResult struct {
	StationID        string    `json:"stationId"`
	Success          bool      `json:"success"`
	Timestamp        time.Time `json:"timestamp"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	ObservationsSent int       `json:"observationsSent"`
}

// CycleReport aggregates the results of one full sync cycle.
type CycleReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []SyncResult  `json:"results"`
}
