package bridge

const windyTimestampLayout = "2006-01-02 15:04:05"

// Transformer converts source observations into the target provider's
// wire format. It owns the precipitation tracker that turns the source's
// daily-cumulative totals into the hourly deltas the target expects.
type Transformer struct {
	precip *PrecipTracker
}

func NewTransformer(precip *PrecipTracker) *Transformer {
	return &Transformer{precip: precip}
}

// Transform builds a WindyObservation from a raw source observation.
// An observation with none of temperature, wind speed, humidity or pressure
// is rejected with ErrInvalidObservation; a UV reading alone is not enough
// to be worth forwarding. The precipitation tracker is updated on every
// successful call, so each reading advances the stored baseline.
func (t *Transformer) Transform(obs Observation, stationIndex int) (WindyObservation, error) {
	hasData := obs.TemperatureC != nil ||
		obs.WindSpeedKmh != nil ||
		obs.HumidityPct != nil ||
		obs.PressureMbar != nil

	if !hasData {
		return WindyObservation{}, ErrInvalidObservation
	}

	hourlyMm, hourlyIn := t.precip.Update(obs.StationID, obs.Timestamp, obs.PrecipTotalMm, obs.PrecipTotalIn)

	return WindyObservation{
		StationIndex: stationIndex,
		Timestamp:    obs.Timestamp.UTC().Format(windyTimestampLayout),
		Temp:         obs.TemperatureC,
		TempF:        obs.TemperatureF,
		Wind:         kmhToMs(obs.WindSpeedKmh),
		WindSpeedMph: obs.WindSpeedMph,
		WindDir:      obs.WindDirectionDeg,
		Gust:         kmhToMs(obs.WindGustKmh),
		WindGustMph:  obs.WindGustMph,
		Humidity:     obs.HumidityPct,
		Dewpoint:     obs.DewpointC,
		Pressure:     nil, // Windy takes millibar through Mbar
		Mbar:         obs.PressureMbar,
		Baromin:      obs.PressureInHg,
		Precip:       hourlyMm,
		RainIn:       hourlyIn,
		UV:           truncateUV(obs.UVIndex),
	}, nil
}

// kmhToMs converts the source's km/h wind values to the m/s Windy expects.
func kmhToMs(kmh *float64) *float64 {
	if kmh == nil {
		return nil
	}
	ms := *kmh / 3.6
	return &ms
}

// truncateUV truncates a UV index toward zero; Windy wants an integer.
func truncateUV(uv *float64) *int {
	if uv == nil {
		return nil
	}
	n := int(*uv)
	return &n
}
