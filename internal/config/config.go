package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

var validate = validator.New()

type AppConfig struct {
	WindyAPIKey string `validate:"required"`
	WUAPIKey    string `validate:"required"`

	// StationPairs maps source stations to target stations positionally,
	// in configuration order.
	StationPairs []bridge.StationPair `validate:"required,min=1"`

	// SyncInterval controls how often a sync cycle runs.
	SyncInterval time.Duration `validate:"min=1m"`

	LogLevel string `validate:"oneof=debug info warning error"`

	RetryAttempts int           `validate:"min=1"`
	RetryDelay    time.Duration `validate:"min=1s"`

	HTTPTimeout time.Duration

	// Status API history retention.
	ReportMaxHistory int
	ReportMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.WindyAPIKey = os.Getenv("WINDY_API_KEY")
	cfg.WUAPIKey = os.Getenv("WU_API_KEY")

	pairs, err := loadStationPairs()
	if err != nil {
		return nil, err
	}
	cfg.StationPairs = pairs

	// Sync interval: default 5 minutes.
	intervalMinutes := getenvInt("SYNC_INTERVAL_MINUTES", 5)
	cfg.SyncInterval = time.Duration(intervalMinutes) * time.Minute

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))

	cfg.RetryAttempts = getenvInt("RETRY_ATTEMPTS", 3)
	cfg.RetryDelay = time.Duration(getenvInt("RETRY_DELAY_SECONDS", 5)) * time.Second

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.ReportMaxHistory = getenvInt("REPORT_MAX_HISTORY", 288) // roughly 24h at 5-minute intervals

	maxAgeStr := getenvDefault("REPORT_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_MAX_AGE: %w", err)
	}
	cfg.ReportMaxAge = maxAge

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadStationPairs() ([]bridge.StationPair, error) {
	sourceIDs := splitIDs(os.Getenv("WU_STATION_IDS"))
	targetIDs := splitIDs(os.Getenv("WINDY_STATION_IDS"))

	if len(sourceIDs) == 0 {
		return nil, fmt.Errorf("WU_STATION_IDS must contain at least one station ID")
	}
	if len(targetIDs) == 0 {
		return nil, fmt.Errorf("WINDY_STATION_IDS must contain at least one station ID")
	}
	if len(sourceIDs) != len(targetIDs) {
		return nil, fmt.Errorf("WU_STATION_IDS (%d) and WINDY_STATION_IDS (%d) must have the same number of stations",
			len(sourceIDs), len(targetIDs))
	}

	pairs := make([]bridge.StationPair, len(sourceIDs))
	for i := range sourceIDs {
		pairs[i] = bridge.StationPair{
			SourceID: sourceIDs[i],
			TargetID: targetIDs[i],
		}
	}

	return pairs, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
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
