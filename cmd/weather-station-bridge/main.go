package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-station-bridge/internal/api/http"
	"github.com/i474232898/weather-station-bridge/internal/bridge"
	"github.com/i474232898/weather-station-bridge/internal/bridge/providers"
	"github.com/i474232898/weather-station-bridge/internal/config"
	"github.com/i474232898/weather-station-bridge/internal/health"
	"github.com/i474232898/weather-station-bridge/internal/scheduler"
	"github.com/i474232898/weather-station-bridge/internal/store"
)

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	register := flag.Bool("register", false, "register all configured target stations and exit")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	logger.WithFields(logrus.Fields{
		"stations": len(cfg.StationPairs),
		"interval": cfg.SyncInterval.String(),
	}).Info("starting weather station bridge")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	wuClient := providers.NewWeatherUndergroundClient(httpClient, cfg.WUAPIKey)
	windyClient := providers.NewWindyClient(httpClient, cfg.WindyAPIKey)

	orch := bridge.NewOrchestrator(wuClient, windyClient, cfg.StationPairs, cfg.RetryAttempts, cfg.RetryDelay, logger)

	if *register {
		if err := registerStations(wuClient, windyClient, cfg.StationPairs, logger); err != nil {
			logger.Fatalf("station registration failed: %v", err)
		}
		return
	}

	if *once {
		runOnce(orch)
		return
	}

	reports := store.NewReportStore(cfg.ReportMaxHistory, cfg.ReportMaxAge)
	tracker := health.NewTracker()

	// Scheduler that repeats the sync cycle on the configured interval.
	sched := scheduler.New(orch, reports, tracker, cfg.SyncInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-station-bridge",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	httpapi.RegisterRoutes(app, orch, reports, tracker)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal; an in-flight cycle finishes before exit.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// runOnce executes a single sync cycle and exits non-zero if any station
// failed.
func runOnce(orch *bridge.Orchestrator) {
	report := orch.RunCycle(context.Background())

	fmt.Println("\nSync Results:")
	fmt.Println("============================================================")
	for _, result := range report.Results {
		if result.Success {
			fmt.Printf("+ %s: SUCCESS (%d sent)\n", result.StationID, result.ObservationsSent)
		} else {
			fmt.Printf("- %s: FAILED - %s\n", result.StationID, result.ErrorMessage)
		}
	}
	fmt.Println("============================================================")
	fmt.Printf("Total: %d/%d successful\n", report.Successful, len(report.Results))

	if report.Failed > 0 {
		os.Exit(1)
	}
}

// registerStations creates each configured target station on the Windy
// side, using the source provider's station metadata for name and position.
func registerStations(wu *providers.WeatherUndergroundClient, windy *providers.WindyClient, pairs []bridge.StationPair, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for i, pair := range pairs {
		meta, err := wu.StationMetadata(ctx, pair.SourceID)
		if err != nil {
			return fmt.Errorf("fetching metadata for %s: %w", pair.SourceID, err)
		}

		info := providers.WindyStationInfo{
			StationIndex: i,
			Name:         meta.Name,
			Latitude:     meta.Latitude,
			Longitude:    meta.Longitude,
			Elevation:    meta.Elevation,
		}

		if err := windy.RegisterStation(ctx, info); err != nil {
			return fmt.Errorf("registering station %s: %w", pair.TargetID, err)
		}

		logger.WithFields(logrus.Fields{
			"source": pair.SourceID,
			"target": pair.TargetID,
		}).Info("station registered")
	}

	return nil
}
