package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
	"github.com/i474232898/weather-station-bridge/internal/health"
	"github.com/i474232898/weather-station-bridge/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, orch *bridge.Orchestrator, reports *store.ReportStore, tracker *health.Tracker) {
	app.Get("/health", func(c *fiber.Ctx) error {
		healthy, message := tracker.Status()
		status := fiber.StatusOK
		if !healthy {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"healthy": healthy,
			"message": message,
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/sync/latest", func(c *fiber.Ctx) error {
		report, err := reports.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no sync cycle has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch sync report")
		}
		return c.JSON(report)
	})

	v1.Get("/sync/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := reports.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no sync reports for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch sync history")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"reports": history,
		})
	})

	// On-demand cycle, outside the scheduled interval. The orchestrator
	// serializes cycles internally, so this cannot race a scheduled run.
	v1.Post("/sync/run", func(c *fiber.Ctx) error {
		report := orch.RunCycle(c.Context())
		reports.Save(report)
		tracker.Update(report.Successful > 0)
		return c.JSON(report)
	})

	v1.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"pairs": orch.Pairs(),
		})
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
