package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
	"github.com/i474232898/weather-station-bridge/internal/health"
	"github.com/i474232898/weather-station-bridge/internal/store"
)

// Scheduler repeats the sync cycle on a fixed interval. One cycle runs at
// a time (singleton mode); a cycle that overruns the interval simply
// delays the next one instead of overlapping it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	orch      *bridge.Orchestrator
	reports   *store.ReportStore
	tracker   *health.Tracker
	interval  time.Duration
	log       *logrus.Logger
}

// New creates a new Scheduler.
func New(orch *bridge.Orchestrator, reports *store.ReportStore, tracker *health.Tracker, interval time.Duration, log *logrus.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		orch:      orch,
		reports:   reports,
		tracker:   tracker,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic sync job and starts the underlying
// scheduler. The first cycle runs immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(s.runCycle)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// runCycle executes one sync cycle, records the report and updates the
// health tracker. No deadline wraps the cycle; each outbound HTTP call
// carries its own timeout.
func (s *Scheduler) runCycle() {
	// Station failures are already contained inside the cycle; this guard
	// only catches programming errors, which must not kill the scheduler.
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("scheduler: sync cycle panicked")
		}
	}()

	s.log.Info("scheduler: executing sync cycle")

	report := s.orch.RunCycle(context.Background())

	s.reports.Save(report)
	s.tracker.Update(report.Successful > 0)

	s.log.WithFields(logrus.Fields{
		"cycle":      report.ID,
		"successful": report.Successful,
		"failed":     report.Failed,
		"duration":   report.Duration.String(),
	}).Info("scheduler: sync cycle recorded")
}

// Stop stops the scheduler, letting an in-flight cycle finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
