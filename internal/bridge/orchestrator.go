package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxConcurrentSyncs caps the number of station pipelines in flight per
// cycle regardless of how many pairs are configured. The target API has
// implicit rate limits; two at a time keeps us well under them.
const maxConcurrentSyncs = 2

// Fetcher pulls the current observation for a source station.
type Fetcher interface {
	FetchCurrent(ctx context.Context, stationID string) (Observation, error)
}

// Sender pushes an observation to a target station.
type Sender interface {
	SendObservation(ctx context.Context, obs WindyObservation, stationID string) error
}

// Orchestrator runs the per-station sync pipeline and fans it out across
// all configured pairs. The dedup and precipitation caches are owned by
// the orchestrator instance, so independent instances (tests, mainly) do
// not interfere with each other.
type Orchestrator struct {
	fetcher     Fetcher
	sender      Sender
	transformer *Transformer
	dedup       *DedupGuard
	pairs       []StationPair

	retryAttempts int
	retryDelay    time.Duration

	// Serializes cycles: the scheduler loop and the on-demand API route
	// must not sync the same stations concurrently.
	cycleMu sync.Mutex

	log *logrus.Logger
}

func NewOrchestrator(fetcher Fetcher, sender Sender, pairs []StationPair, retryAttempts int, retryDelay time.Duration, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:       fetcher,
		sender:        sender,
		transformer:   NewTransformer(NewPrecipTracker()),
		dedup:         NewDedupGuard(),
		pairs:         pairs,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		log:           log,
	}
}

// SyncStation runs one fetch → dedup → transform → send pipeline for a
// single pair. Every failure inside the pipeline is captured in the
// returned SyncResult; nothing propagates past this boundary.
func (o *Orchestrator) SyncStation(ctx context.Context, pair StationPair) SyncResult {
	start := time.Now().UTC()

	log := o.log.WithFields(logrus.Fields{
		"source": pair.SourceID,
		"target": pair.TargetID,
	})
	log.Info("syncing station")

	obs, err := o.fetcher.FetchCurrent(ctx, pair.SourceID)
	if err != nil {
		log.WithError(err).Error("failed to sync station")
		return o.failureResult(pair.SourceID, start, err)
	}

	if o.dedup.ShouldSkip(pair.SourceID, obs.Timestamp) {
		log.WithField("observedAt", obs.Timestamp).Info("observation already sent, skipping")
		return SyncResult{
			StationID:        pair.SourceID,
			Success:          true,
			Timestamp:        start,
			ObservationsSent: 0,
		}
	}

	// Marked before the send attempt so a timestamp whose delivery keeps
	// failing is not retried again on the next cycle.
	o.dedup.MarkSent(pair.SourceID, obs.Timestamp)

	windyObs, err := o.transformer.Transform(obs, 0)
	if err != nil {
		log.WithError(err).Error("failed to sync station")
		return o.failureResult(pair.SourceID, start, err)
	}

	sendName := fmt.Sprintf("send[%s->%s]", pair.SourceID, pair.TargetID)
	err = RetryWithBackoff(ctx, o.log, sendName, o.retryAttempts, o.retryDelay, func() error {
		return o.sender.SendObservation(ctx, windyObs, pair.TargetID)
	})
	if err != nil {
		log.WithError(err).Error("failed to sync station")
		return o.failureResult(pair.SourceID, start, err)
	}

	log.Info("station synced")
	return SyncResult{
		StationID:        pair.SourceID,
		Success:          true,
		Timestamp:        start,
		ObservationsSent: 1,
	}
}

// RunCycle syncs all configured pairs with at most maxConcurrentSyncs
// pipelines in flight. Results come back in configuration order, and a
// station exhausting its retries never disturbs its siblings.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleReport {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	start := time.Now().UTC()
	cycleID := uuid.NewString()

	log := o.log.WithFields(logrus.Fields{
		"cycle":    cycleID,
		"stations": len(o.pairs),
	})
	log.Info("starting sync cycle")

	results := make([]SyncResult, len(o.pairs))
	sem := make(chan struct{}, maxConcurrentSyncs)

	var wg sync.WaitGroup
	for i, pair := range o.pairs {
		wg.Add(1)
		go func(i int, pair StationPair) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = o.SyncStation(ctx, pair)
		}(i, pair)
	}
	wg.Wait()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}

	report := CycleReport{
		ID:         cycleID,
		StartedAt:  start,
		Duration:   time.Since(start),
		Successful: successful,
		Failed:     len(results) - successful,
		Results:    results,
	}

	log.WithFields(logrus.Fields{
		"successful": report.Successful,
		"failed":     report.Failed,
		"duration":   report.Duration.String(),
	}).Info("sync cycle completed")

	return report
}

// Pairs returns the configured station pairs in configuration order.
func (o *Orchestrator) Pairs() []StationPair {
	return o.pairs
}

func (o *Orchestrator) failureResult(stationID string, start time.Time, err error) SyncResult {
	return SyncResult{
		StationID:        stationID,
		Success:          false,
		Timestamp:        start,
		ErrorMessage:     err.Error(),
		ObservationsSent: 0,
	}
}
