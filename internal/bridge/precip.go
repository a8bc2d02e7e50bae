package bridge

import (
	"sync"
	"time"
)

type precipEntry struct {
	timestamp time.Time
	mm        *float64
	in        *float64
}

// PrecipTracker derives hourly precipitation deltas from the
// daily-cumulative totals the source provider reports. It keeps the last
// seen reading per station; entries live for the process lifetime.
type PrecipTracker struct {
	mu      sync.Mutex
	entries map[string]precipEntry
}

func NewPrecipTracker() *PrecipTracker {
	return &PrecipTracker{
		entries: make(map[string]precipEntry),
	}
}

// Update records the current cumulative reading for a station and returns
// the delta against the previous one, independently per unit. The first
// reading for a station yields (nil, nil). A cumulative value going
// backwards in either unit means the provider's daily counter rolled over
// at midnight; both deltas are suppressed rather than guessing the
// post-reset hourly amount. The stored baseline is overwritten on every
// call regardless of which branch is taken.
func (t *PrecipTracker) Update(stationID string, timestamp time.Time, currentMm, currentIn *float64) (*float64, *float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.entries[stationID]
	t.entries[stationID] = precipEntry{
		timestamp: timestamp,
		mm:        copyFloat(currentMm),
		in:        copyFloat(currentIn),
	}

	if !ok {
		return nil, nil
	}

	if decreased(prev.mm, currentMm) || decreased(prev.in, currentIn) {
		return nil, nil
	}

	return delta(prev.mm, currentMm), delta(prev.in, currentIn)
}

// Reset wipes all tracked baselines.
func (t *PrecipTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]precipEntry)
}

func decreased(prev, current *float64) bool {
	return prev != nil && current != nil && *current < *prev
}

func delta(prev, current *float64) *float64 {
	if prev == nil || current == nil {
		return nil
	}
	d := *current - *prev
	return &d
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
