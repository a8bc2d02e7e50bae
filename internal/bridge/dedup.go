package bridge

import (
	"sync"
	"time"
)

// DedupGuard remembers the last observation timestamp attempted per station
// so an already-delivered observation is never re-sent. Comparison is exact
// timestamp equality, not a time window.
type DedupGuard struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewDedupGuard() *DedupGuard {
	return &DedupGuard{
		lastSent: make(map[string]time.Time),
	}
}

// ShouldSkip reports whether an observation with this timestamp has already
// been attempted for the station.
func (g *DedupGuard) ShouldSkip(stationID string, timestamp time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastSent[stationID]
	return ok && last.Equal(timestamp)
}

// MarkSent records the timestamp as attempted. Callers mark before the send
// is issued, so a failing timestamp is not hammered on every cycle.
func (g *DedupGuard) MarkSent(stationID string, timestamp time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSent[stationID] = timestamp
}
