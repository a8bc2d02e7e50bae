package health

import (
	"fmt"
	"sync"
	"time"
)

// staleAfter is how long the service may go without a successful sync
// before the health check starts failing.
const staleAfter = 15 * time.Minute

// Tracker records the outcome of the most recent sync cycle for the
// /health endpoint. The scheduler updates it once per completed cycle.
type Tracker struct {
	mu          sync.RWMutex
	lastSync    time.Time
	lastSuccess bool

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Update records whether the just-completed cycle had at least one
// successful station.
func (t *Tracker) Update(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSync = t.now()
	t.lastSuccess = success
}

// Status reports whether the service is healthy, with a human-readable
// message. Before the first cycle completes the service is considered
// healthy so orchestration platforms do not kill it during startup.
func (t *Tracker) Status() (bool, string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.lastSync.IsZero() {
		return true, "service starting, no sync yet"
	}

	sinceSync := t.now().Sub(t.lastSync)

	if sinceSync > staleAfter && !t.lastSuccess {
		return false, fmt.Sprintf("no successful sync in %ds", int(sinceSync.Seconds()))
	}

	return true, fmt.Sprintf("last sync %ds ago", int(sinceSync.Seconds()))
}
