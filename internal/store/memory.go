package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-station-bridge/internal/bridge"
)

var (
	// ErrNotFound is returned when no cycle reports are available.
	ErrNotFound = errors.New("no sync reports available")
)

// ReportStore is a concurrency-safe in-memory history of sync cycle
// reports, feeding the status API. Retention is bounded by count and age;
// the history does not survive a restart.
type ReportStore struct {
	mu sync.RWMutex

	reports []bridge.CycleReport

	maxHistory int           // max number of retained reports
	maxAge     time.Duration // optional max age of retained reports
}

// NewReportStore creates a new ReportStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewReportStore(maxHistory int, maxAge time.Duration) *ReportStore {
	return &ReportStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a report and enforces retention.
func (s *ReportStore) Save(report bridge.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.reports) > s.maxHistory {
		over := len(s.reports) - s.maxHistory
		s.reports = s.reports[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.reports); i++ {
			if !s.reports[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.reports) {
			s.reports = s.reports[i:]
		}
	}
}

// Latest returns the most recent cycle report.
func (s *ReportStore) Latest() (bridge.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return bridge.CycleReport{}, ErrNotFound
	}
	return s.reports[len(s.reports)-1], nil
}

// Range returns all reports whose cycle started between from and to
// (inclusive).
func (s *ReportStore) Range(from, to time.Time) ([]bridge.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return nil, ErrNotFound
	}

	var result []bridge.CycleReport
	for _, report := range s.reports {
		if !report.StartedAt.Before(from) && !report.StartedAt.After(to) {
			result = append(result, report)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
