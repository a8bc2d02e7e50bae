package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestPrecipTrackerFirstReadingReturnsNil(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	mm, in := tracker.Update("TEST001", ts, f(5.0), f(0.2))

	assert.Nil(t, mm)
	assert.Nil(t, in)
}

func TestPrecipTrackerNormalIncrease(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tracker.Update("TEST001", ts, f(5.0), f(0.2))
	mm, in := tracker.Update("TEST001", ts.Add(time.Hour), f(8.0), f(0.31))

	require.NotNil(t, mm)
	require.NotNil(t, in)
	assert.InDelta(t, 3.0, *mm, 0.01)
	assert.InDelta(t, 0.11, *in, 0.01)
}

func TestPrecipTrackerNoChange(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tracker.Update("TEST001", ts, f(5.0), f(0.2))
	mm, in := tracker.Update("TEST001", ts.Add(time.Hour), f(5.0), f(0.2))

	require.NotNil(t, mm)
	require.NotNil(t, in)
	assert.Equal(t, 0.0, *mm)
	assert.Equal(t, 0.0, *in)
}

func TestPrecipTrackerMidnightReset(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 23, 0, 0, 0, time.UTC)

	tracker.Update("TEST001", ts, f(10.0), f(0.4))

	// Daily total dropped: the provider's counter rolled over at midnight.
	mm, in := tracker.Update("TEST001", ts.Add(2*time.Hour), f(2.0), f(0.08))

	assert.Nil(t, mm)
	assert.Nil(t, in)

	// The lower reading became the new baseline.
	mm, in = tracker.Update("TEST001", ts.Add(3*time.Hour), f(3.0), f(0.12))
	require.NotNil(t, mm)
	require.NotNil(t, in)
	assert.InDelta(t, 1.0, *mm, 0.01)
	assert.InDelta(t, 0.04, *in, 0.01)
}

func TestPrecipTrackerResetInOneUnitSuppressesBoth(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tracker.Update("TEST001", ts, f(10.0), f(0.4))

	// mm decreased while in increased; still treated as a reset for both.
	mm, in := tracker.Update("TEST001", ts.Add(time.Hour), f(2.0), f(0.5))

	assert.Nil(t, mm)
	assert.Nil(t, in)
}

func TestPrecipTrackerMissingValues(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	mm, in := tracker.Update("TEST001", ts, nil, nil)
	assert.Nil(t, mm)
	assert.Nil(t, in)

	// Previous values were absent; no delta can be derived.
	mm, in = tracker.Update("TEST001", ts.Add(time.Hour), f(5.0), f(0.2))
	assert.Nil(t, mm)
	assert.Nil(t, in)

	// One unit missing in the current reading yields nil for that unit only.
	mm, in = tracker.Update("TEST001", ts.Add(2*time.Hour), f(8.0), nil)
	require.NotNil(t, mm)
	assert.InDelta(t, 3.0, *mm, 0.01)
	assert.Nil(t, in)
}

func TestPrecipTrackerStationsTrackedSeparately(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tracker.Update("STATION_A", ts, f(5.0), f(0.2))
	tracker.Update("STATION_B", ts, f(10.0), f(0.4))

	mmA, _ := tracker.Update("STATION_A", ts.Add(time.Hour), f(8.0), f(0.31))
	mmB, _ := tracker.Update("STATION_B", ts.Add(time.Hour), f(15.0), f(0.59))

	require.NotNil(t, mmA)
	require.NotNil(t, mmB)
	assert.InDelta(t, 3.0, *mmA, 0.01)
	assert.InDelta(t, 5.0, *mmB, 0.01)
}

func TestPrecipTrackerReset(t *testing.T) {
	tracker := NewPrecipTracker()
	ts := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tracker.Update("TEST001", ts, f(5.0), f(0.2))
	tracker.Reset()

	// Behaves like a first reading again.
	mm, in := tracker.Update("TEST001", ts.Add(time.Hour), f(8.0), f(0.31))
	assert.Nil(t, mm)
	assert.Nil(t, in)
}

func TestPrecipTrackerRealisticSequence(t *testing.T) {
	tracker := NewPrecipTracker()
	base := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

	steps := []struct {
		offset time.Duration
		mm     float64
		want   *float64
	}{
		{0, 2.0, nil},                   // first reading
		{1 * time.Hour, 5.0, f(3.0)},    // light rain
		{2 * time.Hour, 15.0, f(10.0)},  // heavy rain
		{3 * time.Hour, 15.0, f(0.0)},   // no rain
		{16 * time.Hour, 1.0, nil},      // after midnight reset
	}

	for _, step := range steps {
		got, _ := tracker.Update("TEST001", base.Add(step.offset), f(step.mm), nil)
		if step.want == nil {
			assert.Nil(t, got)
		} else {
			require.NotNil(t, got)
			assert.InDelta(t, *step.want, *got, 0.01)
		}
	}
}
