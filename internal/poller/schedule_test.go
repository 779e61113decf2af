package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_NeverRunIsDue(t *testing.T) {
	schedule := NewSchedule(time.Hour, 10*time.Minute, 10*time.Minute)

	now := time.Now()
	for _, category := range Categories {
		assert.True(t, schedule.IsDue(category, now), "category %s should be due on first check", category)
	}
}

func TestSchedule_DueThenNotDueWithinInterval(t *testing.T) {
	schedule := NewSchedule(time.Hour, 10*time.Minute, 10*time.Minute)

	start := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, schedule.IsDue(CategoryRooms, start))
	assert.False(t, schedule.IsDue(CategoryRooms, start), "repeated check at the same instant")
	assert.False(t, schedule.IsDue(CategoryRooms, start.Add(9*time.Minute)))
	assert.True(t, schedule.IsDue(CategoryRooms, start.Add(10*time.Minute)), "due again exactly at the interval")
}

func TestSchedule_CategoriesIndependent(t *testing.T) {
	schedule := NewSchedule(time.Hour, 10*time.Minute, 20*time.Minute)

	start := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for _, category := range Categories {
		schedule.IsDue(category, start)
	}

	later := start.Add(15 * time.Minute)
	assert.False(t, schedule.IsDue(CategoryWeather, later))
	assert.True(t, schedule.IsDue(CategoryRooms, later))
	assert.False(t, schedule.IsDue(CategoryHeatPump, later))
}

func TestSchedule_LastRunRecordedBeforeFetch(t *testing.T) {
	schedule := NewSchedule(time.Hour, 10*time.Minute, 10*time.Minute)

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	schedule.IsDue(CategoryWeather, now)

	// lastRun reflects the trigger time even though no fetch has completed.
	lastRun := schedule.LastRun()
	assert.Equal(t, now.UnixMilli(), lastRun[CategoryWeather])
	assert.NotContains(t, lastRun, CategoryRooms, "never-run categories are omitted")
}

func TestSchedule_Intervals(t *testing.T) {
	schedule := NewSchedule(time.Hour, 10*time.Minute, 10*time.Minute)

	intervals := schedule.Intervals()
	assert.Equal(t, int64(3600000), intervals[CategoryWeather])
	assert.Equal(t, int64(600000), intervals[CategoryRooms])
	assert.Equal(t, int64(600000), intervals[CategoryHeatPump])
}
