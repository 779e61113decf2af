package poller

import (
	"sync"
	"time"
)

// Category is one of the independently scheduled data domains
type Category string

const (
	CategoryWeather  Category = "weather"
	CategoryRooms    Category = "rooms"
	CategoryHeatPump Category = "heatPump"
)

// Categories lists every poll category in cycle order
var Categories = []Category{CategoryWeather, CategoryRooms, CategoryHeatPump}

// Schedule tracks, per category, when it last ran and how often it should.
// The poll loop ticks once a minute and asks which categories are due; the
// health endpoint reads the same state concurrently, hence the mutex.
type Schedule struct {
	mu        sync.Mutex
	intervals map[Category]time.Duration
	lastRun   map[Category]time.Time
}

// NewSchedule creates a schedule with the given per-category intervals
func NewSchedule(weather, rooms, heatPump time.Duration) *Schedule {
	return &Schedule{
		intervals: map[Category]time.Duration{
			CategoryWeather:  weather,
			CategoryRooms:    rooms,
			CategoryHeatPump: heatPump,
		},
		lastRun: make(map[Category]time.Time),
	}
}

// IsDue reports whether the category's interval has elapsed (or it has never
// run). When it returns true the category's lastRun is recorded immediately,
// before any fetch happens, so a slow or failing fetch does not retrigger on
// the next tick.
func (s *Schedule) IsDue(category Category, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ran := s.lastRun[category]
	if ran && now.Sub(last) < s.intervals[category] {
		return false
	}

	s.lastRun[category] = now
	return true
}

// Intervals returns the configured intervals in milliseconds per category
func (s *Schedule) Intervals() map[Category]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	intervals := make(map[Category]int64, len(s.intervals))
	for category, interval := range s.intervals {
		intervals[category] = interval.Milliseconds()
	}
	return intervals
}

// LastRun returns the last trigger time per category as epoch milliseconds.
// Categories that have never run are omitted.
func (s *Schedule) LastRun() map[Category]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastRun := make(map[Category]int64, len(s.lastRun))
	for category, last := range s.lastRun {
		lastRun[category] = last.UnixMilli()
	}
	return lastRun
}
