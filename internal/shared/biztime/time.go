// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used for
// calculating date boundaries (start/end of day) in analytics queries.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "UTC"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to UTC.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, initializing with the
// default when Init has not been called.
func Location() *time.Location {
	if bizLocation == nil {
		MustInit(DefaultTimezone)
	}
	return bizLocation
}

// StartOfDay returns the UTC instant at which the business day containing t begins.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location())
	return start.UTC()
}

// EndOfDay returns the UTC instant at which the business day containing t ends
// (exclusive upper bound, i.e. the start of the next day).
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24 * time.Hour)
}

// DayKey formats t as a yyyy-mm-dd string in the business timezone.
func DayKey(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}
