package verification

import (
	"context"
	"time"
)

// StatsSummary aggregates attempt counts over a trailing window.
type StatsSummary struct {
	TotalAttempts        int64 `json:"total_attempts"`
	SuccessfulAttempts   int64 `json:"successful_attempts"`
	FailedAttempts       int64 `json:"failed_attempts"`
	UniqueDomains        int64 `json:"unique_domains"`
	UniqueIPs            int64 `json:"unique_ips"`
	RecentFailedAttempts int64 `json:"recent_failed_attempts"`
}

// FailureGroup is one grouping-key row from a failed-attempt aggregation.
type FailureGroup struct {
	Key       string
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// DayCounts is one day bucket of a trend series.
type DayCounts struct {
	Day        string `json:"date"`
	Total      int64  `json:"total"`
	Successful int64  `json:"successful"`
	Failed     int64  `json:"failed"`
}

// StatusCount is one outcome bucket.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DomainVolume is one domain row of the top-domains report.
type DomainVolume struct {
	Domain     string `json:"domain"`
	Total      int64  `json:"total_verifications"`
	Successful int64  `json:"successful_verifications"`
}

// LogRepository is the append-only verification log store. There is no
// update API; the only delete path is the explicit retention purge.
type LogRepository interface {
	// Record appends one attempt row
	Record(ctx context.Context, l *Log) error

	// List retrieves log rows matching the filter, with total count
	List(ctx context.Context, filter LogFilter) ([]*Log, int64, error)

	// ListRecent retrieves the newest rows up to limit
	ListRecent(ctx context.Context, limit int) ([]*Log, error)

	// CountOlderThan counts rows older than the cutoff (cleanup dry run)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// PurgeOlderThan deletes rows older than the cutoff and returns the
	// deleted count
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Summary aggregates counts since the given instant; recentWindow
	// bounds the RecentFailedAttempts figure
	Summary(ctx context.Context, since time.Time, recentWindow time.Duration) (StatsSummary, error)

	// FailuresByIP groups failed attempts since the given instant by IP
	FailuresByIP(ctx context.Context, since time.Time) ([]FailureGroup, error)

	// FailuresByDomain groups failed attempts since the given instant by domain
	FailuresByDomain(ctx context.Context, since time.Time) ([]FailureGroup, error)

	// CountsByDay buckets attempts per business day in [from, to)
	CountsByDay(ctx context.Context, from, to time.Time) ([]DayCounts, error)

	// CountsByStatus buckets attempts per outcome since the given instant
	CountsByStatus(ctx context.Context, since time.Time) ([]StatusCount, error)

	// TopDomains returns the highest-volume domains
	TopDomains(ctx context.Context, limit int) ([]DomainVolume, error)

	// AttemptTimesSince returns the creation instants of attempts since the
	// given instant, for hour-of-day histograms
	AttemptTimesSince(ctx context.Context, since time.Time) ([]time.Time, error)
}
