// Package analytics computes verification statistics and anomaly findings
// for the admin dashboards.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/cache"
	"github.com/licentry/licentry/internal/shared/biztime"
	"github.com/licentry/licentry/internal/shared/constants"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

// DefaultWindowDays is the trailing window applied when a report is
// requested without an explicit range.
const DefaultWindowDays = 30

// recentFailureWindow bounds the "recent failed attempts" headline figure.
const recentFailureWindow = 24 * time.Hour

// Service computes the analytics reports. Headline statistics go through the
// short-TTL cache; the cheaper reports hit the store directly.
type Service struct {
	logRepo    verification.LogRepository
	statsCache cache.StatsCache
	logger     logger.Interface
}

// NewService creates the analytics service
func NewService(
	logRepo verification.LogRepository,
	statsCache cache.StatsCache,
	logger logger.Interface,
) *Service {
	return &Service{
		logRepo:    logRepo,
		statsCache: statsCache,
		logger:     logger,
	}
}

// Statistics returns the headline summary over the trailing window.
func (s *Service) Statistics(ctx context.Context, windowDays int) (*StatisticsResponse, error) {
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}

	cacheKey := fmt.Sprintf("summary:%dd", windowDays)
	if payload, err := s.statsCache.Get(ctx, cacheKey); err != nil {
		s.logger.Warnw("stats cache read failed", "report", cacheKey, "error", err)
	} else if payload != nil {
		var cached StatisticsResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warnw("stats cache payload corrupt, recomputing", "report", cacheKey)
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	summary, err := s.logRepo.Summary(ctx, since, recentFailureWindow)
	if err != nil {
		s.logger.Errorw("failed to compute statistics", "error", err)
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	response := &StatisticsResponse{
		WindowDays:           windowDays,
		TotalAttempts:        summary.TotalAttempts,
		SuccessfulAttempts:   summary.SuccessfulAttempts,
		FailedAttempts:       summary.FailedAttempts,
		SuccessRate:          successRate(summary.SuccessfulAttempts, summary.TotalAttempts),
		UniqueDomains:        summary.UniqueDomains,
		UniqueIPs:            summary.UniqueIPs,
		RecentFailedAttempts: summary.RecentFailedAttempts,
	}

	if payload, err := json.Marshal(response); err == nil {
		if err := s.statsCache.Set(ctx, cacheKey, payload); err != nil {
			s.logger.Warnw("stats cache write failed", "report", cacheKey, "error", err)
		}
	}

	return response, nil
}

// CountsByDate returns a zero-filled per-day trend series for the trailing
// window. Days without attempts appear with zero counts so charts have no
// gaps.
func (s *Service) CountsByDate(ctx context.Context, windowDays int) ([]DateCountResponse, error) {
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}

	now := time.Now()
	from := biztime.StartOfDay(now.AddDate(0, 0, -(windowDays - 1)))
	to := biztime.EndOfDay(now)

	counts, err := s.logRepo.CountsByDay(ctx, from, to)
	if err != nil {
		s.logger.Errorw("failed to compute day counts", "error", err)
		return nil, fmt.Errorf("failed to compute day counts: %w", err)
	}

	byDay := make(map[string]verification.DayCounts, len(counts))
	for _, c := range counts {
		byDay[c.Day] = c
	}

	series := make([]DateCountResponse, 0, windowDays)
	for cursor := from; cursor.Before(to); cursor = cursor.AddDate(0, 0, 1) {
		day := biztime.DayKey(cursor)
		c := byDay[day]
		series = append(series, DateCountResponse{
			Date:        day,
			Total:       c.Total,
			Successful:  c.Successful,
			Failed:      c.Failed,
			SuccessRate: successRate(c.Successful, c.Total),
		})
	}
	return series, nil
}

// CountsByStatus returns per-outcome totals over the trailing window.
func (s *Service) CountsByStatus(ctx context.Context, windowDays int) ([]StatusCountResponse, error) {
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	counts, err := s.logRepo.CountsByStatus(ctx, since)
	if err != nil {
		s.logger.Errorw("failed to compute status counts", "error", err)
		return nil, fmt.Errorf("failed to compute status counts: %w", err)
	}

	// Zero-fill the three outcomes so consumers always see all buckets.
	totals := map[string]int64{
		verification.OutcomeSuccess.String(): 0,
		verification.OutcomeFailed.String():  0,
		verification.OutcomeError.String():   0,
	}
	for _, c := range counts {
		totals[c.Status] = c.Count
	}

	return []StatusCountResponse{
		{Status: verification.OutcomeSuccess.String(), Count: totals[verification.OutcomeSuccess.String()]},
		{Status: verification.OutcomeFailed.String(), Count: totals[verification.OutcomeFailed.String()]},
		{Status: verification.OutcomeError.String(), Count: totals[verification.OutcomeError.String()]},
	}, nil
}

// TopDomainsByVolume returns the highest-volume domains.
func (s *Service) TopDomainsByVolume(ctx context.Context, limit int) ([]DomainVolumeResponse, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	volumes, err := s.logRepo.TopDomains(ctx, limit)
	if err != nil {
		s.logger.Errorw("failed to compute top domains", "error", err)
		return nil, fmt.Errorf("failed to compute top domains: %w", err)
	}

	responses := make([]DomainVolumeResponse, len(volumes))
	for i, v := range volumes {
		responses[i] = DomainVolumeResponse{
			Domain:     v.Domain,
			Total:      v.Total,
			Successful: v.Successful,
		}
	}
	return responses, nil
}

// CountsByHourOfDay returns the 24 hour-of-day buckets over the trailing
// window. Hours are bucketed in the business timezone.
func (s *Service) CountsByHourOfDay(ctx context.Context, windowDays int) ([]HourCountResponse, error) {
	if windowDays < 1 {
		windowDays = DefaultWindowDays
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	times, err := s.logRepo.AttemptTimesSince(ctx, since)
	if err != nil {
		s.logger.Errorw("failed to load attempt times", "error", err)
		return nil, fmt.Errorf("failed to compute hour counts: %w", err)
	}

	var buckets [24]int64
	loc := biztime.Location()
	for _, t := range times {
		buckets[t.In(loc).Hour()]++
	}

	responses := make([]HourCountResponse, 24)
	for hour := 0; hour < 24; hour++ {
		responses[hour] = HourCountResponse{Hour: hour, Count: buckets[hour]}
	}
	return responses, nil
}

// RecentAttempts returns the newest verification attempts for the live feed.
func (s *Service) RecentAttempts(ctx context.Context, limit int) ([]RecentAttemptResponse, error) {
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxRecentAttempts {
		return nil, errors.NewValidationError(fmt.Sprintf("limit must be at most %d", constants.MaxRecentAttempts))
	}

	logs, err := s.logRepo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Errorw("failed to list recent attempts", "error", err)
		return nil, fmt.Errorf("failed to list recent attempts: %w", err)
	}

	responses := make([]RecentAttemptResponse, len(logs))
	for i, l := range logs {
		responses[i] = RecentAttemptResponse{
			ID:         l.ID(),
			LicenseID:  l.LicenseID(),
			Domain:     l.Domain(),
			IPAddress:  l.IPAddress(),
			Status:     l.Status().String(),
			Message:    l.ResponseMessage(),
			Source:     l.Source().String(),
			CreatedAt:  l.CreatedAt(),
			VerifiedAt: l.VerifiedAt(),
		}
	}
	return responses, nil
}

func successRate(successful, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}
