package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/shared/logger"
)

func setupLogRepo(t *testing.T) (*gorm.DB, verification.LogRepository) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(&models.VerificationLogModel{}))
	return database, NewVerificationLogRepository(database, logger.NewLogger())
}

type logSeed struct {
	domain string
	ip     string
	status verification.Outcome
	age    time.Duration
}

func seedLogs(t *testing.T, database *gorm.DB, repo verification.LogRepository, seeds []logSeed) {
	t.Helper()
	ctx := context.Background()

	for _, s := range seeds {
		entry, err := verification.NewLog(verification.NewLogParams{
			PurchaseCode:    "ABCD-1234-EFGH-5678",
			Domain:          s.domain,
			IPAddress:       s.ip,
			UserAgent:       "seed-agent",
			Status:          s.status,
			ResponseMessage: "seeded",
			Source:          license.SourceAPI,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Record(ctx, entry))

		if s.age > 0 {
			backdated := time.Now().UTC().Add(-s.age)
			require.NoError(t, database.Model(&models.VerificationLogModel{}).
				Where("id = ?", entry.ID()).
				Update("created_at", backdated).Error)
		}
	}
}

func TestVerificationLogRepository_RecordAndList(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"alpha.com", "203.0.113.1", verification.OutcomeSuccess, 0},
		{"beta.com", "203.0.113.2", verification.OutcomeFailed, 0},
	})

	logs, total, err := repo.List(ctx, verification.LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	// The raw purchase code must never come back out.
	for _, l := range logs {
		assert.Equal(t, license.HashPurchaseCode("ABCD-1234-EFGH-5678"), l.PurchaseCodeHash())
	}
}

func TestVerificationLogRepository_Filters(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"alpha.com", "203.0.113.1", verification.OutcomeSuccess, 0},
		{"alpha.com", "203.0.113.2", verification.OutcomeFailed, 0},
		{"beta.com", "203.0.113.2", verification.OutcomeFailed, 0},
	})

	t.Run("by domain", func(t *testing.T) {
		logs, total, err := repo.List(ctx, verification.LogFilter{Domain: "alpha.com"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, logs, 2)
	})

	t.Run("by status", func(t *testing.T) {
		_, total, err := repo.List(ctx, verification.LogFilter{Status: verification.OutcomeFailed})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("by ip", func(t *testing.T) {
		_, total, err := repo.List(ctx, verification.LogFilter{IPAddress: "203.0.113.2"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("combined", func(t *testing.T) {
		_, total, err := repo.List(ctx, verification.LogFilter{
			Domain: "alpha.com",
			Status: verification.OutcomeFailed,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestVerificationLogRepository_TimeRangeFilter(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"old.com", "203.0.113.1", verification.OutcomeFailed, 72 * time.Hour},
		{"new.com", "203.0.113.1", verification.OutcomeFailed, 0},
	})

	from := time.Now().UTC().Add(-24 * time.Hour)
	logs, total, err := repo.List(ctx, verification.LogFilter{From: &from})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "new.com", logs[0].Domain())

	to := time.Now().UTC().Add(-24 * time.Hour)
	logs, total, err = repo.List(ctx, verification.LogFilter{To: &to})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "old.com", logs[0].Domain())
}

func TestVerificationLogRepository_Pagination(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seeds := make([]logSeed, 25)
	for i := range seeds {
		seeds[i] = logSeed{"bulk.com", "203.0.113.1", verification.OutcomeSuccess, time.Duration(i) * time.Minute}
	}
	seedLogs(t, database, repo, seeds)

	t.Run("defaults to 20 per page", func(t *testing.T) {
		logs, total, err := repo.List(ctx, verification.LogFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		assert.Len(t, logs, 20)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		logs, total, err := repo.List(ctx, verification.LogFilter{Page: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		assert.Len(t, logs, 5)
	})

	t.Run("per page capped at 100", func(t *testing.T) {
		logs, _, err := repo.List(ctx, verification.LogFilter{PerPage: 500})
		require.NoError(t, err)
		assert.Len(t, logs, 25, "cap applies but all rows still fit one page")
	})

	t.Run("newest first by default", func(t *testing.T) {
		logs, _, err := repo.List(ctx, verification.LogFilter{PerPage: 25})
		require.NoError(t, err)
		require.Len(t, logs, 25)
		for i := 1; i < len(logs); i++ {
			assert.False(t, logs[i].CreatedAt().After(logs[i-1].CreatedAt()),
				"descending order violated at row %d", i)
		}
	})

	t.Run("ascending when requested", func(t *testing.T) {
		logs, _, err := repo.List(ctx, verification.LogFilter{PerPage: 25, SortOrder: verification.SortAsc})
		require.NoError(t, err)
		require.Len(t, logs, 25)
		for i := 1; i < len(logs); i++ {
			assert.False(t, logs[i].CreatedAt().Before(logs[i-1].CreatedAt()),
				"ascending order violated at row %d", i)
		}
	})
}

func TestVerificationLogRepository_Purge(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"ancient.com", "203.0.113.1", verification.OutcomeFailed, 40 * 24 * time.Hour},
		{"older.com", "203.0.113.1", verification.OutcomeFailed, 35 * 24 * time.Hour},
		{"fresh.com", "203.0.113.1", verification.OutcomeSuccess, time.Hour},
	})

	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	matched, err := repo.CountOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, matched)

	deleted, err := repo.PurgeOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	_, total, err := repo.List(ctx, verification.LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "rows newer than the cutoff survive")

	deletedAgain, err := repo.PurgeOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 0, deletedAgain, "purge is idempotent")
}

func TestVerificationLogRepository_FailureGroups(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"a.com", "203.0.113.1", verification.OutcomeFailed, 3 * time.Hour},
		{"a.com", "203.0.113.1", verification.OutcomeFailed, 2 * time.Hour},
		{"b.com", "203.0.113.1", verification.OutcomeFailed, time.Hour},
		{"b.com", "203.0.113.2", verification.OutcomeFailed, time.Hour},
		{"c.com", "203.0.113.3", verification.OutcomeSuccess, time.Hour},
		{"stale.com", "203.0.113.9", verification.OutcomeFailed, 80 * time.Hour},
	})

	since := time.Now().UTC().Add(-24 * time.Hour)

	byIP, err := repo.FailuresByIP(ctx, since)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, g := range byIP {
		counts[g.Key] = g.Count
	}
	assert.Equal(t, 3, counts["203.0.113.1"])
	assert.Equal(t, 1, counts["203.0.113.2"])
	assert.NotContains(t, counts, "203.0.113.3", "successes are not failures")
	assert.NotContains(t, counts, "203.0.113.9", "rows outside the window are excluded")

	for _, g := range byIP {
		assert.False(t, g.FirstSeen.After(g.LastSeen), "first seen must not follow last seen")
	}

	byDomain, err := repo.FailuresByDomain(ctx, since)
	require.NoError(t, err)
	domainCounts := map[string]int{}
	for _, g := range byDomain {
		domainCounts[g.Key] = g.Count
	}
	assert.Equal(t, 2, domainCounts["a.com"])
	assert.Equal(t, 2, domainCounts["b.com"])
}

func TestVerificationLogRepository_StatusAndDomainAggregates(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"big.com", "203.0.113.1", verification.OutcomeSuccess, time.Hour},
		{"big.com", "203.0.113.1", verification.OutcomeSuccess, time.Hour},
		{"big.com", "203.0.113.1", verification.OutcomeFailed, time.Hour},
		{"small.com", "203.0.113.2", verification.OutcomeError, time.Hour},
	})

	since := time.Now().UTC().Add(-24 * time.Hour)

	statuses, err := repo.CountsByStatus(ctx, since)
	require.NoError(t, err)
	statusCounts := map[string]int64{}
	for _, s := range statuses {
		statusCounts[s.Status] = s.Count
	}
	assert.EqualValues(t, 2, statusCounts["success"])
	assert.EqualValues(t, 1, statusCounts["failed"])
	assert.EqualValues(t, 1, statusCounts["error"])

	domains, err := repo.TopDomains(ctx, 10)
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "big.com", domains[0].Domain, "highest volume first")
	assert.EqualValues(t, 3, domains[0].Total)
	assert.EqualValues(t, 2, domains[0].Successful)
}

func TestVerificationLogRepository_Summary(t *testing.T) {
	database, repo := setupLogRepo(t)
	ctx := context.Background()

	seedLogs(t, database, repo, []logSeed{
		{"a.com", "203.0.113.1", verification.OutcomeSuccess, time.Hour},
		{"b.com", "203.0.113.2", verification.OutcomeFailed, time.Hour},
		{"b.com", "203.0.113.2", verification.OutcomeFailed, 48 * time.Hour},
	})

	since := time.Now().UTC().AddDate(0, 0, -30)
	summary, err := repo.Summary(ctx, since, 24*time.Hour)
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.TotalAttempts)
	assert.EqualValues(t, 1, summary.SuccessfulAttempts)
	assert.EqualValues(t, 2, summary.FailedAttempts)
	assert.EqualValues(t, 2, summary.UniqueDomains)
	assert.EqualValues(t, 2, summary.UniqueIPs)
	assert.EqualValues(t, 1, summary.RecentFailedAttempts, "only failures inside the recent window count")
}
