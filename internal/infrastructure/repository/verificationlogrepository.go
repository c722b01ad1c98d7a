package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/shared/biztime"
	"github.com/licentry/licentry/internal/shared/db"
	apperrors "github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

// VerificationLogRepositoryImpl implements the verification.LogRepository
// interface. Rows are append-only; no update statement exists in this file.
type VerificationLogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewVerificationLogRepository creates a new verification log repository instance
func NewVerificationLogRepository(database *gorm.DB, logger logger.Interface) verification.LogRepository {
	return &VerificationLogRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

// Record appends one attempt row
func (r *VerificationLogRepositoryImpl) Record(ctx context.Context, l *verification.Log) error {
	model, err := logToModel(l)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to record verification attempt",
			"domain", l.Domain(),
			"ip_address", l.IPAddress(),
			"status", l.Status(),
			"error", err)
		return fmt.Errorf("failed to record verification attempt: %w", err)
	}

	if err := l.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set log ID", "error", err)
		return fmt.Errorf("failed to set log ID: %w", err)
	}

	return nil
}

// List retrieves log rows matching the filter, with total count
func (r *VerificationLogRepositoryImpl) List(ctx context.Context, filter verification.LogFilter) ([]*verification.Log, int64, error) {
	filter = filter.Normalize()

	query := db.GetTxFromContext(ctx, r.db).Model(&models.VerificationLogModel{})
	if filter.LicenseID != 0 {
		query = query.Where("license_id = ?", filter.LicenseID)
	}
	if filter.Domain != "" {
		query = query.Where("domain = ?", filter.Domain)
	}
	if filter.IPAddress != "" {
		query = query.Where("ip_address = ?", filter.IPAddress)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Source != "" {
		query = query.Where("verification_source = ?", filter.Source)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count verification logs", "error", err)
		return nil, 0, fmt.Errorf("failed to count verification logs: %w", err)
	}

	order := "created_at DESC"
	if filter.SortOrder == verification.SortAsc {
		order = "created_at ASC"
	}

	var rows []models.VerificationLogModel
	if err := query.Order(order).Offset(filter.Offset()).Limit(filter.PerPage).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list verification logs", "error", err)
		return nil, 0, fmt.Errorf("failed to list verification logs: %w", err)
	}

	logs, err := logsFromModels(rows)
	if err != nil {
		r.logger.Errorw("failed to reconstruct verification logs", "error", err)
		return nil, 0, err
	}
	return logs, total, nil
}

// ListRecent retrieves the newest rows up to limit
func (r *VerificationLogRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*verification.Log, error) {
	if limit < 1 {
		return nil, apperrors.NewValidationError("limit must be at least 1")
	}

	var rows []models.VerificationLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list recent verification logs", "error", err)
		return nil, fmt.Errorf("failed to list recent verification logs: %w", err)
	}
	return logsFromModels(rows)
}

// CountOlderThan counts rows older than the cutoff (cleanup dry run)
func (r *VerificationLogRepositoryImpl) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VerificationLogModel{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count old verification logs", "error", err)
		return 0, fmt.Errorf("failed to count old verification logs: %w", err)
	}
	return count, nil
}

// PurgeOlderThan deletes rows older than the cutoff and returns the deleted count
func (r *VerificationLogRepositoryImpl) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("created_at < ?", cutoff).
		Delete(&models.VerificationLogModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to purge verification logs", "cutoff", cutoff, "error", result.Error)
		return 0, fmt.Errorf("failed to purge verification logs: %w", result.Error)
	}

	r.logger.Infow("verification logs purged",
		"cutoff", cutoff,
		"deleted", result.RowsAffected)
	return result.RowsAffected, nil
}

// Summary aggregates counts since the given instant
func (r *VerificationLogRepositoryImpl) Summary(ctx context.Context, since time.Time, recentWindow time.Duration) (verification.StatsSummary, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var summary verification.StatsSummary

	base := func() *gorm.DB {
		return tx.Model(&models.VerificationLogModel{}).Where("created_at >= ?", since)
	}

	if err := base().Count(&summary.TotalAttempts).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}
	if err := base().Where("status = ?", string(verification.OutcomeSuccess)).Count(&summary.SuccessfulAttempts).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}
	if err := base().Where("status = ?", string(verification.OutcomeFailed)).Count(&summary.FailedAttempts).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}
	if err := base().Distinct("domain").Count(&summary.UniqueDomains).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}
	if err := base().Distinct("ip_address").Count(&summary.UniqueIPs).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}

	recentCutoff := time.Now().Add(-recentWindow)
	err := tx.Model(&models.VerificationLogModel{}).
		Where("created_at >= ? AND status = ?", recentCutoff, string(verification.OutcomeFailed)).
		Count(&summary.RecentFailedAttempts).Error
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate verification logs: %w", err)
	}

	return summary, nil
}

// FailuresByIP groups failed attempts since the given instant by IP.
// Grouping runs in the application so timestamp handling stays portable
// across MySQL and the SQLite used in tests.
func (r *VerificationLogRepositoryImpl) FailuresByIP(ctx context.Context, since time.Time) ([]verification.FailureGroup, error) {
	return r.groupFailures(ctx, since, "ip_address")
}

// FailuresByDomain groups failed attempts since the given instant by domain
func (r *VerificationLogRepositoryImpl) FailuresByDomain(ctx context.Context, since time.Time) ([]verification.FailureGroup, error) {
	return r.groupFailures(ctx, since, "domain")
}

func (r *VerificationLogRepositoryImpl) groupFailures(ctx context.Context, since time.Time, column string) ([]verification.FailureGroup, error) {
	var rows []models.VerificationLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Select(column, "created_at").
		Where("status = ? AND created_at >= ?", string(verification.OutcomeFailed), since).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to load failed attempts", "group_by", column, "error", err)
		return nil, fmt.Errorf("failed to load failed attempts: %w", err)
	}

	grouped := make(map[string]*verification.FailureGroup)
	order := make([]string, 0)
	for i := range rows {
		key := rows[i].IPAddress
		if column == "domain" {
			key = rows[i].Domain
		}
		g, ok := grouped[key]
		if !ok {
			grouped[key] = &verification.FailureGroup{
				Key:       key,
				Count:     1,
				FirstSeen: rows[i].CreatedAt,
				LastSeen:  rows[i].CreatedAt,
			}
			order = append(order, key)
			continue
		}
		g.Count++
		if rows[i].CreatedAt.Before(g.FirstSeen) {
			g.FirstSeen = rows[i].CreatedAt
		}
		if rows[i].CreatedAt.After(g.LastSeen) {
			g.LastSeen = rows[i].CreatedAt
		}
	}

	groups := make([]verification.FailureGroup, 0, len(grouped))
	for _, key := range order {
		groups = append(groups, *grouped[key])
	}
	return groups, nil
}

// CountsByDay buckets attempts per business day in [from, to)
func (r *VerificationLogRepositoryImpl) CountsByDay(ctx context.Context, from, to time.Time) ([]verification.DayCounts, error) {
	var rows []models.VerificationLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Select("created_at", "is_valid").
		Where("created_at >= ? AND created_at < ?", from, to).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to load attempts for day counts", "error", err)
		return nil, fmt.Errorf("failed to load attempts for day counts: %w", err)
	}

	buckets := make(map[string]*verification.DayCounts)
	for i := range rows {
		day := biztime.DayKey(rows[i].CreatedAt)
		b, ok := buckets[day]
		if !ok {
			b = &verification.DayCounts{Day: day}
			buckets[day] = b
		}
		b.Total++
		if rows[i].IsValid {
			b.Successful++
		} else {
			b.Failed++
		}
	}

	counts := make([]verification.DayCounts, 0, len(buckets))
	for _, b := range buckets {
		counts = append(counts, *b)
	}
	return counts, nil
}

// CountsByStatus buckets attempts per outcome since the given instant
func (r *VerificationLogRepositoryImpl) CountsByStatus(ctx context.Context, since time.Time) ([]verification.StatusCount, error) {
	var counts []verification.StatusCount
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VerificationLogModel{}).
		Select("status", "COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		r.logger.Errorw("failed to count attempts by status", "error", err)
		return nil, fmt.Errorf("failed to count attempts by status: %w", err)
	}
	return counts, nil
}

// TopDomains returns the highest-volume domains
func (r *VerificationLogRepositoryImpl) TopDomains(ctx context.Context, limit int) ([]verification.DomainVolume, error) {
	if limit < 1 {
		return nil, apperrors.NewValidationError("limit must be at least 1")
	}

	var volumes []verification.DomainVolume
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VerificationLogModel{}).
		Select("domain", "COUNT(*) as total", "SUM(CASE WHEN is_valid THEN 1 ELSE 0 END) as successful").
		Group("domain").
		Order("total DESC").
		Limit(limit).
		Scan(&volumes).Error
	if err != nil {
		r.logger.Errorw("failed to aggregate top domains", "error", err)
		return nil, fmt.Errorf("failed to aggregate top domains: %w", err)
	}
	return volumes, nil
}

// AttemptTimesSince returns the creation instants of attempts since the given instant
func (r *VerificationLogRepositoryImpl) AttemptTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var rows []models.VerificationLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Select("created_at").
		Where("created_at >= ?", since).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to load attempt times", "error", err)
		return nil, fmt.Errorf("failed to load attempt times: %w", err)
	}

	times := make([]time.Time, len(rows))
	for i := range rows {
		times[i] = rows[i].CreatedAt
	}
	return times, nil
}

func logToModel(l *verification.Log) (*models.VerificationLogModel, error) {
	requestData, err := marshalMeta(l.RequestData())
	if err != nil {
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}
	responseData, err := marshalMeta(l.ResponseData())
	if err != nil {
		return nil, fmt.Errorf("failed to encode response data: %w", err)
	}

	return &models.VerificationLogModel{
		LicenseID:        l.LicenseID(),
		PurchaseCodeHash: l.PurchaseCodeHash(),
		Domain:           l.Domain(),
		IPAddress:        l.IPAddress(),
		UserAgent:        l.UserAgent(),
		Status:           l.Status().String(),
		IsValid:          l.IsValid(),
		ResponseMessage:  l.ResponseMessage(),
		RequestData:      requestData,
		ResponseData:     responseData,
		ErrorDetails:     l.ErrorDetails(),
		Source:           l.Source().String(),
		VerifiedAt:       l.VerifiedAt(),
		CreatedAt:        l.CreatedAt(),
	}, nil
}

func logsFromModels(rows []models.VerificationLogModel) ([]*verification.Log, error) {
	logs := make([]*verification.Log, len(rows))
	for i := range rows {
		l, err := logFromModel(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct verification log: %w", err)
		}
		logs[i] = l
	}
	return logs, nil
}

func logFromModel(m *models.VerificationLogModel) (*verification.Log, error) {
	requestData, err := unmarshalMeta(m.RequestData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode request data: %w", err)
	}
	responseData, err := unmarshalMeta(m.ResponseData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response data: %w", err)
	}

	return verification.ReconstructLog(verification.LogReconstructParams{
		ID:               m.ID,
		LicenseID:        m.LicenseID,
		PurchaseCodeHash: m.PurchaseCodeHash,
		Domain:           m.Domain,
		IPAddress:        m.IPAddress,
		UserAgent:        m.UserAgent,
		Status:           verification.Outcome(m.Status),
		IsValid:          m.IsValid,
		ResponseMessage:  m.ResponseMessage,
		RequestData:      requestData,
		ResponseData:     responseData,
		ErrorDetails:     m.ErrorDetails,
		Source:           license.Source(m.Source),
		VerifiedAt:       m.VerifiedAt,
		CreatedAt:        m.CreatedAt,
	})
}

func marshalMeta(meta map[string]any) (datatypes.JSON, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalMeta(raw datatypes.JSON) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
