package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/application/verification/dto"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/cache"
	"github.com/licentry/licentry/internal/shared/constants"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

const (
	cleanupLockName = "verification-log-cleanup"
	cleanupLockTTL  = 10 * time.Minute
)

// CleanupLogsUseCase handles the retention purge of old verification logs.
// This is the only delete path into the log store, and it is double-gated:
// the confirm flag must be set, and the cross-instance lock must be free.
type CleanupLogsUseCase struct {
	logRepo verification.LogRepository
	lock    cache.MaintenanceLock
	logger  logger.Interface
}

// NewCleanupLogsUseCase creates a new cleanup logs use case
func NewCleanupLogsUseCase(
	logRepo verification.LogRepository,
	lock cache.MaintenanceLock,
	logger logger.Interface,
) *CleanupLogsUseCase {
	return &CleanupLogsUseCase{
		logRepo: logRepo,
		lock:    lock,
		logger:  logger,
	}
}

// Execute counts and, when confirmed, purges rows older than the retention
// window. Without Confirm the call degrades to a dry run.
func (uc *CleanupLogsUseCase) Execute(
	ctx context.Context,
	request dto.CleanupRequest,
) (*dto.CleanupResponse, error) {
	if request.Days < constants.MinRetentionDays || request.Days > constants.MaxRetentionDays {
		return nil, errors.NewValidationError(fmt.Sprintf(
			"days must be between %d and %d", constants.MinRetentionDays, constants.MaxRetentionDays))
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -request.Days)
	dryRun := request.DryRun || !request.Confirm

	matched, err := uc.logRepo.CountOlderThan(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("failed to count old verification logs", "cutoff", cutoff, "error", err)
		return nil, err
	}

	response := &dto.CleanupResponse{
		DryRun:      dryRun,
		Cutoff:      cutoff,
		MatchedRows: matched,
	}

	if dryRun {
		uc.logger.Infow("verification log cleanup dry run",
			"days", request.Days,
			"cutoff", cutoff,
			"matched_rows", matched,
			"confirmed", request.Confirm,
		)
		return response, nil
	}

	token, err := uc.lock.Acquire(ctx, cleanupLockName, cleanupLockTTL)
	if err != nil {
		uc.logger.Errorw("failed to acquire cleanup lock", "error", err)
		return nil, errors.NewInternalError("failed to acquire cleanup lock")
	}
	if token == "" {
		return nil, errors.NewConflictError("a cleanup is already running")
	}
	defer func() {
		if err := uc.lock.Release(ctx, cleanupLockName, token); err != nil {
			uc.logger.Warnw("failed to release cleanup lock", "error", err)
		}
	}()
	response.LockAcquired = true

	deleted, err := uc.logRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("failed to purge verification logs", "cutoff", cutoff, "error", err)
		return nil, err
	}
	response.DeletedRows = deleted

	uc.logger.Infow("verification logs cleaned up",
		"days", request.Days,
		"cutoff", cutoff,
		"deleted_rows", deleted,
	)
	return response, nil
}
