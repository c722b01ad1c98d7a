// Package verification wires the verification log use cases into a single
// application service.
package verification

import (
	"context"

	"github.com/licentry/licentry/internal/application/verification/dto"
	"github.com/licentry/licentry/internal/application/verification/usecases"
	domainlicense "github.com/licentry/licentry/internal/domain/license"
	domainverification "github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/cache"
	"github.com/licentry/licentry/internal/shared/logger"
)

// Service exposes the verification log operations.
type Service struct {
	listLogs    *usecases.ListLogsUseCase
	cleanupLogs *usecases.CleanupLogsUseCase
}

// NewService creates the verification log application service
func NewService(
	logRepo domainverification.LogRepository,
	licenseRepo domainlicense.Repository,
	lock cache.MaintenanceLock,
	logger logger.Interface,
) *Service {
	return &Service{
		listLogs:    usecases.NewListLogsUseCase(logRepo, licenseRepo, logger),
		cleanupLogs: usecases.NewCleanupLogsUseCase(logRepo, lock, logger),
	}
}

// ListLogs retrieves verification log rows matching the request
func (s *Service) ListLogs(ctx context.Context, request dto.ListLogsRequest) ([]*dto.LogResponse, int64, error) {
	return s.listLogs.Execute(ctx, request)
}

// CleanupLogs purges verification logs older than the retention window
func (s *Service) CleanupLogs(ctx context.Context, request dto.CleanupRequest) (*dto.CleanupResponse, error) {
	return s.cleanupLogs.Execute(ctx, request)
}
