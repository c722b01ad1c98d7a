package usecases

import (
	"context"
	"fmt"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/logger"
)

// GetLicenseUseCase handles license retrieval by public identifier
type GetLicenseUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logger      logger.Interface
}

// NewGetLicenseUseCase creates a new get license use case
func NewGetLicenseUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	logger logger.Interface,
) *GetLicenseUseCase {
	return &GetLicenseUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logger:      logger,
	}
}

// Execute retrieves a license by its public short identifier
func (uc *GetLicenseUseCase) Execute(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	lic, err := uc.licenseRepo.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		uc.logger.Errorw("failed to count active bindings", "license_id", lic.ID(), "error", err)
		return nil, fmt.Errorf("failed to count active bindings: %w", err)
	}

	return toLicenseResponse(lic, activeCount), nil
}
