package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// UpdateLicenseUseCase handles admin edits to a license. The purchase code is
// immutable; only the cap, expiry, and notes can change.
type UpdateLicenseUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logger      logger.Interface
}

// NewUpdateLicenseUseCase creates a new update license use case
func NewUpdateLicenseUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	logger logger.Interface,
) *UpdateLicenseUseCase {
	return &UpdateLicenseUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logger:      logger,
	}
}

// Execute applies the requested changes to the license
func (uc *UpdateLicenseUseCase) Execute(
	ctx context.Context,
	sid string,
	request dto.UpdateLicenseRequest,
) (*dto.LicenseResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	lic, err := uc.licenseRepo.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}

	if request.MaxDomains != nil {
		if err := lic.SetMaxDomains(*request.MaxDomains); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if request.LicenseExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, *request.LicenseExpiresAt)
		if err != nil {
			return nil, errors.NewValidationError(
				fmt.Sprintf("invalid license expiry format: %s (expected RFC3339)", *request.LicenseExpiresAt))
		}
		if err := lic.ExtendExpiry(parsed); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if request.Notes != nil {
		lic.SetNotes(*request.Notes)
	}

	if err := uc.licenseRepo.Update(ctx, lic); err != nil {
		uc.logger.Errorw("failed to update license", "sid", sid, "error", err)
		return nil, err
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count active bindings: %w", err)
	}

	uc.logger.Infow("license updated", "license_id", lic.ID(), "sid", sid)
	return toLicenseResponse(lic, activeCount), nil
}
