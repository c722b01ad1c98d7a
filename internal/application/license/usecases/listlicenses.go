package usecases

import (
	"context"
	"fmt"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// ListLicensesUseCase handles paginated license listings for the admin panel
type ListLicensesUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logger      logger.Interface
}

// NewListLicensesUseCase creates a new list licenses use case
func NewListLicensesUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	logger logger.Interface,
) *ListLicensesUseCase {
	return &ListLicensesUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logger:      logger,
	}
}

// Execute retrieves licenses matching the filter
func (uc *ListLicensesUseCase) Execute(
	ctx context.Context,
	request dto.ListLicensesRequest,
) ([]*dto.LicenseResponse, int64, error) {
	var status license.Status
	if request.Status != "" {
		status = license.Status(request.Status)
		if !status.IsValid() {
			return nil, 0, errors.NewValidationError(fmt.Sprintf("invalid license status: %s", request.Status))
		}
	}

	pagination := utils.ValidatePagination(request.Page, request.PageSize)

	filter := license.ListFilter{
		ProductID: request.ProductID,
		UserID:    request.UserID,
		Status:    status,
	}

	licenses, total, err := uc.licenseRepo.List(ctx, filter, pagination.Offset(), pagination.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list licenses", "error", err)
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}

	responses := make([]*dto.LicenseResponse, len(licenses))
	for i, lic := range licenses {
		activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
		if err != nil {
			uc.logger.Errorw("failed to count active bindings", "license_id", lic.ID(), "error", err)
			return nil, 0, fmt.Errorf("failed to count active bindings: %w", err)
		}
		responses[i] = toLicenseResponse(lic, activeCount)
	}

	return responses, total, nil
}
