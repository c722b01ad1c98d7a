package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// purchaseCodeAttempts bounds the collision retry loop on code generation.
const purchaseCodeAttempts = 5

// CreateLicenseUseCase handles the business logic for creating licenses
type CreateLicenseUseCase struct {
	licenseRepo license.Repository
	licenseCfg  config.LicenseConfig
	logger      logger.Interface
}

// NewCreateLicenseUseCase creates a new create license use case
func NewCreateLicenseUseCase(
	licenseRepo license.Repository,
	licenseCfg config.LicenseConfig,
	logger logger.Interface,
) *CreateLicenseUseCase {
	return &CreateLicenseUseCase{
		licenseRepo: licenseRepo,
		licenseCfg:  licenseCfg,
		logger:      logger,
	}
}

// Execute executes the create license use case
func (uc *CreateLicenseUseCase) Execute(
	ctx context.Context,
	request dto.CreateLicenseRequest,
) (*dto.LicenseResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	licenseType := license.Type(request.LicenseType)
	if request.LicenseType == "" {
		licenseType = license.TypeSingle
	}
	if !licenseType.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid license type: %s", request.LicenseType))
	}

	maxDomains := request.MaxDomains
	if maxDomains < 1 {
		maxDomains = uc.licenseCfg.DefaultMaxDomains
	}

	licenseExpiresAt, err := uc.resolveLicenseExpiry(request.LicenseExpiresAt, licenseType)
	if err != nil {
		return nil, err
	}
	supportExpiresAt, err := uc.resolveSupportExpiry(request.SupportExpiresAt)
	if err != nil {
		return nil, err
	}

	if request.PurchaseCode != "" {
		if err := utils.ValidateLicenseKeyChars(request.PurchaseCode); err != nil {
			return nil, err
		}
	}

	lic, err := uc.createWithUniqueCode(ctx, request, licenseType, maxDomains, licenseExpiresAt, supportExpiresAt)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("license created",
		"license_id", lic.ID(),
		"sid", lic.SID(),
		"product_id", lic.ProductID(),
		"user_id", lic.UserID(),
		"license_type", lic.LicenseType(),
		"max_domains", lic.MaxDomains(),
	)

	return toLicenseResponse(lic, 0), nil
}

// createWithUniqueCode persists the license, regenerating the purchase code
// on collision. An explicit caller-supplied code gets no retry; its collision
// is the caller's conflict to resolve.
func (uc *CreateLicenseUseCase) createWithUniqueCode(
	ctx context.Context,
	request dto.CreateLicenseRequest,
	licenseType license.Type,
	maxDomains int,
	licenseExpiresAt *time.Time,
	supportExpiresAt *time.Time,
) (*license.License, error) {
	attempts := purchaseCodeAttempts
	if request.PurchaseCode != "" {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		lic, err := license.NewLicense(
			request.ProductID,
			request.UserID,
			licenseType,
			maxDomains,
			request.PurchaseCode,
			licenseExpiresAt,
			supportExpiresAt,
			request.Notes,
		)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}

		err = uc.licenseRepo.Create(ctx, lic)
		if err == nil {
			return lic, nil
		}
		if !errors.IsConflictError(err) {
			uc.logger.Errorw("failed to persist license", "error", err)
			return nil, fmt.Errorf("failed to save license: %w", err)
		}
		if request.PurchaseCode != "" {
			return nil, errors.NewConflictError("purchase code already exists")
		}
		uc.logger.Warnw("purchase code collision, regenerating",
			"attempt", attempt+1)
	}

	return nil, errors.NewConflictError("failed to generate a unique purchase code")
}

func (uc *CreateLicenseUseCase) resolveLicenseExpiry(raw string, licenseType license.Type) (*time.Time, error) {
	if licenseType == license.TypeLifetime {
		return nil, nil
	}
	if raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid license expiry format: %s (expected RFC3339)", raw))
		}
		return &parsed, nil
	}
	if uc.licenseCfg.DefaultDurationDays <= 0 {
		return nil, nil
	}
	expiry := time.Now().UTC().AddDate(0, 0, uc.licenseCfg.DefaultDurationDays)
	return &expiry, nil
}

func (uc *CreateLicenseUseCase) resolveSupportExpiry(raw string) (*time.Time, error) {
	if raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid support expiry format: %s (expected RFC3339)", raw))
		}
		return &parsed, nil
	}
	if uc.licenseCfg.SupportDurationDays <= 0 {
		return nil, nil
	}
	expiry := time.Now().UTC().AddDate(0, 0, uc.licenseCfg.SupportDurationDays)
	return &expiry, nil
}
