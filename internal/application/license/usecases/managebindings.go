package usecases

import (
	"context"
	"fmt"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// ManageBindingsUseCase handles the admin view and control of domain
// bindings: listing, manual binding, approval, and release.
type ManageBindingsUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	licenseCfg  config.LicenseConfig
	logger      logger.Interface
}

// NewManageBindingsUseCase creates a new manage bindings use case
func NewManageBindingsUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	licenseCfg config.LicenseConfig,
	logger logger.Interface,
) *ManageBindingsUseCase {
	return &ManageBindingsUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		licenseCfg:  licenseCfg,
		logger:      logger,
	}
}

// List retrieves all bindings for a license
func (uc *ManageBindingsUseCase) List(ctx context.Context, licenseSID string) ([]*dto.DomainBindingResponse, error) {
	lic, err := uc.licenseRepo.GetBySID(ctx, licenseSID)
	if err != nil {
		return nil, err
	}

	bindings, err := uc.bindingRepo.ListByLicense(ctx, lic.ID())
	if err != nil {
		uc.logger.Errorw("failed to list bindings", "license_id", lic.ID(), "error", err)
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}

	responses := make([]*dto.DomainBindingResponse, len(bindings))
	for i, b := range bindings {
		responses[i] = toBindingResponse(b)
	}
	return responses, nil
}

// Add manually binds a domain to a license. Admin binds are an explicit
// override: they skip the domain cap that the verify path enforces, so an
// operator can grant an extra domain without raising the cap.
func (uc *ManageBindingsUseCase) Add(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	if err := utils.ValidateDomainName(domain); err != nil {
		return nil, err
	}
	domain = utils.NormalizeDomain(domain)

	lic, err := uc.licenseRepo.GetBySID(ctx, licenseSID)
	if err != nil {
		return nil, err
	}

	// Admin-added bindings are approved immediately regardless of policy.
	binding, err := license.NewDomainBinding(lic.ID(), domain, true)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.bindingRepo.Create(ctx, binding); err != nil {
		if errors.IsConflictError(err) {
			return nil, errors.NewConflictError("domain is already bound to this license")
		}
		uc.logger.Errorw("failed to persist binding", "license_id", lic.ID(), "domain", domain, "error", err)
		return nil, fmt.Errorf("failed to save binding: %w", err)
	}

	uc.logger.Infow("domain bound by admin",
		"license_id", lic.ID(),
		"domain", domain,
	)
	return toBindingResponse(binding), nil
}

// Approve activates a pending binding, subject to the domain cap.
func (uc *ManageBindingsUseCase) Approve(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return uc.changeStatus(ctx, licenseSID, domain, "approve", func(lic *license.License, b *license.DomainBinding, activeCount int) error {
		if b.IsActive() {
			return nil
		}
		if lic.HasReachedDomainLimit(activeCount) {
			return errors.NewConflictError("domain limit reached for this license")
		}
		if err := b.Activate(); err != nil {
			return err
		}
		b.MarkVerified()
		return nil
	})
}

// Suspend suspends a binding without releasing its slot.
func (uc *ManageBindingsUseCase) Suspend(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return uc.changeStatus(ctx, licenseSID, domain, "suspend", func(_ *license.License, b *license.DomainBinding, _ int) error {
		return b.Suspend()
	})
}

// Release deactivates a binding, freeing a slot under the cap.
func (uc *ManageBindingsUseCase) Release(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return uc.changeStatus(ctx, licenseSID, domain, "release", func(_ *license.License, b *license.DomainBinding, _ int) error {
		return b.Deactivate()
	})
}

func (uc *ManageBindingsUseCase) changeStatus(
	ctx context.Context,
	licenseSID string,
	domain string,
	action string,
	apply func(*license.License, *license.DomainBinding, int) error,
) (*dto.DomainBindingResponse, error) {
	domain = utils.NormalizeDomain(domain)

	lic, err := uc.licenseRepo.GetBySID(ctx, licenseSID)
	if err != nil {
		return nil, err
	}

	binding, err := uc.bindingRepo.GetByLicenseAndDomain(ctx, lic.ID(), domain)
	if err != nil {
		return nil, err
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count active bindings: %w", err)
	}

	if err := apply(lic, binding, activeCount); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.bindingRepo.Update(ctx, binding); err != nil {
		uc.logger.Errorw("failed to update binding",
			"license_id", lic.ID(),
			"domain", domain,
			"action", action,
			"error", err)
		return nil, err
	}

	uc.logger.Infow("binding status changed",
		"license_id", lic.ID(),
		"domain", domain,
		"action", action,
		"status", binding.Status(),
	)
	return toBindingResponse(binding), nil
}
