// Package license wires the license use cases into a single application
// service consumed by the HTTP and CLI interfaces.
package license

import (
	"context"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/application/license/usecases"
	domainlicense "github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/db"
	"github.com/licentry/licentry/internal/shared/logger"
)

// Service exposes the license application operations.
type Service struct {
	createLicense *usecases.CreateLicenseUseCase
	verifyLicense *usecases.VerifyLicenseUseCase
	getLicense    *usecases.GetLicenseUseCase
	listLicenses  *usecases.ListLicensesUseCase
	updateLicense *usecases.UpdateLicenseUseCase
	changeStatus  *usecases.ChangeLicenseStatusUseCase
	bindings      *usecases.ManageBindingsUseCase
}

// NewService creates the license application service
func NewService(
	licenseRepo domainlicense.Repository,
	bindingRepo domainlicense.BindingRepository,
	logRepo verification.LogRepository,
	txManager *db.TransactionManager,
	licenseCfg config.LicenseConfig,
	logger logger.Interface,
) *Service {
	return &Service{
		createLicense: usecases.NewCreateLicenseUseCase(licenseRepo, licenseCfg, logger),
		verifyLicense: usecases.NewVerifyLicenseUseCase(licenseRepo, bindingRepo, logRepo, txManager, licenseCfg, logger),
		getLicense:    usecases.NewGetLicenseUseCase(licenseRepo, bindingRepo, logger),
		listLicenses:  usecases.NewListLicensesUseCase(licenseRepo, bindingRepo, logger),
		updateLicense: usecases.NewUpdateLicenseUseCase(licenseRepo, bindingRepo, logger),
		changeStatus:  usecases.NewChangeLicenseStatusUseCase(licenseRepo, bindingRepo, logger),
		bindings:      usecases.NewManageBindingsUseCase(licenseRepo, bindingRepo, licenseCfg, logger),
	}
}

// CreateLicense creates a new license
func (s *Service) CreateLicense(ctx context.Context, request dto.CreateLicenseRequest) (*dto.LicenseResponse, error) {
	return s.createLicense.Execute(ctx, request)
}

// VerifyLicense verifies a purchase code against a domain
func (s *Service) VerifyLicense(ctx context.Context, request dto.VerifyLicenseRequest) (*dto.VerifyLicenseResponse, error) {
	return s.verifyLicense.Execute(ctx, request)
}

// GetLicense retrieves a license by its public identifier
func (s *Service) GetLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.getLicense.Execute(ctx, sid)
}

// ListLicenses retrieves licenses matching the filter
func (s *Service) ListLicenses(ctx context.Context, request dto.ListLicensesRequest) ([]*dto.LicenseResponse, int64, error) {
	return s.listLicenses.Execute(ctx, request)
}

// UpdateLicense applies admin edits to a license
func (s *Service) UpdateLicense(ctx context.Context, sid string, request dto.UpdateLicenseRequest) (*dto.LicenseResponse, error) {
	return s.updateLicense.Execute(ctx, sid, request)
}

// SuspendLicense suspends a license
func (s *Service) SuspendLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.changeStatus.Suspend(ctx, sid)
}

// ReactivateLicense reactivates a suspended or expired license
func (s *Service) ReactivateLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.changeStatus.Reactivate(ctx, sid)
}

// DeactivateLicense deactivates a license
func (s *Service) DeactivateLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.changeStatus.Deactivate(ctx, sid)
}

// RevokeLicense permanently revokes a license
func (s *Service) RevokeLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.changeStatus.Revoke(ctx, sid)
}

// ExpireLicense manually expires a license
func (s *Service) ExpireLicense(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return s.changeStatus.Expire(ctx, sid)
}

// ListBindings retrieves all bindings of a license
func (s *Service) ListBindings(ctx context.Context, licenseSID string) ([]*dto.DomainBindingResponse, error) {
	return s.bindings.List(ctx, licenseSID)
}

// AddBinding manually binds a domain to a license
func (s *Service) AddBinding(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return s.bindings.Add(ctx, licenseSID, domain)
}

// ApproveBinding activates a pending binding
func (s *Service) ApproveBinding(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return s.bindings.Approve(ctx, licenseSID, domain)
}

// SuspendBinding suspends a binding
func (s *Service) SuspendBinding(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return s.bindings.Suspend(ctx, licenseSID, domain)
}

// ReleaseBinding deactivates a binding, freeing a slot under the cap
func (s *Service) ReleaseBinding(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error) {
	return s.bindings.Release(ctx, licenseSID, domain)
}
