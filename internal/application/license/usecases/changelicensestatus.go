package usecases

import (
	"context"
	"fmt"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

// ChangeLicenseStatusUseCase handles the admin lifecycle transitions:
// suspend, reactivate, deactivate, and revoke.
type ChangeLicenseStatusUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logger      logger.Interface
}

// NewChangeLicenseStatusUseCase creates a new change license status use case
func NewChangeLicenseStatusUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	logger logger.Interface,
) *ChangeLicenseStatusUseCase {
	return &ChangeLicenseStatusUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logger:      logger,
	}
}

// Suspend transitions the license to suspended. Suspension is reversible;
// bindings are kept so reactivation restores service untouched.
func (uc *ChangeLicenseStatusUseCase) Suspend(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return uc.transition(ctx, sid, "suspend", func(l *license.License) error {
		return l.Suspend()
	})
}

// Reactivate transitions the license back to active. Expired licenses may be
// reactivated explicitly; combine with an expiry extension or the next
// verification will expire it again.
func (uc *ChangeLicenseStatusUseCase) Reactivate(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return uc.transition(ctx, sid, "reactivate", func(l *license.License) error {
		return l.Activate()
	})
}

// Deactivate transitions the license to inactive.
func (uc *ChangeLicenseStatusUseCase) Deactivate(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return uc.transition(ctx, sid, "deactivate", func(l *license.License) error {
		return l.Deactivate()
	})
}

// Revoke permanently revokes the license. There is no way back from revoked.
func (uc *ChangeLicenseStatusUseCase) Revoke(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return uc.transition(ctx, sid, "revoke", func(l *license.License) error {
		return l.Revoke()
	})
}

// Expire transitions the license to expired ahead of its date. Verification
// also expires licenses on read; this is the manual admin equivalent.
func (uc *ChangeLicenseStatusUseCase) Expire(ctx context.Context, sid string) (*dto.LicenseResponse, error) {
	return uc.transition(ctx, sid, "expire", func(l *license.License) error {
		return l.MarkExpired()
	})
}

func (uc *ChangeLicenseStatusUseCase) transition(
	ctx context.Context,
	sid string,
	action string,
	apply func(*license.License) error,
) (*dto.LicenseResponse, error) {
	lic, err := uc.licenseRepo.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}

	previousStatus := lic.Status()
	if err := apply(lic); err != nil {
		uc.logger.Warnw("license status transition rejected",
			"sid", sid,
			"action", action,
			"status", previousStatus,
			"error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.licenseRepo.Update(ctx, lic); err != nil {
		uc.logger.Errorw("failed to update license status",
			"sid", sid,
			"action", action,
			"error", err)
		return nil, err
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count active bindings: %w", err)
	}

	// Suspensions, expirations, and revocations are warning-level audit events.
	logFn := uc.logger.Infow
	switch lic.Status() {
	case license.StatusSuspended, license.StatusExpired, license.StatusRevoked:
		logFn = uc.logger.Warnw
	}
	logFn("license status changed",
		"license_id", lic.ID(),
		"sid", sid,
		"action", action,
		"from", previousStatus,
		"to", lic.Status(),
	)
	return toLicenseResponse(lic, activeCount), nil
}
