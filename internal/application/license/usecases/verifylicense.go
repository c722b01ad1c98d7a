// Package usecases contains the license application use cases.
package usecases

import (
	"context"
	"fmt"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/db"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// Caller-safe denial messages. These are the only strings a failed
// verification ever exposes; internal state never leaks through them.
const (
	msgLicenseNotFound    = "License not found"
	msgLicenseRevoked     = "License has been revoked"
	msgLicenseSuspended   = "License is suspended"
	msgLicenseInactive    = "License is inactive"
	msgLicenseExpired     = "License has expired"
	msgDomainLimitReached = "Domain limit reached for this license"
	msgBindingPending     = "Domain binding is pending approval"
	msgBindingSuspended   = "Domain binding is suspended"
	msgVerified           = "License verified successfully"
)

// VerifyLicenseUseCase handles the verification of a purchase code against a
// domain. Every attempt that reaches the engine produces exactly one
// verification log row, whatever the outcome.
type VerifyLicenseUseCase struct {
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logRepo     verification.LogRepository
	txManager   *db.TransactionManager
	licenseCfg  config.LicenseConfig
	logger      logger.Interface
}

// NewVerifyLicenseUseCase creates a new verify license use case
func NewVerifyLicenseUseCase(
	licenseRepo license.Repository,
	bindingRepo license.BindingRepository,
	logRepo verification.LogRepository,
	txManager *db.TransactionManager,
	licenseCfg config.LicenseConfig,
	logger logger.Interface,
) *VerifyLicenseUseCase {
	return &VerifyLicenseUseCase{
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logRepo:     logRepo,
		txManager:   txManager,
		licenseCfg:  licenseCfg,
		logger:      logger,
	}
}

// verifyOutcome carries the result of the transactional phase out to the
// logging phase.
type verifyOutcome struct {
	licenseID *uint
	valid     bool
	message   string
	detail    *dto.VerifiedLicenseDTO
}

// Execute verifies a purchase code against a domain. Denials come back as a
// response with Valid=false; only validation and infrastructure problems
// surface as errors.
func (uc *VerifyLicenseUseCase) Execute(
	ctx context.Context,
	request dto.VerifyLicenseRequest,
) (*dto.VerifyLicenseResponse, error) {
	if err := utils.ValidateLicenseKeyChars(request.PurchaseCode); err != nil {
		return nil, err
	}
	if err := utils.ValidateDomainName(request.Domain); err != nil {
		return nil, err
	}

	source := license.Source(request.Source)
	if request.Source == "" {
		source = license.SourceAPI
	}
	if !source.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid verification source: %s", request.Source))
	}

	code := license.NormalizePurchaseCode(request.PurchaseCode)
	domain := utils.NormalizeDomain(request.Domain)

	uc.logger.Debugw("executing verify license use case",
		"domain", domain,
		"ip_address", request.IPAddress,
		"source", source,
	)

	var outcome verifyOutcome
	txErr := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		result, err := uc.verifyInTx(txCtx, code, domain)
		if err != nil {
			return err
		}
		outcome = result
		return nil
	})

	if txErr != nil {
		uc.recordAttempt(ctx, recordAttemptParams{
			licenseID:    outcome.licenseID,
			purchaseCode: code,
			domain:       domain,
			request:      request,
			source:       source,
			status:       verification.OutcomeError,
			message:      "Verification failed due to an internal error",
			errorDetails: txErr.Error(),
		})
		uc.logger.Errorw("license verification failed",
			"domain", domain,
			"error", txErr)
		return nil, errors.NewInternalError("failed to verify license")
	}

	status := verification.OutcomeFailed
	if outcome.valid {
		status = verification.OutcomeSuccess
	}
	uc.recordAttempt(ctx, recordAttemptParams{
		licenseID:    outcome.licenseID,
		purchaseCode: code,
		domain:       domain,
		request:      request,
		source:       source,
		status:       status,
		message:      outcome.message,
	})

	return &dto.VerifyLicenseResponse{
		Valid:   outcome.valid,
		Message: outcome.message,
		License: outcome.detail,
	}, nil
}

// verifyInTx runs the ordered entitlement checks while holding a row lock on
// the license. The lock serializes concurrent verifications per license so
// the domain cap cannot be overshot by racing requests.
func (uc *VerifyLicenseUseCase) verifyInTx(ctx context.Context, code, domain string) (verifyOutcome, error) {
	lic, err := uc.licenseRepo.GetByPurchaseCodeForUpdate(ctx, code)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return verifyOutcome{message: msgLicenseNotFound}, nil
		}
		return verifyOutcome{}, fmt.Errorf("failed to load license: %w", err)
	}

	licenseID := lic.ID()
	denied := func(message string) verifyOutcome {
		return verifyOutcome{licenseID: &licenseID, message: message}
	}

	switch lic.Status() {
	case license.StatusRevoked:
		return denied(msgLicenseRevoked), nil
	case license.StatusSuspended:
		return denied(msgLicenseSuspended), nil
	case license.StatusInactive:
		return denied(msgLicenseInactive), nil
	case license.StatusExpired:
		return denied(msgLicenseExpired), nil
	}

	if lic.IsExpired() {
		// Write-on-read: persist the expired state the moment it is observed.
		if err := lic.MarkExpired(); err != nil {
			return verifyOutcome{}, fmt.Errorf("failed to mark license expired: %w", err)
		}
		if err := uc.licenseRepo.Update(ctx, lic); err != nil {
			return verifyOutcome{}, fmt.Errorf("failed to persist expired license: %w", err)
		}
		return denied(msgLicenseExpired), nil
	}

	binding, err := uc.resolveBinding(ctx, lic, domain)
	if err != nil {
		return verifyOutcome{}, err
	}
	if binding == nil {
		return denied(msgDomainLimitReached), nil
	}

	switch binding.Status() {
	case license.BindingStatusPending:
		return denied(msgBindingPending), nil
	case license.BindingStatusSuspended:
		return denied(msgBindingSuspended), nil
	case license.BindingStatusInactive:
		// A released binding may re-verify if a slot is free under the cap.
		activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
		if err != nil {
			return verifyOutcome{}, fmt.Errorf("failed to count active bindings: %w", err)
		}
		if lic.HasReachedDomainLimit(activeCount) {
			return denied(msgDomainLimitReached), nil
		}
		if err := binding.Activate(); err != nil {
			return verifyOutcome{}, fmt.Errorf("failed to reactivate binding: %w", err)
		}
	}

	binding.MarkVerified()
	binding.Touch()
	if err := uc.bindingRepo.Update(ctx, binding); err != nil {
		return verifyOutcome{}, fmt.Errorf("failed to update binding: %w", err)
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		return verifyOutcome{}, fmt.Errorf("failed to count active bindings: %w", err)
	}

	return verifyOutcome{
		licenseID: &licenseID,
		valid:     true,
		message:   msgVerified,
		detail: &dto.VerifiedLicenseDTO{
			LicenseType:      lic.LicenseType().String(),
			Status:           lic.Status().String(),
			Domain:           binding.Domain(),
			DomainsRemaining: lic.RemainingDomains(activeCount),
			LicenseExpiresAt: lic.LicenseExpiresAt(),
			SupportExpiresAt: lic.SupportExpiresAt(),
			SupportActive:    lic.SupportActive(),
		},
	}, nil
}

// resolveBinding finds or creates the binding for the domain. A nil binding
// with nil error means the domain cap blocked creation.
func (uc *VerifyLicenseUseCase) resolveBinding(ctx context.Context, lic *license.License, domain string) (*license.DomainBinding, error) {
	binding, err := uc.bindingRepo.GetByLicenseAndDomain(ctx, lic.ID(), domain)
	if err == nil {
		return binding, nil
	}
	if !errors.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load binding: %w", err)
	}

	activeCount, err := uc.bindingRepo.CountActive(ctx, lic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count active bindings: %w", err)
	}
	if lic.HasReachedDomainLimit(activeCount) {
		return nil, nil
	}

	newBinding, err := license.NewDomainBinding(lic.ID(), domain, uc.licenseCfg.AutoApproveBindings)
	if err != nil {
		return nil, fmt.Errorf("failed to create binding: %w", err)
	}

	if err := uc.bindingRepo.Create(ctx, newBinding); err != nil {
		if errors.IsConflictError(err) {
			// Lost a race on the (license_id, domain) unique index; the
			// winner's binding is the one to use.
			existing, getErr := uc.bindingRepo.GetByLicenseAndDomain(ctx, lic.ID(), domain)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load binding after conflict: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to persist binding: %w", err)
	}

	uc.logger.Infow("domain binding created",
		"license_id", lic.ID(),
		"domain", domain,
		"status", newBinding.Status(),
	)
	return newBinding, nil
}

type recordAttemptParams struct {
	licenseID    *uint
	purchaseCode string
	domain       string
	request      dto.VerifyLicenseRequest
	source       license.Source
	status       verification.Outcome
	message      string
	errorDetails string
}

// recordAttempt appends the log row for this attempt. The row is written
// outside the verification transaction so a rolled-back attempt still leaves
// its trace. A failed write is reported but does not change the outcome.
func (uc *VerifyLicenseUseCase) recordAttempt(ctx context.Context, p recordAttemptParams) {
	entry, err := verification.NewLog(verification.NewLogParams{
		LicenseID:       p.licenseID,
		PurchaseCode:    p.purchaseCode,
		Domain:          p.domain,
		IPAddress:       p.request.IPAddress,
		UserAgent:       p.request.UserAgent,
		Status:          p.status,
		ResponseMessage: p.message,
		RequestData: map[string]any{
			"domain": p.domain,
			"source": p.source.String(),
		},
		ResponseData: map[string]any{
			"valid":   p.status == verification.OutcomeSuccess,
			"message": p.message,
		},
		ErrorDetails: p.errorDetails,
		Source:       p.source,
	})
	if err != nil {
		uc.logger.Errorw("failed to build verification log entry",
			"domain", p.domain,
			"error", err)
		return
	}

	if err := uc.logRepo.Record(ctx, entry); err != nil {
		uc.logger.Errorw("failed to record verification attempt",
			"domain", p.domain,
			"status", p.status,
			"error", err)
	}
}
