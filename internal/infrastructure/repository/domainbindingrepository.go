package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/shared/db"
	apperrors "github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

// DomainBindingRepositoryImpl implements the license.BindingRepository interface
type DomainBindingRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewDomainBindingRepository creates a new domain binding repository instance
func NewDomainBindingRepository(database *gorm.DB, logger logger.Interface) license.BindingRepository {
	return &DomainBindingRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

// Create persists a new domain binding. A duplicate (license_id, domain) pair
// surfaces as a conflict so the verification path can re-resolve the binding
// that won the race.
func (r *DomainBindingRepositoryImpl) Create(ctx context.Context, b *license.DomainBinding) error {
	model := bindingToModel(b)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("domain binding already exists")
		}
		r.logger.Errorw("failed to create domain binding",
			"license_id", b.LicenseID(),
			"domain", b.Domain(),
			"error", err)
		return fmt.Errorf("failed to create domain binding: %w", err)
	}

	if err := b.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set binding ID", "error", err)
		return fmt.Errorf("failed to set binding ID: %w", err)
	}

	r.logger.Infow("domain binding created",
		"id", model.ID,
		"license_id", model.LicenseID,
		"domain", model.Domain,
		"status", model.Status)

	return nil
}

// Update persists binding mutations
func (r *DomainBindingRepositoryImpl) Update(ctx context.Context, b *license.DomainBinding) error {
	if b.ID() == 0 {
		return apperrors.NewValidationError("binding ID is required for update")
	}

	model := bindingToModel(b)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseDomainModel{}).
		Where("id = ?", b.ID()).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"is_verified":  model.IsVerified,
			"verified_at":  model.VerifiedAt,
			"last_used_at": model.LastUsedAt,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update domain binding", "id", b.ID(), "error", result.Error)
		return fmt.Errorf("failed to update domain binding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("domain binding not found")
	}

	return nil
}

// GetByID retrieves a binding by ID
func (r *DomainBindingRepositoryImpl) GetByID(ctx context.Context, id uint) (*license.DomainBinding, error) {
	var model models.LicenseDomainModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("domain binding not found")
		}
		r.logger.Errorw("failed to get domain binding", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get domain binding: %w", err)
	}
	return bindingFromModel(&model)
}

// GetByLicenseAndDomain retrieves the binding for a license+domain pair
func (r *DomainBindingRepositoryImpl) GetByLicenseAndDomain(ctx context.Context, licenseID uint, domain string) (*license.DomainBinding, error) {
	var model models.LicenseDomainModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("license_id = ? AND domain = ?", licenseID, strings.ToLower(strings.TrimSpace(domain))).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("domain binding not found")
		}
		r.logger.Errorw("failed to get domain binding",
			"license_id", licenseID,
			"domain", domain,
			"error", err)
		return nil, fmt.Errorf("failed to get domain binding: %w", err)
	}
	return bindingFromModel(&model)
}

// ListByLicense retrieves all bindings for a license
func (r *DomainBindingRepositoryImpl) ListByLicense(ctx context.Context, licenseID uint) ([]*license.DomainBinding, error) {
	var rows []models.LicenseDomainModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("license_id = ?", licenseID).
		Order("added_at ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list domain bindings", "license_id", licenseID, "error", err)
		return nil, fmt.Errorf("failed to list domain bindings: %w", err)
	}

	bindings := make([]*license.DomainBinding, len(rows))
	for i := range rows {
		b, err := bindingFromModel(&rows[i])
		if err != nil {
			r.logger.Errorw("failed to reconstruct domain binding", "id", rows[i].ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct domain binding: %w", err)
		}
		bindings[i] = b
	}

	return bindings, nil
}

// CountActive returns the number of active bindings for a license
func (r *DomainBindingRepositoryImpl) CountActive(ctx context.Context, licenseID uint) (int, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseDomainModel{}).
		Where("license_id = ? AND status = ?", licenseID, string(license.BindingStatusActive)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count active bindings", "license_id", licenseID, "error", err)
		return 0, fmt.Errorf("failed to count active bindings: %w", err)
	}
	return int(count), nil
}

func bindingToModel(b *license.DomainBinding) *models.LicenseDomainModel {
	return &models.LicenseDomainModel{
		SID:        b.SID(),
		LicenseID:  b.LicenseID(),
		Domain:     b.Domain(),
		Status:     b.Status().String(),
		IsVerified: b.IsVerified(),
		VerifiedAt: b.VerifiedAt(),
		AddedAt:    b.AddedAt(),
		LastUsedAt: b.LastUsedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func bindingFromModel(m *models.LicenseDomainModel) (*license.DomainBinding, error) {
	return license.ReconstructDomainBinding(license.BindingReconstructParams{
		ID:         m.ID,
		SID:        m.SID,
		LicenseID:  m.LicenseID,
		Domain:     m.Domain,
		Status:     license.BindingStatus(m.Status),
		IsVerified: m.IsVerified,
		VerifiedAt: m.VerifiedAt,
		AddedAt:    m.AddedAt,
		LastUsedAt: m.LastUsedAt,
		UpdatedAt:  m.UpdatedAt,
	})
}
