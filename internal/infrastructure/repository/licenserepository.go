package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/shared/db"
	apperrors "github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

// LicenseRepositoryImpl implements the license.Repository interface
type LicenseRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewLicenseRepository creates a new license repository instance
func NewLicenseRepository(database *gorm.DB, logger logger.Interface) license.Repository {
	return &LicenseRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

// Create persists a new license
func (r *LicenseRepositoryImpl) Create(ctx context.Context, l *license.License) error {
	model := licenseToModel(l)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("purchase code already exists")
		}
		r.logger.Errorw("failed to create license",
			"product_id", l.ProductID(),
			"user_id", l.UserID(),
			"error", err)
		return fmt.Errorf("failed to create license: %w", err)
	}

	if err := l.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set license ID", "error", err)
		return fmt.Errorf("failed to set license ID: %w", err)
	}

	r.logger.Infow("license created",
		"id", model.ID,
		"sid", model.SID,
		"product_id", model.ProductID,
		"user_id", model.UserID,
		"max_domains", model.MaxDomains)

	return nil
}

// Update persists license mutations with optimistic locking on version
func (r *LicenseRepositoryImpl) Update(ctx context.Context, l *license.License) error {
	if l.ID() == 0 {
		return apperrors.NewValidationError("license ID is required for update")
	}

	model := licenseToModel(l)
	model.ID = l.ID()

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseModel{}).
		Where("id = ? AND version = ?", l.ID(), l.Version()-1).
		Updates(map[string]interface{}{
			"status":             model.Status,
			"max_domains":        model.MaxDomains,
			"license_expires_at": model.LicenseExpiresAt,
			"support_expires_at": model.SupportExpiresAt,
			"notes":              model.Notes,
			"updated_at":         model.UpdatedAt,
			"version":            model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update license", "id", l.ID(), "error", result.Error)
		return fmt.Errorf("failed to update license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("license was modified concurrently")
	}

	return nil
}

// GetByID retrieves a license by ID
func (r *LicenseRepositoryImpl) GetByID(ctx context.Context, id uint) (*license.License, error) {
	var model models.LicenseModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("license not found")
		}
		r.logger.Errorw("failed to get license", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return licenseFromModel(&model)
}

// GetBySID retrieves a license by its public short identifier
func (r *LicenseRepositoryImpl) GetBySID(ctx context.Context, sid string) (*license.License, error) {
	var model models.LicenseModel
	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("license not found")
		}
		r.logger.Errorw("failed to get license by sid", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return licenseFromModel(&model)
}

// GetByPurchaseCode retrieves a license by purchase code or license key
func (r *LicenseRepositoryImpl) GetByPurchaseCode(ctx context.Context, code string) (*license.License, error) {
	return r.getByPurchaseCode(db.GetTxFromContext(ctx, r.db), code)
}

// GetByPurchaseCodeForUpdate retrieves a license by purchase code holding a
// row lock for the remainder of the surrounding transaction. Must be called
// inside TransactionManager.RunInTransaction.
func (r *LicenseRepositoryImpl) GetByPurchaseCodeForUpdate(ctx context.Context, code string) (*license.License, error) {
	tx := db.GetTxFromContext(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getByPurchaseCode(tx, code)
}

func (r *LicenseRepositoryImpl) getByPurchaseCode(tx *gorm.DB, code string) (*license.License, error) {
	code = license.NormalizePurchaseCode(code)

	var model models.LicenseModel
	err := tx.Where("purchase_code = ? OR license_key = ?", code, code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("license not found")
		}
		r.logger.Errorw("failed to get license by purchase code", "error", err)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return licenseFromModel(&model)
}

// ExistsByPurchaseCode checks purchase code uniqueness
func (r *LicenseRepositoryImpl) ExistsByPurchaseCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseModel{}).
		Where("purchase_code = ?", license.NormalizePurchaseCode(code)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check purchase code existence", "error", err)
		return false, fmt.Errorf("failed to check purchase code: %w", err)
	}
	return count > 0, nil
}

// List retrieves licenses matching the filter with offset pagination
func (r *LicenseRepositoryImpl) List(ctx context.Context, filter license.ListFilter, offset, limit int) ([]*license.License, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.LicenseModel{})

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count licenses", "error", err)
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	var rows []models.LicenseModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list licenses", "error", err)
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}

	licenses := make([]*license.License, len(rows))
	for i := range rows {
		l, err := licenseFromModel(&rows[i])
		if err != nil {
			r.logger.Errorw("failed to reconstruct license", "id", rows[i].ID, "error", err)
			return nil, 0, fmt.Errorf("failed to reconstruct license: %w", err)
		}
		licenses[i] = l
	}

	return licenses, total, nil
}

func licenseToModel(l *license.License) *models.LicenseModel {
	return &models.LicenseModel{
		SID:              l.SID(),
		PurchaseCode:     l.PurchaseCode(),
		LicenseKey:       l.LicenseKey(),
		ProductID:        l.ProductID(),
		UserID:           l.UserID(),
		LicenseType:      l.LicenseType().String(),
		Status:           l.Status().String(),
		MaxDomains:       l.MaxDomains(),
		LicenseExpiresAt: l.LicenseExpiresAt(),
		SupportExpiresAt: l.SupportExpiresAt(),
		Notes:            l.Notes(),
		CreatedAt:        l.CreatedAt(),
		UpdatedAt:        l.UpdatedAt(),
		Version:          l.Version(),
	}
}

func licenseFromModel(m *models.LicenseModel) (*license.License, error) {
	return license.ReconstructLicense(license.LicenseReconstructParams{
		ID:               m.ID,
		SID:              m.SID,
		PurchaseCode:     m.PurchaseCode,
		LicenseKey:       m.LicenseKey,
		ProductID:        m.ProductID,
		UserID:           m.UserID,
		LicenseType:      license.Type(m.LicenseType),
		Status:           license.Status(m.Status),
		MaxDomains:       m.MaxDomains,
		LicenseExpiresAt: m.LicenseExpiresAt,
		SupportExpiresAt: m.SupportExpiresAt,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Version:          m.Version,
	})
}
