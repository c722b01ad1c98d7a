package models

import (
	"time"

	"github.com/licentry/licentry/internal/shared/constants"
)

// LicenseDomainModel is the database persistence model for domain bindings.
// The unique index on (license_id, domain) backs the conflict-and-retry path
// that keeps the domain cap honest under concurrent verification.
type LicenseDomainModel struct {
	ID         uint   `gorm:"primarykey"`
	SID        string `gorm:"column:sid;type:varchar(32);not null;uniqueIndex"`
	LicenseID  uint   `gorm:"not null;uniqueIndex:idx_license_domain,priority:1;index:idx_license_status,priority:1"`
	Domain     string `gorm:"not null;size:253;uniqueIndex:idx_license_domain,priority:2"`
	Status     string `gorm:"not null;size:20;default:pending;index:idx_license_status,priority:2"`
	IsVerified bool   `gorm:"not null;default:false"`
	VerifiedAt *time.Time
	AddedAt    time.Time `gorm:"not null"`
	LastUsedAt *time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (LicenseDomainModel) TableName() string {
	return constants.TableLicenseDomains
}
