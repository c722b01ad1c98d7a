package models

import (
	"time"

	"github.com/licentry/licentry/internal/shared/constants"
)

// LicenseModel is the database persistence model for licenses.
// This is the anti-corruption layer between domain and database.
type LicenseModel struct {
	ID               uint   `gorm:"primarykey"`
	SID              string `gorm:"column:sid;type:varchar(32);not null;uniqueIndex"`
	PurchaseCode     string `gorm:"column:purchase_code;type:varchar(32);not null;uniqueIndex"`
	LicenseKey       string `gorm:"column:license_key;type:varchar(64);not null;index"`
	ProductID        uint   `gorm:"not null;index:idx_product_user,priority:1"`
	UserID           uint   `gorm:"not null;index:idx_product_user,priority:2"`
	LicenseType      string `gorm:"not null;size:20;default:single"`
	Status           string `gorm:"not null;size:20;default:active;index:idx_status_expires,priority:1"`
	MaxDomains       int    `gorm:"not null;default:1"`
	LicenseExpiresAt *time.Time `gorm:"index:idx_status_expires,priority:2"`
	SupportExpiresAt *time.Time
	Notes            string `gorm:"type:varchar(500)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (LicenseModel) TableName() string {
	return constants.TableLicenses
}
