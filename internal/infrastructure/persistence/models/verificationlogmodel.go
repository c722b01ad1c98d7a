package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/licentry/licentry/internal/shared/constants"
)

// VerificationLogModel is the database persistence model for verification
// attempts. Rows are append-only; the retention purge is the only delete path.
type VerificationLogModel struct {
	ID               uint    `gorm:"primarykey"`
	LicenseID        *uint   `gorm:"index"`
	PurchaseCodeHash string  `gorm:"column:purchase_code_hash;type:char(64);not null;index"`
	Domain           string  `gorm:"not null;size:253;index:idx_domain_valid,priority:1"`
	IPAddress        string  `gorm:"column:ip_address;not null;size:45;index:idx_ip_valid,priority:1"`
	UserAgent        string  `gorm:"column:user_agent;type:varchar(500)"`
	Status           string  `gorm:"not null;size:10;index"`
	IsValid          bool    `gorm:"not null;index:idx_domain_valid,priority:2;index:idx_ip_valid,priority:2"`
	ResponseMessage  string  `gorm:"type:varchar(500)"`
	RequestData      datatypes.JSON
	ResponseData     datatypes.JSON
	ErrorDetails     string `gorm:"type:varchar(1000)"`
	Source           string `gorm:"column:verification_source;not null;size:10;default:install"`
	VerifiedAt       *time.Time
	CreatedAt        time.Time `gorm:"index"`
}

// TableName specifies the table name for GORM
func (VerificationLogModel) TableName() string {
	return constants.TableVerificationLogs
}
