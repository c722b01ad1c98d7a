package migration

import (
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.LicenseModel{},
		&models.LicenseDomainModel{},
		&models.VerificationLogModel{},
	}
}
