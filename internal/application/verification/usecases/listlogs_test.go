package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/application/verification/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/infrastructure/repository"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

func setupListTest(t *testing.T) (license.Repository, verification.LogRepository, *ListLogsUseCase) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.LicenseModel{},
		&models.VerificationLogModel{},
	))

	log := logger.NewLogger()
	licenseRepo := repository.NewLicenseRepository(database, log)
	logRepo := repository.NewVerificationLogRepository(database, log)
	return licenseRepo, logRepo, NewListLogsUseCase(logRepo, licenseRepo, log)
}

func recordAttempt(t *testing.T, logRepo verification.LogRepository, licenseID *uint, domain string, status verification.Outcome) {
	t.Helper()
	entry, err := verification.NewLog(verification.NewLogParams{
		LicenseID:       licenseID,
		PurchaseCode:    "ABCD-1234-EFGH-5678",
		Domain:          domain,
		IPAddress:       "203.0.113.1",
		Status:          status,
		ResponseMessage: "seeded",
		Source:          license.SourceAPI,
	})
	require.NoError(t, err)
	require.NoError(t, logRepo.Record(context.Background(), entry))
}

func TestListLogs_FiltersByLicense(t *testing.T) {
	licenseRepo, logRepo, uc := setupListTest(t)
	ctx := context.Background()

	lic, err := license.NewLicense(1, 1, license.TypeSingle, 1, "", nil, nil, "")
	require.NoError(t, err)
	require.NoError(t, licenseRepo.Create(ctx, lic))

	id := lic.ID()
	recordAttempt(t, logRepo, &id, "mine.com", verification.OutcomeSuccess)
	recordAttempt(t, logRepo, nil, "other.com", verification.OutcomeFailed)

	rows, total, err := uc.Execute(ctx, dto.ListLogsRequest{LicenseSID: lic.SID()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "mine.com", rows[0].Domain)
	require.NotNil(t, rows[0].LicenseID)
	assert.Equal(t, id, *rows[0].LicenseID)
}

func TestListLogs_UnknownLicenseSID(t *testing.T) {
	_, _, uc := setupListTest(t)

	_, _, err := uc.Execute(context.Background(), dto.ListLogsRequest{LicenseSID: "lic_missing"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListLogs_DomainFilterNormalizes(t *testing.T) {
	_, logRepo, uc := setupListTest(t)

	recordAttempt(t, logRepo, nil, "example.com", verification.OutcomeSuccess)
	recordAttempt(t, logRepo, nil, "other.com", verification.OutcomeSuccess)

	rows, total, err := uc.Execute(context.Background(), dto.ListLogsRequest{Domain: "  Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "example.com", rows[0].Domain)
}

func TestListLogs_TimeRange(t *testing.T) {
	_, logRepo, uc := setupListTest(t)
	ctx := context.Background()

	recordAttempt(t, logRepo, nil, "example.com", verification.OutcomeSuccess)

	now := time.Now().UTC()
	rows, total, err := uc.Execute(ctx, dto.ListLogsRequest{
		From: now.Add(-time.Hour).Format(time.RFC3339),
		To:   now.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)

	_, total, err = uc.Execute(ctx, dto.ListLogsRequest{
		From: now.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestListLogs_TimeValidation(t *testing.T) {
	_, _, uc := setupListTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, _, err := uc.Execute(ctx, dto.ListLogsRequest{From: "yesterday"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, _, err = uc.Execute(ctx, dto.ListLogsRequest{
		From: now.Format(time.RFC3339),
		To:   now.Add(-time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err), "to before from is rejected")
}

func TestListLogs_RejectsUnknownStatusAndSource(t *testing.T) {
	_, _, uc := setupListTest(t)

	_, _, err := uc.Execute(context.Background(), dto.ListLogsRequest{Status: "denied"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, _, err = uc.Execute(context.Background(), dto.ListLogsRequest{Source: "carrier-pigeon"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestListLogs_HashInsteadOfCode(t *testing.T) {
	_, logRepo, uc := setupListTest(t)

	recordAttempt(t, logRepo, nil, "example.com", verification.OutcomeFailed)

	rows, _, err := uc.Execute(context.Background(), dto.ListLogsRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, license.HashPurchaseCode("ABCD-1234-EFGH-5678"), rows[0].PurchaseCodeHash)
	assert.NotContains(t, rows[0].PurchaseCodeHash, "ABCD")
}
