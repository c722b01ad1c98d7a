package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/infrastructure/repository"
	sharedconfig "github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/db"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

type verifyTestEnv struct {
	db          *gorm.DB
	licenseRepo license.Repository
	bindingRepo license.BindingRepository
	logRepo     verification.LogRepository
	verify      *VerifyLicenseUseCase
	create      *CreateLicenseUseCase
}

func setupVerifyTest(t *testing.T, cfg sharedconfig.LicenseConfig) *verifyTestEnv {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps the in-memory database shared across goroutines
	// and serializes transactions the way a row lock would.
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.LicenseModel{},
		&models.LicenseDomainModel{},
		&models.VerificationLogModel{},
	))

	log := logger.NewLogger()
	licenseRepo := repository.NewLicenseRepository(database, log)
	bindingRepo := repository.NewDomainBindingRepository(database, log)
	logRepo := repository.NewVerificationLogRepository(database, log)
	txManager := db.NewTransactionManager(database)

	return &verifyTestEnv{
		db:          database,
		licenseRepo: licenseRepo,
		bindingRepo: bindingRepo,
		logRepo:     logRepo,
		verify:      NewVerifyLicenseUseCase(licenseRepo, bindingRepo, logRepo, txManager, cfg, log),
		create:      NewCreateLicenseUseCase(licenseRepo, cfg, log),
	}
}

func defaultLicenseConfig() sharedconfig.LicenseConfig {
	return sharedconfig.LicenseConfig{
		AutoApproveBindings: true,
		DefaultMaxDomains:   1,
		DefaultDurationDays: 365,
		SupportDurationDays: 365,
	}
}

func (e *verifyTestEnv) createLicense(t *testing.T, maxDomains int) *dto.LicenseResponse {
	t.Helper()
	resp, err := e.create.Execute(context.Background(), dto.CreateLicenseRequest{
		ProductID:  1,
		UserID:     1,
		MaxDomains: maxDomains,
	})
	require.NoError(t, err)
	return resp
}

func (e *verifyTestEnv) countLogs(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.VerificationLogModel{}).Count(&n).Error)
	return n
}

func TestVerifyLicense_FirstVerificationBindsDomain(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "example.com",
		IPAddress:    "203.0.113.9",
		UserAgent:    "test-agent",
	})
	require.NoError(t, err)

	assert.True(t, resp.Valid)
	assert.Equal(t, "License verified successfully", resp.Message)
	require.NotNil(t, resp.License)
	assert.Equal(t, "example.com", resp.License.Domain)
	assert.Equal(t, 0, resp.License.DomainsRemaining)
	assert.Equal(t, "single", resp.License.LicenseType)

	bindings, err := env.bindingRepo.ListByLicense(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.True(t, bindings[0].IsActive())
	assert.True(t, bindings[0].IsVerified())
	assert.NotNil(t, bindings[0].LastUsedAt())
}

func TestVerifyLicense_RepeatVerificationIsIdempotent(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	for i := 0; i < 3; i++ {
		resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
			PurchaseCode: lic.PurchaseCode,
			Domain:       "example.com",
		})
		require.NoError(t, err)
		assert.True(t, resp.Valid, "attempt %d should succeed", i)
	}

	bindings, err := env.bindingRepo.ListByLicense(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Len(t, bindings, 1, "repeat verification must not create extra bindings")
	assert.EqualValues(t, 3, env.countLogs(t), "every attempt appends exactly one log row")
}

func TestVerifyLicense_DomainLimitDeniesSecondDomain(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	first, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "first.com",
	})
	require.NoError(t, err)
	require.True(t, first.Valid)

	second, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "second.com",
	})
	require.NoError(t, err)
	assert.False(t, second.Valid)
	assert.Equal(t, "Domain limit reached for this license", second.Message)
	assert.Nil(t, second.License)

	count, err := env.bindingRepo.CountActive(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "denied attempt must not create a binding")
}

func TestVerifyLicense_UnknownCodeDenied(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: "ZZZZ-ZZZZ-ZZZZ-ZZZZ",
		Domain:       "example.com",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "License not found", resp.Message)

	logs, total, err := env.logRepo.List(context.Background(), verification.LogFilter{}.Normalize())
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Nil(t, logs[0].LicenseID(), "unknown code leaves license_id unset in the log")
	assert.Equal(t, verification.OutcomeFailed, logs[0].Status())
}

func TestVerifyLicense_StatusDenials(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(l *license.License) error
		message string
	}{
		{"suspended", func(l *license.License) error { return l.Suspend() }, "License is suspended"},
		{"inactive", func(l *license.License) error { return l.Deactivate() }, "License is inactive"},
		{"revoked", func(l *license.License) error { return l.Revoke() }, "License has been revoked"},
		{"expired status", func(l *license.License) error { return l.MarkExpired() }, "License has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupVerifyTest(t, defaultLicenseConfig())
			created := env.createLicense(t, 1)

			lic, err := env.licenseRepo.GetBySID(context.Background(), created.ID)
			require.NoError(t, err)
			require.NoError(t, tt.prepare(lic))
			require.NoError(t, env.licenseRepo.Update(context.Background(), lic))

			resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
				PurchaseCode: created.PurchaseCode,
				Domain:       "example.com",
			})
			require.NoError(t, err)
			assert.False(t, resp.Valid)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestVerifyLicense_ExpiryWriteOnRead(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	past := time.Now().UTC().Add(-time.Hour)
	lic, err := license.NewLicense(1, 1, license.TypeSingle, 1, "", &past, nil, "")
	require.NoError(t, err)
	require.NoError(t, env.licenseRepo.Create(context.Background(), lic))

	resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode(),
		Domain:       "example.com",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "License has expired", resp.Message)

	reloaded, err := env.licenseRepo.GetByID(context.Background(), lic.ID())
	require.NoError(t, err)
	assert.Equal(t, license.StatusExpired, reloaded.Status(),
		"observing a past expiry must persist the expired status")
}

func TestVerifyLicense_PendingBindingDenied(t *testing.T) {
	cfg := defaultLicenseConfig()
	cfg.AutoApproveBindings = false
	env := setupVerifyTest(t, cfg)
	lic := env.createLicense(t, 1)

	resp, err := env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "example.com",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "Domain binding is pending approval", resp.Message)

	bindings, err := env.bindingRepo.ListByLicense(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	require.Len(t, bindings, 1, "the pending binding is still recorded")
	assert.Equal(t, license.BindingStatusPending, bindings[0].Status())
}

func TestVerifyLicense_ReleasedBindingReclaimsFreeSlot(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	first, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "first.com",
	})
	require.NoError(t, err)
	require.True(t, first.Valid)

	licenseID := mustLicenseID(t, env, lic)
	binding, err := env.bindingRepo.GetByLicenseAndDomain(ctx, licenseID, "first.com")
	require.NoError(t, err)
	require.NoError(t, binding.Deactivate())
	require.NoError(t, env.bindingRepo.Update(ctx, binding))

	second, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "second.com",
	})
	require.NoError(t, err)
	assert.True(t, second.Valid, "freed slot should accept a new domain")

	again, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "first.com",
	})
	require.NoError(t, err)
	assert.False(t, again.Valid, "released binding cannot reactivate past the cap")
	assert.Equal(t, "Domain limit reached for this license", again.Message)
}

func TestVerifyLicense_MalformedInputLeavesNoTrace(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	tests := []struct {
		name    string
		request dto.VerifyLicenseRequest
	}{
		{"empty code", dto.VerifyLicenseRequest{PurchaseCode: "", Domain: "example.com"}},
		{"code with invalid characters", dto.VerifyLicenseRequest{PurchaseCode: "ABCD 1234!", Domain: "example.com"}},
		{"empty domain", dto.VerifyLicenseRequest{PurchaseCode: "ABCD-1234-EFGH-5678", Domain: ""}},
		{"domain too short", dto.VerifyLicenseRequest{PurchaseCode: "ABCD-1234-EFGH-5678", Domain: "ab"}},
		{"bad source", dto.VerifyLicenseRequest{PurchaseCode: "ABCD-1234-EFGH-5678", Domain: "example.com", Source: "smoke-signal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.verify.Execute(context.Background(), tt.request)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err), "boundary rejections are validation errors")
		})
	}

	assert.EqualValues(t, 0, env.countLogs(t),
		"attempts rejected at the boundary must not reach the log")
}

func TestVerifyLicense_ConcurrentDistinctDomainsHonorCap(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	const attempts = 5
	results := make([]*dto.VerifyLicenseResponse, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
				PurchaseCode: lic.PurchaseCode,
				Domain:       fmt.Sprintf("site-%d.com", i),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if results[i].Valid {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one domain may claim the single slot")

	count, err := env.bindingRepo.CountActive(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "active bindings must never exceed the cap")
}

func TestVerifyLicense_ConcurrentSameDomainCreatesOneBinding(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.verify.Execute(context.Background(), dto.VerifyLicenseRequest{
				PurchaseCode: lic.PurchaseCode,
				Domain:       "example.com",
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
	}

	bindings, err := env.bindingRepo.ListByLicense(context.Background(), mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Len(t, bindings, 1, "racing verifications of one domain converge on one binding")
	assert.EqualValues(t, attempts, env.countLogs(t))
}

func mustLicenseID(t *testing.T, env *verifyTestEnv, resp *dto.LicenseResponse) uint {
	t.Helper()
	lic, err := env.licenseRepo.GetBySID(context.Background(), resp.ID)
	require.NoError(t, err)
	return lic.ID()
}
