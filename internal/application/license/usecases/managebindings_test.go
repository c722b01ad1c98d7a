package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licentry/licentry/internal/application/license/dto"
	sharedconfig "github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

func newBindingsUseCase(env *verifyTestEnv, cfg sharedconfig.LicenseConfig) *ManageBindingsUseCase {
	return NewManageBindingsUseCase(env.licenseRepo, env.bindingRepo, cfg, logger.NewLogger())
}

func TestManageBindings_AddIsApprovedImmediately(t *testing.T) {
	cfg := defaultLicenseConfig()
	cfg.AutoApproveBindings = false
	env := setupVerifyTest(t, cfg)
	bindings := newBindingsUseCase(env, cfg)
	lic := env.createLicense(t, 1)

	resp, err := bindings.Add(context.Background(), lic.ID, "Shop.Example.COM")
	require.NoError(t, err)

	assert.Equal(t, "shop.example.com", resp.Domain, "domain is normalized")
	assert.Equal(t, "active", resp.Status, "admin binds skip the approval queue")
	assert.True(t, resp.IsVerified)
	require.NotNil(t, resp.VerifiedAt)
}

func TestManageBindings_AddBypassesDomainCap(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	// Admin binds past the cap; only the verify path enforces the limit.
	_, err := bindings.Add(ctx, lic.ID, "first.com")
	require.NoError(t, err)
	_, err = bindings.Add(ctx, lic.ID, "second.com")
	require.NoError(t, err)

	count, err := env.bindingRepo.CountActive(ctx, mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A new domain arriving through verification is still denied.
	resp, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "third.com",
		IPAddress:    "203.0.113.1",
		UserAgent:    "t",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "Domain limit reached for this license", resp.Message)
}

func TestManageBindings_AddDuplicateDomainConflicts(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 3)
	ctx := context.Background()

	_, err := bindings.Add(ctx, lic.ID, "example.com")
	require.NoError(t, err)

	_, err = bindings.Add(ctx, lic.ID, "EXAMPLE.com")
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
	assert.Contains(t, err.Error(), "already bound")
}

func TestManageBindings_AddRejectsBadDomain(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	for _, domain := range []string{"", "ab", "no spaces.com"} {
		_, err := bindings.Add(context.Background(), lic.ID, domain)
		require.Error(t, err, "domain %q", domain)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestManageBindings_ApproveActivatesPending(t *testing.T) {
	cfg := defaultLicenseConfig()
	cfg.AutoApproveBindings = false
	env := setupVerifyTest(t, cfg)
	bindings := newBindingsUseCase(env, cfg)
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	// A verification under the manual-approval policy leaves a pending binding.
	resp, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "pending.com",
		IPAddress:    "203.0.113.1",
		UserAgent:    "t",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	approved, err := bindings.Approve(ctx, lic.ID, "pending.com")
	require.NoError(t, err)
	assert.Equal(t, "active", approved.Status)
	assert.True(t, approved.IsVerified)

	// The same verification now succeeds.
	resp, err = env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "pending.com",
		IPAddress:    "203.0.113.1",
		UserAgent:    "t",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestManageBindings_ApproveHonorsDomainCap(t *testing.T) {
	cfg := defaultLicenseConfig()
	cfg.AutoApproveBindings = false
	env := setupVerifyTest(t, cfg)
	bindings := newBindingsUseCase(env, cfg)
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	// The pending binding arrives while the slot is still free.
	_, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "pending.com",
		IPAddress:    "203.0.113.1",
		UserAgent:    "t",
	})
	require.NoError(t, err)

	// An admin bind then takes the slot.
	_, err = bindings.Add(ctx, lic.ID, "active.com")
	require.NoError(t, err)

	_, err = bindings.Approve(ctx, lic.ID, "pending.com")
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err), "approval cannot push past the cap")
}

func TestManageBindings_ApproveActiveIsNoop(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	_, err := bindings.Add(ctx, lic.ID, "example.com")
	require.NoError(t, err)

	resp, err := bindings.Approve(ctx, lic.ID, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}

func TestManageBindings_SuspendAndReleaseLifecycle(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	_, err := bindings.Add(ctx, lic.ID, "first.com")
	require.NoError(t, err)

	suspended, err := bindings.Suspend(ctx, lic.ID, "first.com")
	require.NoError(t, err)
	assert.Equal(t, "suspended", suspended.Status)

	// Suspended bindings still hold their slot.
	count, err := env.bindingRepo.CountActive(ctx, mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	released, err := bindings.Release(ctx, lic.ID, "first.com")
	require.NoError(t, err)
	assert.Equal(t, "inactive", released.Status)

	// Releasing frees the slot for the verify path.
	count, err = env.bindingRepo.CountActive(ctx, mustLicenseID(t, env, lic))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	resp, err := env.verify.Execute(ctx, dto.VerifyLicenseRequest{
		PurchaseCode: lic.PurchaseCode,
		Domain:       "second.com",
		IPAddress:    "203.0.113.1",
		UserAgent:    "t",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestManageBindings_ListReturnsAllBindings(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 3)
	ctx := context.Background()

	for _, domain := range []string{"a.com", "b.com"} {
		_, err := bindings.Add(ctx, lic.ID, domain)
		require.NoError(t, err)
	}
	_, err := bindings.Release(ctx, lic.ID, "b.com")
	require.NoError(t, err)

	list, err := bindings.List(ctx, lic.ID)
	require.NoError(t, err)
	require.Len(t, list, 2, "released bindings stay listed")
}

func TestManageBindings_UnknownLicense(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())

	_, err := bindings.List(context.Background(), "lic_doesnotexist")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestManageBindings_UnknownDomain(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	bindings := newBindingsUseCase(env, defaultLicenseConfig())
	lic := env.createLicense(t, 1)

	_, err := bindings.Suspend(context.Background(), lic.ID, "never-bound.com")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}
