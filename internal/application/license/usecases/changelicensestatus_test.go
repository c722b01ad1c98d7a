package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
)

func newStatusUseCase(env *verifyTestEnv) *ChangeLicenseStatusUseCase {
	return NewChangeLicenseStatusUseCase(env.licenseRepo, env.bindingRepo, logger.NewLogger())
}

func TestChangeLicenseStatus_SuspendThenReactivate(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	uc := newStatusUseCase(env)
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	resp, err := uc.Suspend(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", resp.Status)

	resp, err = uc.Reactivate(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}

func TestChangeLicenseStatus_ExpireIsManualTransition(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	uc := newStatusUseCase(env)
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	resp, err := uc.Expire(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", resp.Status)

	// Expired licenses may be reactivated explicitly.
	resp, err = uc.Reactivate(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}

func TestChangeLicenseStatus_RevokedIsTerminal(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	uc := newStatusUseCase(env)
	lic := env.createLicense(t, 1)
	ctx := context.Background()

	_, err := uc.Revoke(ctx, lic.ID)
	require.NoError(t, err)

	for name, transition := range map[string]func(context.Context, string) (interface{}, error){
		"reactivate": func(ctx context.Context, sid string) (interface{}, error) { return uc.Reactivate(ctx, sid) },
		"suspend":    func(ctx context.Context, sid string) (interface{}, error) { return uc.Suspend(ctx, sid) },
		"expire":     func(ctx context.Context, sid string) (interface{}, error) { return uc.Expire(ctx, sid) },
	} {
		_, err := transition(ctx, lic.ID)
		require.Error(t, err, "%s after revoke", name)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestChangeLicenseStatus_UnknownLicense(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	uc := newStatusUseCase(env)

	_, err := uc.Suspend(context.Background(), "lic_missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}
