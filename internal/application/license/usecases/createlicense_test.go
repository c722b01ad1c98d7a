package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/shared/errors"
)

func TestCreateLicense_Defaults(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	resp, err := env.create.Execute(context.Background(), dto.CreateLicenseRequest{
		ProductID: 1,
		UserID:    7,
	})
	require.NoError(t, err)

	assert.Equal(t, "single", resp.LicenseType, "type defaults to single")
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 1, resp.MaxDomains, "cap defaults from policy")
	assert.Equal(t, 0, resp.ActiveDomains)
	assert.True(t, license.IsWellFormedPurchaseCode(resp.PurchaseCode))
	assert.Equal(t, resp.PurchaseCode, resp.LicenseKey)
	require.NotNil(t, resp.LicenseExpiresAt, "non-lifetime licenses get the default duration")
	require.NotNil(t, resp.SupportExpiresAt)
}

func TestCreateLicense_LifetimeHasNoExpiry(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	resp, err := env.create.Execute(context.Background(), dto.CreateLicenseRequest{
		ProductID:   1,
		UserID:      1,
		LicenseType: "lifetime",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.LicenseExpiresAt, "lifetime licenses never expire")
}

func TestCreateLicense_ExplicitExpiry(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	expiry := time.Now().UTC().AddDate(2, 0, 0).Truncate(time.Second)
	resp, err := env.create.Execute(context.Background(), dto.CreateLicenseRequest{
		ProductID:        1,
		UserID:           1,
		LicenseExpiresAt: expiry.Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.LicenseExpiresAt)
	assert.True(t, resp.LicenseExpiresAt.Equal(expiry))
}

func TestCreateLicense_InvalidExpiryFormat(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	_, err := env.create.Execute(context.Background(), dto.CreateLicenseRequest{
		ProductID:        1,
		UserID:           1,
		LicenseExpiresAt: "next tuesday",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCreateLicense_Validation(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())

	tests := []struct {
		name    string
		request dto.CreateLicenseRequest
	}{
		{"missing product", dto.CreateLicenseRequest{UserID: 1}},
		{"missing user", dto.CreateLicenseRequest{ProductID: 1}},
		{"bad type", dto.CreateLicenseRequest{ProductID: 1, UserID: 1, LicenseType: "weekly"}},
		{"bad explicit code", dto.CreateLicenseRequest{ProductID: 1, UserID: 1, PurchaseCode: "bad code!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.create.Execute(context.Background(), tt.request)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCreateLicense_ExplicitCodeConflict(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	ctx := context.Background()

	first, err := env.create.Execute(ctx, dto.CreateLicenseRequest{
		ProductID:    1,
		UserID:       1,
		PurchaseCode: "AAAA-BBBB-CCCC-DDDD",
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA-BBBB-CCCC-DDDD", first.PurchaseCode)

	_, err = env.create.Execute(ctx, dto.CreateLicenseRequest{
		ProductID:    2,
		UserID:       2,
		PurchaseCode: "AAAA-BBBB-CCCC-DDDD",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err), "reusing a purchase code must conflict")

	// Lowercase input normalizes to the same code and still conflicts.
	_, err = env.create.Execute(ctx, dto.CreateLicenseRequest{
		ProductID:    3,
		UserID:       3,
		PurchaseCode: "aaaa-bbbb-cccc-dddd",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestCreateLicense_GeneratedCodesAreUnique(t *testing.T) {
	env := setupVerifyTest(t, defaultLicenseConfig())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		resp, err := env.create.Execute(ctx, dto.CreateLicenseRequest{ProductID: 1, UserID: 1})
		require.NoError(t, err)
		assert.False(t, seen[resp.PurchaseCode], "generated code %q repeated", resp.PurchaseCode)
		seen[resp.PurchaseCode] = true
	}
}
