package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	licenseApp "github.com/licentry/licentry/internal/application/license"
	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/infrastructure/persistence/models"
	"github.com/licentry/licentry/internal/infrastructure/repository"
	sharedconfig "github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/db"
	"github.com/licentry/licentry/internal/shared/logger"
)

func setupVerifyHandler(t *testing.T) (*gin.Engine, *licenseApp.Service, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.LicenseModel{},
		&models.LicenseDomainModel{},
		&models.VerificationLogModel{},
	))

	log := logger.NewLogger()
	service := licenseApp.NewService(
		repository.NewLicenseRepository(database, log),
		repository.NewDomainBindingRepository(database, log),
		repository.NewVerificationLogRepository(database, log),
		db.NewTransactionManager(database),
		sharedconfig.LicenseConfig{
			AutoApproveBindings: true,
			DefaultMaxDomains:   1,
			DefaultDurationDays: 365,
			SupportDurationDays: 365,
		},
		log,
	)

	engine := gin.New()
	engine.POST("/api/v1/licenses/verify", NewVerifyHandler(service, log).Verify)
	return engine, service, database
}

func postVerify(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/licenses/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestVerifyHandler_SuccessfulVerification(t *testing.T) {
	engine, service, _ := setupVerifyHandler(t)

	lic, err := service.CreateLicense(context.Background(), dto.CreateLicenseRequest{ProductID: 1, UserID: 1})
	require.NoError(t, err)

	w := postVerify(t, engine, fmt.Sprintf(`{"purchase_code":%q,"domain":"example.com"}`, lic.PurchaseCode))
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Valid   bool   `json:"valid"`
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Data.Valid)
	assert.Equal(t, "License verified successfully", body.Data.Message)
}

func TestVerifyHandler_DenialIsHTTP200(t *testing.T) {
	engine, _, _ := setupVerifyHandler(t)

	w := postVerify(t, engine, `{"purchase_code":"AAAA-0000-BBBB-1111","domain":"example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code, "a denial is a valid business outcome")

	var body struct {
		Data struct {
			Valid   bool   `json:"valid"`
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Data.Valid)
	assert.Equal(t, "License not found", body.Data.Message)
}

func TestVerifyHandler_MalformedRequests(t *testing.T) {
	engine, _, database := setupVerifyHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"broken json", `{"purchase_code":`},
		{"missing code", `{"domain":"example.com"}`},
		{"missing domain", `{"purchase_code":"AAAA-0000-BBBB-1111"}`},
		{"bad code chars", `{"purchase_code":"not a code!!","domain":"example.com"}`},
		{"bad source", `{"purchase_code":"AAAA-0000-BBBB-1111","domain":"example.com","source":"carrier-pigeon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postVerify(t, engine, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Requests rejected at the boundary leave no audit trail.
	var count int64
	require.NoError(t, database.Model(&models.VerificationLogModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
