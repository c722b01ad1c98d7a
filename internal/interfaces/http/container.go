// Package http wires the application services into the Gin router.
package http

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/licentry/licentry/internal/application/analytics"
	licenseApp "github.com/licentry/licentry/internal/application/license"
	verificationApp "github.com/licentry/licentry/internal/application/verification"
	"github.com/licentry/licentry/internal/infrastructure/auth"
	"github.com/licentry/licentry/internal/infrastructure/cache"
	"github.com/licentry/licentry/internal/infrastructure/config"
	"github.com/licentry/licentry/internal/infrastructure/repository"
	"github.com/licentry/licentry/internal/interfaces/http/handlers"
	"github.com/licentry/licentry/internal/interfaces/http/middleware"
	"github.com/licentry/licentry/internal/shared/db"
	"github.com/licentry/licentry/internal/shared/logger"
)

// Container holds the wired handlers and middleware of the HTTP interface.
type Container struct {
	cfg *config.Config

	VerifyHandler          *handlers.VerifyHandler
	LicenseHandler         *handlers.LicenseHandler
	VerificationLogHandler *handlers.VerificationLogHandler
	AnalyticsHandler       *handlers.AnalyticsHandler
	AuthMiddleware         *middleware.AuthMiddleware
}

// NewContainer wires repositories, services, and handlers. A nil redis client
// degrades the stats cache and cleanup lock to local no-op implementations.
func NewContainer(
	cfg *config.Config,
	database *gorm.DB,
	redisClient *redis.Client,
	log logger.Interface,
) *Container {
	licenseRepo := repository.NewLicenseRepository(database, log)
	bindingRepo := repository.NewDomainBindingRepository(database, log)
	logRepo := repository.NewVerificationLogRepository(database, log)
	txManager := db.NewTransactionManager(database)

	var statsCache cache.StatsCache = cache.NopStatsCache{}
	var maintenanceLock cache.MaintenanceLock = cache.NopMaintenanceLock{}
	if redisClient != nil {
		statsCache = cache.NewRedisStatsCache(redisClient, log)
		maintenanceLock = cache.NewRedisMaintenanceLock(redisClient, log)
	}

	licenseService := licenseApp.NewService(licenseRepo, bindingRepo, logRepo, txManager, cfg.License, log)
	verificationService := verificationApp.NewService(logRepo, licenseRepo, maintenanceLock, log)
	analyticsService := analytics.NewService(logRepo, statsCache, log)
	anomalyDetector := analytics.NewAnomalyDetector(logRepo, cfg.Anomaly, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	return &Container{
		cfg:                    cfg,
		VerifyHandler:          handlers.NewVerifyHandler(licenseService, log),
		LicenseHandler:         handlers.NewLicenseHandler(licenseService, log),
		VerificationLogHandler: handlers.NewVerificationLogHandler(verificationService, log),
		AnalyticsHandler:       handlers.NewAnalyticsHandler(analyticsService, anomalyDetector, log),
		AuthMiddleware:         middleware.NewAuthMiddleware(jwtService, log),
	}
}
