package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/licentry/licentry/internal/infrastructure/config"
	"github.com/licentry/licentry/internal/interfaces/http/middleware"
	"github.com/licentry/licentry/internal/shared/constants"
	"github.com/licentry/licentry/internal/shared/logger"
)

// Router holds the Gin engine and its configured route tree.
type Router struct {
	engine    *gin.Engine
	container *Container
}

// NewRouter creates the HTTP router with all middleware and routes wired.
func NewRouter(container *Container, cfg *config.Config, log logger.Interface) *Router {
	switch cfg.Server.Mode {
	case constants.EnvProduction:
		gin.SetMode(gin.ReleaseMode)
	case constants.EnvTest:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r := &Router{
		engine:    engine,
		container: container,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := r.engine.Group("/api/v1")

	// Public verification endpoint used by installed products.
	v1.POST("/licenses/verify", r.container.VerifyHandler.Verify)

	admin := v1.Group("/admin")
	admin.Use(r.container.AuthMiddleware.RequireAdmin())
	{
		licenses := admin.Group("/licenses")
		{
			licenses.POST("", r.container.LicenseHandler.Create)
			licenses.GET("", r.container.LicenseHandler.List)
			licenses.GET("/:id", r.container.LicenseHandler.Get)
			licenses.PATCH("/:id", r.container.LicenseHandler.Update)
			licenses.POST("/:id/suspend", r.container.LicenseHandler.Suspend)
			licenses.POST("/:id/reactivate", r.container.LicenseHandler.Reactivate)
			licenses.POST("/:id/deactivate", r.container.LicenseHandler.Deactivate)
			licenses.POST("/:id/revoke", r.container.LicenseHandler.Revoke)
			licenses.POST("/:id/expire", r.container.LicenseHandler.Expire)

			licenses.GET("/:id/domains", r.container.LicenseHandler.ListBindings)
			licenses.POST("/:id/domains", r.container.LicenseHandler.AddBinding)
			licenses.POST("/:id/domains/approve", r.container.LicenseHandler.ApproveBinding)
			licenses.POST("/:id/domains/suspend", r.container.LicenseHandler.SuspendBinding)
			licenses.POST("/:id/domains/release", r.container.LicenseHandler.ReleaseBinding)
		}

		logs := admin.Group("/verification-logs")
		{
			logs.GET("", r.container.VerificationLogHandler.List)
			logs.POST("/cleanup", r.container.VerificationLogHandler.Cleanup)
		}

		analytics := admin.Group("/analytics")
		{
			analytics.GET("/statistics", r.container.AnalyticsHandler.Statistics)
			analytics.GET("/verifications-by-date", r.container.AnalyticsHandler.CountsByDate)
			analytics.GET("/verifications-by-status", r.container.AnalyticsHandler.CountsByStatus)
			analytics.GET("/top-domains", r.container.AnalyticsHandler.TopDomains)
			analytics.GET("/verifications-by-hour", r.container.AnalyticsHandler.HourOfDay)
			analytics.GET("/recent-attempts", r.container.AnalyticsHandler.RecentAttempts)
			analytics.GET("/suspicious", r.container.AnalyticsHandler.Suspicious)
		}
	}
}

// GetEngine returns the underlying Gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
