package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/licentry/licentry/internal/application/analytics"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// AnalyticsHandler serves the admin analytics and anomaly API
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	anomalyDetector  *analytics.AnomalyDetector
	logger           logger.Interface
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	analyticsService *analytics.Service,
	anomalyDetector *analytics.AnomalyDetector,
	logger logger.Interface,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		anomalyDetector:  anomalyDetector,
		logger:           logger,
	}
}

// Statistics handles GET /analytics/statistics
func (h *AnalyticsHandler) Statistics(c *gin.Context) {
	result, err := h.analyticsService.Statistics(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CountsByDate handles GET /analytics/verifications-by-date
func (h *AnalyticsHandler) CountsByDate(c *gin.Context) {
	result, err := h.analyticsService.CountsByDate(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"series": result})
}

// CountsByStatus handles GET /analytics/verifications-by-status
func (h *AnalyticsHandler) CountsByStatus(c *gin.Context) {
	result, err := h.analyticsService.CountsByStatus(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"statuses": result})
}

// TopDomains handles GET /analytics/top-domains
func (h *AnalyticsHandler) TopDomains(c *gin.Context) {
	result, err := h.analyticsService.TopDomainsByVolume(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"domains": result})
}

// HourOfDay handles GET /analytics/verifications-by-hour
func (h *AnalyticsHandler) HourOfDay(c *gin.Context) {
	result, err := h.analyticsService.CountsByHourOfDay(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"hours": result})
}

// RecentAttempts handles GET /analytics/recent-attempts
func (h *AnalyticsHandler) RecentAttempts(c *gin.Context) {
	result, err := h.analyticsService.RecentAttempts(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"attempts": result})
}

// Suspicious handles GET /analytics/suspicious
func (h *AnalyticsHandler) Suspicious(c *gin.Context) {
	windowHours := queryInt(c, "window_hours", 0)
	minAttempts := queryInt(c, "min_attempts", 0)
	result, err := h.anomalyDetector.FindSuspicious(c.Request.Context(), windowHours, minAttempts)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"findings": result})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
