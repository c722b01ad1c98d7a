package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	verificationApp "github.com/licentry/licentry/internal/application/verification"
	"github.com/licentry/licentry/internal/application/verification/dto"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// VerificationLogHandler serves the admin verification log API
type VerificationLogHandler struct {
	verificationService *verificationApp.Service
	logger              logger.Interface
}

// NewVerificationLogHandler creates a new verification log handler
func NewVerificationLogHandler(
	verificationService *verificationApp.Service,
	logger logger.Interface,
) *VerificationLogHandler {
	return &VerificationLogHandler{
		verificationService: verificationService,
		logger:              logger,
	}
}

// List handles GET /verification-logs
func (h *VerificationLogHandler) List(c *gin.Context) {
	pagination := utils.ParsePagination(c)
	request := dto.ListLogsRequest{
		LicenseSID: c.Query("license_id"),
		Domain:     c.Query("domain"),
		IPAddress:  c.Query("ip_address"),
		Status:     c.Query("status"),
		Source:     c.Query("source"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Page:       pagination.Page,
		PerPage:    pagination.PageSize,
		SortOrder:  c.Query("sort_order"),
	}

	logs, total, err := h.verificationService.ListLogs(c.Request.Context(), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
		Items:      logs,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: utils.TotalPages(total, pagination.PageSize),
	})
}

// Cleanup handles POST /verification-logs/cleanup. Without confirm=true the
// call reports what would be deleted and touches nothing.
func (h *VerificationLogHandler) Cleanup(c *gin.Context) {
	var request dto.CleanupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.verificationService.CleanupLogs(c.Request.Context(), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "cleanup completed"
	if result.DryRun {
		message = "cleanup dry run"
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}
