// Package handlers contains the Gin HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	licenseApp "github.com/licentry/licentry/internal/application/license"
	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// VerifyHandler serves the public verification endpoint. This is the only
// unauthenticated route in the API.
type VerifyHandler struct {
	licenseService *licenseApp.Service
	logger         logger.Interface
}

// NewVerifyHandler creates a new verify handler
func NewVerifyHandler(licenseService *licenseApp.Service, logger logger.Interface) *VerifyHandler {
	return &VerifyHandler{
		licenseService: licenseService,
		logger:         logger,
	}
}

// Verify handles POST /api/v1/licenses/verify.
// Denials return 200 with valid=false; only malformed requests and internal
// failures produce non-2xx responses.
func (h *VerifyHandler) Verify(c *gin.Context) {
	var request dto.VerifyLicenseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	request.IPAddress = c.ClientIP()
	request.UserAgent = c.Request.UserAgent()

	result, err := h.licenseService.VerifyLicense(c.Request.Context(), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
