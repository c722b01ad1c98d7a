package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	licenseApp "github.com/licentry/licentry/internal/application/license"
	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// LicenseHandler serves the admin license management API
type LicenseHandler struct {
	licenseService *licenseApp.Service
	logger         logger.Interface
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(licenseService *licenseApp.Service, logger logger.Interface) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
		logger:         logger,
	}
}

// Create handles POST /licenses
func (h *LicenseHandler) Create(c *gin.Context) {
	var request dto.CreateLicenseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.licenseService.CreateLicense(c.Request.Context(), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "license created")
}

// Get handles GET /licenses/:id
func (h *LicenseHandler) Get(c *gin.Context) {
	result, err := h.licenseService.GetLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// List handles GET /licenses
func (h *LicenseHandler) List(c *gin.Context) {
	pagination := utils.ParsePagination(c)
	request := dto.ListLicensesRequest{
		Status:   c.Query("status"),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}
	if productID, err := strconv.ParseUint(c.Query("product_id"), 10, 64); err == nil {
		request.ProductID = uint(productID)
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		request.UserID = uint(userID)
	}

	licenses, total, err := h.licenseService.ListLicenses(c.Request.Context(), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
		Items:      licenses,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: utils.TotalPages(total, pagination.PageSize),
	})
}

// Update handles PATCH /licenses/:id
func (h *LicenseHandler) Update(c *gin.Context) {
	var request dto.UpdateLicenseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.licenseService.UpdateLicense(c.Request.Context(), c.Param("id"), request)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license updated", result)
}

// Suspend handles POST /licenses/:id/suspend
func (h *LicenseHandler) Suspend(c *gin.Context) {
	result, err := h.licenseService.SuspendLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license suspended", result)
}

// Reactivate handles POST /licenses/:id/reactivate
func (h *LicenseHandler) Reactivate(c *gin.Context) {
	result, err := h.licenseService.ReactivateLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license reactivated", result)
}

// Deactivate handles POST /licenses/:id/deactivate
func (h *LicenseHandler) Deactivate(c *gin.Context) {
	result, err := h.licenseService.DeactivateLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license deactivated", result)
}

// Revoke handles POST /licenses/:id/revoke
func (h *LicenseHandler) Revoke(c *gin.Context) {
	result, err := h.licenseService.RevokeLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license revoked", result)
}

// Expire handles POST /licenses/:id/expire
func (h *LicenseHandler) Expire(c *gin.Context) {
	result, err := h.licenseService.ExpireLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license expired", result)
}

// bindingRequest carries the domain a binding operation targets.
type bindingRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// ListBindings handles GET /licenses/:id/domains
func (h *LicenseHandler) ListBindings(c *gin.Context) {
	bindings, err := h.licenseService.ListBindings(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"domains": bindings,
	})
}

// AddBinding handles POST /licenses/:id/domains
func (h *LicenseHandler) AddBinding(c *gin.Context) {
	var request bindingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "domain is required")
		return
	}

	result, err := h.licenseService.AddBinding(c.Request.Context(), c.Param("id"), request.Domain)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "domain bound")
}

// ApproveBinding handles POST /licenses/:id/domains/approve
func (h *LicenseHandler) ApproveBinding(c *gin.Context) {
	h.changeBinding(c, h.licenseService.ApproveBinding, "domain binding approved")
}

// SuspendBinding handles POST /licenses/:id/domains/suspend
func (h *LicenseHandler) SuspendBinding(c *gin.Context) {
	h.changeBinding(c, h.licenseService.SuspendBinding, "domain binding suspended")
}

// ReleaseBinding handles POST /licenses/:id/domains/release
func (h *LicenseHandler) ReleaseBinding(c *gin.Context) {
	h.changeBinding(c, h.licenseService.ReleaseBinding, "domain binding released")
}

func (h *LicenseHandler) changeBinding(
	c *gin.Context,
	apply func(ctx context.Context, licenseSID, domain string) (*dto.DomainBindingResponse, error),
	message string,
) {
	var request bindingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "domain is required")
		return
	}

	result, err := apply(c.Request.Context(), c.Param("id"), request.Domain)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, result)
}
