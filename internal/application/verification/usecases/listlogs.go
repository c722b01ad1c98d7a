// Package usecases contains the verification log use cases.
package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/application/verification/dto"
	"github.com/licentry/licentry/internal/domain/license"
	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/shared/errors"
	"github.com/licentry/licentry/internal/shared/logger"
	"github.com/licentry/licentry/internal/shared/utils"
)

// ListLogsUseCase handles filtered, paginated verification log listings
type ListLogsUseCase struct {
	logRepo     verification.LogRepository
	licenseRepo license.Repository
	logger      logger.Interface
}

// NewListLogsUseCase creates a new list logs use case
func NewListLogsUseCase(
	logRepo verification.LogRepository,
	licenseRepo license.Repository,
	logger logger.Interface,
) *ListLogsUseCase {
	return &ListLogsUseCase{
		logRepo:     logRepo,
		licenseRepo: licenseRepo,
		logger:      logger,
	}
}

// Execute retrieves log rows matching the request
func (uc *ListLogsUseCase) Execute(
	ctx context.Context,
	request dto.ListLogsRequest,
) ([]*dto.LogResponse, int64, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, 0, err
	}

	filter := verification.LogFilter{
		IPAddress: request.IPAddress,
		Status:    verification.Outcome(request.Status),
		Source:    request.Source,
		Page:      request.Page,
		PerPage:   request.PerPage,
		SortOrder: verification.SortOrder(request.SortOrder),
	}

	if request.Domain != "" {
		filter.Domain = utils.NormalizeDomain(request.Domain)
	}

	if request.LicenseSID != "" {
		lic, err := uc.licenseRepo.GetBySID(ctx, request.LicenseSID)
		if err != nil {
			return nil, 0, err
		}
		filter.LicenseID = lic.ID()
	}

	if request.From != "" {
		from, err := time.Parse(time.RFC3339, request.From)
		if err != nil {
			return nil, 0, errors.NewValidationError(
				fmt.Sprintf("invalid from time: %s (expected RFC3339)", request.From))
		}
		filter.From = &from
	}
	if request.To != "" {
		to, err := time.Parse(time.RFC3339, request.To)
		if err != nil {
			return nil, 0, errors.NewValidationError(
				fmt.Sprintf("invalid to time: %s (expected RFC3339)", request.To))
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, errors.NewValidationError("to must be after from")
	}

	logs, total, err := uc.logRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list verification logs", "error", err)
		return nil, 0, err
	}

	responses := make([]*dto.LogResponse, len(logs))
	for i, l := range logs {
		responses[i] = toLogResponse(l)
	}
	return responses, total, nil
}

func toLogResponse(l *verification.Log) *dto.LogResponse {
	return &dto.LogResponse{
		ID:               l.ID(),
		LicenseID:        l.LicenseID(),
		PurchaseCodeHash: l.PurchaseCodeHash(),
		Domain:           l.Domain(),
		IPAddress:        l.IPAddress(),
		UserAgent:        l.UserAgent(),
		Status:           l.Status().String(),
		IsValid:          l.IsValid(),
		ResponseMessage:  l.ResponseMessage(),
		RequestData:      l.RequestData(),
		ResponseData:     l.ResponseData(),
		ErrorDetails:     l.ErrorDetails(),
		Source:           l.Source().String(),
		VerifiedAt:       l.VerifiedAt(),
		CreatedAt:        l.CreatedAt(),
	}
}
