package usecases

import (
	"github.com/licentry/licentry/internal/application/license/dto"
	"github.com/licentry/licentry/internal/domain/license"
)

func toLicenseResponse(l *license.License, activeDomains int) *dto.LicenseResponse {
	return &dto.LicenseResponse{
		ID:               l.SID(),
		PurchaseCode:     l.PurchaseCode(),
		LicenseKey:       l.LicenseKey(),
		ProductID:        l.ProductID(),
		UserID:           l.UserID(),
		LicenseType:      l.LicenseType().String(),
		Status:           l.Status().String(),
		MaxDomains:       l.MaxDomains(),
		ActiveDomains:    activeDomains,
		LicenseExpiresAt: l.LicenseExpiresAt(),
		SupportExpiresAt: l.SupportExpiresAt(),
		Notes:            l.Notes(),
		CreatedAt:        l.CreatedAt(),
		UpdatedAt:        l.UpdatedAt(),
	}
}

func toBindingResponse(b *license.DomainBinding) *dto.DomainBindingResponse {
	return &dto.DomainBindingResponse{
		ID:         b.SID(),
		Domain:     b.Domain(),
		Status:     b.Status().String(),
		IsVerified: b.IsVerified(),
		VerifiedAt: b.VerifiedAt(),
		AddedAt:    b.AddedAt(),
		LastUsedAt: b.LastUsedAt(),
	}
}
