// Package dto defines the request and response shapes of the license
// application layer.
package dto

import "time"

// CreateLicenseRequest carries the inputs for license creation. PurchaseCode
// is optional; a fresh code is generated when omitted.
type CreateLicenseRequest struct {
	ProductID        uint   `json:"product_id" validate:"required"`
	UserID           uint   `json:"user_id" validate:"required"`
	LicenseType      string `json:"license_type" validate:"omitempty,oneof=single extended lifetime"`
	MaxDomains       int    `json:"max_domains" validate:"omitempty,min=1"`
	PurchaseCode     string `json:"purchase_code" validate:"omitempty,max=32"`
	LicenseExpiresAt string `json:"license_expires_at" validate:"omitempty"`
	SupportExpiresAt string `json:"support_expires_at" validate:"omitempty"`
	Notes            string `json:"notes" validate:"omitempty,max=500"`
}

// UpdateLicenseRequest carries the mutable license fields. Nil means "leave
// unchanged". The purchase code is immutable and deliberately absent.
type UpdateLicenseRequest struct {
	MaxDomains       *int    `json:"max_domains" validate:"omitempty,min=1"`
	LicenseExpiresAt *string `json:"license_expires_at" validate:"omitempty"`
	Notes            *string `json:"notes" validate:"omitempty,max=500"`
}

// ListLicensesRequest narrows license listings.
type ListLicensesRequest struct {
	ProductID uint   `json:"product_id"`
	UserID    uint   `json:"user_id"`
	Status    string `json:"status"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

// LicenseResponse is the admin-facing license representation.
type LicenseResponse struct {
	ID               string     `json:"id"`
	PurchaseCode     string     `json:"purchase_code"`
	LicenseKey       string     `json:"license_key"`
	ProductID        uint       `json:"product_id"`
	UserID           uint       `json:"user_id"`
	LicenseType      string     `json:"license_type"`
	Status           string     `json:"status"`
	MaxDomains       int        `json:"max_domains"`
	ActiveDomains    int        `json:"active_domains"`
	LicenseExpiresAt *time.Time `json:"license_expires_at"`
	SupportExpiresAt *time.Time `json:"support_expires_at"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DomainBindingResponse is the admin-facing binding representation.
type DomainBindingResponse struct {
	ID         string     `json:"id"`
	Domain     string     `json:"domain"`
	Status     string     `json:"status"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at"`
	AddedAt    time.Time  `json:"added_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// VerifyLicenseRequest is the public verification request. IPAddress and
// UserAgent are filled from the transport, not the caller payload.
type VerifyLicenseRequest struct {
	PurchaseCode string `json:"purchase_code" validate:"required,max=64"`
	Domain       string `json:"domain" validate:"required,max=253"`
	Source       string `json:"source" validate:"omitempty,oneof=install api admin"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}

// VerifyLicenseResponse is the public verification result. Denials come back
// with Valid=false and a caller-safe message rather than as errors.
type VerifyLicenseResponse struct {
	Valid   bool                `json:"valid"`
	Message string              `json:"message"`
	License *VerifiedLicenseDTO `json:"license,omitempty"`
}

// VerifiedLicenseDTO is the license detail exposed on a successful
// verification. It never includes internal identifiers.
type VerifiedLicenseDTO struct {
	LicenseType      string     `json:"license_type"`
	Status           string     `json:"status"`
	Domain           string     `json:"domain"`
	DomainsRemaining int        `json:"domains_remaining"`
	LicenseExpiresAt *time.Time `json:"license_expires_at"`
	SupportExpiresAt *time.Time `json:"support_expires_at"`
	SupportActive    bool       `json:"support_active"`
}
