// Package dto defines the request and response shapes of the verification
// log application layer.
package dto

import "time"

// ListLogsRequest narrows verification log listings. Zero values mean "no
// constraint".
type ListLogsRequest struct {
	LicenseSID string `json:"license_id"`
	Domain     string `json:"domain"`
	IPAddress  string `json:"ip_address"`
	Status     string `json:"status" validate:"omitempty,oneof=success failed error"`
	Source     string `json:"source" validate:"omitempty,oneof=install api admin"`
	From       string `json:"from" validate:"omitempty"`
	To         string `json:"to" validate:"omitempty"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	SortOrder  string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// LogResponse is the admin-facing verification log row. The purchase code is
// only ever exposed as its hash.
type LogResponse struct {
	ID               uint           `json:"id"`
	LicenseID        *uint          `json:"license_id"`
	PurchaseCodeHash string         `json:"purchase_code_hash"`
	Domain           string         `json:"domain"`
	IPAddress        string         `json:"ip_address"`
	UserAgent        string         `json:"user_agent"`
	Status           string         `json:"status"`
	IsValid          bool           `json:"is_valid"`
	ResponseMessage  string         `json:"response_message"`
	RequestData      map[string]any `json:"request_data,omitempty"`
	ResponseData     map[string]any `json:"response_data,omitempty"`
	ErrorDetails     string         `json:"error_details,omitempty"`
	Source           string         `json:"source"`
	VerifiedAt       *time.Time     `json:"verified_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CleanupRequest carries the retention purge parameters. Confirm must be set
// or the purge runs as a dry run regardless of DryRun.
type CleanupRequest struct {
	Days    int  `json:"days" validate:"required,min=1,max=365"`
	DryRun  bool `json:"dry_run"`
	Confirm bool `json:"confirm"`
}

// CleanupResponse reports a retention purge outcome.
type CleanupResponse struct {
	DryRun       bool      `json:"dry_run"`
	Cutoff       time.Time `json:"cutoff"`
	MatchedRows  int64     `json:"matched_rows"`
	DeletedRows  int64     `json:"deleted_rows"`
	LockAcquired bool      `json:"lock_acquired"`
}
