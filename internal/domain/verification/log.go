// Package verification provides the append-only verification attempt log and
// the suspicious-activity findings derived from it.
package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/licentry/licentry/internal/domain/license"
)

// Outcome classifies a verification attempt.
type Outcome string

const (
	// OutcomeSuccess is an allowed verification
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed is a business-rule denial
	OutcomeFailed Outcome = "failed"
	// OutcomeError is an infrastructure failure recorded out-of-band; it
	// must never be conflated with a denial in analytics
	OutcomeError Outcome = "error"
)

// IsValid checks if the outcome is valid
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomeError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// Log is one immutable fact about one verification attempt. Rows are only
// ever created and purged, never updated.
type Log struct {
	id               uint
	licenseID        *uint
	purchaseCodeHash string
	domain           string
	ipAddress        string
	userAgent        string
	status           Outcome
	isValid          bool
	responseMessage  string
	requestData      map[string]any
	responseData     map[string]any
	errorDetails     string
	source           license.Source
	verifiedAt       *time.Time
	createdAt        time.Time
}

// NewLogParams carries the inputs for a new log row.
type NewLogParams struct {
	LicenseID       *uint
	PurchaseCode    string
	Domain          string
	IPAddress       string
	UserAgent       string
	Status          Outcome
	ResponseMessage string
	RequestData     map[string]any
	ResponseData    map[string]any
	ErrorDetails    string
	Source          license.Source
}

// NewLog creates a log entry for one verification attempt. The raw purchase
// code is hashed before storage; missing IP and user agent fall back to
// "unknown" so every row stays queryable.
func NewLog(p NewLogParams) (*Log, error) {
	if p.PurchaseCode == "" {
		return nil, fmt.Errorf("purchase code is required")
	}
	if p.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid outcome: %s", p.Status)
	}
	if !p.Source.IsValid() {
		return nil, fmt.Errorf("invalid verification source: %s", p.Source)
	}

	ip := strings.TrimSpace(p.IPAddress)
	if ip == "" {
		ip = "unknown"
	}
	ua := strings.TrimSpace(p.UserAgent)
	if ua == "" {
		ua = "unknown"
	}

	now := time.Now().UTC()
	l := &Log{
		licenseID:        p.LicenseID,
		purchaseCodeHash: license.HashPurchaseCode(p.PurchaseCode),
		domain:           strings.ToLower(strings.TrimSpace(p.Domain)),
		ipAddress:        ip,
		userAgent:        ua,
		status:           p.Status,
		isValid:          p.Status == OutcomeSuccess,
		responseMessage:  p.ResponseMessage,
		requestData:      p.RequestData,
		responseData:     p.ResponseData,
		errorDetails:     p.ErrorDetails,
		source:           p.Source,
		createdAt:        now,
	}
	if l.isValid {
		l.verifiedAt = &now
	}
	return l, nil
}

// LogReconstructParams carries persisted state back into the record.
type LogReconstructParams struct {
	ID               uint
	LicenseID        *uint
	PurchaseCodeHash string
	Domain           string
	IPAddress        string
	UserAgent        string
	Status           Outcome
	IsValid          bool
	ResponseMessage  string
	RequestData      map[string]any
	ResponseData     map[string]any
	ErrorDetails     string
	Source           license.Source
	VerifiedAt       *time.Time
	CreatedAt        time.Time
}

// ReconstructLog rebuilds a log entry from persistence.
func ReconstructLog(p LogReconstructParams) (*Log, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("log ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid outcome: %s", p.Status)
	}

	return &Log{
		id:               p.ID,
		licenseID:        p.LicenseID,
		purchaseCodeHash: p.PurchaseCodeHash,
		domain:           p.Domain,
		ipAddress:        p.IPAddress,
		userAgent:        p.UserAgent,
		status:           p.Status,
		isValid:          p.IsValid,
		responseMessage:  p.ResponseMessage,
		requestData:      p.RequestData,
		responseData:     p.ResponseData,
		errorDetails:     p.ErrorDetails,
		source:           p.Source,
		verifiedAt:       p.VerifiedAt,
		createdAt:        p.CreatedAt,
	}, nil
}

// ID returns the log ID
func (l *Log) ID() uint {
	return l.id
}

// LicenseID returns the resolved license ID, nil when the code was unknown
func (l *Log) LicenseID() *uint {
	return l.licenseID
}

// PurchaseCodeHash returns the sha256 hash of the submitted purchase code
func (l *Log) PurchaseCodeHash() string {
	return l.purchaseCodeHash
}

// Domain returns the domain submitted with the attempt
func (l *Log) Domain() string {
	return l.domain
}

// IPAddress returns the caller IP
func (l *Log) IPAddress() string {
	return l.ipAddress
}

// UserAgent returns the caller user agent
func (l *Log) UserAgent() string {
	return l.userAgent
}

// Status returns the attempt outcome
func (l *Log) Status() Outcome {
	return l.status
}

// IsValid reports whether the attempt was allowed
func (l *Log) IsValid() bool {
	return l.isValid
}

// ResponseMessage returns the message returned to the caller
func (l *Log) ResponseMessage() string {
	return l.responseMessage
}

// RequestData returns the recorded request metadata
func (l *Log) RequestData() map[string]any {
	return l.requestData
}

// ResponseData returns the recorded response metadata
func (l *Log) ResponseData() map[string]any {
	return l.responseData
}

// ErrorDetails returns infrastructure error details, empty for denials
func (l *Log) ErrorDetails() string {
	return l.errorDetails
}

// Source returns where the attempt originated
func (l *Log) Source() license.Source {
	return l.source
}

// VerifiedAt returns the success timestamp, nil for denials
func (l *Log) VerifiedAt() *time.Time {
	return l.verifiedAt
}

// CreatedAt returns when the attempt was recorded
func (l *Log) CreatedAt() time.Time {
	return l.createdAt
}

// SetID sets the log ID (only for persistence layer use)
func (l *Log) SetID(logID uint) error {
	if l.id != 0 {
		return fmt.Errorf("log ID is already set")
	}
	if logID == 0 {
		return fmt.Errorf("log ID cannot be zero")
	}
	l.id = logID
	return nil
}
