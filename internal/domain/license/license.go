package license

import (
	"fmt"
	"time"

	"github.com/licentry/licentry/internal/shared/id"
)

// License is the aggregate root of the entitlement engine. It owns the
// purchase code identity, the domain cap, and the lifecycle status checked
// on every verification.
type License struct {
	id               uint
	sid              string
	purchaseCode     string
	licenseKey       string
	productID        uint
	userID           uint
	licenseType      Type
	status           Status
	maxDomains       int
	licenseExpiresAt *time.Time
	supportExpiresAt *time.Time
	notes            string
	createdAt        time.Time
	updatedAt        time.Time
	version          int
}

// NewLicense creates a new license. When purchaseCode is empty a fresh code
// is generated; the license key always mirrors the purchase code. maxDomains
// below 1 falls back to 1.
func NewLicense(
	productID uint,
	userID uint,
	licenseType Type,
	maxDomains int,
	purchaseCode string,
	licenseExpiresAt *time.Time,
	supportExpiresAt *time.Time,
	notes string,
) (*License, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !licenseType.IsValid() {
		return nil, fmt.Errorf("invalid license type: %s", licenseType)
	}
	if maxDomains < 1 {
		maxDomains = 1
	}

	if purchaseCode == "" {
		code, err := GeneratePurchaseCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate purchase code: %w", err)
		}
		purchaseCode = code
	} else {
		purchaseCode = NormalizePurchaseCode(purchaseCode)
		if !IsWellFormedPurchaseCode(purchaseCode) {
			return nil, fmt.Errorf("malformed purchase code: %s", purchaseCode)
		}
	}

	now := time.Now().UTC()
	return &License{
		sid:              id.MustGenerateWithPrefix(id.PrefixLicense, id.DefaultLength),
		purchaseCode:     purchaseCode,
		licenseKey:       purchaseCode,
		productID:        productID,
		userID:           userID,
		licenseType:      licenseType,
		status:           StatusActive,
		maxDomains:       maxDomains,
		licenseExpiresAt: licenseExpiresAt,
		supportExpiresAt: supportExpiresAt,
		notes:            notes,
		createdAt:        now,
		updatedAt:        now,
		version:          1,
	}, nil
}

// LicenseReconstructParams carries persisted state back into the aggregate.
type LicenseReconstructParams struct {
	ID               uint
	SID              string
	PurchaseCode     string
	LicenseKey       string
	ProductID        uint
	UserID           uint
	LicenseType      Type
	Status           Status
	MaxDomains       int
	LicenseExpiresAt *time.Time
	SupportExpiresAt *time.Time
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int
}

// ReconstructLicense rebuilds a license from persistence.
func ReconstructLicense(p LicenseReconstructParams) (*License, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("license ID cannot be zero")
	}
	if p.PurchaseCode == "" {
		return nil, fmt.Errorf("purchase code is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid license status: %s", p.Status)
	}
	if !p.LicenseType.IsValid() {
		return nil, fmt.Errorf("invalid license type: %s", p.LicenseType)
	}
	if p.MaxDomains < 1 {
		p.MaxDomains = 1
	}
	if p.LicenseKey == "" {
		p.LicenseKey = p.PurchaseCode
	}

	return &License{
		id:               p.ID,
		sid:              p.SID,
		purchaseCode:     p.PurchaseCode,
		licenseKey:       p.LicenseKey,
		productID:        p.ProductID,
		userID:           p.UserID,
		licenseType:      p.LicenseType,
		status:           p.Status,
		maxDomains:       p.MaxDomains,
		licenseExpiresAt: p.LicenseExpiresAt,
		supportExpiresAt: p.SupportExpiresAt,
		notes:            p.Notes,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
		version:          p.Version,
	}, nil
}

// ID returns the license ID
func (l *License) ID() uint {
	return l.id
}

// SID returns the public short identifier
func (l *License) SID() string {
	return l.sid
}

// PurchaseCode returns the purchase code
func (l *License) PurchaseCode() string {
	return l.purchaseCode
}

// LicenseKey returns the license key (mirrors the purchase code)
func (l *License) LicenseKey() string {
	return l.licenseKey
}

// ProductID returns the owning product ID
func (l *License) ProductID() uint {
	return l.productID
}

// UserID returns the owning user ID
func (l *License) UserID() uint {
	return l.userID
}

// LicenseType returns the license type
func (l *License) LicenseType() Type {
	return l.licenseType
}

// Status returns the license status
func (l *License) Status() Status {
	return l.status
}

// MaxDomains returns the domain cap
func (l *License) MaxDomains() int {
	return l.maxDomains
}

// LicenseExpiresAt returns the license expiration time, nil for lifetime
func (l *License) LicenseExpiresAt() *time.Time {
	return l.licenseExpiresAt
}

// SupportExpiresAt returns the support window expiration time
func (l *License) SupportExpiresAt() *time.Time {
	return l.supportExpiresAt
}

// Notes returns the free-form notes
func (l *License) Notes() string {
	return l.notes
}

// CreatedAt returns when the license was created
func (l *License) CreatedAt() time.Time {
	return l.createdAt
}

// UpdatedAt returns when the license was last updated
func (l *License) UpdatedAt() time.Time {
	return l.updatedAt
}

// Version returns the aggregate version for optimistic locking
func (l *License) Version() int {
	return l.version
}

// SetID sets the license ID (only for persistence layer use)
func (l *License) SetID(licenseID uint) error {
	if l.id != 0 {
		return fmt.Errorf("license ID is already set")
	}
	if licenseID == 0 {
		return fmt.Errorf("license ID cannot be zero")
	}
	l.id = licenseID
	return nil
}

// IsExpired checks whether the expiration time has passed. A license with a
// past expiry is logically expired even while status still reads active;
// callers must check both.
func (l *License) IsExpired() bool {
	if l.licenseExpiresAt == nil {
		return false
	}
	return time.Now().After(*l.licenseExpiresAt)
}

// IsVerifiable checks status and expiration together.
func (l *License) IsVerifiable() bool {
	return l.status == StatusActive && !l.IsExpired()
}

// SupportActive checks whether the support window is still open.
func (l *License) SupportActive() bool {
	return l.supportExpiresAt != nil && l.supportExpiresAt.After(time.Now())
}

// HasReachedDomainLimit applies the cap check against the current count of
// active bindings. The check is >=, so a license with max_domains=1 accepts
// exactly one domain.
func (l *License) HasReachedDomainLimit(activeBindings int) bool {
	return activeBindings >= l.maxDomains
}

// RemainingDomains returns how many more domains could bind.
func (l *License) RemainingDomains(activeBindings int) int {
	remaining := l.maxDomains - activeBindings
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Activate transitions the license to active. Expired and suspended licenses
// may be reactivated explicitly; revoked licenses may not.
func (l *License) Activate() error {
	if l.status == StatusActive {
		return nil
	}
	if l.status == StatusRevoked {
		return ErrInvalidStatusTransition(l.status, StatusActive)
	}

	l.status = StatusActive
	l.touch()
	return nil
}

// Suspend transitions the license to suspended.
func (l *License) Suspend() error {
	if l.status == StatusSuspended {
		return nil
	}
	if l.status == StatusRevoked || l.status == StatusExpired {
		return ErrInvalidStatusTransition(l.status, StatusSuspended)
	}

	l.status = StatusSuspended
	l.touch()
	return nil
}

// Deactivate transitions the license to inactive.
func (l *License) Deactivate() error {
	if l.status == StatusInactive {
		return nil
	}
	if l.status == StatusRevoked {
		return ErrInvalidStatusTransition(l.status, StatusInactive)
	}

	l.status = StatusInactive
	l.touch()
	return nil
}

// MarkExpired records the expired state. This also happens write-on-read
// inside the verification path when the expiry has passed.
func (l *License) MarkExpired() error {
	if l.status == StatusExpired {
		return nil
	}
	if l.status == StatusRevoked {
		return ErrInvalidStatusTransition(l.status, StatusExpired)
	}

	l.status = StatusExpired
	l.touch()
	return nil
}

// Revoke permanently revokes the license.
func (l *License) Revoke() error {
	if l.status == StatusRevoked {
		return nil
	}

	l.status = StatusRevoked
	l.touch()
	return nil
}

// SetNotes replaces the admin notes.
func (l *License) SetNotes(notes string) {
	l.notes = notes
	l.touch()
}

// SetMaxDomains adjusts the domain cap. Existing bindings above a lowered cap
// are untouched; the cap only gates new bindings.
func (l *License) SetMaxDomains(maxDomains int) error {
	if maxDomains < 1 {
		return fmt.Errorf("max domains must be at least 1")
	}
	l.maxDomains = maxDomains
	l.touch()
	return nil
}

// ExtendExpiry moves the license expiration forward.
func (l *License) ExtendExpiry(until time.Time) error {
	if l.licenseExpiresAt != nil && until.Before(*l.licenseExpiresAt) {
		return fmt.Errorf("new expiry must be after current expiry")
	}
	l.licenseExpiresAt = &until
	l.touch()
	return nil
}

func (l *License) touch() {
	l.updatedAt = time.Now().UTC()
	l.version++
}
