package license

import (
	"fmt"
	"strings"
	"time"

	"github.com/licentry/licentry/internal/shared/id"
)

// DomainBinding associates one domain with one license. Bindings are only
// meaningful in the context of their owning license; there is no
// cross-license domain sharing.
type DomainBinding struct {
	id         uint
	sid        string
	licenseID  uint
	domain     string
	status     BindingStatus
	isVerified bool
	verifiedAt *time.Time
	addedAt    time.Time
	lastUsedAt *time.Time
	updatedAt  time.Time
}

// NewDomainBinding creates a binding for a normalized domain. autoApprove
// decides whether the binding starts active and verified, or pending.
func NewDomainBinding(licenseID uint, domain string, autoApprove bool) (*DomainBinding, error) {
	if licenseID == 0 {
		return nil, fmt.Errorf("license ID is required")
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}

	now := time.Now().UTC()
	b := &DomainBinding{
		sid:       id.MustGenerateWithPrefix(id.PrefixDomainBinding, id.DefaultLength),
		licenseID: licenseID,
		domain:    domain,
		status:    BindingStatusPending,
		addedAt:   now,
		updatedAt: now,
	}
	if autoApprove {
		b.status = BindingStatusActive
		b.isVerified = true
		b.verifiedAt = &now
	}
	return b, nil
}

// BindingReconstructParams carries persisted state back into the entity.
type BindingReconstructParams struct {
	ID         uint
	SID        string
	LicenseID  uint
	Domain     string
	Status     BindingStatus
	IsVerified bool
	VerifiedAt *time.Time
	AddedAt    time.Time
	LastUsedAt *time.Time
	UpdatedAt  time.Time
}

// ReconstructDomainBinding rebuilds a binding from persistence.
func ReconstructDomainBinding(p BindingReconstructParams) (*DomainBinding, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("binding ID cannot be zero")
	}
	if p.LicenseID == 0 {
		return nil, fmt.Errorf("license ID is required")
	}
	if p.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid binding status: %s", p.Status)
	}

	return &DomainBinding{
		id:         p.ID,
		sid:        p.SID,
		licenseID:  p.LicenseID,
		domain:     p.Domain,
		status:     p.Status,
		isVerified: p.IsVerified,
		verifiedAt: p.VerifiedAt,
		addedAt:    p.AddedAt,
		lastUsedAt: p.LastUsedAt,
		updatedAt:  p.UpdatedAt,
	}, nil
}

// ID returns the binding ID
func (b *DomainBinding) ID() uint {
	return b.id
}

// SID returns the public short identifier
func (b *DomainBinding) SID() string {
	return b.sid
}

// LicenseID returns the owning license ID
func (b *DomainBinding) LicenseID() uint {
	return b.licenseID
}

// Domain returns the bound domain
func (b *DomainBinding) Domain() string {
	return b.domain
}

// Status returns the binding status
func (b *DomainBinding) Status() BindingStatus {
	return b.status
}

// IsVerified reports whether the binding has passed verification
func (b *DomainBinding) IsVerified() bool {
	return b.isVerified
}

// VerifiedAt returns when the binding was first verified
func (b *DomainBinding) VerifiedAt() *time.Time {
	return b.verifiedAt
}

// AddedAt returns when the binding was created
func (b *DomainBinding) AddedAt() time.Time {
	return b.addedAt
}

// LastUsedAt returns when the binding last verified successfully
func (b *DomainBinding) LastUsedAt() *time.Time {
	return b.lastUsedAt
}

// UpdatedAt returns when the binding was last updated
func (b *DomainBinding) UpdatedAt() time.Time {
	return b.updatedAt
}

// SetID sets the binding ID (only for persistence layer use)
func (b *DomainBinding) SetID(bindingID uint) error {
	if b.id != 0 {
		return fmt.Errorf("binding ID is already set")
	}
	if bindingID == 0 {
		return fmt.Errorf("binding ID cannot be zero")
	}
	b.id = bindingID
	return nil
}

// IsActive reports whether the binding counts against the domain cap.
func (b *DomainBinding) IsActive() bool {
	return b.status == BindingStatusActive
}

// MarkVerified flags the binding as verified and stamps verified_at.
func (b *DomainBinding) MarkVerified() {
	now := time.Now().UTC()
	b.isVerified = true
	if b.verifiedAt == nil {
		b.verifiedAt = &now
	}
	b.updatedAt = now
}

// Touch updates last_used_at. Called on every successful verification.
func (b *DomainBinding) Touch() {
	now := time.Now().UTC()
	b.lastUsedAt = &now
	b.updatedAt = now
}

// IsRecentlyUsed reports whether the binding verified within the trailing
// window. A binding that never verified is never recently used.
func (b *DomainBinding) IsRecentlyUsed(windowDays int) bool {
	if b.lastUsedAt == nil || windowDays <= 0 {
		return false
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)
	return b.lastUsedAt.After(cutoff)
}

// Activate transitions the binding to active.
func (b *DomainBinding) Activate() error {
	b.status = BindingStatusActive
	b.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate transitions the binding to inactive, releasing a slot under the cap.
func (b *DomainBinding) Deactivate() error {
	b.status = BindingStatusInactive
	b.updatedAt = time.Now().UTC()
	return nil
}

// Suspend transitions the binding to suspended.
func (b *DomainBinding) Suspend() error {
	b.status = BindingStatusSuspended
	b.updatedAt = time.Now().UTC()
	return nil
}
