// Package license provides domain models and business logic for license
// entitlement management: purchase-code backed licenses and the domains
// bound to them.
package license

// Status represents the lifecycle status of a license
type Status string

const (
	// StatusActive indicates the license is active and verifiable
	StatusActive Status = "active"
	// StatusInactive indicates the license has been deactivated by an admin
	StatusInactive Status = "inactive"
	// StatusSuspended indicates the license is temporarily suspended
	StatusSuspended Status = "suspended"
	// StatusExpired indicates the license has passed its expiration time
	StatusExpired Status = "expired"
	// StatusRevoked indicates the license has been permanently revoked
	StatusRevoked Status = "revoked"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusExpired, StatusRevoked:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsActive checks if the status indicates a verifiable license
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Type represents the commercial type of a license
type Type string

const (
	// TypeSingle is a single-site license
	TypeSingle Type = "single"
	// TypeExtended is an extended license
	TypeExtended Type = "extended"
	// TypeLifetime is a license that never expires
	TypeLifetime Type = "lifetime"
)

// IsValid checks if the license type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeSingle, TypeExtended, TypeLifetime:
		return true
	default:
		return false
	}
}

// String returns the string representation of the license type
func (t Type) String() string {
	return string(t)
}

// BindingStatus represents the status of a domain binding
type BindingStatus string

const (
	// BindingStatusActive counts against the license domain cap
	BindingStatusActive BindingStatus = "active"
	// BindingStatusInactive indicates the binding was released
	BindingStatusInactive BindingStatus = "inactive"
	// BindingStatusSuspended indicates the binding was suspended for abuse
	BindingStatusSuspended BindingStatus = "suspended"
	// BindingStatusPending indicates the binding awaits admin approval
	BindingStatusPending BindingStatus = "pending"
)

// IsValid checks if the binding status is valid
func (bs BindingStatus) IsValid() bool {
	switch bs {
	case BindingStatusActive, BindingStatusInactive, BindingStatusSuspended, BindingStatusPending:
		return true
	default:
		return false
	}
}

// String returns the string representation of the binding status
func (bs BindingStatus) String() string {
	return string(bs)
}

// Source identifies where a verification request originated
type Source string

const (
	// SourceInstall is the product install script
	SourceInstall Source = "install"
	// SourceAPI is the public license-check API
	SourceAPI Source = "api"
	// SourceAdmin is a manual admin-panel check
	SourceAdmin Source = "admin"
)

// IsValid checks if the verification source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceInstall, SourceAPI, SourceAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source
func (s Source) String() string {
	return string(s)
}
