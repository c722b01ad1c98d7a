package license

import (
	"errors"
	"fmt"
)

var (
	// ErrLicenseNotFound is returned when a license is not found
	ErrLicenseNotFound = errors.New("license not found")

	// ErrBindingNotFound is returned when a domain binding is not found
	ErrBindingNotFound = errors.New("domain binding not found")

	// ErrLicenseExpired is returned when a license has expired
	ErrLicenseExpired = errors.New("license expired")

	// ErrLicenseRevoked is returned when a license has been revoked
	ErrLicenseRevoked = errors.New("license revoked")

	// ErrDomainLimitReached is returned when the active binding count has
	// reached the license domain cap
	ErrDomainLimitReached = errors.New("domain limit reached")

	// ErrDuplicateBinding is returned when a binding already exists for a
	// license and domain pair
	ErrDuplicateBinding = errors.New("domain binding already exists")

	// ErrDuplicatePurchaseCode is returned on a purchase code collision
	ErrDuplicatePurchaseCode = errors.New("purchase code already exists")

	// ErrPurchaseCodeImmutable is returned on an attempt to change a
	// purchase code after creation
	ErrPurchaseCodeImmutable = errors.New("purchase code is immutable")

	// ErrInvalidStatus is returned when an invalid license status is provided
	ErrInvalidStatus = errors.New("invalid license status")

	// ErrInvalidBindingStatus is returned when an invalid binding status is provided
	ErrInvalidBindingStatus = errors.New("invalid binding status")
)

// ErrInvalidStatusTransition returns an error for invalid status transitions
func ErrInvalidStatusTransition(from, to Status) error {
	return fmt.Errorf("invalid status transition from %s to %s", from, to)
}
