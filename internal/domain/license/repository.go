package license

import "context"

// ListFilter narrows license listings.
type ListFilter struct {
	ProductID uint
	UserID    uint
	Status    Status
}

// Repository defines the interface for license persistence operations
type Repository interface {
	// Create creates a new license
	Create(ctx context.Context, l *License) error

	// Update updates an existing license
	Update(ctx context.Context, l *License) error

	// GetByID retrieves a license by ID
	GetByID(ctx context.Context, id uint) (*License, error)

	// GetBySID retrieves a license by its public short identifier
	GetBySID(ctx context.Context, sid string) (*License, error)

	// GetByPurchaseCode retrieves a license by purchase code or license key
	GetByPurchaseCode(ctx context.Context, code string) (*License, error)

	// GetByPurchaseCodeForUpdate retrieves a license by purchase code while
	// holding a row lock for the remainder of the surrounding transaction.
	// The verification path uses this to serialize binding creation per
	// license.
	GetByPurchaseCodeForUpdate(ctx context.Context, code string) (*License, error)

	// ExistsByPurchaseCode checks purchase code uniqueness
	ExistsByPurchaseCode(ctx context.Context, code string) (bool, error)

	// List retrieves licenses matching the filter with offset pagination
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]*License, int64, error)
}

// BindingRepository defines the interface for domain binding persistence.
// Binding creation on the verification path must go through the engine so the
// domain-limit check applies; admin tooling may create bindings directly as
// an explicit override.
type BindingRepository interface {
	// Create creates a new domain binding
	Create(ctx context.Context, b *DomainBinding) error

	// Update updates an existing domain binding
	Update(ctx context.Context, b *DomainBinding) error

	// GetByID retrieves a binding by ID
	GetByID(ctx context.Context, id uint) (*DomainBinding, error)

	// GetByLicenseAndDomain retrieves the binding for a license+domain pair
	GetByLicenseAndDomain(ctx context.Context, licenseID uint, domain string) (*DomainBinding, error)

	// ListByLicense retrieves all bindings for a license
	ListByLicense(ctx context.Context, licenseID uint) ([]*DomainBinding, error)

	// CountActive returns the number of active bindings for a license
	CountActive(ctx context.Context, licenseID uint) (int, error)
}
