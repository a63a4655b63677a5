package packages

import (
	"context"

	"github.com/google/uuid"
)

// ClientPackageRepository persists packages and owns the ledger
// operations whose atomicity the balance invariant depends on.
type ClientPackageRepository interface {
	// Create creates a new package
	Create(ctx context.Context, pkg *ClientPackage) error

	// Update updates an existing package
	Update(ctx context.Context, pkg *ClientPackage) error

	// FindByID finds a package by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ClientPackage, error)

	// FindBySaleID finds the package originated by a package_sale
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*ClientPackage, error)

	// FindByClientID returns all packages of one client
	FindByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*ClientPackage, error)

	// FindAll returns packages for the tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PackageFilter) ([]*ClientPackage, int64, error)

	// Consume atomically draws credits and records a Consumption row
	// tied to the sale. The balance check and decrement execute as one
	// conditional update so concurrent draws can never overspend.
	// Returns shared.ErrInsufficientBalance when the balance is short,
	// shared.ErrNotFound when the package is missing, inactive, or
	// expired.
	Consume(ctx context.Context, tenantID, packageID, saleID uuid.UUID, quantity int) error

	// ReverseForSale marks every unreversed Consumption of the sale
	// reversed and restores the package counters by exactly the
	// recorded quantities. Returns the total restored quantity; zero
	// means there was nothing left to reverse, so repeated calls are
	// idempotent.
	ReverseForSale(ctx context.Context, tenantID, saleID uuid.UUID) (int, error)

	// FindConsumptionsBySaleID returns the ledger entries of one sale
	FindConsumptionsBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*Consumption, error)

	// FindConsumptionsByPackageID returns the ledger entries of one package
	FindConsumptionsByPackageID(ctx context.Context, tenantID, packageID uuid.UUID) ([]*Consumption, error)
}

// PackageFilter contains filter options for querying packages
type PackageFilter struct {
	// Filter by owning client
	ClientID *uuid.UUID

	// Filter by service
	ServiceID *uuid.UUID

	// Filter by active flag
	Active *bool

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewPackageFilter creates a new PackageFilter with default values
func NewPackageFilter() PackageFilter {
	return PackageFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithClientID sets the client filter
func (f PackageFilter) WithClientID(clientID uuid.UUID) PackageFilter {
	f.ClientID = &clientID
	return f
}

// WithServiceID sets the service filter
func (f PackageFilter) WithServiceID(serviceID uuid.UUID) PackageFilter {
	f.ServiceID = &serviceID
	return f
}

// WithActive sets the active filter
func (f PackageFilter) WithActive(active bool) PackageFilter {
	f.Active = &active
	return f
}

// WithPagination sets pagination parameters
func (f PackageFilter) WithPagination(page, pageSize int) PackageFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f PackageFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f PackageFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
