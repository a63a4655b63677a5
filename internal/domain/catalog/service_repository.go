package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines the interface for service persistence
type ServiceRepository interface {
	// Create creates a new service with its price tiers
	Create(ctx context.Context, service *Service) error

	// Update updates a service. The tier collection is synchronized:
	// tiers removed from the aggregate are deleted, the rest upserted.
	Update(ctx context.Context, service *Service) error

	// FindByID finds a service by ID within the tenant, tiers preloaded
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Service, error)

	// FindByName finds a service by exact name within the tenant
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Service, error)

	// FindAll returns services for the tenant with pagination, tiers preloaded
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ServiceFilter) ([]*Service, int64, error)

	// ExistsByName checks if a service name is taken within the tenant
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
}

// ServiceFilter contains filter options for querying services
type ServiceFilter struct {
	// Keyword matched against the normalized search name
	Keyword string

	// Filter by status
	Status *ServiceStatus

	// Filter by pricing mode
	PricingMode *PricingMode

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewServiceFilter creates a new ServiceFilter with default values
func NewServiceFilter() ServiceFilter {
	return ServiceFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "name",
		SortOrder: "asc",
	}
}

// WithKeyword sets the search keyword
func (f ServiceFilter) WithKeyword(keyword string) ServiceFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f ServiceFilter) WithStatus(status ServiceStatus) ServiceFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f ServiceFilter) WithPagination(page, pageSize int) ServiceFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f ServiceFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ServiceFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
