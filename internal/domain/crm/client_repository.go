package crm

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *Client) error

	// Update updates an existing client
	Update(ctx context.Context, client *Client) error

	// FindByID finds a client by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindByTaxID finds a client by tax ID within the tenant
	FindByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*Client, error)

	// FindAll returns clients for the tenant with pagination.
	// Keyword matching runs against the normalized search name.
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ClientFilter) ([]*Client, int64, error)

	// ExistsByTaxID checks if a tax ID is already registered within the tenant
	ExistsByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (bool, error)
}

// ClientFilter contains filter options for querying clients
type ClientFilter struct {
	// Keyword matched against the normalized search name, phone, or email
	Keyword string

	// Filter by status
	Status *ClientStatus

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewClientFilter creates a new ClientFilter with default values
func NewClientFilter() ClientFilter {
	return ClientFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f ClientFilter) WithKeyword(keyword string) ClientFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f ClientFilter) WithStatus(status ClientStatus) ClientFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f ClientFilter) WithPagination(page, pageSize int) ClientFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f ClientFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ClientFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
