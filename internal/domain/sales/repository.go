package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository defines the persistence port for sales
type SaleRepository interface {
	// Create persists a new sale with its items
	Create(ctx context.Context, sale *Sale) error

	// Update persists changes to an existing sale. Item edits are a
	// full replace: rows absent from the aggregate are deleted.
	Update(ctx context.Context, sale *Sale) error

	// FindByID finds a sale by ID within a tenant, items preloaded
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByNumber finds a sale by its human-readable number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Sale, error)

	// FindAll returns sales matching the filter with total count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]*Sale, int64, error)

	// ExistsByNumber checks whether a sale number is already taken
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)

	// GenerateNumber produces the next sale number for the tenant,
	// formatted SA-YYYY-NNNNN with the sequence scoped per year.
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SaleFilter defines filtering options for sale queries
type SaleFilter struct {
	Keyword     string // Matches number and client name
	Status      SaleStatus
	Type        SaleType
	ClientID    *uuid.UUID
	AttendantID *uuid.UUID
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// NewSaleFilter creates a filter with default values
func NewSaleFilter() SaleFilter {
	return SaleFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "sale_date",
		SortOrder: "desc",
	}
}

// WithKeyword sets the keyword filter
func (f SaleFilter) WithKeyword(keyword string) SaleFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f SaleFilter) WithStatus(status SaleStatus) SaleFilter {
	f.Status = status
	return f
}

// WithType sets the sale type filter
func (f SaleFilter) WithType(saleType SaleType) SaleFilter {
	f.Type = saleType
	return f
}

// WithClient sets the client filter
func (f SaleFilter) WithClient(clientID uuid.UUID) SaleFilter {
	f.ClientID = &clientID
	return f
}

// WithAttendant sets the attendant filter
func (f SaleFilter) WithAttendant(attendantID uuid.UUID) SaleFilter {
	f.AttendantID = &attendantID
	return f
}

// WithDateRange sets the sale date range filter
func (f SaleFilter) WithDateRange(from, to time.Time) SaleFilter {
	f.DateFrom = &from
	f.DateTo = &to
	return f
}

// WithPagination sets the pagination options
func (f SaleFilter) WithPagination(page, pageSize int) SaleFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the query offset
func (f SaleFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the query limit
func (f SaleFilter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
