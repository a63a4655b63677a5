package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CommissionRepository defines the persistence port for commissions
type CommissionRepository interface {
	// CreateBatch persists the commissions generated by one sale
	// confirmation.
	CreateBatch(ctx context.Context, commissions []*Commission) error

	// Update persists changes to an existing commission
	Update(ctx context.Context, commission *Commission) error

	// FindByID finds a commission by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Commission, error)

	// FindBySaleID returns all commissions generated by a sale
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]*Commission, error)

	// ExistsForSale reports whether the sale already generated
	// commissions, making generation idempotent.
	ExistsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (bool, error)

	// ReverseBySaleID flips all active commissions of a sale to
	// reversed and returns how many were flipped. Zero means the sale
	// had none active, which a cancellation retry treats as done.
	ReverseBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (int, error)

	// FindAll returns commissions matching the filter with total count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter CommissionFilter) ([]*Commission, int64, error)
}

// CommissionFilter defines filtering options for commission queries
type CommissionFilter struct {
	AttendantID *uuid.UUID
	Status      CommissionStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// NewCommissionFilter creates a filter with default values
func NewCommissionFilter() CommissionFilter {
	return CommissionFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "reference_date",
		SortOrder: "desc",
	}
}

// WithAttendant sets the attendant filter
func (f CommissionFilter) WithAttendant(attendantID uuid.UUID) CommissionFilter {
	f.AttendantID = &attendantID
	return f
}

// WithStatus sets the status filter
func (f CommissionFilter) WithStatus(status CommissionStatus) CommissionFilter {
	f.Status = status
	return f
}

// WithDateRange sets the reference date range filter
func (f CommissionFilter) WithDateRange(from, to time.Time) CommissionFilter {
	f.DateFrom = &from
	f.DateTo = &to
	return f
}

// WithPagination sets the pagination options
func (f CommissionFilter) WithPagination(page, pageSize int) CommissionFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the query offset
func (f CommissionFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the query limit
func (f CommissionFilter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
