package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email within the tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// FindAll returns users for the tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]*User, int64, error)

	// ExistsByEmail checks if an email already exists within the tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for name or email
	Keyword string

	// Filter by status
	Status *UserStatus

	// Filter by role
	Role *UserRole

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f UserFilter) WithKeyword(keyword string) UserFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f UserFilter) WithStatus(status UserStatus) UserFilter {
	f.Status = &status
	return f
}

// WithRole sets the role filter
func (f UserFilter) WithRole(role UserRole) UserFilter {
	f.Role = &role
	return f
}

// WithPagination sets pagination parameters
func (f UserFilter) WithPagination(page, pageSize int) UserFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
