package identity

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// ==================== User DTOs ====================

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Role     string `json:"role" binding:"required,oneof=admin attendant"`
	Notes    string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateUserRequest represents a request to update a user's profile
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

// ChangeRoleRequest represents a request to change a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin attendant"`
}

// ChangePasswordRequest represents a request to change the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UserListFilter represents filter options for user list
type UserListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Role     string `form:"role" binding:"omitempty,oneof=admin attendant"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a domain User to a response DTO
func ToUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role.String(),
		Status:    user.Status.String(),
		Notes:     user.Notes,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserResponses converts a slice of domain Users to response DTOs
func ToUserResponses(users []*identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = ToUserResponse(user)
	}
	return responses
}
