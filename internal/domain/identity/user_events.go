package identity

import (
	"github.com/glowdesk/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserDeactivated = "UserDeactivated"
	EventTypeUserReactivated = "UserReactivated"
	EventTypeUserRoleChanged = "UserRoleChanged"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserDeactivatedEvent is published when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(user *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, user.ID, user.TenantID),
		Name:            user.Name,
	}
}

// UserReactivatedEvent is published when a user is reactivated
type UserReactivatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewUserReactivatedEvent creates a new UserReactivatedEvent
func NewUserReactivatedEvent(user *User) *UserReactivatedEvent {
	return &UserReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserReactivated, AggregateTypeUser, user.ID, user.TenantID),
		Name:            user.Name,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	Name    string   `json:"name"`
	OldRole UserRole `json:"old_role"`
	NewRole UserRole `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole, newRole UserRole) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID, user.TenantID),
		Name:            user.Name,
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}
