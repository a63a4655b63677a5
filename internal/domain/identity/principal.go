package identity

import (
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Principal is the authenticated identity performing an operation.
// It is passed explicitly into application services so authorization
// decisions never depend on ambient state.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     UserRole
}

// NewPrincipal creates a principal, validating its parts
func NewPrincipal(userID, tenantID uuid.UUID, role UserRole) (Principal, error) {
	if userID == uuid.Nil {
		return Principal{}, shared.NewDomainError("INVALID_PRINCIPAL", "User ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return Principal{}, shared.NewDomainError("INVALID_PRINCIPAL", "Tenant ID cannot be empty")
	}
	if !role.IsValid() {
		return Principal{}, shared.NewDomainError("INVALID_PRINCIPAL", "Role must be admin or attendant")
	}
	return Principal{UserID: userID, TenantID: tenantID, Role: role}, nil
}

// IsAdmin returns true for tenant administrators
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManageRecordOf reports whether the principal may modify a record
// owned by the given attendant. Admins may modify any record in their
// tenant; attendants only their own.
func (p Principal) CanManageRecordOf(attendantID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.UserID == attendantID
}
