package identity

import (
	"context"

	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// Create registers a new user. Admin only.
func (s *UserService) Create(ctx context.Context, principal identity.Principal, req CreateUserRequest) (*UserResponse, error) {
	if !principal.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, principal.TenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(principal.TenantID, req.Name, req.Email, req.Password, identity.UserRole(req.Role))
	if err != nil {
		return nil, err
	}

	if req.Phone != "" {
		if err := user.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		user.SetNotes(req.Notes)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, principal identity.Principal, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, principal.TenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, principal identity.Principal, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := identity.NewUserFilter()
	if filter.Search != "" {
		domainFilter = domainFilter.WithKeyword(filter.Search)
	}
	if filter.Status != "" {
		domainFilter = domainFilter.WithStatus(identity.UserStatus(filter.Status))
	}
	if filter.Role != "" {
		domainFilter = domainFilter.WithRole(identity.UserRole(filter.Role))
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		domainFilter = domainFilter.WithPagination(filter.Page, filter.PageSize)
	}

	users, total, err := s.userRepo.FindAll(ctx, principal.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToUserResponses(users), total, nil
}

// Update changes a user's profile. Admins may edit anyone; attendants
// only themselves.
func (s *UserService) Update(ctx context.Context, principal identity.Principal, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if !principal.CanManageRecordOf(userID) {
		return nil, shared.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, principal.TenantID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := user.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		user.SetNotes(*req.Notes)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// ChangeRole switches a user between admin and attendant. Admin only;
// admins cannot change their own role, so a tenant never locks itself
// out of administration.
func (s *UserService) ChangeRole(ctx context.Context, principal identity.Principal, userID uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	if !principal.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	if principal.UserID == userID {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot change your own role")
	}

	user, err := s.userRepo.FindByID(ctx, principal.TenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := user.ChangeRole(identity.UserRole(req.Role)); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword changes the caller's own password after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, principal identity.Principal, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, principal.TenantID, principal.UserID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return s.userRepo.Update(ctx, user)
}

// Deactivate retires a user. Admin only; self-deactivation is refused.
// The record survives for sale and commission history.
func (s *UserService) Deactivate(ctx context.Context, principal identity.Principal, userID uuid.UUID) error {
	if !principal.IsAdmin() {
		return shared.ErrForbidden
	}
	if principal.UserID == userID {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate your own account")
	}

	user, err := s.userRepo.FindByID(ctx, principal.TenantID, userID)
	if err != nil {
		return err
	}

	if err := user.Deactivate(); err != nil {
		return err
	}

	return s.userRepo.Update(ctx, user)
}

// Reactivate restores a deactivated user. Admin only.
func (s *UserService) Reactivate(ctx context.Context, principal identity.Principal, userID uuid.UUID) error {
	if !principal.IsAdmin() {
		return shared.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, principal.TenantID, userID)
	if err != nil {
		return err
	}

	if err := user.Reactivate(); err != nil {
		return err
	}

	return s.userRepo.Update(ctx, user)
}
