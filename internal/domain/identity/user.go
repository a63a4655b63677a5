package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // Normal active status
	UserStatusInactive UserStatus = "inactive" // Deactivated, kept for history
)

// IsValid checks if the status is valid
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return true
	}
	return false
}

// String returns the string representation
func (s UserStatus) String() string {
	return string(s)
}

// UserRole determines what a user may do
type UserRole string

const (
	RoleAdmin     UserRole = "admin"     // Full access within the tenant
	RoleAttendant UserRole = "attendant" // Operates sales, sees own commissions
)

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAttendant:
		return true
	}
	return false
}

// String returns the string representation
func (r UserRole) String() string {
	return string(r)
}

// Password cost for bcrypt
const bcryptCost = 12

// User represents a staff member of the tenant business.
// Attendants perform sales and accrue commissions; admins additionally
// manage users and override ownership checks.
type User struct {
	shared.TenantAggregateRoot
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	Notes        string
}

// NewUser creates a new active user with required fields
func NewUser(tenantID uuid.UUID, name, email, password string, role UserRole) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be admin or attendant")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Email:               strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:        passwordHash,
		Role:                role,
		Status:              UserStatusActive,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// SetName sets the user's name
func (u *User) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	u.Name = strings.TrimSpace(name)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetNotes sets the user's notes
func (u *User) SetNotes(notes string) {
	u.Notes = notes
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ChangeRole changes the user's role
func (u *User) ChangeRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be admin or attendant")
	}
	if u.Role == role {
		return nil
	}

	oldRole := u.Role
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, oldRole, role))

	return nil
}

// Deactivate deactivates the user.
// Deactivated users keep their history (sales, commissions) intact.
func (u *User) Deactivate() error {
	if u.Status == UserStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already deactivated")
	}

	u.Status = UserStatusInactive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserDeactivatedEvent(u))

	return nil
}

// Reactivate reactivates a deactivated user
func (u *User) Reactivate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserReactivatedEvent(u))

	return nil
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal returns the identity value used for authorization decisions
func (u *User) Principal() Principal {
	return Principal{
		UserID:   u.ID,
		TenantID: u.TenantID,
		Role:     u.Role,
	}
}

// Validation functions

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
