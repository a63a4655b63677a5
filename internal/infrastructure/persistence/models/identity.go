package models

import (
	"github.com/glowdesk/backend/internal/domain/identity"
	"github.com/glowdesk/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Name         string              `gorm:"type:varchar(200);not null"`
	Email        string              `gorm:"type:varchar(200);not null"`
	Phone        string              `gorm:"type:varchar(30);not null"`
	PasswordHash string              `gorm:"type:varchar(100);not null"`
	Role         identity.UserRole   `gorm:"type:varchar(20);not null;default:'attendant'"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes        string              `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Status:       m.Status,
		Notes:        m.Notes,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Status = u.Status
	m.Notes = u.Notes
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
