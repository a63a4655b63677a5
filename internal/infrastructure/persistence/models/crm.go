package models

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/shared"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	TenantAggregateModel
	Name           string           `gorm:"type:varchar(200);not null"`
	SearchName     string           `gorm:"type:varchar(200);not null;index"`
	Phone          string           `gorm:"type:varchar(30);not null"`
	Email          string           `gorm:"type:varchar(200);not null"`
	TaxID          string           `gorm:"type:varchar(30);not null"`
	ReferralSource string           `gorm:"type:varchar(100);not null"`
	BirthDate      *time.Time
	Notes          string           `gorm:"type:text;not null"`
	Status         crm.ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *crm.Client {
	return &crm.Client{
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
		Name:           m.Name,
		SearchName:     m.SearchName,
		Phone:          m.Phone,
		Email:          m.Email,
		TaxID:          m.TaxID,
		ReferralSource: m.ReferralSource,
		BirthDate:      m.BirthDate,
		Notes:          m.Notes,
		Status:         m.Status,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *crm.Client) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.SearchName = c.SearchName
	m.Phone = c.Phone
	m.Email = c.Email
	m.TaxID = c.TaxID
	m.ReferralSource = c.ReferralSource
	m.BirthDate = c.BirthDate
	m.Notes = c.Notes
	m.Status = c.Status
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *crm.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
