package crm

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/google/uuid"
)

// ==================== Client DTOs ====================

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name           string     `json:"name" binding:"required,min=1,max=200"`
	Phone          string     `json:"phone" binding:"omitempty,max=20"`
	Email          string     `json:"email" binding:"omitempty,email,max=200"`
	TaxID          string     `json:"tax_id" binding:"omitempty,max=50"`
	ReferralSource string     `json:"referral_source" binding:"omitempty,max=200"`
	BirthDate      *time.Time `json:"birth_date"`
	Notes          string     `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name           *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Phone          *string    `json:"phone" binding:"omitempty,max=20"`
	Email          *string    `json:"email" binding:"omitempty,email,max=200"`
	TaxID          *string    `json:"tax_id" binding:"omitempty,max=50"`
	ReferralSource *string    `json:"referral_source" binding:"omitempty,max=200"`
	BirthDate      *time.Time `json:"birth_date"`
	Notes          *string    `json:"notes" binding:"omitempty,max=2000"`
}

// ClientListFilter represents filter options for client list
type ClientListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	TaxID          string     `json:"tax_id,omitempty"`
	ReferralSource string     `json:"referral_source,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToClientResponse converts a domain Client to a response DTO
func ToClientResponse(client *crm.Client) ClientResponse {
	return ClientResponse{
		ID:             client.ID,
		Name:           client.Name,
		Phone:          client.Phone,
		Email:          client.Email,
		TaxID:          client.TaxID,
		ReferralSource: client.ReferralSource,
		BirthDate:      client.BirthDate,
		Notes:          client.Notes,
		Status:         client.Status.String(),
		CreatedAt:      client.CreatedAt,
		UpdatedAt:      client.UpdatedAt,
	}
}

// ToClientResponses converts a slice of domain Clients to response DTOs
func ToClientResponses(clients []*crm.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i, client := range clients {
		responses[i] = ToClientResponse(client)
	}
	return responses
}
