package catalog

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Service DTOs ====================

// PriceTierInput represents one tier row in create/replace requests
type PriceTierInput struct {
	SaleType    string          `json:"sale_type" binding:"required,oneof=common package_sale"`
	MinQuantity int             `json:"min_quantity" binding:"required,min=1"`
	MaxQuantity *int            `json:"max_quantity" binding:"omitempty,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateServiceRequest represents a request to create a service
type CreateServiceRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"omitempty,max=2000"`
	BasePrice      decimal.Decimal  `json:"base_price" binding:"required"`
	CommissionRate decimal.Decimal  `json:"commission_rate"`
	PricingMode    string           `json:"pricing_mode" binding:"omitempty,oneof=standard progressive"`
	Tiers          []PriceTierInput `json:"tiers" binding:"omitempty,dive"`
}

// UpdateServiceRequest represents a request to update a service
type UpdateServiceRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	BasePrice      *decimal.Decimal `json:"base_price"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	PricingMode    *string          `json:"pricing_mode" binding:"omitempty,oneof=standard progressive"`
}

// ReplaceTiersRequest represents a request to replace a service's price tiers
type ReplaceTiersRequest struct {
	Tiers []PriceTierInput `json:"tiers" binding:"dive"`
}

// PricePreviewQuery represents the query parameters of a price preview
type PricePreviewQuery struct {
	SaleType string `form:"sale_type" binding:"omitempty,oneof=common package_sale package_consumption"`
	Quantity int    `form:"quantity" binding:"required,min=1"`
}

// ServiceListFilter represents filter options for service list
type ServiceListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PriceTierResponse represents a price tier in API responses
type PriceTierResponse struct {
	ID          uuid.UUID       `json:"id"`
	SaleType    string          `json:"sale_type"`
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ServiceResponse represents a service in API responses
type ServiceResponse struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	BasePrice      decimal.Decimal     `json:"base_price"`
	CommissionRate decimal.Decimal     `json:"commission_rate"`
	PricingMode    string              `json:"pricing_mode"`
	Status         string              `json:"status"`
	Tiers          []PriceTierResponse `json:"tiers"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// PricePreviewResponse represents the outcome of a price preview
type PricePreviewResponse struct {
	ServiceID     uuid.UUID       `json:"service_id"`
	SaleType      string          `json:"sale_type"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Misconfigured bool            `json:"misconfigured"`
}

// ToPriceTierResponse converts a domain PriceTier to a response DTO
func ToPriceTierResponse(tier *catalog.PriceTier) PriceTierResponse {
	return PriceTierResponse{
		ID:          tier.ID,
		SaleType:    tier.SaleType.String(),
		MinQuantity: tier.MinQuantity,
		MaxQuantity: tier.MaxQuantity,
		UnitPrice:   tier.UnitPrice,
	}
}

// ToServiceResponse converts a domain Service to a response DTO
func ToServiceResponse(service *catalog.Service) ServiceResponse {
	tiers := make([]PriceTierResponse, len(service.Tiers))
	for i := range service.Tiers {
		tiers[i] = ToPriceTierResponse(&service.Tiers[i])
	}
	return ServiceResponse{
		ID:             service.ID,
		Name:           service.Name,
		Description:    service.Description,
		BasePrice:      service.BasePrice,
		CommissionRate: service.CommissionRate,
		PricingMode:    service.PricingMode.String(),
		Status:         service.Status.String(),
		Tiers:          tiers,
		CreatedAt:      service.CreatedAt,
		UpdatedAt:      service.UpdatedAt,
	}
}

// ToServiceResponses converts a slice of domain Services to response DTOs
func ToServiceResponses(services []*catalog.Service) []ServiceResponse {
	responses := make([]ServiceResponse, len(services))
	for i, service := range services {
		responses[i] = ToServiceResponse(service)
	}
	return responses
}
