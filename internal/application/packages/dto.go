package packages

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/packages"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Package DTOs ====================

// PackageListFilter represents filter options for package list
type PackageListFilter struct {
	ClientID  *uuid.UUID `form:"client_id"`
	ServiceID *uuid.UUID `form:"service_id"`
	Active    *bool      `form:"active"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PackageResponse represents a client package in API responses
type PackageResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClientID          uuid.UUID       `json:"client_id"`
	ServiceID         uuid.UUID       `json:"service_id"`
	SaleID            uuid.UUID       `json:"sale_id"`
	InitialQuantity   int             `json:"initial_quantity"`
	ConsumedQuantity  int             `json:"consumed_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	IsActive          bool            `json:"is_active"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ConsumptionResponse represents a package ledger entry in API responses
type ConsumptionResponse struct {
	ID         uuid.UUID  `json:"id"`
	PackageID  uuid.UUID  `json:"package_id"`
	SaleID     uuid.UUID  `json:"sale_id"`
	Quantity   int        `json:"quantity"`
	ReversedAt *time.Time `json:"reversed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PackageStatementResponse pairs a package with its ledger history
type PackageStatementResponse struct {
	Package      PackageResponse       `json:"package"`
	Consumptions []ConsumptionResponse `json:"consumptions"`
}

// ToPackageResponse converts a domain ClientPackage to a response DTO
func ToPackageResponse(pkg *packages.ClientPackage) PackageResponse {
	return PackageResponse{
		ID:                pkg.ID,
		ClientID:          pkg.ClientID,
		ServiceID:         pkg.ServiceID,
		SaleID:            pkg.SaleID,
		InitialQuantity:   pkg.InitialQuantity,
		ConsumedQuantity:  pkg.ConsumedQuantity,
		AvailableQuantity: pkg.AvailableQuantity,
		UnitPrice:         pkg.UnitPrice,
		TotalPaid:         pkg.TotalPaid,
		IsActive:          pkg.IsActive,
		ExpiresAt:         pkg.ExpiresAt,
		CreatedAt:         pkg.CreatedAt,
		UpdatedAt:         pkg.UpdatedAt,
	}
}

// ToPackageResponses converts a slice of domain ClientPackages to response DTOs
func ToPackageResponses(pkgs []*packages.ClientPackage) []PackageResponse {
	responses := make([]PackageResponse, len(pkgs))
	for i, pkg := range pkgs {
		responses[i] = ToPackageResponse(pkg)
	}
	return responses
}

// ToConsumptionResponse converts a domain Consumption to a response DTO
func ToConsumptionResponse(consumption *packages.Consumption) ConsumptionResponse {
	return ConsumptionResponse{
		ID:         consumption.ID,
		PackageID:  consumption.PackageID,
		SaleID:     consumption.SaleID,
		Quantity:   consumption.Quantity,
		ReversedAt: consumption.ReversedAt,
		CreatedAt:  consumption.CreatedAt,
	}
}

// ToConsumptionResponses converts a slice of domain Consumptions to response DTOs
func ToConsumptionResponses(consumptions []*packages.Consumption) []ConsumptionResponse {
	responses := make([]ConsumptionResponse, len(consumptions))
	for i, consumption := range consumptions {
		responses[i] = ToConsumptionResponse(consumption)
	}
	return responses
}
