package finance

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Commission DTOs ====================

// CommissionListFilter represents filter options for commission list
type CommissionListFilter struct {
	AttendantID *uuid.UUID `form:"attendant_id"`
	Status      string     `form:"status" binding:"omitempty,oneof=active reversed"`
	DateFrom    *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CommissionResponse represents a commission in API responses
type CommissionResponse struct {
	ID            uuid.UUID       `json:"id"`
	AttendantID   uuid.UUID       `json:"attendant_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleItemID    uuid.UUID       `json:"sale_item_id"`
	ServiceID     uuid.UUID       `json:"service_id"`
	SaleNumber    string          `json:"sale_number"`
	ReferenceDate time.Time       `json:"reference_date"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	ReversedAt    *time.Time      `json:"reversed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToCommissionResponse converts a domain Commission to a response DTO
func ToCommissionResponse(commission *finance.Commission) CommissionResponse {
	return CommissionResponse{
		ID:            commission.ID,
		AttendantID:   commission.AttendantID,
		SaleID:        commission.SaleID,
		SaleItemID:    commission.SaleItemID,
		ServiceID:     commission.ServiceID,
		SaleNumber:    commission.SaleNumber,
		ReferenceDate: commission.ReferenceDate,
		BaseAmount:    commission.BaseAmount,
		Rate:          commission.Rate,
		Amount:        commission.Amount,
		Status:        commission.Status.String(),
		ReversedAt:    commission.ReversedAt,
		CreatedAt:     commission.CreatedAt,
	}
}

// ToCommissionResponses converts a slice of domain Commissions to response DTOs
func ToCommissionResponses(commissions []*finance.Commission) []CommissionResponse {
	responses := make([]CommissionResponse, len(commissions))
	for i, commission := range commissions {
		responses[i] = ToCommissionResponse(commission)
	}
	return responses
}
