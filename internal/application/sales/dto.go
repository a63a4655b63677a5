package sales

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// SaleItemInput represents one line in create/update requests. Items
// referencing a service are priced by the tier calculator; ad-hoc
// items must supply a unit price.
type SaleItemInput struct {
	ServiceID     *uuid.UUID       `json:"service_id"`
	Description   string           `json:"description" binding:"omitempty,max=200"`
	Quantity      int              `json:"quantity" binding:"required,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	DiscountType  string           `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
}

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	ClientID             uuid.UUID       `json:"client_id" binding:"required"`
	SaleDate             *time.Time      `json:"sale_date"`
	Type                 string          `json:"type" binding:"required,oneof=common package_sale package_consumption"`
	PaymentMethod        string          `json:"payment_method" binding:"required,oneof=cash credit_card debit_card transfer package"`
	ServiceID            *uuid.UUID      `json:"service_id"`
	PackageID            *uuid.UUID      `json:"package_id"`
	PackageExpiresAt     *time.Time      `json:"package_expires_at"`
	Items                []SaleItemInput `json:"items" binding:"required,min=1,dive"`
	GeneralDiscountType  string          `json:"general_discount_type" binding:"omitempty,oneof=percentage fixed"`
	GeneralDiscountValue decimal.Decimal `json:"general_discount_value"`
	Notes                string          `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateSaleRequest represents a request to update an open sale. Items,
// when present, replace the full item set.
type UpdateSaleRequest struct {
	SaleDate             *time.Time       `json:"sale_date"`
	PaymentMethod        *string          `json:"payment_method" binding:"omitempty,oneof=cash credit_card debit_card transfer package"`
	Items                []SaleItemInput  `json:"items" binding:"omitempty,min=1,dive"`
	GeneralDiscountType  *string          `json:"general_discount_type" binding:"omitempty,oneof=none percentage fixed"`
	GeneralDiscountValue *decimal.Decimal `json:"general_discount_value"`
	Notes                *string          `json:"notes" binding:"omitempty,max=2000"`
}

// CancelSaleRequest represents a request to cancel a sale
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleListFilter represents filter options for sale list
type SaleListFilter struct {
	Search      string     `form:"search"`
	Status      string     `form:"status" binding:"omitempty,oneof=open confirmed cancelled"`
	Type        string     `form:"type" binding:"omitempty,oneof=common package_sale package_consumption"`
	ClientID    *uuid.UUID `form:"client_id"`
	AttendantID *uuid.UUID `form:"attendant_id"`
	DateFrom    *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SaleItemResponse represents a sale item in API responses
type SaleItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ServiceID      *uuid.UUID      `json:"service_id,omitempty"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID                   uuid.UUID          `json:"id"`
	Number               string             `json:"number"`
	ClientID             uuid.UUID          `json:"client_id"`
	ClientName           string             `json:"client_name"`
	AttendantID          uuid.UUID          `json:"attendant_id"`
	SaleDate             time.Time          `json:"sale_date"`
	Type                 string             `json:"type"`
	Status               string             `json:"status"`
	PaymentMethod        string             `json:"payment_method"`
	ServiceID            *uuid.UUID         `json:"service_id,omitempty"`
	PackageID            *uuid.UUID         `json:"package_id,omitempty"`
	Items                []SaleItemResponse `json:"items"`
	GeneralDiscountType  string             `json:"general_discount_type"`
	GeneralDiscountValue decimal.Decimal    `json:"general_discount_value"`
	Subtotal             decimal.Decimal    `json:"subtotal"`
	TotalDiscount        decimal.Decimal    `json:"total_discount"`
	Total                decimal.Decimal    `json:"total"`
	Notes                string             `json:"notes,omitempty"`
	ConfirmedAt          *time.Time         `json:"confirmed_at,omitempty"`
	CancelledAt          *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason         string             `json:"cancel_reason,omitempty"`
	Warnings             []string           `json:"warnings,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	Version              int                `json:"version"`
}

// SaleListItemResponse represents a sale in list responses (less detail)
type SaleListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	AttendantID   uuid.UUID       `json:"attendant_id"`
	SaleDate      time.Time       `json:"sale_date"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToSaleItemResponse converts a domain SaleItem to a response DTO
func ToSaleItemResponse(item *sales.SaleItem) SaleItemResponse {
	return SaleItemResponse{
		ID:             item.ID,
		ServiceID:      item.ServiceID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		DiscountType:   item.DiscountType.String(),
		DiscountValue:  item.DiscountValue,
		Subtotal:       item.Subtotal,
		DiscountAmount: item.DiscountAmount,
		Total:          item.Total,
	}
}

// ToSaleResponse converts a domain Sale to a response DTO
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i := range sale.Items {
		items[i] = ToSaleItemResponse(&sale.Items[i])
	}
	return SaleResponse{
		ID:                   sale.ID,
		Number:               sale.Number,
		ClientID:             sale.ClientID,
		ClientName:           sale.ClientName,
		AttendantID:          sale.AttendantID,
		SaleDate:             sale.SaleDate,
		Type:                 sale.Type.String(),
		Status:               sale.Status.String(),
		PaymentMethod:        sale.PaymentMethod.String(),
		ServiceID:            sale.ServiceID,
		PackageID:            sale.PackageID,
		Items:                items,
		GeneralDiscountType:  sale.GeneralDiscountType.String(),
		GeneralDiscountValue: sale.GeneralDiscountValue,
		Subtotal:             sale.Subtotal,
		TotalDiscount:        sale.TotalDiscount,
		Total:                sale.Total,
		Notes:                sale.Notes,
		ConfirmedAt:          sale.ConfirmedAt,
		CancelledAt:          sale.CancelledAt,
		CancelReason:         sale.CancelReason,
		CreatedAt:            sale.CreatedAt,
		UpdatedAt:            sale.UpdatedAt,
		Version:              sale.Version,
	}
}

// ToSaleListItemResponse converts a domain Sale to a list item DTO
func ToSaleListItemResponse(sale *sales.Sale) SaleListItemResponse {
	return SaleListItemResponse{
		ID:            sale.ID,
		Number:        sale.Number,
		ClientID:      sale.ClientID,
		ClientName:    sale.ClientName,
		AttendantID:   sale.AttendantID,
		SaleDate:      sale.SaleDate,
		Type:          sale.Type.String(),
		Status:        sale.Status.String(),
		PaymentMethod: sale.PaymentMethod.String(),
		ItemCount:     sale.ItemCount(),
		Total:         sale.Total,
		CreatedAt:     sale.CreatedAt,
	}
}

// ToSaleListItemResponses converts domain Sales to list item DTOs
func ToSaleListItemResponses(salesList []*sales.Sale) []SaleListItemResponse {
	responses := make([]SaleListItemResponse, len(salesList))
	for i, sale := range salesList {
		responses[i] = ToSaleListItemResponse(sale)
	}
	return responses
}
