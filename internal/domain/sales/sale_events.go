package sales

import (
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeSale is the aggregate type for sale events
	AggregateTypeSale = "Sale"

	// EventTypeSaleCreated is emitted when a sale is created
	EventTypeSaleCreated = "sale.created"
	// EventTypeSaleItemsReplaced is emitted when the item set is replaced
	EventTypeSaleItemsReplaced = "sale.items_replaced"
	// EventTypeSaleConfirmed is emitted when a sale is confirmed
	EventTypeSaleConfirmed = "sale.confirmed"
	// EventTypeSaleCancelled is emitted when a sale is cancelled
	EventTypeSaleCancelled = "sale.cancelled"
)

// SaleCreatedEvent is emitted when a sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	Number   string    `json:"number"`
	ClientID uuid.UUID `json:"client_id"`
	SaleType string    `json:"sale_type"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID, sale.TenantID),
		Number:          sale.Number,
		ClientID:        sale.ClientID,
		SaleType:        sale.Type.String(),
	}
}

// SaleItemsReplacedEvent is emitted when the item set of an open sale
// is replaced.
type SaleItemsReplacedEvent struct {
	shared.BaseDomainEvent
	Number    string          `json:"number"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// NewSaleItemsReplacedEvent creates a new SaleItemsReplacedEvent
func NewSaleItemsReplacedEvent(sale *Sale) *SaleItemsReplacedEvent {
	return &SaleItemsReplacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleItemsReplaced, AggregateTypeSale, sale.ID, sale.TenantID),
		Number:          sale.Number,
		ItemCount:       len(sale.Items),
		Total:           sale.Total,
	}
}

// SaleConfirmedEvent is emitted when a sale is confirmed
type SaleConfirmedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	ClientID    uuid.UUID       `json:"client_id"`
	AttendantID uuid.UUID       `json:"attendant_id"`
	SaleType    string          `json:"sale_type"`
	Total       decimal.Decimal `json:"total"`
}

// NewSaleConfirmedEvent creates a new SaleConfirmedEvent
func NewSaleConfirmedEvent(sale *Sale) *SaleConfirmedEvent {
	return &SaleConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleConfirmed, AggregateTypeSale, sale.ID, sale.TenantID),
		Number:          sale.Number,
		ClientID:        sale.ClientID,
		AttendantID:     sale.AttendantID,
		SaleType:        sale.Type.String(),
		Total:           sale.Total,
	}
}

// SaleCancelledEvent is emitted when a sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	Number       string `json:"number"`
	SaleType     string `json:"sale_type"`
	WasConfirmed bool   `json:"was_confirmed"`
	Reason       string `json:"reason"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale, wasConfirmed bool) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, sale.ID, sale.TenantID),
		Number:          sale.Number,
		SaleType:        sale.Type.String(),
		WasConfirmed:    wasConfirmed,
		Reason:          sale.CancelReason,
	}
}
