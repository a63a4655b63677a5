package finance

import (
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeCommission is the aggregate type for commission events
	AggregateTypeCommission = "Commission"

	// EventTypeCommissionGenerated is emitted when a commission is generated
	EventTypeCommissionGenerated = "commission.generated"
	// EventTypeCommissionReversed is emitted when a commission is reversed
	EventTypeCommissionReversed = "commission.reversed"
)

// CommissionGeneratedEvent is emitted when a sale confirmation
// produces a commission entry.
type CommissionGeneratedEvent struct {
	shared.BaseDomainEvent
	AttendantID uuid.UUID       `json:"attendant_id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewCommissionGeneratedEvent creates a new CommissionGeneratedEvent
func NewCommissionGeneratedEvent(commission *Commission) *CommissionGeneratedEvent {
	return &CommissionGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionGenerated, AggregateTypeCommission, commission.ID, commission.TenantID),
		AttendantID:     commission.AttendantID,
		SaleID:          commission.SaleID,
		Amount:          commission.Amount,
	}
}

// CommissionReversedEvent is emitted when a sale cancellation reverses
// a commission entry.
type CommissionReversedEvent struct {
	shared.BaseDomainEvent
	AttendantID uuid.UUID       `json:"attendant_id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewCommissionReversedEvent creates a new CommissionReversedEvent
func NewCommissionReversedEvent(commission *Commission) *CommissionReversedEvent {
	return &CommissionReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionReversed, AggregateTypeCommission, commission.ID, commission.TenantID),
		AttendantID:     commission.AttendantID,
		SaleID:          commission.SaleID,
		Amount:          commission.Amount,
	}
}
