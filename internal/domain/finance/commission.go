package finance

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionStatus represents the status of a commission entry
type CommissionStatus string

const (
	CommissionStatusActive   CommissionStatus = "active"
	CommissionStatusReversed CommissionStatus = "reversed"
)

// IsValid checks if the status is valid
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusActive, CommissionStatusReversed:
		return true
	}
	return false
}

// String returns the string representation
func (s CommissionStatus) String() string {
	return string(s)
}

var oneHundred = decimal.NewFromInt(100)

// Commission is one attendant earning entry, generated per sale item
// when the sale confirms. Cancelling the sale reverses the entry
// instead of deleting it, so payout history stays auditable.
type Commission struct {
	shared.TenantAggregateRoot
	AttendantID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	SaleID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	SaleItemID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_commission_sale_item"`
	ServiceID     uuid.UUID        `gorm:"type:uuid;not null"`
	SaleNumber    string           `gorm:"type:varchar(50);not null"` // Snapshot for statements
	ReferenceDate time.Time        `gorm:"not null;index"`            // The sale date, not the confirmation date
	BaseAmount    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Rate          decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Status        CommissionStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ReversedAt    *time.Time
}

// TableName returns the table name for GORM
func (Commission) TableName() string {
	return "commissions"
}

// NewCommission creates an active commission entry.
// The amount is the item net total times the service commission rate
// captured at confirmation time.
func NewCommission(tenantID, attendantID, saleID, saleItemID, serviceID uuid.UUID, saleNumber string, referenceDate time.Time, baseAmount valueobject.Money, rate decimal.Decimal) (*Commission, error) {
	if attendantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ATTENDANT", "Attendant ID cannot be empty")
	}
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if saleItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE_ITEM", "Sale item ID cannot be empty")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number cannot be empty")
	}
	if referenceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Reference date is required")
	}
	if baseAmount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Commission base amount cannot be negative")
	}
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return nil, shared.NewDomainError("INVALID_RATE", "Commission rate must be between 0 and 100")
	}

	commission := &Commission{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AttendantID:         attendantID,
		SaleID:              saleID,
		SaleItemID:          saleItemID,
		ServiceID:           serviceID,
		SaleNumber:          saleNumber,
		ReferenceDate:       referenceDate,
		BaseAmount:          baseAmount.Amount(),
		Rate:                rate,
		Amount:              baseAmount.Amount().Mul(rate).Div(oneHundred).Round(4),
		Status:              CommissionStatusActive,
	}

	commission.AddDomainEvent(NewCommissionGeneratedEvent(commission))

	return commission, nil
}

// Reverse flips the entry to reversed. Reversing an already reversed
// entry is a no-op, so cancellation retries stay safe.
func (c *Commission) Reverse() {
	if c.Status == CommissionStatusReversed {
		return
	}

	now := time.Now()
	c.Status = CommissionStatusReversed
	c.ReversedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCommissionReversedEvent(c))
}

// IsActive returns true while the entry counts toward payout
func (c *Commission) IsActive() bool {
	return c.Status == CommissionStatusActive
}

// IsReversed returns true once the entry has been reversed
func (c *Commission) IsReversed() bool {
	return c.Status == CommissionStatusReversed
}

// GetBaseAmountMoney returns the base amount as Money
func (c *Commission) GetBaseAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.BaseAmount)
}

// GetAmountMoney returns the commission amount as Money
func (c *Commission) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.Amount)
}
