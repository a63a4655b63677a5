package packages

import (
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientPackage is a prepaid bundle of service credits owned by a
// client. Its balance invariant, available = initial - consumed >= 0,
// holds after every operation; concurrent consumption is serialized by
// the repository's conditional update, never by in-memory state.
// Packages are not deleted: cancellations deactivate or zero them.
type ClientPackage struct {
	shared.TenantAggregateRoot
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"` // Originating package_sale
	InitialQuantity   int             `gorm:"not null"`
	ConsumedQuantity  int             `gorm:"not null;default:0"`
	AvailableQuantity int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPaid         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive          bool            `gorm:"not null;default:true"`
	ExpiresAt         *time.Time
}

// TableName returns the table name for GORM
func (ClientPackage) TableName() string {
	return "client_packages"
}

// NewClientPackage creates a package from its originating sale.
// The unit price is derived as totalPaid / initialQuantity.
func NewClientPackage(tenantID, clientID, serviceID, saleID uuid.UUID, initialQuantity int, totalPaid valueobject.Money, expiresAt *time.Time) (*ClientPackage, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Originating sale ID cannot be empty")
	}
	if initialQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity must be positive")
	}
	if totalPaid.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total paid cannot be negative")
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry cannot be in the past")
	}

	unitPrice := totalPaid.Amount().Div(decimal.NewFromInt(int64(initialQuantity))).Round(4)

	pkg := &ClientPackage{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		ServiceID:           serviceID,
		SaleID:              saleID,
		InitialQuantity:     initialQuantity,
		ConsumedQuantity:    0,
		AvailableQuantity:   initialQuantity,
		UnitPrice:           unitPrice,
		TotalPaid:           totalPaid.Amount(),
		IsActive:            true,
	}
	pkg.ExpiresAt = expiresAt

	pkg.AddDomainEvent(NewPackageCreatedEvent(pkg))

	return pkg, nil
}

// IsExpired reports whether the package expired before now
func (p *ClientPackage) IsExpired() bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(time.Now())
}

// IsConsumable reports whether the package can currently be drawn from
func (p *ClientPackage) IsConsumable() bool {
	return p.IsActive && !p.IsExpired()
}

// IsUnconsumed reports whether no credit has been drawn yet
func (p *ClientPackage) IsUnconsumed() bool {
	return p.ConsumedQuantity == 0
}

// CanConsume reports whether the given quantity is currently available
func (p *ClientPackage) CanConsume(quantity int) bool {
	return p.IsConsumable() && quantity > 0 && p.AvailableQuantity >= quantity
}

// Consume draws credits from the in-memory balance.
// Persistence uses the repository's atomic conditional update instead;
// this method carries the invariant for the aggregate and tests.
func (p *ClientPackage) Consume(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}
	if !p.IsConsumable() {
		return shared.NewDomainError("PACKAGE_INACTIVE", "Package is inactive or expired")
	}
	if p.AvailableQuantity < quantity {
		return shared.ErrInsufficientBalance
	}

	p.ConsumedQuantity += quantity
	p.AvailableQuantity -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPackageConsumedEvent(p, quantity))

	return nil
}

// RestoreConsumption returns previously consumed credits, used when a
// consumption sale is cancelled.
func (p *ClientPackage) RestoreConsumption(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restore quantity must be positive")
	}
	if quantity > p.ConsumedQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot restore more than was consumed")
	}

	p.ConsumedQuantity -= quantity
	p.AvailableQuantity += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPackageConsumptionReversedEvent(p, quantity))

	return nil
}

// Resize replaces the package size while nothing has been consumed,
// used when the originating sale is edited. The unit price is derived
// again from the new totals.
func (p *ClientPackage) Resize(initialQuantity int, totalPaid valueobject.Money) error {
	if !p.IsUnconsumed() {
		return shared.NewDomainError("INVALID_STATE", "Cannot resize a package after consumption started")
	}
	if initialQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Initial quantity must be positive")
	}
	if totalPaid.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Total paid cannot be negative")
	}

	p.InitialQuantity = initialQuantity
	p.AvailableQuantity = initialQuantity
	p.TotalPaid = totalPaid.Amount()
	p.UnitPrice = totalPaid.Amount().Div(decimal.NewFromInt(int64(initialQuantity))).Round(4)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate takes the package out of circulation, keeping its history
func (p *ClientPackage) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Package is already deactivated")
	}

	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPackageDeactivatedEvent(p))

	return nil
}

// GetUnitPriceMoney returns the derived unit price as Money
func (p *ClientPackage) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.UnitPrice)
}

// GetTotalPaidMoney returns the total paid as Money
func (p *ClientPackage) GetTotalPaidMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.TotalPaid)
}

// CheckBalanceInvariant verifies available = initial - consumed >= 0
func (p *ClientPackage) CheckBalanceInvariant() bool {
	return p.AvailableQuantity >= 0 &&
		p.ConsumedQuantity >= 0 &&
		p.InitialQuantity == p.ConsumedQuantity+p.AvailableQuantity
}

// Consumption is one append-only ledger entry tying a quantity drawn
// from a package to the sale that drew it. Reversal marks the row with
// a timestamp instead of deleting it, which is what keeps reversal
// idempotent across repeated cancellations.
type Consumption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SaleID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity   int       `gorm:"not null"`
	ReversedAt *time.Time
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Consumption) TableName() string {
	return "package_consumptions"
}

// NewConsumption records a draw of credits against a package
func NewConsumption(tenantID, packageID, saleID uuid.UUID, quantity int) (*Consumption, error) {
	if packageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}

	return &Consumption{
		ID:        uuid.New(),
		TenantID:  tenantID,
		PackageID: packageID,
		SaleID:    saleID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}, nil
}

// IsReversed reports whether this entry has been reversed
func (c *Consumption) IsReversed() bool {
	return c.ReversedAt != nil
}

// Reverse marks the entry reversed. Reversing twice is a no-op.
func (c *Consumption) Reverse() {
	if c.ReversedAt != nil {
		return
	}
	now := time.Now()
	c.ReversedAt = &now
}
