package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceStatus represents the status of a service
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusInactive ServiceStatus = "inactive"
)

// IsValid checks if the status is valid
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusActive, ServiceStatusInactive:
		return true
	}
	return false
}

// String returns the string representation
func (s ServiceStatus) String() string {
	return string(s)
}

// PricingMode selects how price tiers are combined for a quantity
type PricingMode string

const (
	// PricingModeStandard charges the whole quantity at the rate of the
	// single tier whose range contains it.
	PricingModeStandard PricingMode = "standard"
	// PricingModeProgressive charges each quantity bracket at its own
	// tier rate, like bracketed tax computation.
	PricingModeProgressive PricingMode = "progressive"
)

// IsValid checks if the pricing mode is valid
func (m PricingMode) IsValid() bool {
	switch m {
	case PricingModeStandard, PricingModeProgressive:
		return true
	}
	return false
}

// String returns the string representation
func (m PricingMode) String() string {
	return string(m)
}

// SaleType keys price tier sets and classifies sales
type SaleType string

const (
	SaleTypeCommon             SaleType = "common"
	SaleTypePackageSale        SaleType = "package_sale"
	SaleTypePackageConsumption SaleType = "package_consumption"
)

// IsValid checks if the sale type is valid
func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeCommon, SaleTypePackageSale, SaleTypePackageConsumption:
		return true
	}
	return false
}

// IsValidForTier checks if the sale type may key a price tier set.
// Consumption sales are priced through the common set, so tiers are
// only stored for common and package_sale.
func (t SaleType) IsValidForTier() bool {
	return t == SaleTypeCommon || t == SaleTypePackageSale
}

// String returns the string representation
func (t SaleType) String() string {
	return string(t)
}

// PriceTier is one quantity range of a service's price table
type PriceTier struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleType    SaleType        `gorm:"type:varchar(30);not null"`
	MinQuantity int             `gorm:"not null"`
	MaxQuantity *int            // nil = unbounded upper range
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (PriceTier) TableName() string {
	return "service_price_tiers"
}

// NewPriceTier creates a price tier for a service
func NewPriceTier(serviceID uuid.UUID, saleType SaleType, minQuantity int, maxQuantity *int, unitPrice valueobject.Money) (*PriceTier, error) {
	if !saleType.IsValidForTier() {
		return nil, shared.NewDomainError("INVALID_SALE_TYPE", "Price tiers can only be defined for common or package_sale")
	}
	if minQuantity < 1 {
		return nil, shared.NewDomainError("INVALID_TIER_RANGE", "Tier minimum quantity must be at least 1")
	}
	if maxQuantity != nil && *maxQuantity < minQuantity {
		return nil, shared.NewDomainError("INVALID_TIER_RANGE", "Tier maximum quantity cannot be below its minimum")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Tier unit price cannot be negative")
	}

	now := time.Now()
	return &PriceTier{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		SaleType:    saleType,
		MinQuantity: minQuantity,
		MaxQuantity: maxQuantity,
		UnitPrice:   unitPrice.Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Contains reports whether the quantity falls inside this tier's range
func (t *PriceTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	if t.MaxQuantity != nil && quantity > *t.MaxQuantity {
		return false
	}
	return true
}

// IsUnbounded reports whether the tier has no upper range limit
func (t *PriceTier) IsUnbounded() bool {
	return t.MaxQuantity == nil
}

// GetUnitPriceMoney returns the unit price as Money
func (t *PriceTier) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(t.UnitPrice)
}

// Service represents a sellable service in the catalog.
// Its price table is the ordered set of tiers per sale type; the base
// price is the reference rate shown in listings and prefilled when
// tiers are configured.
type Service struct {
	shared.TenantAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null;index"`
	SearchName     string          `gorm:"type:varchar(200);not null;index"`
	Description    string          `gorm:"type:text"`
	BasePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"` // Percent, 0-100
	PricingMode    PricingMode     `gorm:"type:varchar(20);not null;default:'standard'"`
	Status         ServiceStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	Tiers          []PriceTier     `gorm:"foreignKey:ServiceID"`
}

// TableName returns the table name for GORM
func (Service) TableName() string {
	return "services"
}

// NewService creates a new service
func NewService(tenantID uuid.UUID, name string, basePrice valueobject.Money, commissionRate decimal.Decimal) (*Service, error) {
	if err := validateServiceName(name); err != nil {
		return nil, err
	}
	if basePrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}
	if err := validateCommissionRate(commissionRate); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	service := &Service{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SearchName:          NormalizeServiceName(name),
		BasePrice:           basePrice.Amount(),
		CommissionRate:      commissionRate,
		PricingMode:         PricingModeStandard,
		Status:              ServiceStatusActive,
		Tiers:               make([]PriceTier, 0),
	}

	service.AddDomainEvent(NewServiceCreatedEvent(service))

	return service, nil
}

// SetName sets the service name and refreshes the search name
func (s *Service) SetName(name string) error {
	if err := validateServiceName(name); err != nil {
		return err
	}

	s.Name = strings.TrimSpace(name)
	s.SearchName = NormalizeServiceName(s.Name)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetDescription sets the service description
func (s *Service) SetDescription(description string) {
	s.Description = description
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetBasePrice sets the reference unit price
func (s *Service) SetBasePrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}

	s.BasePrice = price.Amount()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetCommissionRate sets the attendant commission percentage
func (s *Service) SetCommissionRate(rate decimal.Decimal) error {
	if err := validateCommissionRate(rate); err != nil {
		return err
	}

	s.CommissionRate = rate
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetPricingMode sets how tiers are combined when quoting
func (s *Service) SetPricingMode(mode PricingMode) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_PRICING_MODE", "Pricing mode must be standard or progressive")
	}

	s.PricingMode = mode
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// ReplaceTiers replaces the whole price table.
// The set for each sale type must start at quantity 1 and be contiguous
// and non-overlapping; only the last tier of a set may be unbounded.
func (s *Service) ReplaceTiers(tiers []PriceTier) error {
	bySaleType := make(map[SaleType][]PriceTier)
	for _, tier := range tiers {
		if !tier.SaleType.IsValidForTier() {
			return shared.NewDomainError("INVALID_SALE_TYPE", "Price tiers can only be defined for common or package_sale")
		}
		if tier.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Tier unit price cannot be negative")
		}
		bySaleType[tier.SaleType] = append(bySaleType[tier.SaleType], tier)
	}

	for saleType, set := range bySaleType {
		if err := validateTierSet(saleType, set); err != nil {
			return err
		}
	}

	now := time.Now()
	replaced := make([]PriceTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.ID == uuid.Nil {
			tier.ID = uuid.New()
			tier.CreatedAt = now
		}
		tier.ServiceID = s.ID
		tier.UpdatedAt = now
		replaced = append(replaced, tier)
	}

	s.Tiers = replaced
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewServiceTiersReplacedEvent(s))

	return nil
}

// Deactivate deactivates the service, keeping history intact
func (s *Service) Deactivate() error {
	if s.Status == ServiceStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Service is already deactivated")
	}

	s.Status = ServiceStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewServiceDeactivatedEvent(s))

	return nil
}

// Reactivate reactivates a deactivated service
func (s *Service) Reactivate() error {
	if s.Status == ServiceStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Service is already active")
	}

	s.Status = ServiceStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewServiceReactivatedEvent(s))

	return nil
}

// IsActive returns true if the service is active
func (s *Service) IsActive() bool {
	return s.Status == ServiceStatusActive
}

// GetBasePriceMoney returns the base price as Money
func (s *Service) GetBasePriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.BasePrice)
}

// tiersFor returns the tier set for the sale type sorted by range,
// falling back to the common set when the requested set is empty.
func (s *Service) tiersFor(saleType SaleType) []PriceTier {
	pick := func(st SaleType) []PriceTier {
		set := make([]PriceTier, 0)
		for _, tier := range s.Tiers {
			if tier.SaleType == st {
				set = append(set, tier)
			}
		}
		sort.Slice(set, func(i, j int) bool {
			return set[i].MinQuantity < set[j].MinQuantity
		})
		return set
	}

	set := pick(saleType)
	if len(set) == 0 && saleType != SaleTypeCommon {
		set = pick(SaleTypeCommon)
	}
	return set
}

// validateTierSet checks contiguity of one sale type's tier set
func validateTierSet(saleType SaleType, set []PriceTier) error {
	sorted := make([]PriceTier, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity < sorted[j].MinQuantity
	})

	expectedMin := 1
	for idx, tier := range sorted {
		if tier.MinQuantity != expectedMin {
			return shared.NewDomainError("INVALID_TIER_RANGE",
				"Price tiers for "+saleType.String()+" must be contiguous starting at quantity 1")
		}
		if tier.MaxQuantity == nil {
			if idx != len(sorted)-1 {
				return shared.NewDomainError("INVALID_TIER_RANGE",
					"Only the last price tier for "+saleType.String()+" may be unbounded")
			}
			return nil
		}
		if *tier.MaxQuantity < tier.MinQuantity {
			return shared.NewDomainError("INVALID_TIER_RANGE", "Tier maximum quantity cannot be below its minimum")
		}
		expectedMin = *tier.MaxQuantity + 1
	}
	return nil
}

func validateServiceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot exceed 200 characters")
	}
	return nil
}

func validateCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 100")
	}
	return nil
}
