package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusOpen      SaleStatus = "open"      // Mutable, items replaceable
	SaleStatusConfirmed SaleStatus = "confirmed" // Totals frozen, commissions generated
	SaleStatusCancelled SaleStatus = "cancelled" // Terminal, effects reversed
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusOpen, SaleStatusConfirmed, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusOpen:
		return target == SaleStatusConfirmed || target == SaleStatusCancelled
	case SaleStatusConfirmed:
		return target == SaleStatusCancelled
	case SaleStatusCancelled:
		return false // Terminal state
	}
	return false
}

// SaleType classifies the ledger effect of a sale
type SaleType string

const (
	// SaleTypeCommon is a plain purchase with no ledger effect
	SaleTypeCommon SaleType = "common"
	// SaleTypePackageSale creates a prepaid package for the client
	SaleTypePackageSale SaleType = "package_sale"
	// SaleTypePackageConsumption draws credits from an existing package
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

// String returns the string representation
func (t SaleType) String() string {
	return string(t)
}

// PaymentMethod represents how the sale was paid
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodTransfer   PaymentMethod = "transfer"
	PaymentMethodPackage    PaymentMethod = "package" // Settled by package credits
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodTransfer, PaymentMethodPackage:
		return true
	}
	return false
}

// String returns the string representation
func (m PaymentMethod) String() string {
	return string(m)
}

// SaleItem is a line of a sale. The subtotal is authoritative: for
// progressive-priced services it is the bracket-walk result, so the
// stored unit price is the effective per-unit average.
type SaleItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID      *uuid.UUID      `gorm:"type:uuid;index"` // nil = ad-hoc item
	Description    string          `gorm:"type:varchar(200);not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountType   DiscountType    `gorm:"type:varchar(20);not null;default:'none'"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewServiceItem creates a line for a catalog service whose subtotal
// was produced by the pricing calculator.
func NewServiceItem(serviceID uuid.UUID, description string, quantity int, subtotal valueobject.Money, discountType DiscountType, discountValue decimal.Decimal) (*SaleItem, error) {
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	if subtotal.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Item subtotal cannot be negative")
	}
	if err := validateDiscount(discountType, discountValue); err != nil {
		return nil, err
	}

	now := time.Now()
	sid := serviceID
	item := &SaleItem{
		ID:            uuid.New(),
		ServiceID:     &sid,
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     subtotal.Amount().Div(decimal.NewFromInt(int64(quantity))).Round(4),
		DiscountType:  discountType,
		DiscountValue: discountValue,
		Subtotal:      subtotal.Amount(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.recalculate()

	return item, nil
}

// NewAdHocItem creates a line without a catalog service; the caller
// supplies the unit price directly.
func NewAdHocItem(description string, quantity int, unitPrice valueobject.Money, discountType DiscountType, discountValue decimal.Decimal) (*SaleItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if err := validateDiscount(discountType, discountValue); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &SaleItem{
		ID:            uuid.New(),
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice.Amount(),
		DiscountType:  discountType,
		DiscountValue: discountValue,
		Subtotal:      unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.recalculate()

	return item, nil
}

// recalculate derives discount amount and total from the subtotal
func (i *SaleItem) recalculate() {
	net := ApplyDiscount(valueobject.NewMoneyUSD(i.Subtotal), i.DiscountType, i.DiscountValue)
	i.Total = net.Amount()
	i.DiscountAmount = i.Subtotal.Sub(i.Total)
}

// HasDiscount reports whether the line carries an effective discount
func (i *SaleItem) HasDiscount() bool {
	return i.DiscountType != DiscountTypeNone && i.DiscountValue.IsPositive()
}

// IsAdHoc reports whether the line has no catalog service behind it
func (i *SaleItem) IsAdHoc() bool {
	return i.ServiceID == nil
}

// GetSubtotalMoney returns the subtotal as Money
func (i *SaleItem) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Subtotal)
}

// GetTotalMoney returns the net total as Money
func (i *SaleItem) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Total)
}

// Sale is one commercial transaction: a plain purchase, a package
// purchase, or a package consumption. It owns its items; edits replace
// the full item set and only an open sale may be edited.
type Sale struct {
	shared.TenantAggregateRoot
	Number               string          `gorm:"type:varchar(50);not null;index"`
	ClientID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName           string          `gorm:"type:varchar(200);not null"` // Snapshot at creation
	AttendantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleDate             time.Time       `gorm:"not null;index"`
	Type                 SaleType        `gorm:"type:varchar(30);not null"`
	Status               SaleStatus      `gorm:"type:varchar(20);not null;default:'open'"`
	PaymentMethod        PaymentMethod   `gorm:"type:varchar(20);not null"`
	ServiceID            *uuid.UUID      `gorm:"type:uuid"` // Package subject (package_sale only)
	PackageID            *uuid.UUID      `gorm:"type:uuid"` // Consumed package (package_consumption only)
	GeneralDiscountType  DiscountType    `gorm:"type:varchar(20);not null;default:'none'"`
	GeneralDiscountValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDiscount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total                decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes                string          `gorm:"type:text"`
	ConfirmedAt          *time.Time
	CancelledAt          *time.Time
	CancelReason         string     `gorm:"type:varchar(500)"`
	Items                []SaleItem `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new open sale
func NewSale(tenantID uuid.UUID, number string, clientID uuid.UUID, clientName string, attendantID uuid.UUID, saleDate time.Time, saleType SaleType, paymentMethod PaymentMethod) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if strings.TrimSpace(clientName) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if attendantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ATTENDANT", "Attendant ID cannot be empty")
	}
	if saleDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_SALE_DATE", "Sale date is required")
	}
	if !saleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SALE_TYPE", "Sale type must be common, package_sale, or package_consumption")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not supported")
	}

	sale := &Sale{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		Number:               number,
		ClientID:             clientID,
		ClientName:           strings.TrimSpace(clientName),
		AttendantID:          attendantID,
		SaleDate:             saleDate,
		Type:                 saleType,
		Status:               SaleStatusOpen,
		PaymentMethod:        paymentMethod,
		GeneralDiscountType:  DiscountTypeNone,
		GeneralDiscountValue: decimal.Zero,
		Subtotal:             decimal.Zero,
		TotalDiscount:        decimal.Zero,
		Total:                decimal.Zero,
		Items:                make([]SaleItem, 0),
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// SetServiceRef records the package subject of a package_sale
func (s *Sale) SetServiceRef(serviceID uuid.UUID) error {
	if s.Type != SaleTypePackageSale {
		return shared.NewDomainError("INVALID_SALE_TYPE", "Only package sales carry a service reference")
	}
	if serviceID == uuid.Nil {
		return shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}

	s.ServiceID = &serviceID
	s.UpdatedAt = time.Now()

	return nil
}

// SetPackageRef records the package a consumption sale draws from
func (s *Sale) SetPackageRef(packageID uuid.UUID) error {
	if s.Type != SaleTypePackageConsumption {
		return shared.NewDomainError("INVALID_SALE_TYPE", "Only consumption sales carry a package reference")
	}
	if packageID == uuid.Nil {
		return shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}

	s.PackageID = &packageID
	s.UpdatedAt = time.Now()

	return nil
}

// SetPaymentMethod changes the payment method of an open sale
func (s *Sale) SetPaymentMethod(method PaymentMethod) error {
	if !s.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change the payment method of a %s sale", s.Status))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not supported")
	}

	s.PaymentMethod = method
	s.UpdatedAt = time.Now()

	return nil
}

// SetSaleDate changes the sale date of an open sale
func (s *Sale) SetSaleDate(saleDate time.Time) error {
	if !s.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change the date of a %s sale", s.Status))
	}
	if saleDate.IsZero() {
		return shared.NewDomainError("INVALID_SALE_DATE", "Sale date is required")
	}

	s.SaleDate = saleDate
	s.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets the sale notes
func (s *Sale) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// ValidateTypeRequirements checks the references each sale type demands
func (s *Sale) ValidateTypeRequirements() error {
	switch s.Type {
	case SaleTypePackageSale:
		if s.ServiceID == nil {
			return shared.NewDomainError("MISSING_SERVICE", "A package sale requires the service being bundled")
		}
		if s.PackageID != nil {
			return shared.NewDomainError("INVALID_PACKAGE", "A package sale cannot reference an existing package")
		}
	case SaleTypePackageConsumption:
		if s.PackageID == nil {
			return shared.NewDomainError("MISSING_PACKAGE", "A consumption sale requires the package being drawn from")
		}
		if s.ServiceID != nil {
			return shared.NewDomainError("INVALID_SERVICE", "A consumption sale cannot carry a service reference")
		}
	case SaleTypeCommon:
		if s.ServiceID != nil || s.PackageID != nil {
			return shared.NewDomainError("INVALID_REFERENCE", "A common sale carries no package references")
		}
	}
	return nil
}

// AddItem appends a line to an open sale.
// Consumption sales reject discounted lines outright: those credits
// were paid for when the package was bought.
func (s *Sale) AddItem(item SaleItem) error {
	if !s.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to a %s sale", s.Status))
	}
	if s.Type == SaleTypePackageConsumption && item.HasDiscount() {
		return shared.NewDomainError("DISCOUNT_NOT_ALLOWED", "Consumption items cannot carry discounts")
	}

	item.SaleID = s.ID
	s.Items = append(s.Items, item)
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return nil
}

// ReplaceItems swaps the full item set of an open sale.
// Partial item edits do not exist: every edit is delete-all,
// insert-all, followed by a totals recompute.
func (s *Sale) ReplaceItems(items []SaleItem) error {
	if !s.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot replace items of a %s sale", s.Status))
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "A sale requires at least one item")
	}
	for idx := range items {
		if s.Type == SaleTypePackageConsumption && items[idx].HasDiscount() {
			return shared.NewDomainError("DISCOUNT_NOT_ALLOWED", "Consumption items cannot carry discounts")
		}
	}

	replaced := make([]SaleItem, 0, len(items))
	for _, item := range items {
		item.SaleID = s.ID
		replaced = append(replaced, item)
	}

	s.Items = replaced
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSaleItemsReplacedEvent(s))

	return nil
}

// SetGeneralDiscount sets the sale-level discount applied on top of
// the item-discounted sum.
func (s *Sale) SetGeneralDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !s.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change the discount of a %s sale", s.Status))
	}
	if s.Type == SaleTypePackageConsumption && discountType != DiscountTypeNone {
		return shared.NewDomainError("DISCOUNT_NOT_ALLOWED", "Consumption sales cannot carry discounts")
	}
	if err := validateDiscount(discountType, value); err != nil {
		return err
	}

	s.GeneralDiscountType = discountType
	s.GeneralDiscountValue = value
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return nil
}

// Confirm freezes the sale, transitioning open -> confirmed.
// Commission generation happens in the same transaction, driven by the
// application service.
func (s *Sale) Confirm() error {
	if !s.Status.CanTransitionTo(SaleStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm a %s sale", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm a sale without items")
	}

	now := time.Now()
	s.Status = SaleStatusConfirmed
	s.ConfirmedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleConfirmedEvent(s))

	return nil
}

// Cancel terminates the sale from open or confirmed.
// Ledger and commission reversal happen in the same transaction,
// driven by the application service.
func (s *Sale) Cancel(reason string) error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s sale", s.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasConfirmed := s.Status == SaleStatusConfirmed
	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = strings.TrimSpace(reason)
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCancelledEvent(s, wasConfirmed))

	return nil
}

// recalculateTotals rebuilds the money summary from the items:
// subtotal = sum of item subtotals, then the general discount applies
// to the item-discounted sum, and the total never goes negative.
func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	itemNetSum := decimal.Zero
	itemDiscounts := decimal.Zero

	for _, item := range s.Items {
		subtotal = subtotal.Add(item.Subtotal)
		itemNetSum = itemNetSum.Add(item.Total)
		itemDiscounts = itemDiscounts.Add(item.DiscountAmount)
	}

	net := ApplyDiscount(valueobject.NewMoneyUSD(itemNetSum), s.GeneralDiscountType, s.GeneralDiscountValue)
	generalDiscount := itemNetSum.Sub(net.Amount())

	s.Subtotal = subtotal
	s.TotalDiscount = itemDiscounts.Add(generalDiscount)
	s.Total = net.Amount()
}

// GeneralDiscountAmount returns the portion of the total discount that
// came from the sale-level discount.
func (s *Sale) GeneralDiscountAmount() decimal.Decimal {
	itemDiscounts := decimal.Zero
	for _, item := range s.Items {
		itemDiscounts = itemDiscounts.Add(item.DiscountAmount)
	}
	return s.TotalDiscount.Sub(itemDiscounts)
}

// GetSubtotalMoney returns the subtotal as Money
func (s *Sale) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.Subtotal)
}

// GetTotalDiscountMoney returns the total discount as Money
func (s *Sale) GetTotalDiscountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.TotalDiscount)
}

// GetTotalMoney returns the final total as Money
func (s *Sale) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.Total)
}

// TotalItemQuantity returns the summed quantity across items, which is
// the amount a consumption sale draws from its package.
func (s *Sale) TotalItemQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// FirstItemQuantity returns the quantity of the first item, which
// sizes the package a package_sale creates.
func (s *Sale) FirstItemQuantity() int {
	if len(s.Items) == 0 {
		return 0
	}
	return s.Items[0].Quantity
}

// ItemCount returns the number of lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// IsOpen returns true while the sale is editable
func (s *Sale) IsOpen() bool {
	return s.Status == SaleStatusOpen
}

// IsConfirmed returns true once the sale is confirmed
func (s *Sale) IsConfirmed() bool {
	return s.Status == SaleStatusConfirmed
}

// IsCancelled returns true once the sale is cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// CanModify returns true if items and discounts may still change
func (s *Sale) CanModify() bool {
	return s.IsOpen()
}

// IsOwnedBy reports whether the attendant created this sale
func (s *Sale) IsOwnedBy(attendantID uuid.UUID) bool {
	return s.AttendantID == attendantID
}
