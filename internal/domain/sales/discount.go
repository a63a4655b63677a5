package sales

import (
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType determines how a discount value is interpreted
type DiscountType string

const (
	DiscountTypeNone       DiscountType = "none"
	DiscountTypePercentage DiscountType = "percentage" // value is a percent of the amount
	DiscountTypeFixed      DiscountType = "fixed"      // value is an absolute money amount
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypeNone, DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// String returns the string representation
func (t DiscountType) String() string {
	return string(t)
}

var oneHundred = decimal.NewFromInt(100)

// ApplyDiscount returns the amount after the discount, clamped at
// zero: a fixed discount larger than the amount settles it in full,
// it never produces a negative total.
func ApplyDiscount(amount valueobject.Money, discountType DiscountType, value decimal.Decimal) valueobject.Money {
	if discountType == DiscountTypeNone || !value.IsPositive() {
		return amount
	}

	var net decimal.Decimal
	switch discountType {
	case DiscountTypePercentage:
		net = amount.Amount().Sub(amount.Amount().Mul(value).Div(oneHundred))
	case DiscountTypeFixed:
		net = amount.Amount().Sub(value)
	default:
		return amount
	}

	if net.IsNegative() {
		net = decimal.Zero
	}

	return valueobject.NewMoney(net, amount.Currency())
}

// validateDiscount rejects malformed discount parameters before they
// reach the calculator.
func validateDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be none, percentage, or fixed")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	if discountType == DiscountTypeNone && value.IsPositive() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value must be zero when no discount is applied")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Percentage discount cannot exceed 100")
	}
	return nil
}
