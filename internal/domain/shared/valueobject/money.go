package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Supported currency codes
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyCAD = "CAD"
	CurrencyBRL = "BRL"
)

// DefaultCurrency is the currency assumed when none is specified
const DefaultCurrency = CurrencyUSD

// Money represents a monetary value with currency
// It is immutable - all operations return new instances
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a new Money instance
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("currency cannot be empty")
	}
	if !isValidCurrency(currency) {
		return Money{}, fmt.Errorf("unsupported currency: %s", currency)
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromFloat creates Money from a float value
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString creates Money from a string value
func NewMoneyFromString(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyUSD creates a new Money in US dollars
func NewMoneyUSD(amount decimal.Decimal) Money {
	return Money{
		amount:   amount,
		currency: CurrencyUSD,
	}
}

// NewMoneyUSDFromFloat creates USD Money from a float value
func NewMoneyUSDFromFloat(amount float64) Money {
	return NewMoneyUSD(decimal.NewFromFloat(amount))
}

// Zero returns zero money in the given currency
func Zero(currency string) Money {
	return Money{
		amount:   decimal.Zero,
		currency: currency,
	}
}

// ZeroUSD returns zero US dollars
func ZeroUSD() Money {
	return Zero(CurrencyUSD)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two money values
// Returns an error if currencies differ
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// MustAdd is like Add but panics on currency mismatch
// Use only when currencies are known to match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference of two money values
// Returns an error if currencies differ
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// MustSubtract is like Subtract but panics on currency mismatch
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply returns the money multiplied by a factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Divide returns the money divided by a divisor
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("division by zero")
	}
	return Money{
		amount:   m.amount.Div(divisor),
		currency: m.currency,
	}, nil
}

// CalculatePercentage returns the given percentage of the money value
func (m Money) CalculatePercentage(percentage decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(percentage).Div(decimal.NewFromInt(100)),
		currency: m.currency,
	}
}

// ApplyDiscount returns the money reduced by the given percentage
func (m Money) ApplyDiscount(percentage decimal.Decimal) Money {
	discount := m.CalculatePercentage(percentage)
	return Money{
		amount:   m.amount.Sub(discount.amount),
		currency: m.currency,
	}
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsPositive checks if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Equals checks if two money values are equal
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan checks if this money is greater than other
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// LessThan checks if this money is less than other
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.LessThan(other.amount), nil
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// moneyJSON is the wire representation of Money
type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount,
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var mj moneyJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	if mj.Currency == "" {
		mj.Currency = DefaultCurrency
	}
	money, err := NewMoney(mj.Amount, mj.Currency)
	if err != nil {
		return err
	}
	*m = money
	return nil
}

// Value implements driver.Valuer for database storage
// Only the amount is stored; currency is tracked at the tenant level
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = ZeroUSD()
		return nil
	}

	var d decimal.Decimal
	switch v := value.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("cannot scan %q into Money: %w", v, err)
		}
		d = parsed
	case []byte:
		parsed, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("cannot scan %q into Money: %w", string(v), err)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	m.amount = d
	m.currency = DefaultCurrency
	return nil
}

func isValidCurrency(currency string) bool {
	switch currency {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyBRL:
		return true
	}
	return false
}
