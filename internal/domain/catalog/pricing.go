package catalog

import (
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PriceQuote is the result of pricing a quantity against a service's
// tier table. Misconfigured is set when some or all of the quantity
// had no covering tier; the amount then reflects only the covered part
// (zero when nothing matched). Callers must surface the flag as a
// configuration warning rather than charging silently for free.
type PriceQuote struct {
	Amount        valueobject.Money
	Misconfigured bool
}

// Quote prices a quantity for the given sale type.
//
// The tier set matching the sale type is used; an empty set falls back
// to the common set. In standard mode the single tier containing the
// quantity prices all units. In progressive mode each tier prices the
// units inside its own bracket and the remainder flows into the next,
// so tiers [1-10]@40, [11-unbounded]@15 price quantity 15 as
// 10x40 + 5x15.
//
// Quantity <= 0 never quotes an error; it prices to zero and input
// rejection is the caller's concern.
func (s *Service) Quote(saleType SaleType, quantity int) PriceQuote {
	if quantity <= 0 {
		return PriceQuote{Amount: valueobject.ZeroUSD()}
	}

	tiers := s.tiersFor(saleType)
	if len(tiers) == 0 {
		return PriceQuote{Amount: valueobject.ZeroUSD(), Misconfigured: true}
	}

	if s.PricingMode == PricingModeProgressive {
		return quoteProgressive(tiers, quantity)
	}
	return quoteStandard(tiers, quantity)
}

// quoteStandard prices the full quantity at the rate of the tier whose
// range contains it.
func quoteStandard(tiers []PriceTier, quantity int) PriceQuote {
	for _, tier := range tiers {
		if tier.Contains(quantity) {
			amount := tier.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
			return PriceQuote{Amount: valueobject.NewMoneyUSD(amount)}
		}
	}
	return PriceQuote{Amount: valueobject.ZeroUSD(), Misconfigured: true}
}

// quoteProgressive walks the brackets, charging the units inside each
// tier's range at that tier's rate. Units not covered by any tier are
// not charged and flag the quote as misconfigured.
func quoteProgressive(tiers []PriceTier, quantity int) PriceQuote {
	total := decimal.Zero
	covered := 0

	for _, tier := range tiers {
		if covered >= quantity {
			break
		}

		upper := quantity
		if tier.MaxQuantity != nil && *tier.MaxQuantity < upper {
			upper = *tier.MaxQuantity
		}
		if upper < tier.MinQuantity {
			continue
		}

		units := upper - tier.MinQuantity + 1
		total = total.Add(tier.UnitPrice.Mul(decimal.NewFromInt(int64(units))))
		covered += units
	}

	return PriceQuote{
		Amount:        valueobject.NewMoneyUSD(total),
		Misconfigured: covered < quantity,
	}
}
