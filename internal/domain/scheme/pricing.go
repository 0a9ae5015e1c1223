package scheme

import (
	"github.com/recurcart/recurcart/internal/types"
	"github.com/shopspring/decimal"
)

// PriceTriple is the (current, regular, sale) price of an item. A nil entry
// means the price is not set, which is distinct from zero.
type PriceTriple struct {
	Price        *decimal.Decimal `json:"price,omitempty"`
	RegularPrice *decimal.Decimal `json:"regular_price,omitempty"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty"`
}

// NewPriceTriple builds a triple from concrete current and regular prices
// with no sale price.
func NewPriceTriple(price, regularPrice decimal.Decimal) PriceTriple {
	return PriceTriple{Price: &price, RegularPrice: &regularPrice}
}

// Equal compares triples entry-wise, treating nil as distinct from zero
func (t PriceTriple) Equal(other PriceTriple) bool {
	return decimalEqual(t.Price, other.Price) &&
		decimalEqual(t.RegularPrice, other.RegularPrice) &&
		decimalEqual(t.SalePrice, other.SalePrice)
}

func decimalEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// PricingOptions carries the host flags the price computation depends on.
type PricingOptions struct {
	// Precision is the store decimal precision used when rounding
	// discounted prices
	Precision int

	// DiscountFromRegular computes percentage discounts from the regular
	// price instead of the current (possibly already discounted) price.
	// Off by default: subscription discounts compound on top of sale prices.
	DiscountFromRegular bool
}

// DefaultPricingOptions returns the options used when the host configures
// nothing.
func DefaultPricingOptions() PricingOptions {
	return PricingOptions{Precision: types.DefaultPricePrecision}
}

// GetPrices computes the price triple of an item under a scheme. Pure and
// idempotent for a fixed scheme and base: callers must always pass the
// original, undiscounted base triple, never a previously overridden one.
func GetPrices(base PriceTriple, s *Scheme, opts PricingOptions) PriceTriple {
	if s == nil {
		return base
	}

	switch s.PricingMode {
	case types.PricingModeOverride:
		if s.OverrideRegularPrice == nil && s.OverrideSalePrice == nil {
			// degraded override, see StoredDefinition.Parse
			return base
		}
		return overridePrices(s)
	case types.PricingModeInherit:
		if s.DiscountPercent != nil && s.DiscountPercent.IsPositive() &&
			base.Price != nil && base.Price.IsPositive() {
			return discountPrices(base, *s.DiscountPercent, opts)
		}
	}

	return base
}

func overridePrices(s *Scheme) PriceTriple {
	out := PriceTriple{
		RegularPrice: cloneDecimal(s.OverrideRegularPrice),
		SalePrice:    cloneDecimal(s.OverrideSalePrice),
	}
	if out.SalePrice != nil && (out.RegularPrice == nil || out.SalePrice.LessThan(*out.RegularPrice)) {
		out.Price = cloneDecimal(out.SalePrice)
	} else {
		out.Price = cloneDecimal(out.RegularPrice)
	}
	return out
}

func discountPrices(base PriceTriple, discount decimal.Decimal, opts PricingOptions) PriceTriple {
	regular := base.RegularPrice
	if regular == nil {
		regular = base.Price
	}

	from := base.Price
	if opts.DiscountFromRegular {
		from = regular
	}

	factor := decimal.NewFromInt(1).Sub(discount.Div(decimal.NewFromInt(100)))
	price := from.Mul(factor).Round(int32(opts.Precision))

	out := PriceTriple{
		Price:        &price,
		RegularPrice: cloneDecimal(regular),
		SalePrice:    cloneDecimal(base.SalePrice),
	}
	if out.RegularPrice != nil && price.LessThan(*out.RegularPrice) {
		out.SalePrice = cloneDecimal(&price)
	}
	return out
}

// GetPrices on the scheme delegates to the package-level engine.
func (s *Scheme) GetPrices(base PriceTriple, opts PricingOptions) PriceTriple {
	return GetPrices(base, s, opts)
}
