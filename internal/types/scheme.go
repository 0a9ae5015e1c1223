package types

import (
	"fmt"

	ierr "github.com/recurcart/recurcart/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the recurrence unit of a subscription scheme ex day, week, month, year
type BillingPeriod string

// PricingMode controls how a scheme prices the item it is attached to
type PricingMode string

// SchemeContext is where a scheme is defined ex on a product or site-wide on the cart
type SchemeContext string

const (
	BillingPeriodDay   BillingPeriod = "day"
	BillingPeriodWeek  BillingPeriod = "week"
	BillingPeriodMonth BillingPeriod = "month"
	BillingPeriodYear  BillingPeriod = "year"

	// PricingModeInherit derives the recurring price from the item's base price,
	// optionally reduced by a percentage discount
	PricingModeInherit PricingMode = "inherit"

	// PricingModeOverride sets the recurring price independently of the base price
	PricingModeOverride PricingMode = "override"

	SchemeContextProduct SchemeContext = "product"
	SchemeContextCart    SchemeContext = "cart"

	// SchemeLengthInfinite means the subscription renews until cancelled
	SchemeLengthInfinite = 0

	// DefaultPricePrecision is the fallback store decimal precision
	DefaultPricePrecision = 2
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) Validate() error {
	allowed := []BillingPeriod{
		BillingPeriodDay,
		BillingPeriodWeek,
		BillingPeriodMonth,
		BillingPeriodYear,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Invalid billing period").
			WithReportableDetails(map[string]any{
				"period":          p,
				"allowed_periods": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (m PricingMode) String() string {
	return string(m)
}

func (m PricingMode) Validate() error {
	allowed := []PricingMode{PricingModeInherit, PricingModeOverride}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid pricing mode").
			WithHint("Invalid pricing mode").
			WithReportableDetails(map[string]any{
				"mode":          m,
				"allowed_modes": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (c SchemeContext) String() string {
	return string(c)
}

func (c SchemeContext) Validate() error {
	allowed := []SchemeContext{SchemeContextProduct, SchemeContextCart}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid scheme context").
			WithHint("Invalid scheme context").
			WithReportableDetails(map[string]any{
				"context":          c,
				"allowed_contexts": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SchemeKey builds the deterministic identity of a scheme from its recurrence
// attributes ex "1_month_0". Two schemes with the same interval, period and
// length are the same scheme regardless of pricing payload.
func SchemeKey(interval int, period BillingPeriod, length int) string {
	return fmt.Sprintf("%d_%s_%d", interval, period, length)
}
