package scheme

import (
	ierr "github.com/recurcart/recurcart/internal/errors"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/shopspring/decimal"
)

// StoredDefinition is the persisted shape of a scheme as read from the host
// attribute store or from site-wide configuration. Price and discount fields
// are strings because the store keeps them that way: empty string means "no
// value" and must never be coerced to zero.
type StoredDefinition struct {
	SubscriptionPeriod         string `json:"subscription_period" mapstructure:"subscription_period"`
	SubscriptionPeriodInterval int    `json:"subscription_period_interval" mapstructure:"subscription_period_interval"`
	SubscriptionLength         int    `json:"subscription_length" mapstructure:"subscription_length"`
	SubscriptionTrialPeriod    string `json:"subscription_trial_period" mapstructure:"subscription_trial_period"`
	SubscriptionTrialLength    int    `json:"subscription_trial_length" mapstructure:"subscription_trial_length"`
	SubscriptionPricingMethod  string `json:"subscription_pricing_method" mapstructure:"subscription_pricing_method"`
	SubscriptionDiscount       string `json:"subscription_discount" mapstructure:"subscription_discount"`
	SubscriptionRegularPrice   string `json:"subscription_regular_price" mapstructure:"subscription_regular_price"`
	SubscriptionSalePrice      string `json:"subscription_sale_price" mapstructure:"subscription_sale_price"`
	ID                         string `json:"id" mapstructure:"id"`
	Position                   int    `json:"position" mapstructure:"position"`
}

// Parse builds a Scheme from a stored definition. An override definition
// with neither override price set silently degrades to inherit mode with no
// discount; this matches the stored data in the wild and is relied upon.
func (d StoredDefinition) Parse(context types.SchemeContext) (*Scheme, error) {
	period := types.BillingPeriod(d.SubscriptionPeriod)
	if err := period.Validate(); err != nil {
		return nil, err
	}

	interval := d.SubscriptionPeriodInterval
	if interval <= 0 {
		interval = 1
	}

	length := d.SubscriptionLength
	if length < 0 {
		return nil, ierr.NewError("invalid subscription length").
			WithHint("Subscription length cannot be negative").
			WithReportableDetails(map[string]any{
				"length": d.SubscriptionLength,
			}).
			Mark(ierr.ErrValidation)
	}

	s := &Scheme{
		Key:         types.SchemeKey(interval, period, length),
		Period:      period,
		Interval:    interval,
		Length:      length,
		TrialLength: d.SubscriptionTrialLength,
		PricingMode: types.PricingModeInherit,
		Context:     context,
	}

	if d.SubscriptionTrialLength > 0 && d.SubscriptionTrialPeriod != "" {
		trialPeriod := types.BillingPeriod(d.SubscriptionTrialPeriod)
		if err := trialPeriod.Validate(); err != nil {
			return nil, err
		}
		s.TrialPeriod = trialPeriod
	}

	switch types.PricingMode(d.SubscriptionPricingMethod) {
	case types.PricingModeOverride:
		regular := parsePrice(d.SubscriptionRegularPrice)
		sale := parsePrice(d.SubscriptionSalePrice)
		if regular == nil && sale == nil {
			// degradation quirk: an override with no prices behaves as
			// inherit with no discount
			break
		}
		s.PricingMode = types.PricingModeOverride
		s.OverrideRegularPrice = regular
		s.OverrideSalePrice = sale
	default:
		s.DiscountPercent = parseDiscount(d.SubscriptionDiscount)
	}

	return s, nil
}

// parsePrice reads a stored price string, returning nil for empty or
// unparseable values.
func parsePrice(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// parseDiscount reads a stored discount percentage, keeping only positive
// values.
func parseDiscount(raw string) *decimal.Decimal {
	d := parsePrice(raw)
	if d == nil || !d.IsPositive() {
		return nil
	}
	return d
}
