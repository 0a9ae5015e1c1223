package scheme

import (
	"github.com/recurcart/recurcart/internal/types"
	"github.com/shopspring/decimal"
)

// Scheme is one subscription plan attachable to a purchasable item. Identity
// is the deterministic key built from (interval, period, length); the pricing
// payload never participates in equality.
type Scheme struct {
	// Key is the deterministic identity ex "1_month_0"
	Key string `json:"key"`

	// Period is the recurrence unit ex day, week, month, year
	Period types.BillingPeriod `json:"period"`

	// Interval is the count of periods between renewals ex 1, 3, 6
	Interval int `json:"interval"`

	// Length is the total count of periods; 0 means renew until cancelled
	Length int `json:"length"`

	// TrialPeriod is the recurrence unit of the free trial, if any
	TrialPeriod types.BillingPeriod `json:"trial_period,omitempty"`

	// TrialLength is the count of trial periods; 0 means no trial
	TrialLength int `json:"trial_length"`

	// PricingMode controls how the recurring price is derived
	PricingMode types.PricingMode `json:"pricing_mode"`

	// DiscountPercent applies only in inherit mode; nil means no discount
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`

	// OverrideRegularPrice applies only in override mode; nil means unset
	OverrideRegularPrice *decimal.Decimal `json:"override_regular_price,omitempty"`

	// OverrideSalePrice applies only in override mode; nil means unset
	OverrideSalePrice *decimal.Decimal `json:"override_sale_price,omitempty"`

	// Context is where this scheme was defined ex product, cart
	Context types.SchemeContext `json:"context"`
}

// HasPriceFilter reports whether applying this scheme changes the item's
// price: always in override mode, and in inherit mode when a positive
// discount is set.
func (s *Scheme) HasPriceFilter() bool {
	if s.PricingMode == types.PricingModeOverride {
		return true
	}
	return s.PricingMode == types.PricingModeInherit &&
		s.DiscountPercent != nil &&
		s.DiscountPercent.IsPositive()
}

// Equal compares schemes by key only
func (s *Scheme) Equal(other *Scheme) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Key == other.Key
}

// Clone returns a deep copy of the scheme
func (s *Scheme) Clone() *Scheme {
	if s == nil {
		return nil
	}
	out := *s
	out.DiscountPercent = cloneDecimal(s.DiscountPercent)
	out.OverrideRegularPrice = cloneDecimal(s.OverrideRegularPrice)
	out.OverrideSalePrice = cloneDecimal(s.OverrideSalePrice)
	return &out
}

// DemoteToInherit strips the scheme's ability to set absolute prices. Used
// when a container's schemes propagate to children: only the container may
// override, children inherit with no discount of their own.
func (s *Scheme) DemoteToInherit() {
	s.PricingMode = types.PricingModeInherit
	s.DiscountPercent = nil
	s.OverrideRegularPrice = nil
	s.OverrideSalePrice = nil
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// Set is an insertion-ordered collection of schemes keyed by scheme key.
// Insertion order matters: the first entry is the default scheme when an
// item is forced subscription-only. Duplicate keys collapse to the first
// inserted scheme.
type Set struct {
	keys    []string
	schemes map[string]*Scheme
}

// NewSet builds a set from the given schemes, first insertion winning on
// duplicate keys.
func NewSet(schemes ...*Scheme) *Set {
	set := &Set{schemes: make(map[string]*Scheme)}
	for _, s := range schemes {
		set.Add(s)
	}
	return set
}

// Add inserts a scheme unless its key is already present
func (set *Set) Add(s *Scheme) bool {
	if s == nil || s.Key == "" {
		return false
	}
	if _, ok := set.schemes[s.Key]; ok {
		return false
	}
	set.keys = append(set.keys, s.Key)
	set.schemes[s.Key] = s
	return true
}

// Get returns the scheme for a key, if present
func (set *Set) Get(key string) (*Scheme, bool) {
	if set == nil {
		return nil, false
	}
	s, ok := set.schemes[key]
	return s, ok
}

// Has reports whether a key is present
func (set *Set) Has(key string) bool {
	_, ok := set.Get(key)
	return ok
}

// First returns the default scheme, the first one inserted
func (set *Set) First() (*Scheme, bool) {
	if set == nil || len(set.keys) == 0 {
		return nil, false
	}
	return set.schemes[set.keys[0]], true
}

// Keys returns the scheme keys in insertion order
func (set *Set) Keys() []string {
	if set == nil {
		return nil
	}
	out := make([]string, len(set.keys))
	copy(out, set.keys)
	return out
}

// List returns the schemes in insertion order
func (set *Set) List() []*Scheme {
	if set == nil {
		return nil
	}
	out := make([]*Scheme, 0, len(set.keys))
	for _, k := range set.keys {
		out = append(out, set.schemes[k])
	}
	return out
}

// Len returns the number of schemes in the set
func (set *Set) Len() int {
	if set == nil {
		return 0
	}
	return len(set.keys)
}

// IsEmpty reports whether the set has no schemes
func (set *Set) IsEmpty() bool {
	return set.Len() == 0
}

// Clone returns a deep copy of the set preserving insertion order
func (set *Set) Clone() *Set {
	if set == nil {
		return nil
	}
	out := &Set{schemes: make(map[string]*Scheme, len(set.keys))}
	for _, k := range set.keys {
		out.keys = append(out.keys, k)
		out.schemes[k] = set.schemes[k].Clone()
	}
	return out
}

// FilterByContext returns a new set holding only schemes defined in the
// given context, preserving order.
func (set *Set) FilterByContext(ctx types.SchemeContext) *Set {
	out := NewSet()
	for _, s := range set.List() {
		if s.Context == ctx {
			out.Add(s)
		}
	}
	return out
}
