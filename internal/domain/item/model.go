package item

import (
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
)

// Attribute keys written onto items. The shadow recurrence fields are read by
// the downstream subscription-lifecycle system and must match the applied
// scheme exactly.
const (
	AttrSchemePeriod      = "subscription_period"
	AttrSchemeInterval    = "subscription_period_interval"
	AttrSchemeLength      = "subscription_length"
	AttrSchemeTrialPeriod = "subscription_trial_period"
	AttrSchemeTrialLength = "subscription_trial_length"
)

// Item is one purchasable item instance: a product, a variant of one, or a
// line nested inside a bundle. The engine owns the scheme state on it; the
// host owns everything else through the attribute bag.
type Item struct {
	// ID identifies this instance, not the catalog product
	ID string `json:"id"`

	// ProductID is the catalog product backing this item
	ProductID string `json:"product_id"`

	// ParentProductID is set on variants; scheme definitions and flags fall
	// back to the parent when the variant has none of its own
	ParentProductID string `json:"parent_product_id,omitempty"`

	// ProductType is the host platform's product type tag, checked against
	// the supported-type allow-list
	ProductType string `json:"product_type"`

	// Kind is the structural shape of this item
	Kind types.ItemKind `json:"kind"`

	// BasePrices is the undiscounted one-time price triple. Price
	// computation always starts from here, never from a previously
	// overridden triple.
	BasePrices scheme.PriceTriple `json:"base_prices"`

	// SuppressSchemeChoice hides the scheme picker for items that inherit
	// their scheme from a container. Display concern only.
	SuppressSchemeChoice bool `json:"suppress_scheme_choice,omitempty"`

	schemes         *scheme.Set
	schemesExplicit bool
	active          types.ActiveSchemeState
	attrs           map[string]any
}

// New creates an item instance for a catalog product
func New(productID, productType string, kind types.ItemKind) *Item {
	return &Item{
		ID:          types.GenerateUUIDWithPrefix(types.UUIDPrefixLineItem),
		ProductID:   productID,
		ProductType: productType,
		Kind:        kind,
		active:      types.UndefinedScheme(),
	}
}

// Schemes returns the scheme set currently attached to the item, nil when
// none has been derived or set yet.
func (it *Item) Schemes() *scheme.Set {
	return it.schemes
}

// HasExplicitSchemes reports whether the set was force-set (by propagation
// or a host override) rather than derived from product data.
func (it *Item) HasExplicitSchemes() bool {
	return it.schemesExplicit
}

// SetSchemes force-sets the scheme set. An explicitly set scheme set always
// wins over derivation; callers must invalidate any cached derived values
// for this item.
func (it *Item) SetSchemes(set *scheme.Set) {
	it.schemes = set
	it.schemesExplicit = true
}

// CacheSchemes stores a derived scheme set on the item for the rest of the
// request without marking it explicit.
func (it *Item) CacheSchemes(set *scheme.Set) {
	it.schemes = set
	it.schemesExplicit = false
}

// ClearSchemes drops the attached scheme set so the next resolution derives
// it again.
func (it *Item) ClearSchemes() {
	it.schemes = nil
	it.schemesExplicit = false
}

// ActiveScheme returns the item's current scheme choice
func (it *Item) ActiveScheme() types.ActiveSchemeState {
	return it.active
}

// SetActiveScheme records the scheme choice. State transitions are
// validated by the resolution service, not here.
func (it *Item) SetActiveScheme(state types.ActiveSchemeState) {
	it.active = state
}

// GetAttribute reads a keyed attribute from the bag
func (it *Item) GetAttribute(key string) (any, bool) {
	v, ok := it.attrs[key]
	return v, ok
}

// SetAttribute writes a keyed attribute
func (it *Item) SetAttribute(key string, value any) {
	if it.attrs == nil {
		it.attrs = make(map[string]any)
	}
	it.attrs[key] = value
}

// DeleteAttribute removes a keyed attribute
func (it *Item) DeleteAttribute(key string) {
	delete(it.attrs, key)
}

// SetSchemeShadowAttributes writes the recurrence fields the downstream
// lifecycle system reads. Passing nil clears them.
func (it *Item) SetSchemeShadowAttributes(s *scheme.Scheme) {
	if s == nil {
		it.DeleteAttribute(AttrSchemePeriod)
		it.DeleteAttribute(AttrSchemeInterval)
		it.DeleteAttribute(AttrSchemeLength)
		it.DeleteAttribute(AttrSchemeTrialPeriod)
		it.DeleteAttribute(AttrSchemeTrialLength)
		return
	}
	it.SetAttribute(AttrSchemePeriod, s.Period.String())
	it.SetAttribute(AttrSchemeInterval, s.Interval)
	it.SetAttribute(AttrSchemeLength, s.Length)
	if s.TrialLength > 0 && s.TrialPeriod != "" {
		it.SetAttribute(AttrSchemeTrialPeriod, s.TrialPeriod.String())
		it.SetAttribute(AttrSchemeTrialLength, s.TrialLength)
	} else {
		it.DeleteAttribute(AttrSchemeTrialPeriod)
		it.DeleteAttribute(AttrSchemeTrialLength)
	}
}
