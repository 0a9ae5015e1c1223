package service

import (
	"context"

	"github.com/recurcart/recurcart/internal/config"
	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
)

// SchemeSetHook lets an extension veto or replace a derived scheme set
// before it is cached on an item. Bundle integrations use this to empty the
// set of a container holding a non-convertible legacy subscription item.
type SchemeSetHook interface {
	FilterSchemes(ctx context.Context, it *item.Item, set *scheme.Set) *scheme.Set
}

// ResolvedKeyHook lets an extension override a resolved scheme state before
// it is applied to an item. Propagation uses this to pin children to their
// container's choice.
type ResolvedKeyHook interface {
	OverrideResolvedState(ctx context.Context, c *cart.Cart, li *cart.LineItem, state types.ActiveSchemeState) types.ActiveSchemeState
}

// CartDefaultHook decides whether the cart-level picker defaults to the
// first scheme or to one-time purchase.
type CartDefaultHook interface {
	CartDefaultsToSubscription(ctx context.Context, c *cart.Cart) bool
}

// DiscountBaseHook decides whether inherit-mode discounts are computed from
// the original regular price or from the current, possibly already
// discounted price. Compounding on the current price is the default.
type DiscountBaseHook interface {
	DiscountFromRegular(ctx context.Context, it *item.Item) bool
}

// PriceFilterGate decides whether scheme price filters may run for a line.
// Used to suppress double application when a container already overrode its
// children's base prices.
type PriceFilterGate interface {
	AllowPriceFilters(ctx context.Context, c *cart.Cart, li *cart.LineItem) bool
}

// SelectionInput supplies the shopper's posted scheme selections from
// request parameters, if any. The second return reports whether a selection
// was posted at all; posted keys are validated against the line's scheme
// set before use.
type SelectionInput interface {
	PostedSelection(ctx context.Context, c *cart.Cart, li *cart.LineItem) (types.ActiveSchemeState, bool)
	PostedCartSelection(ctx context.Context, c *cart.Cart) (types.ActiveSchemeState, bool)
}

// Hooks bundles every extension point with its default. The zero value is
// not usable; construct with NewDefaultHooks and replace members as needed.
type Hooks struct {
	SchemeSet       SchemeSetHook
	ResolvedKey     ResolvedKeyHook
	CartDefault     CartDefaultHook
	DiscountBase    DiscountBaseHook
	PriceFilterGate PriceFilterGate
	Selection       SelectionInput
}

// NewDefaultHooks returns identity hooks: nothing vetoed, nothing
// overridden, defaults read from configuration, all price filters allowed,
// no posted selections.
func NewDefaultHooks(cfg *config.Configuration) Hooks {
	return Hooks{
		SchemeSet:       identitySchemeSetHook{},
		ResolvedKey:     identityResolvedKeyHook{},
		CartDefault:     configCartDefaultHook{cfg: cfg},
		DiscountBase:    configDiscountBaseHook{cfg: cfg},
		PriceFilterGate: allowAllPriceFilters{},
		Selection:       noSelectionInput{},
	}
}

type identitySchemeSetHook struct{}

func (identitySchemeSetHook) FilterSchemes(_ context.Context, _ *item.Item, set *scheme.Set) *scheme.Set {
	return set
}

type identityResolvedKeyHook struct{}

func (identityResolvedKeyHook) OverrideResolvedState(_ context.Context, _ *cart.Cart, _ *cart.LineItem, state types.ActiveSchemeState) types.ActiveSchemeState {
	return state
}

type configCartDefaultHook struct {
	cfg *config.Configuration
}

func (h configCartDefaultHook) CartDefaultsToSubscription(_ context.Context, _ *cart.Cart) bool {
	return h.cfg != nil && h.cfg.CartSchemes.DefaultToSubscription
}

type configDiscountBaseHook struct {
	cfg *config.Configuration
}

func (h configDiscountBaseHook) DiscountFromRegular(_ context.Context, _ *item.Item) bool {
	return h.cfg != nil && h.cfg.Pricing.DiscountFromRegular
}

type allowAllPriceFilters struct{}

func (allowAllPriceFilters) AllowPriceFilters(_ context.Context, _ *cart.Cart, _ *cart.LineItem) bool {
	return true
}

type noSelectionInput struct{}

func (noSelectionInput) PostedSelection(_ context.Context, _ *cart.Cart, _ *cart.LineItem) (types.ActiveSchemeState, bool) {
	return types.UndefinedScheme(), false
}

func (noSelectionInput) PostedCartSelection(_ context.Context, _ *cart.Cart) (types.ActiveSchemeState, bool) {
	return types.UndefinedScheme(), false
}
