package service

import (
	"context"

	"github.com/recurcart/recurcart/internal/cache"
	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/samber/lo"
)

// SchemeRegistryService builds and caches the scheme sets applicable to
// items and carts.
type SchemeRegistryService interface {
	// GetSchemes returns the item's scheme set, deriving and caching it on
	// first call. Pass an empty context to get all schemes.
	GetSchemes(ctx context.Context, it *item.Item, schemeContext types.SchemeContext) (*scheme.Set, error)

	// SetSchemes force-sets an item's scheme set and invalidates every
	// derived value cached for it. A set scheme set always wins over
	// derivation.
	SetSchemes(ctx context.Context, it *item.Item, set *scheme.Set)

	// ClearSchemes drops both the explicit and the derived set so the next
	// GetSchemes derives again.
	ClearSchemes(ctx context.Context, it *item.Item)

	// GetDefaultState returns the state an undecided item defaults to:
	// one-time purchase unless the product defaults to (or is forced onto)
	// a subscription, in which case the first scheme of the set.
	GetDefaultState(ctx context.Context, it *item.Item) (types.ActiveSchemeState, error)

	// IsForcedSubscription reports whether one-time purchase is disallowed
	// for the item.
	IsForcedSubscription(ctx context.Context, it *item.Item) (bool, error)

	// GetCartSchemes computes the cart-level scheme set, nil when
	// cart-level schemes are disabled or suppressed for this cart. The
	// result is cached on the cart for the request.
	GetCartSchemes(ctx context.Context, c *cart.Cart) (*scheme.Set, error)
}

type schemeRegistryService struct {
	ServiceParams
}

func NewSchemeRegistryService(params ServiceParams) SchemeRegistryService {
	return &schemeRegistryService{ServiceParams: params.WithDefaults()}
}

func (s *schemeRegistryService) GetSchemes(ctx context.Context, it *item.Item, schemeContext types.SchemeContext) (*scheme.Set, error) {
	set, err := s.getAllSchemes(ctx, it)
	if err != nil {
		return nil, err
	}
	if schemeContext != "" {
		return set.FilterByContext(schemeContext), nil
	}
	return set, nil
}

func (s *schemeRegistryService) getAllSchemes(ctx context.Context, it *item.Item) (*scheme.Set, error) {
	// a force-set scheme set always wins over derivation
	if it.HasExplicitSchemes() {
		return it.Schemes(), nil
	}
	if it.Schemes() != nil {
		return it.Schemes(), nil
	}

	cacheKey := cache.GenerateKey(cache.PrefixSchemeSet, it.ID)
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if set, ok := cached.(*scheme.Set); ok {
			it.CacheSchemes(set)
			return set, nil
		}
	}

	set, err := s.deriveSchemes(ctx, it)
	if err != nil {
		return nil, err
	}

	set = s.Hooks.SchemeSet.FilterSchemes(ctx, it, set)
	if set == nil {
		set = scheme.NewSet()
	}

	s.Cache.Set(ctx, cacheKey, set, 0)
	it.CacheSchemes(set)
	return set, nil
}

func (s *schemeRegistryService) deriveSchemes(ctx context.Context, it *item.Item) (*scheme.Set, error) {
	set := scheme.NewSet()

	// unsupported product types carry no schemes, never an error
	if !lo.Contains(s.Config.Catalog.SupportedProductTypes, it.ProductType) {
		return set, nil
	}

	defs, err := s.ProductRepo.GetSchemeDefinitions(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 && it.Kind == types.ItemKindVariant && it.ParentProductID != "" {
		defs, err = s.ProductRepo.GetSchemeDefinitions(ctx, it.ParentProductID)
		if err != nil {
			return nil, err
		}
	}

	for _, def := range defs {
		sch, err := def.Parse(types.SchemeContextProduct)
		if err != nil {
			s.Logger.Debugw("skipping unparseable scheme definition",
				"product_id", it.ProductID,
				"definition_id", def.ID,
				"error", err)
			continue
		}
		// duplicate keys collapse to the first definition
		set.Add(sch)
	}

	return set, nil
}

func (s *schemeRegistryService) SetSchemes(ctx context.Context, it *item.Item, set *scheme.Set) {
	it.SetSchemes(set)
	s.invalidate(ctx, it)
}

func (s *schemeRegistryService) ClearSchemes(ctx context.Context, it *item.Item) {
	it.ClearSchemes()
	s.invalidate(ctx, it)
}

// invalidate drops every derived value cached for the item. Wired into each
// mutator that changes an input of those values.
func (s *schemeRegistryService) invalidate(ctx context.Context, it *item.Item) {
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixSchemeSet, it.ID))
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixDefaultSchemeKey, it.ID))
}

func (s *schemeRegistryService) GetDefaultState(ctx context.Context, it *item.Item) (types.ActiveSchemeState, error) {
	cacheKey := cache.GenerateKey(cache.PrefixDefaultSchemeKey, it.ID)
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if state, ok := cached.(types.ActiveSchemeState); ok {
			return state, nil
		}
	}

	state, err := s.computeDefaultState(ctx, it)
	if err != nil {
		return types.UndefinedScheme(), err
	}

	s.Cache.Set(ctx, cacheKey, state, 0)
	return state, nil
}

func (s *schemeRegistryService) computeDefaultState(ctx context.Context, it *item.Item) (types.ActiveSchemeState, error) {
	set, err := s.getAllSchemes(ctx, it)
	if err != nil {
		return types.UndefinedScheme(), err
	}
	if set.IsEmpty() {
		return types.OneTimePurchase(), nil
	}

	flags, err := s.subscriptionFlags(ctx, it)
	if err != nil {
		return types.UndefinedScheme(), err
	}
	if flags != nil && (flags.ForceSubscription || flags.DefaultToSubscription) {
		first, _ := set.First()
		return types.ActiveScheme(first.Key), nil
	}
	return types.OneTimePurchase(), nil
}

func (s *schemeRegistryService) IsForcedSubscription(ctx context.Context, it *item.Item) (bool, error) {
	flags, err := s.subscriptionFlags(ctx, it)
	if err != nil {
		return false, err
	}
	return flags != nil && flags.ForceSubscription, nil
}

// subscriptionFlags reads the product flags with variant to parent fallback
func (s *schemeRegistryService) subscriptionFlags(ctx context.Context, it *item.Item) (*item.SubscriptionFlags, error) {
	flags, err := s.ProductRepo.GetSubscriptionFlags(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	if flags == nil && it.Kind == types.ItemKindVariant && it.ParentProductID != "" {
		flags, err = s.ProductRepo.GetSubscriptionFlags(ctx, it.ParentProductID)
		if err != nil {
			return nil, err
		}
	}
	return flags, nil
}

func (s *schemeRegistryService) GetCartSchemes(ctx context.Context, c *cart.Cart) (*scheme.Set, error) {
	if set, computed := c.CartSchemes(); computed {
		return set, nil
	}

	set, err := s.computeCartSchemes(ctx, c)
	if err != nil {
		return nil, err
	}
	c.SetCartSchemes(set)
	return set, nil
}

// computeCartSchemes returns nil whenever cart-level schemes are suppressed:
// disabled site-wide, no definitions, any item carrying product-level
// schemes, or any legacy non-convertible subscription item in the cart.
func (s *schemeRegistryService) computeCartSchemes(ctx context.Context, c *cart.Cart) (*scheme.Set, error) {
	if !s.Config.CartSchemes.Enabled || len(s.Config.CartSchemes.Definitions) == 0 {
		return nil, nil
	}

	for _, li := range c.Lines {
		itemSchemes, err := s.GetSchemes(ctx, li.Item, types.SchemeContextProduct)
		if err != nil {
			return nil, err
		}
		if !itemSchemes.IsEmpty() {
			return nil, nil
		}
		legacy, err := s.ProductRepo.IsLegacySubscription(ctx, li.Item.ProductID)
		if err != nil {
			return nil, err
		}
		if legacy {
			return nil, nil
		}
	}

	set := scheme.NewSet()
	for _, def := range s.Config.CartSchemes.Definitions {
		sch, err := def.Parse(types.SchemeContextCart)
		if err != nil {
			s.Logger.Debugw("skipping unparseable cart scheme definition",
				"definition_id", def.ID,
				"error", err)
			continue
		}
		set.Add(sch)
	}
	return set, nil
}
