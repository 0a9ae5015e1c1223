package service

import (
	"context"

	"github.com/recurcart/recurcart/internal/cache"
	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	ierr "github.com/recurcart/recurcart/internal/errors"
	"github.com/recurcart/recurcart/internal/types"
)

// ActiveSchemeService resolves and applies the scheme choice of cart lines.
// Resolution runs once per cart load and once on first add; re-running it
// with unchanged inputs leaves the line untouched.
type ActiveSchemeService interface {
	// ResolveScheme decides and applies the scheme state for a line,
	// recording what was intended and what was applied in the line's
	// application blob. Resolution failures become mismatch flags, never
	// errors; the returned error is for repository failures only.
	ResolveScheme(ctx context.Context, c *cart.Cart, li *cart.LineItem) error

	// ApplyScheme validates a state against the item's scheme set and
	// applies it, writing the shadow recurrence attributes the lifecycle
	// system reads. An unknown key resets the item to undefined and
	// returns an error marked ErrSchemeNotFound.
	ApplyScheme(ctx context.Context, it *item.Item, state types.ActiveSchemeState) error
}

type activeSchemeService struct {
	ServiceParams
	registry SchemeRegistryService
}

func NewActiveSchemeService(params ServiceParams) ActiveSchemeService {
	params = params.WithDefaults()
	return &activeSchemeService{
		ServiceParams: params,
		registry:      NewSchemeRegistryService(params),
	}
}

func (s *activeSchemeService) ResolveScheme(ctx context.Context, c *cart.Cart, li *cart.LineItem) error {
	cartSchemes, err := s.registry.GetCartSchemes(ctx, c)
	if err != nil {
		return err
	}

	productSchemes, err := s.registry.GetSchemes(ctx, li.Item, types.SchemeContextProduct)
	if err != nil {
		return err
	}

	var state types.ActiveSchemeState
	if cartSchemes != nil && productSchemes.IsEmpty() {
		state, err = s.resolveCartLevel(ctx, c)
	} else {
		state, err = s.resolveItemLevel(ctx, c, li)
	}
	if err != nil {
		return err
	}

	// extensions get the last word before application
	state = s.Hooks.ResolvedKey.OverrideResolvedState(ctx, c, li, state)

	intendedKey := state.Key
	applyErr := s.ApplyScheme(ctx, li.Item, state)

	applied := li.Item.ActiveScheme()
	li.Application = cart.NewApplicationState(applied, intendedKey)
	if applyErr != nil {
		li.Application.Mismatch = true
		s.Logger.Warnw("subscription scheme could not be applied",
			"line_id", li.ID,
			"product_id", li.Item.ProductID,
			"intended_key", intendedKey,
			"error", applyErr)
	}

	return s.SessionRepo.SetLineState(ctx, c.ID, li.ID, li.Application)
}

// resolveCartLevel uses the session's cart-wide choice, defaulting to
// one-time unless the host asks the picker to default to the first scheme.
func (s *activeSchemeService) resolveCartLevel(ctx context.Context, c *cart.Cart) (types.ActiveSchemeState, error) {
	cartSchemes, _ := c.CartSchemes()

	if posted, ok := s.Hooks.Selection.PostedCartSelection(ctx, c); ok {
		state := s.validatePosted(posted, cartSchemes)
		if err := s.SessionRepo.SetCartSchemeKey(ctx, c.ID, state); err != nil {
			return types.UndefinedScheme(), err
		}
		return state, nil
	}

	persisted, err := s.SessionRepo.GetCartSchemeKey(ctx, c.ID)
	if err != nil {
		return types.UndefinedScheme(), err
	}
	if !persisted.IsUndefined() {
		return persisted, nil
	}

	if s.Hooks.CartDefault.CartDefaultsToSubscription(ctx, c) {
		if first, ok := cartSchemes.First(); ok {
			return types.ActiveScheme(first.Key), nil
		}
	}
	return types.OneTimePurchase(), nil
}

// resolveItemLevel uses the line's persisted choice, falling back to the
// item's configured default when nothing was decided yet.
func (s *activeSchemeService) resolveItemLevel(ctx context.Context, c *cart.Cart, li *cart.LineItem) (types.ActiveSchemeState, error) {
	set, err := s.registry.GetSchemes(ctx, li.Item, "")
	if err != nil {
		return types.UndefinedScheme(), err
	}

	if posted, ok := s.Hooks.Selection.PostedSelection(ctx, c, li); ok {
		return s.validatePosted(posted, set), nil
	}

	persisted, found, err := s.SessionRepo.GetLineState(ctx, c.ID, li.ID)
	if err != nil {
		return types.UndefinedScheme(), err
	}
	if found && !persisted.ActiveState().IsUndefined() {
		return persisted.ActiveState(), nil
	}

	if set.IsEmpty() {
		return types.OneTimePurchase(), nil
	}
	return s.registry.GetDefaultState(ctx, li.Item)
}

// validatePosted accepts a posted selection only when its key exists in the
// set; anything else falls back to one-time rather than being applied blind.
func (s *activeSchemeService) validatePosted(posted types.ActiveSchemeState, set *scheme.Set) types.ActiveSchemeState {
	if posted.IsActive() && (set == nil || !set.Has(posted.Key)) {
		return types.OneTimePurchase()
	}
	if posted.IsUndefined() {
		return types.OneTimePurchase()
	}
	return posted
}

func (s *activeSchemeService) ApplyScheme(ctx context.Context, it *item.Item, state types.ActiveSchemeState) error {
	// applying the current state again is a no-op
	if it.ActiveScheme().Equal(state) && !state.IsActive() {
		return nil
	}

	if !state.IsActive() {
		it.SetActiveScheme(state)
		it.SetSchemeShadowAttributes(nil)
		s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixDefaultSchemeKey, it.ID))
		return nil
	}

	set, err := s.registry.GetSchemes(ctx, it, "")
	if err != nil {
		return err
	}

	sch, ok := set.Get(state.Key)
	if !ok {
		// the key existed once but the scheme is gone; reset instead of
		// failing the request
		it.SetActiveScheme(types.UndefinedScheme())
		it.SetSchemeShadowAttributes(nil)
		s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixDefaultSchemeKey, it.ID))
		return ierr.NewError("subscription scheme does not exist for item").
			WithHint("This subscription option is no longer available. Please choose another one.").
			WithReportableDetails(map[string]any{
				"scheme_key": state.Key,
				"product_id": it.ProductID,
			}).
			Mark(ierr.ErrSchemeNotFound)
	}

	if it.ActiveScheme().Equal(state) {
		return nil
	}

	it.SetActiveScheme(state)
	it.SetSchemeShadowAttributes(sch)
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixDefaultSchemeKey, it.ID))
	return nil
}
