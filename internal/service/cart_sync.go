package service

import (
	"context"
	"fmt"

	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/shopspring/decimal"
)

// CartSyncService reconciles persisted scheme choices with current scheme
// availability. SyncCart runs on every cart load; totals recalculation
// triggers repeat the resolution and propagation steps before recomputing
// money.
type CartSyncService interface {
	// SyncCart runs the full pass: cart-level scheme computation, renewal
	// stripping, per-line resolution, hierarchy propagation, totals.
	SyncCart(ctx context.Context, c *cart.Cart) error

	// Resync repeats resolution, propagation and totals for an already
	// loaded cart, after add-to-cart or an explicit reselection.
	Resync(ctx context.Context, c *cart.Cart) error

	// RecalculateTotals recomputes each line's effective prices and the
	// cart total under the currently applied schemes.
	RecalculateTotals(ctx context.Context, c *cart.Cart) error

	// ValidateCart compares intended against applied scheme per line and
	// raises shopper-facing notices for the differences. Never removes a
	// line, never fails the cart.
	ValidateCart(ctx context.Context, c *cart.Cart) error

	// RestoreLine rebuilds a cart line from an order record and attaches
	// it to the cart, replaying the recorded scheme choice.
	RestoreLine(ctx context.Context, c *cart.Cart, rec cart.OrderLineRecord) (*cart.LineItem, error)
}

type cartSyncService struct {
	ServiceParams
	registry    SchemeRegistryService
	state       ActiveSchemeService
	propagation PropagationService
}

func NewCartSyncService(params ServiceParams) CartSyncService {
	params = params.WithDefaults()
	return &cartSyncService{
		ServiceParams: params,
		registry:      NewSchemeRegistryService(params),
		state:         NewActiveSchemeService(params),
		propagation:   NewPropagationService(params),
	}
}

func (s *cartSyncService) SyncCart(ctx context.Context, c *cart.Cart) error {
	c.InvalidateCartSchemes()
	return s.Resync(ctx, c)
}

func (s *cartSyncService) Resync(ctx context.Context, c *cart.Cart) error {
	cartSchemes, err := s.registry.GetCartSchemes(ctx, c)
	if err != nil {
		return err
	}

	for _, li := range c.Lines {
		// lifecycle-managed lines belong to the external subscription
		// record; never second-guess it
		if li.Origin.IsLifecycleManaged() {
			if err := s.stripSchemeData(ctx, c, li); err != nil {
				return err
			}
			continue
		}

		if cartSchemes != nil {
			if err := s.adoptCartSchemes(ctx, li, cartSchemes); err != nil {
				return err
			}
		} else {
			s.dropAdoptedCartSchemes(ctx, li)
		}

		if err := s.state.ResolveScheme(ctx, c, li); err != nil {
			return err
		}
	}

	// containers have resolved their own key by now
	if err := s.propagation.PropagateCart(ctx, c); err != nil {
		return err
	}

	return s.RecalculateTotals(ctx, c)
}

// stripSchemeData removes every trace of scheme application from a line.
// Shadow recurrence attributes are left alone: they belong to the external
// lifecycle record.
func (s *cartSyncService) stripSchemeData(ctx context.Context, c *cart.Cart, li *cart.LineItem) error {
	s.registry.ClearSchemes(ctx, li.Item)
	li.Item.SetActiveScheme(types.UndefinedScheme())
	li.Item.SuppressSchemeChoice = true
	li.Application = cart.SchemeApplicationState{}
	return s.SessionRepo.DeleteLineState(ctx, c.ID, li.ID)
}

// adoptCartSchemes replaces a line's scheme set with the cart-level one,
// demoted the same way container schemes are when they reach children.
func (s *cartSyncService) adoptCartSchemes(ctx context.Context, li *cart.LineItem, cartSchemes *scheme.Set) error {
	s.registry.SetSchemes(ctx, li.Item, demoteSet(cartSchemes))
	return nil
}

// dropAdoptedCartSchemes clears a previously adopted cart-level set once
// cart-level schemes are suppressed, so the item derives its own again.
func (s *cartSyncService) dropAdoptedCartSchemes(ctx context.Context, li *cart.LineItem) {
	if !li.Item.HasExplicitSchemes() {
		return
	}
	set := li.Item.Schemes()
	if set.IsEmpty() || set.FilterByContext(types.SchemeContextCart).Len() != set.Len() {
		return
	}
	s.registry.ClearSchemes(ctx, li.Item)
}

func (s *cartSyncService) RecalculateTotals(ctx context.Context, c *cart.Cart) error {
	total := decimal.Zero
	for _, li := range c.Lines {
		prices, err := s.effectivePrices(ctx, c, li)
		if err != nil {
			return err
		}
		li.EffectivePrices = prices
		total = total.Add(li.LineTotal())
	}
	c.Total = total
	return nil
}

// effectivePrices computes the triple a line is priced at. Always starts
// from the item's base prices; feeding a previously overridden triple back
// in would break idempotence.
func (s *cartSyncService) effectivePrices(ctx context.Context, c *cart.Cart, li *cart.LineItem) (scheme.PriceTriple, error) {
	base := li.Item.BasePrices

	state := li.Item.ActiveScheme()
	if !state.IsActive() {
		return base, nil
	}

	set, err := s.registry.GetSchemes(ctx, li.Item, "")
	if err != nil {
		return base, err
	}
	sch, ok := set.Get(state.Key)
	if !ok || !sch.HasPriceFilter() {
		return base, nil
	}

	if !s.Hooks.PriceFilterGate.AllowPriceFilters(ctx, c, li) {
		return base, nil
	}

	opts := s.Config.PricingOptions()
	opts.DiscountFromRegular = s.Hooks.DiscountBase.DiscountFromRegular(ctx, li.Item)
	return scheme.GetPrices(base, sch, opts), nil
}

func (s *cartSyncService) ValidateCart(ctx context.Context, c *cart.Cart) error {
	c.ClearNotices()

	for _, li := range c.Lines {
		if li.Origin.IsLifecycleManaged() {
			continue
		}

		app := li.Application
		applied := app.ActiveState()
		intendedMatches := app.IntendedKey == "" && !applied.IsActive() ||
			applied.IsActive() && applied.Key == app.IntendedKey
		if !app.Mismatch && intendedMatches {
			continue
		}

		set, err := s.registry.GetSchemes(ctx, li.Item, "")
		if err != nil {
			return err
		}

		if app.IntendedKey != "" && !set.Has(app.IntendedKey) {
			// the chosen scheme is gone; invite a new choice, blocking
			// checkout only when a forced-subscription item has nothing
			// left to choose
			forced, err := s.registry.IsForcedSubscription(ctx, li.Item)
			if err != nil {
				return err
			}
			if forced && set.IsEmpty() {
				c.AddNotice(cart.Notice{
					Severity: types.NoticeSeverityBlocking,
					Message:  "This item can only be purchased on a subscription, but its subscription options are no longer available. Please remove it from your cart.",
					LineID:   li.ID,
				})
			} else {
				c.AddNotice(cart.Notice{
					Severity: types.NoticeSeverityInfo,
					Message:  "The subscription option you selected is no longer available. Please choose another option.",
					LineID:   li.ID,
				})
			}
			continue
		}

		// the scheme exists yet was not applied; surface, do not block
		s.Logger.Warnw("applied scheme differs from intended scheme",
			"line_id", li.ID,
			"product_id", li.Item.ProductID,
			"intended_key", app.IntendedKey,
			"applied", fmt.Sprintf("%v", applied))
	}
	return nil
}

func (s *cartSyncService) RestoreLine(ctx context.Context, c *cart.Cart, rec cart.OrderLineRecord) (*cart.LineItem, error) {
	li := rec.RestoreLine()
	c.AddLine(li)

	if li.Origin.IsLifecycleManaged() {
		return li, s.stripSchemeData(ctx, c, li)
	}

	if err := s.SessionRepo.SetLineState(ctx, c.ID, li.ID, li.Application); err != nil {
		return nil, err
	}
	return li, nil
}
