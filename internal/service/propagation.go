package service

import (
	"context"

	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
)

// PropagationService keeps containers and their children on the same
// scheme. Runs after per-line resolution, because it needs containers to
// have decided their own key first.
type PropagationService interface {
	// PropagateCart applies container-to-child propagation across every
	// container line in the cart.
	PropagateCart(ctx context.Context, c *cart.Cart) error

	// PropagateContainer pushes one container's scheme set and choice down
	// onto its children.
	PropagateContainer(ctx context.Context, c *cart.Cart, container *cart.LineItem) error
}

type propagationService struct {
	ServiceParams
	registry SchemeRegistryService
	state    ActiveSchemeService
}

func NewPropagationService(params ServiceParams) PropagationService {
	params = params.WithDefaults()
	return &propagationService{
		ServiceParams: params,
		registry:      NewSchemeRegistryService(params),
		state:         NewActiveSchemeService(params),
	}
}

func (s *propagationService) PropagateCart(ctx context.Context, c *cart.Cart) error {
	for _, li := range c.Lines {
		if len(s.Hierarchy.ChildrenOf(c, li)) == 0 {
			continue
		}
		if err := s.PropagateContainer(ctx, c, li); err != nil {
			return err
		}
	}
	return nil
}

func (s *propagationService) PropagateContainer(ctx context.Context, c *cart.Cart, container *cart.LineItem) error {
	children := s.Hierarchy.ChildrenOf(c, container)
	if len(children) == 0 {
		return nil
	}

	containerSchemes, err := s.registry.GetSchemes(ctx, container.Item, "")
	if err != nil {
		return err
	}

	// a container without schemes of its own leaves children alone; their
	// own product-level schemes reappear
	if containerSchemes.IsEmpty() {
		for _, child := range children {
			if child.Item.HasExplicitSchemes() {
				s.registry.ClearSchemes(ctx, child.Item)
				child.Item.SuppressSchemeChoice = false
			}
		}
		return nil
	}

	containerState := container.Item.ActiveScheme()

	for _, child := range children {
		s.registry.SetSchemes(ctx, child.Item, demoteSet(containerSchemes))
		child.Item.SuppressSchemeChoice = true

		childState := types.OneTimePurchase()
		if containerState.IsActive() {
			childState = containerState
		}

		applyErr := s.state.ApplyScheme(ctx, child.Item, childState)
		child.Application = cart.NewApplicationState(child.Item.ActiveScheme(), childState.Key)
		if applyErr != nil {
			child.Application.Mismatch = true
			s.Logger.Warnw("container scheme could not be propagated to child",
				"container_line_id", container.ID,
				"child_line_id", child.ID,
				"scheme_key", childState.Key,
				"error", applyErr)
		}
		if err := s.SessionRepo.SetLineState(ctx, c.ID, child.ID, child.Application); err != nil {
			return err
		}
	}
	return nil
}

// demoteSet clones a scheme set for children: override pricing becomes
// plain inherit with no discount, so only the container can set absolute
// prices and nothing is counted twice.
func demoteSet(set *scheme.Set) *scheme.Set {
	out := set.Clone()
	for _, sch := range out.List() {
		if sch.PricingMode == types.PricingModeOverride {
			sch.DemoteToInherit()
		}
	}
	return out
}
