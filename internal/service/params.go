package service

import (
	"github.com/recurcart/recurcart/internal/cache"
	"github.com/recurcart/recurcart/internal/config"
	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories (host platform boundaries)
	ProductRepo item.ProductRepository
	SessionRepo cart.SessionRepository

	// Hierarchy is supplied by the active bundle/composite extension;
	// defaults to link-following with no extension present
	Hierarchy cart.HierarchyResolver

	// Hooks are the extension points, identity by default
	Hooks Hooks
}

// WithDefaults fills in the members the host left unset
func (p ServiceParams) WithDefaults() ServiceParams {
	if p.Logger == nil {
		p.Logger = logger.NewNopLogger()
	}
	if p.Config == nil {
		p.Config = config.GetDefaultConfig()
	}
	if p.Cache == nil {
		p.Cache = cache.NewInMemoryCache()
	}
	if p.Hierarchy == nil {
		p.Hierarchy = cart.NewLinkedHierarchy()
	}
	defaults := NewDefaultHooks(p.Config)
	if p.Hooks.SchemeSet == nil {
		p.Hooks.SchemeSet = defaults.SchemeSet
	}
	if p.Hooks.ResolvedKey == nil {
		p.Hooks.ResolvedKey = defaults.ResolvedKey
	}
	if p.Hooks.CartDefault == nil {
		p.Hooks.CartDefault = defaults.CartDefault
	}
	if p.Hooks.DiscountBase == nil {
		p.Hooks.DiscountBase = defaults.DiscountBase
	}
	if p.Hooks.PriceFilterGate == nil {
		p.Hooks.PriceFilterGate = defaults.PriceFilterGate
	}
	if p.Hooks.Selection == nil {
		p.Hooks.Selection = defaults.Selection
	}
	return p
}
