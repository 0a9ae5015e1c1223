package service

import (
	"context"
	"testing"

	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/testutil"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/stretchr/testify/suite"
)

type SchemeRegistrySuite struct {
	testutil.BaseServiceTestSuite
	registry SchemeRegistryService
}

func TestSchemeRegistryService(t *testing.T) {
	suite.Run(t, new(SchemeRegistrySuite))
}

func (s *SchemeRegistrySuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.registry = NewSchemeRegistryService(s.serviceParams())
}

func (s *SchemeRegistrySuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Cache:       s.GetCache(),
		ProductRepo: s.GetStores().ProductRepo,
		SessionRepo: s.GetStores().SessionRepo,
	}
}

func monthlyDefinition(discount string) scheme.StoredDefinition {
	return scheme.StoredDefinition{
		SubscriptionPeriod:         "month",
		SubscriptionPeriodInterval: 1,
		SubscriptionDiscount:       discount,
	}
}

func yearlyDefinition() scheme.StoredDefinition {
	return scheme.StoredDefinition{
		SubscriptionPeriod:         "year",
		SubscriptionPeriodInterval: 1,
	}
}

func (s *SchemeRegistrySuite) TestDerivesSchemesFromStoredDefinitions() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
		yearlyDefinition(),
	})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.Equal([]string{"1_month_0", "1_year_0"}, set.Keys())
}

func (s *SchemeRegistrySuite) TestDuplicateKeysCollapseToFirstDefinition() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
		monthlyDefinition("25"),
	})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.Equal(1, set.Len())

	sch, ok := set.Get("1_month_0")
	s.True(ok)
	s.NotNil(sch.DiscountPercent)
	s.True(sch.DiscountPercent.Equal(decimalFromString("10")))
}

func (s *SchemeRegistrySuite) TestUnsupportedProductTypeResolvesEmpty() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	it := item.New("prod_1", "external", types.ItemKindSimple)

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.True(set.IsEmpty())
}

func (s *SchemeRegistrySuite) TestVariantFallsBackToParentDefinitions() {
	s.GetStores().ProductRepo.SetDefinitions("prod_parent", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	it := item.New("prod_child", "variation", types.ItemKindVariant)
	it.ParentProductID = "prod_parent"

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.Equal([]string{"1_month_0"}, set.Keys())
}

func (s *SchemeRegistrySuite) TestVariantOwnDefinitionsWinOverParent() {
	s.GetStores().ProductRepo.SetDefinitions("prod_parent", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	s.GetStores().ProductRepo.SetDefinitions("prod_child", []scheme.StoredDefinition{
		yearlyDefinition(),
	})
	it := item.New("prod_child", "variation", types.ItemKindVariant)
	it.ParentProductID = "prod_parent"

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.Equal([]string{"1_year_0"}, set.Keys())
}

type vetoHook struct{}

func (vetoHook) FilterSchemes(_ context.Context, _ *item.Item, _ *scheme.Set) *scheme.Set {
	return nil
}

func (s *SchemeRegistrySuite) TestSchemeSetHookCanVetoDerivedSet() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	params := s.serviceParams()
	params.Hooks.SchemeSet = vetoHook{}
	registry := NewSchemeRegistryService(params)

	it := item.New("prod_1", "simple", types.ItemKindSimple)
	set, err := registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.True(set.IsEmpty())
}

func (s *SchemeRegistrySuite) TestExplicitSetWinsOverDerivation() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	forced := scheme.NewSet(&scheme.Scheme{
		Key:         types.SchemeKey(2, types.BillingPeriodWeek, 0),
		Period:      types.BillingPeriodWeek,
		Interval:    2,
		PricingMode: types.PricingModeInherit,
	})
	s.registry.SetSchemes(s.GetContext(), it, forced)

	set, err := s.registry.GetSchemes(s.GetContext(), it, "")
	s.NoError(err)
	s.Equal([]string{"2_week_0"}, set.Keys())
}

func (s *SchemeRegistrySuite) TestClearSchemesRederivesAndInvalidatesDefaultKey() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	s.GetStores().ProductRepo.SetFlags("prod_1", &item.SubscriptionFlags{DefaultToSubscription: true})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	state, err := s.registry.GetDefaultState(s.GetContext(), it)
	s.NoError(err)
	s.Equal(types.ActiveScheme("1_month_0"), state)

	// replace the set; the memoized default key must not survive
	forced := scheme.NewSet(&scheme.Scheme{
		Key:         types.SchemeKey(1, types.BillingPeriodYear, 0),
		Period:      types.BillingPeriodYear,
		Interval:    1,
		PricingMode: types.PricingModeInherit,
	})
	s.registry.SetSchemes(s.GetContext(), it, forced)

	state, err = s.registry.GetDefaultState(s.GetContext(), it)
	s.NoError(err)
	s.Equal(types.ActiveScheme("1_year_0"), state)
}

func (s *SchemeRegistrySuite) TestDefaultStateIsOneTimeUnlessFlagged() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
	})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	state, err := s.registry.GetDefaultState(s.GetContext(), it)
	s.NoError(err)
	s.True(state.IsNone())
}

func (s *SchemeRegistrySuite) TestForcedSubscriptionDefaultsToFirstScheme() {
	s.GetStores().ProductRepo.SetDefinitions("prod_1", []scheme.StoredDefinition{
		monthlyDefinition("10"),
		yearlyDefinition(),
	})
	s.GetStores().ProductRepo.SetFlags("prod_1", &item.SubscriptionFlags{ForceSubscription: true})
	it := item.New("prod_1", "simple", types.ItemKindSimple)

	state, err := s.registry.GetDefaultState(s.GetContext(), it)
	s.NoError(err)
	s.Equal(types.ActiveScheme("1_month_0"), state)

	forced, err := s.registry.IsForcedSubscription(s.GetContext(), it)
	s.NoError(err)
	s.True(forced)
}

func (s *SchemeRegistrySuite) TestCartSchemesFromConfiguration() {
	cfg := s.GetConfig()
	cfg.CartSchemes.Enabled = true
	cfg.CartSchemes.Definitions = []scheme.StoredDefinition{monthlyDefinition("5")}
	registry := NewSchemeRegistryService(s.serviceParams())

	c := cart.New()
	c.AddLine(cart.NewLineItem(item.New("prod_plain", "simple", types.ItemKindSimple), 1))

	set, err := registry.GetCartSchemes(s.GetContext(), c)
	s.NoError(err)
	s.NotNil(set)
	s.Equal([]string{"1_month_0"}, set.Keys())

	first, ok := set.First()
	s.True(ok)
	s.Equal(types.SchemeContextCart, first.Context)
}

func (s *SchemeRegistrySuite) TestCartSchemesSuppressedByProductLevelSchemes() {
	cfg := s.GetConfig()
	cfg.CartSchemes.Enabled = true
	cfg.CartSchemes.Definitions = []scheme.StoredDefinition{monthlyDefinition("5")}
	registry := NewSchemeRegistryService(s.serviceParams())

	s.GetStores().ProductRepo.SetDefinitions("prod_sub", []scheme.StoredDefinition{
		yearlyDefinition(),
	})

	c := cart.New()
	c.AddLine(cart.NewLineItem(item.New("prod_plain", "simple", types.ItemKindSimple), 1))
	c.AddLine(cart.NewLineItem(item.New("prod_sub", "simple", types.ItemKindSimple), 1))

	set, err := registry.GetCartSchemes(s.GetContext(), c)
	s.NoError(err)
	s.Nil(set)
}

func (s *SchemeRegistrySuite) TestCartSchemesSuppressedByLegacySubscriptionItem() {
	cfg := s.GetConfig()
	cfg.CartSchemes.Enabled = true
	cfg.CartSchemes.Definitions = []scheme.StoredDefinition{monthlyDefinition("5")}
	registry := NewSchemeRegistryService(s.serviceParams())

	s.GetStores().ProductRepo.SetLegacy("prod_legacy", true)

	c := cart.New()
	c.AddLine(cart.NewLineItem(item.New("prod_legacy", "simple", types.ItemKindSimple), 1))

	set, err := registry.GetCartSchemes(s.GetContext(), c)
	s.NoError(err)
	s.Nil(set)
}

func (s *SchemeRegistrySuite) TestCartSchemesDisabled() {
	c := cart.New()
	set, err := s.registry.GetCartSchemes(s.GetContext(), c)
	s.NoError(err)
	s.Nil(set)
}
