package service

import (
	"testing"

	"github.com/recurcart/recurcart/internal/domain/cart"
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/testutil"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/stretchr/testify/suite"
)

type PropagationSuite struct {
	testutil.BaseServiceTestSuite
	propagation PropagationService
	state       ActiveSchemeService
}

func TestPropagationService(t *testing.T) {
	suite.Run(t, new(PropagationSuite))
}

func (s *PropagationSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.serviceParams()
	s.propagation = NewPropagationService(params)
	s.state = NewActiveSchemeService(params)
}

func (s *PropagationSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Cache:       s.GetCache(),
		ProductRepo: s.GetStores().ProductRepo,
		SessionRepo: s.GetStores().SessionRepo,
	}
}

// bundleCart builds a container line with two children. The container's
// schemes include an override scheme; the children carry schemes of their
// own that should vanish while the container's are in force.
func (s *PropagationSuite) bundleCart() (*cart.Cart, *cart.LineItem, []*cart.LineItem) {
	s.GetStores().ProductRepo.SetDefinitions("prod_bundle", []scheme.StoredDefinition{
		{
			SubscriptionPeriod:         "month",
			SubscriptionPeriodInterval: 1,
			SubscriptionPricingMethod:  "override",
			SubscriptionRegularPrice:   "30",
			SubscriptionSalePrice:      "25",
		},
		yearlyDefinition(),
	})
	s.GetStores().ProductRepo.SetDefinitions("prod_child", []scheme.StoredDefinition{
		{
			SubscriptionPeriod:         "week",
			SubscriptionPeriodInterval: 1,
			SubscriptionDiscount:       "50",
		},
	})

	c := cart.New()
	container := cart.NewLineItem(item.New("prod_bundle", "bundle", types.ItemKindContainer), 1)
	c.AddLine(container)

	var children []*cart.LineItem
	for i := 0; i < 2; i++ {
		child := cart.NewLineItem(item.New("prod_child", "simple", types.ItemKindChild), 1)
		child.ContainerLineID = container.ID
		c.AddLine(child)
		children = append(children, child)
	}
	return c, container, children
}

func (s *PropagationSuite) TestChildrenInheritDemotedContainerSchemes() {
	c, container, children := s.bundleCart()
	s.NoError(s.state.ApplyScheme(s.GetContext(), container.Item, types.ActiveScheme("1_month_0")))

	s.NoError(s.propagation.PropagateCart(s.GetContext(), c))

	for _, child := range children {
		set := child.Item.Schemes()
		s.Equal([]string{"1_month_0", "1_year_0"}, set.Keys())

		// the override entry must have been demoted
		monthly, ok := set.Get("1_month_0")
		s.True(ok)
		s.Equal(types.PricingModeInherit, monthly.PricingMode)
		s.Nil(monthly.DiscountPercent)
		s.Nil(monthly.OverrideRegularPrice)
		s.Nil(monthly.OverrideSalePrice)
		s.False(monthly.HasPriceFilter())

		s.Equal(types.ActiveScheme("1_month_0"), child.Item.ActiveScheme())
		s.True(child.Item.SuppressSchemeChoice)
	}
}

func (s *PropagationSuite) TestOneTimeContainerForcesChildrenToOneTime() {
	c, container, children := s.bundleCart()
	s.NoError(s.state.ApplyScheme(s.GetContext(), container.Item, types.OneTimePurchase()))

	s.NoError(s.propagation.PropagateCart(s.GetContext(), c))

	for _, child := range children {
		s.True(child.Item.ActiveScheme().IsNone())
		s.True(child.Item.SuppressSchemeChoice)
	}
}

func (s *PropagationSuite) TestContainerWithoutSchemesLeavesChildrenAlone() {
	c, container, children := s.bundleCart()
	s.GetStores().ProductRepo.SetDefinitions("prod_bundle", nil)

	s.NoError(s.state.ResolveScheme(s.GetContext(), c, children[0]))
	s.NoError(s.propagation.PropagateCart(s.GetContext(), c))
	_ = container

	// children resolve their own product schemes independently
	registry := NewSchemeRegistryService(s.serviceParams())
	set, err := registry.GetSchemes(s.GetContext(), children[0].Item, "")
	s.NoError(err)
	s.Equal([]string{"1_week_0"}, set.Keys())
	s.False(children[0].Item.SuppressSchemeChoice)
}

func (s *PropagationSuite) TestPropagationIsIdempotent() {
	c, container, children := s.bundleCart()
	s.NoError(s.state.ApplyScheme(s.GetContext(), container.Item, types.ActiveScheme("1_year_0")))

	s.NoError(s.propagation.PropagateCart(s.GetContext(), c))
	firstState := children[0].Item.ActiveScheme()
	firstKeys := children[0].Item.Schemes().Keys()

	s.NoError(s.propagation.PropagateCart(s.GetContext(), c))
	s.Equal(firstState, children[0].Item.ActiveScheme())
	s.Equal(firstKeys, children[0].Item.Schemes().Keys())
}
