package scheme

import (
	"testing"

	"github.com/recurcart/recurcart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyScheme(discount string) *Scheme {
	s := &Scheme{
		Key:         types.SchemeKey(1, types.BillingPeriodMonth, 0),
		Period:      types.BillingPeriodMonth,
		Interval:    1,
		PricingMode: types.PricingModeInherit,
	}
	if discount != "" {
		s.DiscountPercent = dec(discount)
	}
	return s
}

func TestSchemeHasPriceFilter(t *testing.T) {
	tests := []struct {
		name   string
		scheme *Scheme
		want   bool
	}{
		{
			name:   "override mode always filters",
			scheme: &Scheme{PricingMode: types.PricingModeOverride, OverrideRegularPrice: dec("8")},
			want:   true,
		},
		{
			name:   "inherit with positive discount filters",
			scheme: monthlyScheme("10"),
			want:   true,
		},
		{
			name:   "inherit without discount does not filter",
			scheme: monthlyScheme(""),
			want:   false,
		},
		{
			name:   "inherit with zero discount does not filter",
			scheme: monthlyScheme("0"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scheme.HasPriceFilter())
		})
	}
}

func TestSchemeEqualIsByKey(t *testing.T) {
	a := monthlyScheme("10")
	b := monthlyScheme("25")
	assert.True(t, a.Equal(b))

	c := &Scheme{Key: types.SchemeKey(2, types.BillingPeriodMonth, 0)}
	assert.False(t, a.Equal(c))
}

func TestSchemeDemoteToInherit(t *testing.T) {
	s := &Scheme{
		Key:                  "1_month_0",
		PricingMode:          types.PricingModeOverride,
		OverrideRegularPrice: dec("8"),
		OverrideSalePrice:    dec("6"),
	}
	s.DemoteToInherit()

	assert.Equal(t, types.PricingModeInherit, s.PricingMode)
	assert.Nil(t, s.DiscountPercent)
	assert.Nil(t, s.OverrideRegularPrice)
	assert.Nil(t, s.OverrideSalePrice)
	assert.False(t, s.HasPriceFilter())
}

func TestSetKeepsInsertionOrderAndFirstWins(t *testing.T) {
	first := monthlyScheme("10")
	duplicate := monthlyScheme("25")
	yearly := &Scheme{
		Key:         types.SchemeKey(1, types.BillingPeriodYear, 0),
		Period:      types.BillingPeriodYear,
		Interval:    1,
		PricingMode: types.PricingModeInherit,
	}

	set := NewSet(first, yearly, duplicate)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"1_month_0", "1_year_0"}, set.Keys())

	got, ok := set.Get("1_month_0")
	require.True(t, ok)
	assert.True(t, got.DiscountPercent.Equal(*dec("10")), "first inserted scheme must win")

	def, ok := set.First()
	require.True(t, ok)
	assert.Equal(t, "1_month_0", def.Key)
}

func TestSetCloneIsDeep(t *testing.T) {
	set := NewSet(monthlyScheme("10"))
	clone := set.Clone()

	cloned, ok := clone.Get("1_month_0")
	require.True(t, ok)
	cloned.DemoteToInherit()

	original, _ := set.Get("1_month_0")
	assert.NotNil(t, original.DiscountPercent)
}

func TestSetFilterByContext(t *testing.T) {
	product := monthlyScheme("10")
	product.Context = types.SchemeContextProduct
	cartScheme := &Scheme{
		Key:         types.SchemeKey(1, types.BillingPeriodWeek, 0),
		Period:      types.BillingPeriodWeek,
		Interval:    1,
		PricingMode: types.PricingModeInherit,
		Context:     types.SchemeContextCart,
	}

	set := NewSet(product, cartScheme)
	assert.Equal(t, []string{"1_month_0"}, set.FilterByContext(types.SchemeContextProduct).Keys())
	assert.Equal(t, []string{"1_week_0"}, set.FilterByContext(types.SchemeContextCart).Keys())
}

func TestStoredDefinitionParse(t *testing.T) {
	tests := []struct {
		name    string
		def     StoredDefinition
		wantErr bool
		check   func(t *testing.T, s *Scheme)
	}{
		{
			name: "plain inherit scheme",
			def: StoredDefinition{
				SubscriptionPeriod:         "month",
				SubscriptionPeriodInterval: 1,
				SubscriptionLength:         0,
				SubscriptionDiscount:       "25",
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, "1_month_0", s.Key)
				assert.Equal(t, types.PricingModeInherit, s.PricingMode)
				require.NotNil(t, s.DiscountPercent)
				assert.True(t, s.DiscountPercent.Equal(*dec("25")))
			},
		},
		{
			name: "override scheme with prices",
			def: StoredDefinition{
				SubscriptionPeriod:         "month",
				SubscriptionPeriodInterval: 1,
				SubscriptionPricingMethod:  "override",
				SubscriptionRegularPrice:   "8",
				SubscriptionSalePrice:      "6",
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, types.PricingModeOverride, s.PricingMode)
				require.NotNil(t, s.OverrideRegularPrice)
				assert.True(t, s.OverrideRegularPrice.Equal(*dec("8")))
				require.NotNil(t, s.OverrideSalePrice)
				assert.True(t, s.OverrideSalePrice.Equal(*dec("6")))
			},
		},
		{
			name: "override with no prices degrades to inherit without discount",
			def: StoredDefinition{
				SubscriptionPeriod:         "month",
				SubscriptionPeriodInterval: 1,
				SubscriptionPricingMethod:  "override",
				SubscriptionDiscount:       "25",
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, types.PricingModeInherit, s.PricingMode)
				assert.Nil(t, s.DiscountPercent)
				assert.False(t, s.HasPriceFilter())
			},
		},
		{
			name: "empty price strings stay unset",
			def: StoredDefinition{
				SubscriptionPeriod:         "week",
				SubscriptionPeriodInterval: 2,
				SubscriptionDiscount:       "",
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, "2_week_0", s.Key)
				assert.Nil(t, s.DiscountPercent)
			},
		},
		{
			name: "zero interval defaults to one",
			def: StoredDefinition{
				SubscriptionPeriod: "month",
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, 1, s.Interval)
				assert.Equal(t, "1_month_0", s.Key)
			},
		},
		{
			name: "trial fields carried",
			def: StoredDefinition{
				SubscriptionPeriod:         "month",
				SubscriptionPeriodInterval: 1,
				SubscriptionTrialPeriod:    "week",
				SubscriptionTrialLength:    2,
			},
			check: func(t *testing.T, s *Scheme) {
				assert.Equal(t, types.BillingPeriodWeek, s.TrialPeriod)
				assert.Equal(t, 2, s.TrialLength)
			},
		},
		{
			name:    "invalid period",
			def:     StoredDefinition{SubscriptionPeriod: "fortnight"},
			wantErr: true,
		},
		{
			name: "negative length",
			def: StoredDefinition{
				SubscriptionPeriod: "month",
				SubscriptionLength: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.def.Parse(types.SchemeContextProduct)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.SchemeContextProduct, s.Context)
			tt.check(t, s)
		})
	}
}
