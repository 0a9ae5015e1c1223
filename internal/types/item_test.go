package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveSchemeState(t *testing.T) {
	undefined := UndefinedScheme()
	assert.True(t, undefined.IsUndefined())
	assert.False(t, undefined.IsActive())
	assert.False(t, undefined.IsNone())

	none := OneTimePurchase()
	assert.True(t, none.IsNone())
	assert.False(t, none.IsUndefined())

	active := ActiveScheme("1_month_0")
	assert.True(t, active.IsActive())
	assert.Equal(t, "1_month_0", active.Key)

	// empty key collapses to one-time
	assert.True(t, ActiveScheme("").IsNone())
}

func TestActiveSchemeStateEqual(t *testing.T) {
	assert.True(t, ActiveScheme("1_month_0").Equal(ActiveScheme("1_month_0")))
	assert.False(t, ActiveScheme("1_month_0").Equal(ActiveScheme("1_year_0")))
	assert.False(t, ActiveScheme("1_month_0").Equal(OneTimePurchase()))
	assert.True(t, UndefinedScheme().Equal(ActiveSchemeState{}))
}

func TestSchemeKey(t *testing.T) {
	assert.Equal(t, "1_month_0", SchemeKey(1, BillingPeriodMonth, 0))
	assert.Equal(t, "3_week_12", SchemeKey(3, BillingPeriodWeek, 12))
}

func TestLineItemOriginIsLifecycleManaged(t *testing.T) {
	assert.False(t, LineItemOriginStandard.IsLifecycleManaged())
	assert.True(t, LineItemOriginRenewal.IsLifecycleManaged())
	assert.True(t, LineItemOriginResubscribe.IsLifecycleManaged())
	assert.True(t, LineItemOriginPaymentRecovery.IsLifecycleManaged())
}

func TestEnumValidate(t *testing.T) {
	assert.NoError(t, BillingPeriodMonth.Validate())
	assert.Error(t, BillingPeriod("fortnight").Validate())

	assert.NoError(t, PricingModeInherit.Validate())
	assert.Error(t, PricingMode("fixed").Validate())

	assert.NoError(t, SchemeContextCart.Validate())
	assert.Error(t, SchemeContext("order").Validate())

	assert.NoError(t, ItemKindContainer.Validate())
	assert.Error(t, ItemKind("grouped").Validate())
}
