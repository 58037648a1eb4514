package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBillingConfig() config.BillingConfig {
	dec := func(s string) decimal.Decimal {
		d, _ := decimal.NewFromString(s)
		return d
	}
	return config.BillingConfig{
		PlatformFee: dec("5.00"),
		GSTRate:     dec("0.10"),
		DeliveryTiers: []config.DeliveryTier{
			{UpperBound: dec("100"), Fee: dec("10")},
			{UpperBound: dec("200"), Fee: dec("15")},
			{UpperBound: dec("500"), Fee: dec("20")},
			{UpperBound: dec("1000"), Fee: dec("25")},
		},
		CeilingFee: dec("30"),
	}
}

func cartWithSubtotal(price string, qty int) []cart.LineItem {
	p, _ := decimal.NewFromString(price)
	return []cart.LineItem{
		{ItemID: 1, Name: "Pav Bhaji", Price: p, Quantity: qty, SellerID: 3},
	}
}

func TestCompute_PickupOrder(t *testing.T) {
	calc := NewCalculator(testBillingConfig())

	bill := calc.Compute(cartWithSubtotal("40", 2), false)

	assert.True(t, bill.Subtotal.Equal(decimal.NewFromInt(80)), "subtotal = %s", bill.Subtotal)
	assert.True(t, bill.PlatformFee.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, bill.GST.IsZero())
	assert.True(t, bill.DeliveryFee.IsZero())
	assert.True(t, bill.GrandTotal.Equal(decimal.NewFromInt(85)), "grand total = %s", bill.GrandTotal)
}

func TestCompute_DeliveryOrder(t *testing.T) {
	calc := NewCalculator(testBillingConfig())

	bill := calc.Compute(cartWithSubtotal("80", 1), true)

	assert.True(t, bill.GST.Equal(decimal.RequireFromString("8")), "gst = %s", bill.GST)
	assert.True(t, bill.DeliveryFee.Equal(decimal.NewFromInt(10)))
	// 80 + 5 + 8 + 10
	assert.True(t, bill.GrandTotal.Equal(decimal.NewFromInt(103)), "grand total = %s", bill.GrandTotal)
}

func TestCompute_DeliveryFeeTiers(t *testing.T) {
	calc := NewCalculator(testBillingConfig())

	cases := []struct {
		subtotal string
		fee      int64
	}{
		{"50", 10},
		{"100", 10},
		{"100.01", 15},
		{"150", 15},
		{"200", 15},
		{"350", 20},
		{"500", 20},
		{"600", 25},
		{"1000", 25},
		{"1000.01", 30},
		{"5000", 30},
	}

	for _, tc := range cases {
		bill := calc.Compute(cartWithSubtotal(tc.subtotal, 1), true)
		assert.True(t, bill.DeliveryFee.Equal(decimal.NewFromInt(tc.fee)),
			"subtotal %s: expected fee %d, got %s", tc.subtotal, tc.fee, bill.DeliveryFee)
	}
}

func TestCompute_GrandTotalIsSumOfParts(t *testing.T) {
	calc := NewCalculator(testBillingConfig())

	carts := [][]cart.LineItem{
		{},
		cartWithSubtotal("40", 2),
		cartWithSubtotal("33.33", 3),
		{
			{ItemID: 1, Price: decimal.RequireFromString("12.50"), Quantity: 4, SellerID: 1},
			{ItemID: 2, Price: decimal.RequireFromString("99.99"), Quantity: 1, SellerID: 1},
		},
	}

	for _, items := range carts {
		for _, delivery := range []bool{false, true} {
			bill := calc.Compute(items, delivery)
			sum := bill.Subtotal.Add(bill.PlatformFee).Add(bill.GST).Add(bill.DeliveryFee)
			assert.True(t, bill.GrandTotal.Equal(sum))

			if !delivery {
				assert.True(t, bill.GST.IsZero())
				assert.True(t, bill.DeliveryFee.IsZero())
			}
		}
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	calc := NewCalculator(testBillingConfig())
	items := cartWithSubtotal("33.33", 3)

	first := calc.Compute(items, true)
	second := calc.Compute(items, true)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.GST.Equal(second.GST))
	assert.True(t, first.DeliveryFee.Equal(second.DeliveryFee))
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	calc := NewCalculator(testBillingConfig())
	items := cartWithSubtotal("40", 2)

	calc.Compute(items, true)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(40)))
}

func TestRounded_TwoDecimalPlaces(t *testing.T) {
	calc := NewCalculator(testBillingConfig())

	// 33.33 * 3 = 99.99, gst = 9.999
	bill := calc.Compute(cartWithSubtotal("33.33", 3), true).Rounded()

	assert.Equal(t, "10", bill.GST.String())
	assert.Equal(t, "99.99", bill.Subtotal.String())
}
