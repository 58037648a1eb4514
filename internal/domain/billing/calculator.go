// internal/domain/billing/calculator.go
package billing

import (
	"github.com/shopspring/decimal"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/cart"
)

// Breakdown is the reconciled bill for a cart snapshot. All values carry
// full precision; Rounded produces the 2-decimal presentation form.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
	GST         decimal.Decimal `json:"gst"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// Rounded returns a copy with every amount rounded to two decimal places.
// Rounding happens only here, at the presentation/persistence boundary, so
// repeated recomputation never compounds rounding error.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Subtotal:    b.Subtotal.Round(2),
		PlatformFee: b.PlatformFee.Round(2),
		GST:         b.GST.Round(2),
		DeliveryFee: b.DeliveryFee.Round(2),
		GrandTotal:  b.GrandTotal.Round(2),
	}
}

// Calculator computes bill breakdowns from the configured fee schedule
type Calculator struct {
	cfg config.BillingConfig
}

// NewCalculator creates a new billing calculator
func NewCalculator(cfg config.BillingConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute derives the bill for a cart snapshot. It is pure: no I/O, no
// mutation of its inputs, identical output for identical inputs. The same
// call settles the order later, so display and settlement amounts always
// reconcile.
//
// GST and the delivery fee apply only when door delivery is enabled;
// pickup orders pay subtotal plus the platform fee.
func (c *Calculator) Compute(items []cart.LineItem, deliveryEnabled bool) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	gst := decimal.Zero
	deliveryFee := decimal.Zero
	if deliveryEnabled {
		gst = subtotal.Mul(c.cfg.GSTRate)
		deliveryFee = c.deliveryFeeFor(subtotal)
	}

	return Breakdown{
		Subtotal:    subtotal,
		PlatformFee: c.cfg.PlatformFee,
		GST:         gst,
		DeliveryFee: deliveryFee,
		GrandTotal:  subtotal.Add(c.cfg.PlatformFee).Add(gst).Add(deliveryFee),
	}
}

// deliveryFeeFor walks the ascending tier table first-match; subtotals above
// the last bound pay the ceiling fee.
func (c *Calculator) deliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	for _, tier := range c.cfg.DeliveryTiers {
		if subtotal.LessThanOrEqual(tier.UpperBound) {
			return tier.Fee
		}
	}
	return c.cfg.CeilingFee
}
