package pricing

import "github.com/shopspring/decimal"

// DeliveryFee is zero for pickup and the flat fee otherwise.
func DeliveryFee(method Fulfillment, flatFee decimal.Decimal) decimal.Decimal {
	if method == FulfillmentPickup {
		return decimal.Zero
	}
	return nonNegative(flatFee)
}

// ComputeTotals never yields a negative grand total.
func ComputeTotals(subtotal, deliveryFee, couponDiscount, cashbackApplied decimal.Decimal) OrderTotals {
	grand := subtotal.Add(deliveryFee).Sub(couponDiscount).Sub(cashbackApplied)
	return OrderTotals{
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		CouponDiscount:  couponDiscount,
		CashbackApplied: cashbackApplied,
		GrandTotal:      decimal.Max(decimal.Zero, grand),
	}
}

// Display rounds to currency precision. Only presentation code should call it.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Rounded returns a copy of t at currency precision, for persistence and
// rendering. The grand total is recomputed from the rounded components so the
// printed lines always add up.
func (t OrderTotals) Rounded() OrderTotals {
	return ComputeTotals(
		t.Subtotal.Round(2),
		t.DeliveryFee.Round(2),
		t.CouponDiscount.Round(2),
		t.CashbackApplied.Round(2),
	)
}
