package pricing

import "github.com/shopspring/decimal"

// ApplyCashback returns how much of the balance the order consumes. It only
// offsets what is left of the subtotal after the coupon, never the delivery fee.
func ApplyCashback(balance, subtotal, couponDiscount decimal.Decimal, wantsToUse bool) decimal.Decimal {
	if !wantsToUse || !balance.IsPositive() {
		return decimal.Zero
	}
	remaining := subtotal.Sub(couponDiscount)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(balance, remaining)
}

// EarnedCashback is the credit accrued on a paid amount at rate percent.
func EarnedCashback(paid, ratePercent decimal.Decimal) decimal.Decimal {
	if !paid.IsPositive() || !ratePercent.IsPositive() {
		return decimal.Zero
	}
	return paid.Mul(ratePercent).Div(hundred).Round(2)
}
