package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type PromotionState string

const (
	StateBelowThreshold      PromotionState = "BELOW_THRESHOLD"
	StateEligibleGiftPresent PromotionState = "ELIGIBLE_GIFT_PRESENT"
)

type PromotionResult struct {
	Items   []LineItem
	State   PromotionState
	Added   bool
	Removed bool
	// Swapped is set when a gift that left the rule's product list was replaced.
	Swapped bool
}

func (r PromotionResult) Changed() bool {
	return r.Added || r.Removed || r.Swapped
}

// Qualifies reports whether the rule grants a gift for the given subtotal.
// A disabled rule or an empty gift list never qualifies.
func (r PromotionRule) Qualifies(subtotal decimal.Decimal) bool {
	return r.Enabled && len(r.Products) > 0 && subtotal.GreaterThanOrEqual(r.MinValue)
}

func (r PromotionRule) eligible(productID string) (Product, bool) {
	return lo.Find(r.Products, func(p Product) bool { return p.ID == productID })
}

// GiftState derives the state machine position from the cart contents.
func GiftState(items []LineItem) PromotionState {
	if lo.ContainsBy(items, func(item LineItem) bool { return item.Gift }) {
		return StateEligibleGiftPresent
	}
	return StateBelowThreshold
}

// EvaluatePromotion runs the gift state machine once. It never mutates the
// input slice, and running it again on its own output is a no-op.
//
// A cart that no longer qualifies loses its gift, including when the rule was
// disabled while the gift was already in the cart.
func EvaluatePromotion(items []LineItem, rule PromotionRule) PromotionResult {
	regular := lo.Filter(items, func(item LineItem, _ int) bool { return !item.Gift })
	gifts := lo.Filter(items, func(item LineItem, _ int) bool { return item.Gift })

	if !rule.Qualifies(Subtotal(regular)) {
		return PromotionResult{
			Items:   regular,
			State:   StateBelowThreshold,
			Removed: len(gifts) > 0,
		}
	}

	result := PromotionResult{State: StateEligibleGiftPresent}
	switch {
	case len(gifts) == 0:
		result.Items = append(regular, NewGiftItem(rule.Products[0]))
		result.Added = true
	default:
		// Keep the customer's pick when it is still on offer; extra gift
		// lines beyond the first are dropped.
		current := gifts[0]
		if p, ok := rule.eligible(current.Primary.ID); ok {
			kept := NewGiftItem(p)
			result.Swapped = len(gifts) > 1 || !sameGift(current, kept)
			result.Items = append(regular, kept)
		} else {
			result.Items = append(regular, NewGiftItem(rule.Products[0]))
			result.Swapped = true
		}
	}
	return result
}

// ChooseGift replaces the cart's gift with another product from the rule's list.
func ChooseGift(items []LineItem, rule PromotionRule, productID string) ([]LineItem, error) {
	if GiftState(items) != StateEligibleGiftPresent {
		return nil, ErrNoGiftInCart
	}
	p, ok := rule.eligible(productID)
	if !ok {
		return nil, ErrGiftNotEligible
	}
	out := lo.Filter(items, func(item LineItem, _ int) bool { return !item.Gift })
	return append(out, NewGiftItem(p)), nil
}

func sameGift(a, b LineItem) bool {
	return a.ID == b.ID &&
		a.Quantity == b.Quantity &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.Primary.ID == b.Primary.ID &&
		a.Primary.Name == b.Primary.Name
}
