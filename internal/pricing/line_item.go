package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Selection is what the customer confirms in the configurator.
type Selection struct {
	Primary   Product
	Secondary *Product
	Crust     *Modifier
	Addons    []Modifier
	Quantity  int
	Notes     string
}

// BasePrice charges the pricier half of a half-and-half pizza.
func BasePrice(primary Product, secondary *Product) decimal.Decimal {
	base := nonNegative(primary.Price)
	if secondary != nil {
		base = decimal.Max(base, nonNegative(secondary.Price))
	}
	return base
}

// PriceLineItem returns the unit price of a configured item. Addons are
// deduplicated by ID; a nil crust contributes nothing.
func PriceLineItem(primary Product, secondary *Product, crust *Modifier, addons []Modifier) decimal.Decimal {
	price := BasePrice(primary, secondary)
	if crust != nil {
		price = price.Add(nonNegative(crust.Price))
	}
	for _, a := range UniqueAddons(addons) {
		price = price.Add(nonNegative(a.Price))
	}
	return price
}

// ToggleAddon selects m, or deselects it when it is already selected.
func ToggleAddon(addons []Modifier, m Modifier) []Modifier {
	if lo.ContainsBy(addons, func(a Modifier) bool { return a.ID == m.ID }) {
		return lo.Reject(addons, func(a Modifier, _ int) bool { return a.ID == m.ID })
	}
	out := make([]Modifier, 0, len(addons)+1)
	out = append(out, addons...)
	return append(out, m)
}

func UniqueAddons(addons []Modifier) []Modifier {
	return lo.UniqBy(addons, func(a Modifier) string { return a.ID })
}

func NewLineItem(id string, sel Selection) LineItem {
	item := LineItem{
		ID:        id,
		Primary:   sel.Primary,
		Secondary: sel.Secondary,
		Quantity:  sel.Quantity,
		Crust:     sel.Crust,
		Addons:    UniqueAddons(sel.Addons),
		Notes:     sel.Notes,
	}
	item.Reprice()
	return item
}

// NewGiftItem builds the promotional line: quantity 1, price 0.
func NewGiftItem(p Product) LineItem {
	return LineItem{
		ID:        giftItemID(p.ID),
		Primary:   p,
		Quantity:  1,
		UnitPrice: decimal.Zero,
		Gift:      true,
	}
}

func giftItemID(productID string) string {
	return "gift-" + productID
}

// Reprice recomputes UnitPrice from the item's current products and modifiers.
func (li *LineItem) Reprice() {
	if li.Gift {
		li.UnitPrice = decimal.Zero
		return
	}
	li.UnitPrice = PriceLineItem(li.Primary, li.Secondary, li.Crust, li.Addons)
}

func (li LineItem) IsHalfAndHalf() bool {
	return li.Secondary != nil
}

// LineTotal is UnitPrice * Quantity. Gift lines always total zero.
func (li LineItem) LineTotal() decimal.Decimal {
	if li.Gift || li.Quantity <= 0 {
		return decimal.Zero
	}
	return nonNegative(li.UnitPrice).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
