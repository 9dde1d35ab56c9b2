package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Subtotal sums the line totals of every non-gift item.
func Subtotal(items []LineItem) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, item LineItem, _ int) decimal.Decimal {
		if item.Gift {
			return acc
		}
		return acc.Add(item.LineTotal())
	}, decimal.Zero)
}

// ItemCount counts units across non-gift items.
func ItemCount(items []LineItem) int {
	return lo.SumBy(items, func(item LineItem) int {
		if item.Gift || item.Quantity < 0 {
			return 0
		}
		return item.Quantity
	})
}
