package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func product(t *testing.T, id, price string) Product {
	t.Helper()
	return Product{ID: id, Name: "Pizza " + id, Price: dec(t, price), CategoryID: "pizzas", Available: true}
}

func modifier(t *testing.T, id, price string, kind ModifierKind) Modifier {
	t.Helper()
	return Modifier{ID: id, Name: "Mod " + id, Price: dec(t, price), Kind: kind}
}

func item(t *testing.T, id, price string, qty int) LineItem {
	t.Helper()
	return NewLineItem(id, Selection{Primary: product(t, id, price), Quantity: qty})
}
