package catalog

import (
	"pizzeria-be/internal/pricing"

	"github.com/samber/lo"
)

// Snapshot is a read-only view of the catalog handed to the pricing engine
// for the duration of one cart operation.
type Snapshot struct {
	products  map[string]Product
	modifiers map[string]Modifier
}

func NewSnapshot(products []Product, modifiers []Modifier) Snapshot {
	return Snapshot{
		products:  lo.KeyBy(products, func(p Product) string { return p.ID }),
		modifiers: lo.KeyBy(modifiers, func(m Modifier) string { return m.ID }),
	}
}

func (s Snapshot) Product(id string) (Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s Snapshot) Modifier(id string) (Modifier, bool) {
	m, ok := s.modifiers[id]
	return m, ok
}

// PricingProducts resolves ids in order, skipping unknown or unavailable products.
func (s Snapshot) PricingProducts(ids []string) []pricing.Product {
	out := make([]pricing.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := s.products[id]
		if !ok || !p.Available {
			continue
		}
		out = append(out, p.ToPricing())
	}
	return out
}
