package catalog

import "pizzeria-be/internal/pricing"

func (p Product) ToPricing() pricing.Product {
	return pricing.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		Available:   p.Available,
	}
}

func (m Modifier) ToPricing() pricing.Modifier {
	return pricing.Modifier{
		ID:    m.ID,
		Name:  m.Name,
		Price: m.Price,
		Kind:  m.Kind,
	}
}
