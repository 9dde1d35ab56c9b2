package catalog

import (
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
}

type Product struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `json:"available"`
	AllowHalf   bool            `json:"allow_half"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Modifier struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Price     decimal.Decimal      `json:"price"`
	Kind      pricing.ModifierKind `json:"kind"`
	Available bool                 `json:"available"`
}

type MenuSection struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}

type ProductInput struct {
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Available   bool            `json:"available"`
	AllowHalf   bool            `json:"allow_half"`
}

type ModifierInput struct {
	Name      string               `json:"name"`
	Price     decimal.Decimal      `json:"price"`
	Kind      pricing.ModifierKind `json:"kind"`
	Available bool                 `json:"available"`
}

type CategoryInput struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type ProductQueryOptions struct {
	CategoryID    string
	Search        string
	OnlyAvailable bool
}
