package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

type ModifierKind string

const (
	ModifierCrust ModifierKind = "crust"
	ModifierAddon ModifierKind = "addon"
)

type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFixed   CouponKind = "fixed"
)

type Fulfillment string

const (
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
)

// Product is a catalog entry as seen by the engine. It is never mutated here.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	CategoryID  string          `json:"category_id"`
	Available   bool            `json:"available"`
}

type Modifier struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Kind  ModifierKind    `json:"kind"`
}

// LineItem is one cart entry. UnitPrice is derived from the product(s) and
// modifiers and must only be set through NewLineItem or Reprice.
type LineItem struct {
	ID        string          `json:"id"`
	Primary   Product         `json:"primary"`
	Secondary *Product        `json:"secondary,omitempty"`
	Quantity  int             `json:"quantity"`
	Crust     *Modifier       `json:"crust,omitempty"`
	Addons    []Modifier      `json:"addons,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Gift      bool            `json:"gift,omitempty"`
}

type PromotionRule struct {
	Enabled  bool            `json:"enabled"`
	MinValue decimal.Decimal `json:"min_value"`
	// Products is the ordered list of eligible gifts; the first one is granted by default.
	Products []Product `json:"products"`
}

type Coupon struct {
	ID     string          `json:"id"`
	Code   string          `json:"code"`
	Kind   CouponKind      `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Active bool            `json:"active"`
	// ExpiresOn is a calendar date; the coupon stays valid until the end of that day.
	ExpiresOn   *time.Time      `json:"expires_on,omitempty"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
}

type CashbackAccount struct {
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}

type OrderTotals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	CouponDiscount  decimal.Decimal `json:"coupon_discount"`
	CashbackApplied decimal.Decimal `json:"cashback_applied"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
}
