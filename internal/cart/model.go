package cart

import (
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/shopspring/decimal"
)

const maxQuantity = 50

// Cart is the persisted per-session state. Totals are never stored; they are
// recomputed by the pricing engine on every read.
type Cart struct {
	SessionID     string              `json:"session_id"`
	Items         []pricing.LineItem  `json:"items"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	UseCashback   bool                `json:"use_cashback"`
	CustomerPhone string              `json:"customer_phone,omitempty"`
	Fulfillment   pricing.Fulfillment `json:"fulfillment"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Fulfillment: pricing.FulfillmentDelivery}
}

type AddItemInput struct {
	ProductID   string   `json:"product_id"`
	SecondaryID string   `json:"secondary_id,omitempty"`
	CrustID     string   `json:"crust_id,omitempty"`
	AddonIDs    []string `json:"addon_ids,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Quantity    int      `json:"quantity"`
}

// View is the cart as the storefront renders it.
type View struct {
	SessionID       string                 `json:"session_id"`
	Items           []pricing.LineItem     `json:"items"`
	ItemCount       int                    `json:"item_count"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
	UseCashback     bool                   `json:"use_cashback"`
	CustomerPhone   string                 `json:"customer_phone,omitempty"`
	CashbackBalance decimal.Decimal        `json:"cashback_balance"`
	Fulfillment     pricing.Fulfillment    `json:"fulfillment"`
	PromotionState  pricing.PromotionState `json:"promotion_state"`
	GiftOptions     []pricing.Product      `json:"gift_options,omitempty"`
	MissingForGift  decimal.Decimal        `json:"missing_for_gift"`
	Totals          pricing.OrderTotals    `json:"totals"`
	Notices         []pricing.Notice       `json:"notices,omitempty"`

	// Quote keeps unrounded amounts for checkout.
	Quote pricing.Quote `json:"-"`
	// CustomerID is set when the cashback phone belongs to a known customer.
	CustomerID string `json:"-"`
}

func (v *View) Empty() bool {
	return len(v.Items) == 0
}
