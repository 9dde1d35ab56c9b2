package order

import (
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusReceived       Status = "RECEIVED"
	StatusPreparing      Status = "PREPARING"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
	StatusCanceled       Status = "CANCELED"
)

var transitions = map[Status][]Status{
	StatusReceived:       {StatusPreparing, StatusCanceled},
	StatusPreparing:      {StatusOutForDelivery, StatusReadyForPickup, StatusCanceled},
	StatusOutForDelivery: {StatusCompleted, StatusCanceled},
	StatusReadyForPickup: {StatusCompleted, StatusCanceled},
}

// CanTransition reports whether an order may move from s to next. Dispatch
// statuses must match how the order is fulfilled.
func (s Status) CanTransition(next Status, f pricing.Fulfillment) bool {
	if next == StatusOutForDelivery && f != pricing.FulfillmentDelivery {
		return false
	}
	if next == StatusReadyForPickup && f != pricing.FulfillmentPickup {
		return false
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusOutForDelivery, StatusReadyForPickup, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentPix || p == PaymentCard || p == PaymentCash
}

type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type OrderItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SecondaryID   string          `json:"secondary_id,omitempty"`
	SecondaryName string          `json:"secondary_name,omitempty"`
	CrustName     string          `json:"crust_name,omitempty"`
	Addons        []string        `json:"addons,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Gift          bool            `json:"gift"`
}

type Order struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	SessionID      string              `json:"-"`
	CustomerID     string              `json:"customer_id,omitempty"`
	CustomerName   string              `json:"customer_name"`
	Phone          string              `json:"phone"`
	Fulfillment    pricing.Fulfillment `json:"fulfillment"`
	Address        *Address            `json:"address,omitempty"`
	PaymentMethod  PaymentMethod       `json:"payment_method"`
	ChangeFor      *decimal.Decimal    `json:"change_for,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Items          []OrderItem         `json:"items,omitempty"`
	Totals         pricing.OrderTotals `json:"totals"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	CashbackEarned decimal.Decimal     `json:"cashback_earned"`
	Status         Status              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type CheckoutInput struct {
	CustomerName  string           `json:"customer_name"`
	Phone         string           `json:"phone"`
	Address       *Address         `json:"address,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	ChangeFor     *decimal.Decimal `json:"change_for,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

type CheckoutResult struct {
	Order       *Order `json:"order"`
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url"`
}

type ListFilter struct {
	Status   Status
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// OrderPlaced is the event published after a successful checkout.
type OrderPlaced struct {
	OrderID       string              `json:"order_id"`
	Code          string              `json:"code"`
	CustomerID    string              `json:"customer_id,omitempty"`
	Fulfillment   pricing.Fulfillment `json:"fulfillment"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	ItemCount     int                 `json:"item_count"`
	GrandTotal    string              `json:"grand_total"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	PlacedAt      time.Time           `json:"placed_at"`
}
