package promotion

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	Kind        pricing.CouponKind `json:"kind"`
	Value       decimal.Decimal    `json:"value"`
	Active      bool               `json:"active"`
	ExpiresOn   *time.Time         `json:"expires_on,omitempty"`
	MinSubtotal decimal.Decimal    `json:"min_subtotal"`
	CreatedAt   time.Time          `json:"created_at"`
}

type CouponInput struct {
	Code        string             `json:"code"`
	Kind        pricing.CouponKind `json:"kind"`
	Value       decimal.Decimal    `json:"value"`
	Active      bool               `json:"active"`
	ExpiresOn   *Date              `json:"expires_on,omitempty"`
	MinSubtotal decimal.Decimal    `json:"min_subtotal"`
}

// Date is a calendar day. JSON accepts "2006-01-02" as well as a full RFC3339
// timestamp, of which only the day in its own offset is kept. The coupon stays
// valid through the end of that day on the store clock.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("expires_on: %w", err)
	}
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		*d = NewDate(t.Date())
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("expires_on: want YYYY-MM-DD, got %q", raw)
	}
	*d = NewDate(t.Date())
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

// GiftRule is the stored storewide promotion; ProductIDs keeps admin order.
type GiftRule struct {
	Enabled    bool            `json:"enabled"`
	MinValue   decimal.Decimal `json:"min_value"`
	ProductIDs []string        `json:"product_ids"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (c Coupon) ToPricing() pricing.Coupon {
	return pricing.Coupon{
		ID:          c.ID,
		Code:        c.Code,
		Kind:        c.Kind,
		Value:       c.Value,
		Active:      c.Active,
		ExpiresOn:   c.ExpiresOn,
		MinSubtotal: c.MinSubtotal,
	}
}
