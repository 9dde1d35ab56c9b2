package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type NoticeKind string

const (
	NoticeGiftAdded           NoticeKind = "gift_added"
	NoticeGiftRemoved         NoticeKind = "gift_removed"
	NoticeGiftSwapped         NoticeKind = "gift_swapped"
	NoticeCouponNoLongerValid NoticeKind = "coupon_no_longer_valid"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type QuoteInput struct {
	Items       []LineItem
	Rule        PromotionRule
	Coupon      *Coupon
	Cashback    CashbackAccount
	UseCashback bool
	Fulfillment Fulfillment
	DeliveryFee decimal.Decimal
	Now         time.Time
}

type Quote struct {
	Items          []LineItem     `json:"items"`
	State          PromotionState `json:"promotion_state"`
	Totals         OrderTotals    `json:"totals"`
	Coupon         *Coupon        `json:"coupon,omitempty"`
	CouponError    error          `json:"-"`
	Notices        []Notice       `json:"notices,omitempty"`
	CashbackWanted bool           `json:"cashback_wanted"`
}

// BuildQuote is the full projection of a cart: gift state machine, subtotal,
// coupon, then cashback against the post-coupon subtotal, then totals.
// An applied coupon that stops qualifying is dropped from the quote.
func BuildQuote(in QuoteInput) Quote {
	promo := EvaluatePromotion(in.Items, in.Rule)
	q := Quote{
		Items:          promo.Items,
		State:          promo.State,
		CashbackWanted: in.UseCashback,
	}
	switch {
	case promo.Added:
		q.Notices = append(q.Notices, Notice{Kind: NoticeGiftAdded, Message: "a free gift was added to your cart"})
	case promo.Removed:
		q.Notices = append(q.Notices, Notice{Kind: NoticeGiftRemoved, Message: "your cart no longer qualifies for the free gift"})
	case promo.Swapped:
		q.Notices = append(q.Notices, Notice{Kind: NoticeGiftSwapped, Message: "your free gift was updated"})
	}

	subtotal := Subtotal(q.Items)

	couponDiscount := decimal.Zero
	if in.Coupon != nil {
		discount, err := RevalidateCoupon(in.Coupon, subtotal, in.Now)
		if err != nil {
			q.CouponError = err
			q.Notices = append(q.Notices, Notice{Kind: NoticeCouponNoLongerValid, Message: couponMessage(err)})
		} else {
			couponDiscount = discount
			applied := *in.Coupon
			q.Coupon = &applied
		}
	}

	cashback := ApplyCashback(in.Cashback.Balance, subtotal, couponDiscount, in.UseCashback)
	fee := DeliveryFee(in.Fulfillment, in.DeliveryFee)
	q.Totals = ComputeTotals(subtotal, fee, couponDiscount, cashback)
	return q
}

func couponMessage(err error) string {
	switch {
	case errors.Is(err, ErrCouponBelowMinimum):
		return "coupon removed: the order no longer reaches the coupon minimum"
	case errors.Is(err, ErrCouponExpired):
		return "coupon removed: the coupon has expired"
	case errors.Is(err, ErrCouponInactive):
		return "coupon removed: the coupon is no longer active"
	default:
		return "coupon removed: it is no longer valid for this cart"
	}
}
