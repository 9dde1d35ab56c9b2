package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout tracks storefront order outcomes since process start.
type Checkout struct {
	OrdersPlaced     Counter
	OrdersFailed     Counter
	CouponsRejected  Counter
	GiftsGranted     Counter
	totalCheckoutNs  uint64
	checkoutsTimed   uint64
	lastCheckoutUnix int64
}

func NewCheckout() *Checkout {
	return &Checkout{}
}

func (c *Checkout) ObserveCheckout(d time.Duration) {
	atomic.AddUint64(&c.totalCheckoutNs, uint64(d))
	atomic.AddUint64(&c.checkoutsTimed, 1)
	atomic.StoreInt64(&c.lastCheckoutUnix, time.Now().Unix())
}

type Snapshot struct {
	OrdersPlaced      uint64  `json:"orders_placed"`
	OrdersFailed      uint64  `json:"orders_failed"`
	CouponsRejected   uint64  `json:"coupons_rejected"`
	GiftsGranted      uint64  `json:"gifts_granted"`
	AvgCheckoutMillis float64 `json:"avg_checkout_ms"`
	LastCheckoutAt    *int64  `json:"last_checkout_at,omitempty"`
}

func (c *Checkout) Snapshot() Snapshot {
	s := Snapshot{
		OrdersPlaced:    c.OrdersPlaced.Load(),
		OrdersFailed:    c.OrdersFailed.Load(),
		CouponsRejected: c.CouponsRejected.Load(),
		GiftsGranted:    c.GiftsGranted.Load(),
	}

	if n := atomic.LoadUint64(&c.checkoutsTimed); n > 0 {
		total := time.Duration(atomic.LoadUint64(&c.totalCheckoutNs))
		s.AvgCheckoutMillis = float64(total) / float64(time.Millisecond) / float64(n)
	}
	if last := atomic.LoadInt64(&c.lastCheckoutUnix); last > 0 {
		s.LastCheckoutAt = &last
	}

	return s
}
