package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), c.Load())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), time.Millisecond)
}

func TestCheckoutSnapshot(t *testing.T) {
	m := NewCheckout()

	empty := m.Snapshot()
	assert.Zero(t, empty.OrdersPlaced)
	assert.Zero(t, empty.AvgCheckoutMillis)
	assert.Nil(t, empty.LastCheckoutAt)

	m.OrdersPlaced.Inc()
	m.OrdersPlaced.Inc()
	m.OrdersFailed.Inc()
	m.CouponsRejected.Inc()
	m.GiftsGranted.Inc()
	m.ObserveCheckout(10 * time.Millisecond)
	m.ObserveCheckout(30 * time.Millisecond)

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.OrdersPlaced)
	assert.Equal(t, uint64(1), s.OrdersFailed)
	assert.Equal(t, uint64(1), s.CouponsRejected)
	assert.Equal(t, uint64(1), s.GiftsGranted)
	assert.InDelta(t, 20.0, s.AvgCheckoutMillis, 0.001)
	assert.NotNil(t, s.LastCheckoutAt)
}

func TestCheckoutSnapshot_SubMillisecond(t *testing.T) {
	m := NewCheckout()
	m.ObserveCheckout(400 * time.Microsecond)
	m.ObserveCheckout(600 * time.Microsecond)
	m.ObserveCheckout(200 * time.Microsecond)

	assert.InDelta(t, 0.4, m.Snapshot().AvgCheckoutMillis, 0.0001)
}
