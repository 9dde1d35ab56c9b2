package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisStore(client, 72*time.Hour)

	c := newCart("sess-1")
	c.CouponCode = "PIZZA10"
	c.Items = []pricing.LineItem{pricing.NewLineItem("li-1", pricing.Selection{
		Primary:  pricing.Product{ID: "p-marg", Name: "Margherita", Price: decimal.RequireFromString("45.90")},
		Quantity: 2,
	})}

	require.NoError(t, store.Save(ctx, c))
	assert.Equal(t, 72*time.Hour, client.ttls["cart:sess-1"])

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "PIZZA10", loaded.CouponCode)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("45.90")))

	require.NoError(t, store.Delete(ctx, "sess-1"))
	empty, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, pricing.FulfillmentDelivery, empty.Fulfillment)
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Backend down", func(t *testing.T) {
		client := newFakeRedis()
		client.failErr = errors.New("connection refused")
		store := NewRedisStore(client, time.Hour)

		_, err := store.Load(ctx, "s")
		assert.ErrorContains(t, err, "load cart")
		assert.ErrorContains(t, store.Save(ctx, newCart("s")), "save cart")
		assert.ErrorContains(t, store.Delete(ctx, "s"), "delete cart")
	})

	t.Run("Corrupted document", func(t *testing.T) {
		client := newFakeRedis()
		client.data["cart:s"] = "{not json"
		store := NewRedisStore(client, time.Hour)

		_, err := store.Load(ctx, "s")
		assert.ErrorContains(t, err, "decode cart")
	})
}
