package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/metrics"
	"pizzeria-be/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- fakes --

type memStore struct {
	carts map[string][]byte
	saves int
}

func newMemStore() *memStore {
	return &memStore{carts: map[string][]byte{}}
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	data, ok := m.carts[sessionID]
	if !ok {
		return newCart(sessionID), nil
	}
	var c Cart
	err := json.Unmarshal(data, &c)
	return &c, err
}

func (m *memStore) Save(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.carts[c.SessionID] = data
	m.saves++
	return nil
}

func (m *memStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type fakeCatalog struct {
	products  []catalog.Product
	modifiers []catalog.Modifier
	err       error
}

func (f *fakeCatalog) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	return catalog.NewSnapshot(f.products, f.modifiers), f.err
}

func (f *fakeCatalog) setAvailable(id string, available bool) {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Available = available
		}
	}
}

type fakePromos struct {
	enabled  bool
	minValue decimal.Decimal
	giftIDs  []string
	coupons  map[string]pricing.Coupon
}

func (f *fakePromos) Rule(ctx context.Context, snap catalog.Snapshot) (pricing.PromotionRule, error) {
	return pricing.PromotionRule{Enabled: f.enabled, MinValue: f.minValue, Products: snap.PricingProducts(f.giftIDs)}, nil
}

func (f *fakePromos) FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	c, ok := f.coupons[pricing.NormalizeCode(code)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type fakeCashback map[string]pricing.CashbackAccount

func (f fakeCashback) Account(ctx context.Context, phone string) (pricing.CashbackAccount, error) {
	return f[phone], nil
}

// -- fixtures --

var (
	brt       = time.FixedZone("BRT", -3*60*60)
	storeTime = time.Date(2026, 3, 14, 20, 30, 0, 0, brt)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func menu() *fakeCatalog {
	return &fakeCatalog{
		products: []catalog.Product{
			{ID: "p-marg", CategoryID: "pizzas", Name: "Margherita", Price: d("45.90"), Available: true, AllowHalf: true},
			{ID: "p-cala", CategoryID: "pizzas", Name: "Calabresa", Price: d("52.90"), Available: true, AllowHalf: true},
			{ID: "p-port", CategoryID: "pizzas", Name: "Portuguesa", Price: d("49.90"), Available: true, AllowHalf: false},
			{ID: "p-choc", CategoryID: "sweet", Name: "Chocolate", Price: d("39.90"), Available: true, AllowHalf: true},
			{ID: "p-coke", CategoryID: "drinks", Name: "Coca-Cola 2L", Price: d("12.00"), Available: true},
			{ID: "p-guar", CategoryID: "drinks", Name: "Guaraná 2L", Price: d("10.00"), Available: true},
			{ID: "p-off", CategoryID: "pizzas", Name: "Seasonal", Price: d("60.00"), Available: false},
		},
		modifiers: []catalog.Modifier{
			{ID: "m-catupiry", Name: "Catupiry crust", Price: d("15.00"), Kind: pricing.ModifierCrust, Available: true},
			{ID: "m-bacon", Name: "Bacon", Price: d("8.00"), Kind: pricing.ModifierAddon, Available: true},
			{ID: "m-olives", Name: "Olives", Price: d("3.00"), Kind: pricing.ModifierAddon, Available: true},
		},
	}
}

type fixture struct {
	svc     *service
	store   *memStore
	catalog *fakeCatalog
	promos  *fakePromos
	metrics *metrics.Checkout
}

func newFixture() *fixture {
	f := &fixture{
		store:   newMemStore(),
		catalog: menu(),
		promos: &fakePromos{
			enabled:  true,
			minValue: d("80.00"),
			giftIDs:  []string{"p-coke", "p-guar"},
			coupons: map[string]pricing.Coupon{
				"PIZZA10": {ID: "c1", Code: "PIZZA10", Kind: pricing.CouponPercent, Value: d("10"), Active: true},
				"BIG50":   {ID: "c2", Code: "BIG50", Kind: pricing.CouponFixed, Value: d("50"), Active: true, MinSubtotal: d("100")},
			},
		},
		metrics: metrics.NewCheckout(),
	}
	cashback := fakeCashback{"5511987654321": {CustomerID: "cu-1", Balance: d("20.00")}}
	f.svc = NewService(f.store, f.catalog, f.promos, cashback, Settings{DeliveryFee: d("5.00"), Location: brt}, f.metrics).(*service)
	f.svc.now = func() time.Time { return storeTime }
	return f
}

const sess = "sess-1"

// -- tests --

func TestAddItem_HalfAndHalfPricing(t *testing.T) {
	f := newFixture()
	f.promos.enabled = false

	view, err := f.svc.AddItem(context.Background(), sess, AddItemInput{
		ProductID:   "p-marg",
		SecondaryID: "p-cala",
		CrustID:     "m-catupiry",
		AddonIDs:    []string{"m-bacon", "m-olives"},
	})

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "78.90", view.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, "78.90", view.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "83.90", view.Totals.GrandTotal.StringFixed(2))
	assert.Equal(t, 1, f.store.saves)
}

func TestAddItem_MergesIdenticalConfiguration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg", SecondaryID: "p-cala", AddonIDs: []string{"m-bacon"}})
	require.NoError(t, err)
	view, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala", SecondaryID: "p-marg", AddonIDs: []string{"m-bacon"}, Quantity: 2})
	require.NoError(t, err)

	regular := regularItems(view.Items)
	require.Len(t, regular, 1)
	assert.Equal(t, 3, regular[0].Quantity)
}

func regularItems(items []pricing.LineItem) []pricing.LineItem {
	var out []pricing.LineItem
	for _, it := range items {
		if !it.Gift {
			out = append(out, it)
		}
	}
	return out
}

func TestAddItem_AddonToggle(t *testing.T) {
	f := newFixture()

	view, err := f.svc.AddItem(context.Background(), sess, AddItemInput{
		ProductID: "p-marg",
		AddonIDs:  []string{"m-bacon", "m-olives", "m-bacon"},
	})

	require.NoError(t, err)
	require.Len(t, view.Items[0].Addons, 1)
	assert.Equal(t, "m-olives", view.Items[0].Addons[0].ID)
	assert.Equal(t, "48.90", view.Items[0].UnitPrice.StringFixed(2))
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   AddItemInput
		err  error
	}{
		{"unknown product", AddItemInput{ProductID: "p-ghost"}, ErrProductNotFound},
		{"unavailable product", AddItemInput{ProductID: "p-off"}, ErrProductUnavailable},
		{"half not allowed", AddItemInput{ProductID: "p-marg", SecondaryID: "p-port"}, ErrHalfNotAllowed},
		{"half across categories", AddItemInput{ProductID: "p-marg", SecondaryID: "p-choc"}, ErrHalfNotAllowed},
		{"unknown crust", AddItemInput{ProductID: "p-marg", CrustID: "m-ghost"}, ErrModifierNotFound},
		{"addon used as crust", AddItemInput{ProductID: "p-marg", CrustID: "m-bacon"}, ErrWrongModifierKind},
		{"negative quantity", AddItemInput{ProductID: "p-marg", Quantity: -1}, ErrInvalidQuantity},
		{"too many", AddItemInput{ProductID: "p-marg", Quantity: 51}, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.AddItem(context.Background(), sess, tt.in)
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, f.store.saves)
		})
	}
}

func TestEmptySession(t *testing.T) {
	f := newFixture()

	_, err := f.svc.View(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptySession)
	assert.ErrorIs(t, f.svc.Clear(context.Background(), ""), ErrEmptySession)
}

func TestGiftPromotionLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, pricing.StateEligibleGiftPresent, view.PromotionState)
	require.Len(t, view.Items, 2)
	gift := view.Items[1]
	assert.True(t, gift.Gift)
	assert.Equal(t, "p-coke", gift.Primary.ID)
	assert.Equal(t, "91.80", view.Totals.Subtotal.StringFixed(2))
	assert.Len(t, view.GiftOptions, 2)
	assert.Contains(t, noticeKinds(view), pricing.NoticeGiftAdded)
	assert.Equal(t, uint64(1), f.metrics.GiftsGranted.Load())

	t.Run("gift line is locked", func(t *testing.T) {
		_, err := f.svc.RemoveItem(ctx, sess, gift.ID)
		assert.ErrorIs(t, err, ErrGiftItemLocked)
	})

	t.Run("choose another gift", func(t *testing.T) {
		view, err := f.svc.ChooseGift(ctx, sess, "p-guar")
		require.NoError(t, err)
		assert.Equal(t, "p-guar", view.Items[len(view.Items)-1].Primary.ID)

		again, err := f.svc.View(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, "p-guar", again.Items[len(again.Items)-1].Primary.ID)
		assert.Empty(t, again.Notices)
	})

	t.Run("gift outside the list", func(t *testing.T) {
		_, err := f.svc.ChooseGift(ctx, sess, "p-cala")
		assert.ErrorIs(t, err, ErrGiftNotEligible)
	})

	t.Run("dropping below the minimum removes it", func(t *testing.T) {
		view, err := f.svc.UpdateQuantity(ctx, sess, view.Items[0].ID, 1)
		require.NoError(t, err)

		assert.Equal(t, pricing.StateBelowThreshold, view.PromotionState)
		assert.Len(t, view.Items, 1)
		assert.Contains(t, noticeKinds(view), pricing.NoticeGiftRemoved)
		assert.Equal(t, "34.10", view.MissingForGift.StringFixed(2))
	})
}

func TestChooseGift_BelowThreshold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg"})
	require.NoError(t, err)

	_, err = f.svc.ChooseGift(ctx, sess, "p-guar")
	assert.ErrorIs(t, err, ErrGiftNotEligible)
}

func TestChooseGift_GrantsGiftAfterRuleChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg"})
	require.NoError(t, err)
	require.Zero(t, f.metrics.GiftsGranted.Load())

	// threshold lowered by the admin after the last cart update
	f.promos.minValue = d("40.00")
	view, err := f.svc.ChooseGift(ctx, sess, "p-guar")

	require.NoError(t, err)
	assert.Equal(t, "p-guar", view.Items[len(view.Items)-1].Primary.ID)
	assert.Contains(t, noticeKinds(view), pricing.NoticeGiftAdded)
	assert.Equal(t, uint64(1), f.metrics.GiftsGranted.Load())

	t.Run("swapping an existing gift is not a new grant", func(t *testing.T) {
		view, err := f.svc.ChooseGift(ctx, sess, "p-coke")
		require.NoError(t, err)
		assert.NotContains(t, noticeKinds(view), pricing.NoticeGiftAdded)
		assert.Equal(t, uint64(1), f.metrics.GiftsGranted.Load())
	})
}

func noticeKinds(v *View) []pricing.NoticeKind {
	kinds := make([]pricing.NoticeKind, 0, len(v.Notices))
	for _, n := range v.Notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("percent coupon", func(t *testing.T) {
		f := newFixture()
		f.promos.enabled = false
		_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
		require.NoError(t, err)

		view, err := f.svc.ApplyCoupon(ctx, sess, " pizza10 ")

		require.NoError(t, err)
		assert.Equal(t, "PIZZA10", view.CouponCode)
		assert.Equal(t, "5.29", view.Totals.CouponDiscount.StringFixed(2))
		assert.Equal(t, "52.61", view.Totals.GrandTotal.StringFixed(2))
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
		require.NoError(t, err)
		saves := f.store.saves

		_, err = f.svc.ApplyCoupon(ctx, sess, "NOPE")

		assert.ErrorIs(t, err, pricing.ErrInvalidCoupon)
		assert.ErrorIs(t, err, pricing.ErrCouponNotFound)
		assert.Equal(t, saves, f.store.saves)
		assert.Equal(t, uint64(1), f.metrics.CouponsRejected.Load())
	})

	t.Run("below minimum", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
		require.NoError(t, err)

		_, err = f.svc.ApplyCoupon(ctx, sess, "BIG50")
		assert.ErrorIs(t, err, pricing.ErrCouponBelowMinimum)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ApplyCoupon(ctx, sess, "PIZZA10")
		assert.ErrorIs(t, err, pricing.ErrCouponNothingToDiscount)
	})
}

func TestCouponDroppedWhenCartShrinks(t *testing.T) {
	f := newFixture()
	f.promos.enabled = false
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala", Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.ApplyCoupon(ctx, sess, "BIG50")
	require.NoError(t, err)

	view, err = f.svc.UpdateQuantity(ctx, sess, view.Items[0].ID, 1)

	require.NoError(t, err)
	assert.Empty(t, view.CouponCode)
	assert.True(t, view.Totals.CouponDiscount.IsZero())
	assert.Contains(t, noticeKinds(view), pricing.NoticeCouponNoLongerValid)

	stored, _ := f.store.Load(ctx, sess)
	assert.Empty(t, stored.CouponCode)
}

func TestCouponDeletedByAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
	require.NoError(t, err)
	_, err = f.svc.ApplyCoupon(ctx, sess, "PIZZA10")
	require.NoError(t, err)

	delete(f.promos.coupons, "PIZZA10")
	view, err := f.svc.View(ctx, sess)

	require.NoError(t, err)
	assert.Empty(t, view.CouponCode)
	assert.Contains(t, noticeKinds(view), pricing.NoticeCouponNoLongerValid)
}

func TestRemoveCoupon(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
	require.NoError(t, err)
	_, err = f.svc.ApplyCoupon(ctx, sess, "PIZZA10")
	require.NoError(t, err)

	view, err := f.svc.RemoveCoupon(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, view.CouponCode)
	assert.Empty(t, view.Notices)
}

func TestSetCashback(t *testing.T) {
	ctx := context.Background()

	t.Run("applies balance after coupon", func(t *testing.T) {
		f := newFixture()
		f.promos.enabled = false
		_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
		require.NoError(t, err)
		_, err = f.svc.ApplyCoupon(ctx, sess, "PIZZA10")
		require.NoError(t, err)

		view, err := f.svc.SetCashback(ctx, sess, true, "(11) 98765-4321")

		require.NoError(t, err)
		assert.Equal(t, "5511987654321", view.CustomerPhone)
		assert.Equal(t, "cu-1", view.CustomerID)
		assert.Equal(t, "20.00", view.Totals.CashbackApplied.StringFixed(2))
		// 52.90 - 5.29 - 20.00 + 5.00
		assert.Equal(t, "32.61", view.Totals.GrandTotal.StringFixed(2))
	})

	t.Run("phone required", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SetCashback(ctx, sess, true, "")
		assert.ErrorIs(t, err, ErrPhoneRequired)
	})

	t.Run("invalid phone", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SetCashback(ctx, sess, true, "123")
		assert.ErrorIs(t, err, customer.ErrInvalidPhone)
	})

	t.Run("turning off keeps the phone", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SetCashback(ctx, sess, true, "11987654321")
		require.NoError(t, err)

		view, err := f.svc.SetCashback(ctx, sess, false, "")
		require.NoError(t, err)
		assert.False(t, view.UseCashback)
		assert.Equal(t, "5511987654321", view.CustomerPhone)
		assert.True(t, view.Totals.CashbackApplied.IsZero())
	})
}

func TestSetFulfillment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-cala"})
	require.NoError(t, err)

	view, err := f.svc.SetFulfillment(ctx, sess, pricing.FulfillmentPickup)
	require.NoError(t, err)
	assert.True(t, view.Totals.DeliveryFee.IsZero())
	assert.Equal(t, "52.90", view.Totals.GrandTotal.StringFixed(2))

	_, err = f.svc.SetFulfillment(ctx, sess, "drone")
	assert.ErrorIs(t, err, ErrInvalidFulfillment)
}

func TestRefreshDropsUnavailableItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg", SecondaryID: "p-cala"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-port"})
	require.NoError(t, err)

	f.catalog.setAvailable("p-cala", false)
	view, err := f.svc.View(ctx, sess)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p-port", view.Items[0].Primary.ID)
	assert.Contains(t, noticeKinds(view), NoticeItemUnavailable)
}

func TestRefreshFollowsPriceChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-port"})
	require.NoError(t, err)

	f.catalog.products[2].Price = d("55.00")
	view, err := f.svc.View(ctx, sess)

	require.NoError(t, err)
	assert.Equal(t, "55.00", view.Items[0].UnitPrice.StringFixed(2))
	assert.Contains(t, noticeKinds(view), NoticePriceChanged)

	// reported once; the saved cart already carries the new price
	view, err = f.svc.View(ctx, sess)
	require.NoError(t, err)
	assert.NotContains(t, noticeKinds(view), NoticePriceChanged)
}

func TestRefreshReportsDroppedModifiers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-marg", CrustID: "m-catupiry"})
	require.NoError(t, err)

	f.catalog.products[0].Price = d("99.90")
	f.catalog.modifiers[0].Available = false
	view, err := f.svc.View(ctx, sess)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Items[0].Crust)
	assert.Equal(t, "99.90", view.Items[0].UnitPrice.StringFixed(2))
	kinds := noticeKinds(view)
	assert.Contains(t, kinds, NoticeItemChanged)
	assert.Contains(t, kinds, NoticePriceChanged)
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-port"})
	require.NoError(t, err)

	_, err = f.svc.RemoveItem(ctx, sess, "missing")
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	view, err = f.svc.RemoveItem(ctx, sess, view.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, view.Empty())

	require.NoError(t, f.svc.Clear(ctx, sess))
	_, ok := f.store.carts[sess]
	assert.False(t, ok)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, sess, AddItemInput{ProductID: "p-port"})
	require.NoError(t, err)

	view, err = f.svc.UpdateQuantity(ctx, sess, view.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.svc.UpdateQuantity(ctx, sess, "x", 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCatalogFailure(t *testing.T) {
	f := newFixture()
	f.catalog.err = errors.New("db down")

	_, err := f.svc.View(context.Background(), sess)
	assert.EqualError(t, err, "db down")
}
