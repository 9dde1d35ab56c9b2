package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/metrics"
	"pizzeria-be/internal/pricing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	NoticeItemUnavailable pricing.NoticeKind = "item_unavailable"
	NoticeItemChanged     pricing.NoticeKind = "item_changed"
	NoticePriceChanged    pricing.NoticeKind = "price_changed"
)

type CatalogReader interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
}

type PromotionReader interface {
	Rule(ctx context.Context, snap catalog.Snapshot) (pricing.PromotionRule, error)
	FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error)
}

type CashbackReader interface {
	Account(ctx context.Context, phone string) (pricing.CashbackAccount, error)
}

type Settings struct {
	DeliveryFee decimal.Decimal
	// Location is the store clock used for coupon expiry.
	Location *time.Location
}

type Service interface {
	View(ctx context.Context, sessionID string) (*View, error)
	AddItem(ctx context.Context, sessionID string, in AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	ApplyCoupon(ctx context.Context, sessionID, code string) (*View, error)
	RemoveCoupon(ctx context.Context, sessionID string) (*View, error)
	SetCashback(ctx context.Context, sessionID string, use bool, phone string) (*View, error)
	SetFulfillment(ctx context.Context, sessionID string, f pricing.Fulfillment) (*View, error)
	ChooseGift(ctx context.Context, sessionID, productID string) (*View, error)
}

type service struct {
	store    Store
	catalog  CatalogReader
	promos   PromotionReader
	cashback CashbackReader
	settings Settings
	metrics  *metrics.Checkout
	now      func() time.Time
}

func NewService(store Store, cat CatalogReader, promos PromotionReader, cashback CashbackReader, settings Settings, m *metrics.Checkout) Service {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if m == nil {
		m = metrics.NewCheckout()
	}
	return &service{
		store:    store,
		catalog:  cat,
		promos:   promos,
		cashback: cashback,
		settings: settings,
		metrics:  m,
		now:      time.Now,
	}
}

// mutation edits the cart in place. Returning an error aborts the operation
// without saving.
type mutation func(c *Cart, snap catalog.Snapshot, rule pricing.PromotionRule) error

// apply loads the session, refreshes items against the catalog, runs fn,
// reconciles promotion and coupon state and saves the result.
func (s *service) apply(ctx context.Context, sessionID, method string, fn mutation) (*View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrEmptySession
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
	)

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		log.Error("failed to load catalog", zap.Error(err))
		return nil, err
	}

	rule, err := s.promos.Rule(ctx, snap)
	if err != nil {
		log.Error("failed to load promotion rule", zap.Error(err))
		return nil, err
	}

	notices := refreshItems(c, snap)

	if fn != nil {
		if err := fn(c, snap, rule); err != nil {
			log.Info("cart operation rejected", zap.Error(err))
			return nil, err
		}
	}

	view, err := s.reconcile(ctx, c, rule)
	if err != nil {
		log.Error("failed to reconcile cart", zap.Error(err))
		return nil, err
	}
	view.Notices = append(notices, view.Notices...)

	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		log.Error("failed to save cart", zap.Error(err))
		return nil, err
	}

	if lo.ContainsBy(view.Notices, func(n pricing.Notice) bool { return n.Kind == pricing.NoticeGiftAdded }) {
		s.metrics.GiftsGranted.Inc()
		log.Info("free gift granted", zap.String("subtotal", view.Totals.Subtotal.String()))
	}

	return view, nil
}

// reconcile prices the cart and writes the promotion outcome back into it.
func (s *service) reconcile(ctx context.Context, c *Cart, rule pricing.PromotionRule) (*View, error) {
	var notices []pricing.Notice

	var coupon *pricing.Coupon
	if c.CouponCode != "" {
		found, err := s.promos.FindCoupon(ctx, c.CouponCode)
		if err != nil {
			return nil, err
		}
		if found == nil {
			notices = append(notices, pricing.Notice{
				Kind:    pricing.NoticeCouponNoLongerValid,
				Message: "coupon removed: it is no longer available",
			})
			c.CouponCode = ""
		}
		coupon = found
	}

	var account pricing.CashbackAccount
	if c.UseCashback && c.CustomerPhone != "" {
		acc, err := s.cashback.Account(ctx, c.CustomerPhone)
		if err != nil {
			return nil, err
		}
		account = acc
	}

	quote := pricing.BuildQuote(pricing.QuoteInput{
		Items:       c.Items,
		Rule:        rule,
		Coupon:      coupon,
		Cashback:    account,
		UseCashback: c.UseCashback,
		Fulfillment: c.Fulfillment,
		DeliveryFee: s.settings.DeliveryFee,
		Now:         s.now().In(s.settings.Location),
	})

	c.Items = quote.Items
	if quote.CouponError != nil {
		c.CouponCode = ""
	}

	view := &View{
		SessionID:       c.SessionID,
		Items:           quote.Items,
		ItemCount:       pricing.ItemCount(quote.Items),
		CouponCode:      c.CouponCode,
		UseCashback:     c.UseCashback,
		CustomerPhone:   c.CustomerPhone,
		CashbackBalance: account.Balance,
		Fulfillment:     c.Fulfillment,
		PromotionState:  quote.State,
		MissingForGift:  decimal.Zero,
		Totals:          quote.Totals.Rounded(),
		Notices:         append(notices, quote.Notices...),
		Quote:           quote,
		CustomerID:      account.CustomerID,
	}

	if rule.Enabled && len(rule.Products) > 0 {
		if quote.State == pricing.StateEligibleGiftPresent {
			view.GiftOptions = rule.Products
		} else {
			view.MissingForGift = rule.MinValue.Sub(quote.Totals.Subtotal).Round(2)
		}
	}

	return view, nil
}

// refreshItems re-reads products and modifiers from the catalog so prices
// follow admin edits. Items whose products left the menu are dropped, and
// every change the customer has not seen yet is reported as a notice.
func refreshItems(c *Cart, snap catalog.Snapshot) []pricing.Notice {
	var notices []pricing.Notice
	kept := make([]pricing.LineItem, 0, len(c.Items))

	for _, item := range c.Items {
		if item.Gift {
			kept = append(kept, item)
			continue
		}

		primary, ok := snap.Product(item.Primary.ID)
		if !ok || !primary.Available {
			notices = append(notices, unavailableNotice(item.Primary.Name))
			continue
		}
		item.Primary = primary.ToPricing()

		if item.Secondary != nil {
			secondary, ok := snap.Product(item.Secondary.ID)
			if !ok || !secondary.Available {
				notices = append(notices, unavailableNotice(item.Secondary.Name))
				continue
			}
			sp := secondary.ToPricing()
			item.Secondary = &sp
		}

		if item.Crust != nil {
			if m, ok := snap.Modifier(item.Crust.ID); ok && m.Available {
				crust := m.ToPricing()
				item.Crust = &crust
			} else {
				notices = append(notices, droppedModifierNotice(item, item.Crust.Name))
				item.Crust = nil
			}
		}

		addons := make([]pricing.Modifier, 0, len(item.Addons))
		for _, a := range item.Addons {
			if m, ok := snap.Modifier(a.ID); ok && m.Available {
				addons = append(addons, m.ToPricing())
			} else {
				notices = append(notices, droppedModifierNotice(item, a.Name))
			}
		}
		item.Addons = addons

		previous := item.UnitPrice
		item.Reprice()
		if !item.UnitPrice.Equal(previous) {
			msg := fmt.Sprintf("%s now costs %s (was %s)",
				item.Primary.Name, pricing.Display(item.UnitPrice), pricing.Display(previous))
			notices = append(notices, pricing.Notice{Kind: NoticePriceChanged, Message: msg})
		}
		kept = append(kept, item)
	}

	c.Items = kept
	return notices
}

func droppedModifierNotice(item pricing.LineItem, modifier string) pricing.Notice {
	return pricing.Notice{
		Kind:    NoticeItemChanged,
		Message: modifier + " is no longer available and was removed from " + item.Primary.Name,
	}
}

func unavailableNotice(name string) pricing.Notice {
	return pricing.Notice{Kind: NoticeItemUnavailable, Message: name + " is no longer available and was removed"}
}

func (s *service) View(ctx context.Context, sessionID string) (*View, error) {
	return s.apply(ctx, sessionID, "View", nil)
}

func (s *service) AddItem(ctx context.Context, sessionID string, in AddItemInput) (*View, error) {
	return s.apply(ctx, sessionID, "AddItem", func(c *Cart, snap catalog.Snapshot, _ pricing.PromotionRule) error {
		if in.Quantity == 0 {
			in.Quantity = 1
		}

		sel, err := buildSelection(snap, in)
		if err != nil {
			return err
		}

		item := pricing.NewLineItem(uuid.NewString(), sel)
		key := configKey(item)
		for i := range c.Items {
			existing := &c.Items[i]
			if existing.Gift || configKey(*existing) != key {
				continue
			}
			if existing.Quantity+item.Quantity > maxQuantity {
				return ErrInvalidQuantity
			}
			existing.Quantity += item.Quantity
			return nil
		}

		c.Items = append(c.Items, item)
		return nil
	})
}

// buildSelection validates the configurator input against the catalog.
func buildSelection(snap catalog.Snapshot, in AddItemInput) (pricing.Selection, error) {
	if in.Quantity < 1 || in.Quantity > maxQuantity {
		return pricing.Selection{}, ErrInvalidQuantity
	}

	primary, err := availableProduct(snap, in.ProductID)
	if err != nil {
		return pricing.Selection{}, err
	}

	sel := pricing.Selection{
		Primary:  primary.ToPricing(),
		Quantity: in.Quantity,
		Notes:    strings.TrimSpace(in.Notes),
	}

	if in.SecondaryID != "" && in.SecondaryID != in.ProductID {
		secondary, err := availableProduct(snap, in.SecondaryID)
		if err != nil {
			return pricing.Selection{}, err
		}
		if !primary.AllowHalf || !secondary.AllowHalf || primary.CategoryID != secondary.CategoryID {
			return pricing.Selection{}, ErrHalfNotAllowed
		}
		sp := secondary.ToPricing()
		sel.Secondary = &sp
	}

	if in.CrustID != "" {
		crust, err := modifier(snap, in.CrustID, pricing.ModifierCrust)
		if err != nil {
			return pricing.Selection{}, err
		}
		sel.Crust = &crust
	}

	for _, id := range in.AddonIDs {
		addon, err := modifier(snap, id, pricing.ModifierAddon)
		if err != nil {
			return pricing.Selection{}, err
		}
		sel.Addons = pricing.ToggleAddon(sel.Addons, addon)
	}

	return sel, nil
}

func availableProduct(snap catalog.Snapshot, id string) (catalog.Product, error) {
	p, ok := snap.Product(id)
	if !ok {
		return catalog.Product{}, ErrProductNotFound
	}
	if !p.Available {
		return catalog.Product{}, ErrProductUnavailable
	}
	return p, nil
}

func modifier(snap catalog.Snapshot, id string, kind pricing.ModifierKind) (pricing.Modifier, error) {
	m, ok := snap.Modifier(id)
	if !ok || !m.Available {
		return pricing.Modifier{}, ErrModifierNotFound
	}
	if m.Kind != kind {
		return pricing.Modifier{}, ErrWrongModifierKind
	}
	return m.ToPricing(), nil
}

// configKey identifies identical configurations so re-adding them merges
// quantities. Half order does not matter.
func configKey(item pricing.LineItem) string {
	halves := []string{item.Primary.ID}
	if item.Secondary != nil {
		halves = append(halves, item.Secondary.ID)
	}
	sort.Strings(halves)

	crust := ""
	if item.Crust != nil {
		crust = item.Crust.ID
	}

	addons := lo.Map(item.Addons, func(m pricing.Modifier, _ int) string { return m.ID })
	sort.Strings(addons)

	return strings.Join([]string{
		strings.Join(halves, "+"),
		crust,
		strings.Join(addons, ","),
		item.Notes,
	}, "|")
}

func findItem(c *Cart, itemID string) (int, error) {
	_, idx, ok := lo.FindIndexOf(c.Items, func(li pricing.LineItem) bool { return li.ID == itemID })
	if !ok {
		return -1, ErrCartItemNotFound
	}
	if c.Items[idx].Gift {
		return -1, ErrGiftItemLocked
	}
	return idx, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*View, error) {
	return s.apply(ctx, sessionID, "UpdateQuantity", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		idx, err := findItem(c, itemID)
		if err != nil {
			return err
		}
		if quantity > maxQuantity {
			return ErrInvalidQuantity
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return nil
		}
		c.Items[idx].Quantity = quantity
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, itemID string) (*View, error) {
	return s.apply(ctx, sessionID, "RemoveItem", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		idx, err := findItem(c, itemID)
		if err != nil {
			return err
		}
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrEmptySession
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart", zap.Error(err))
		return err
	}
	return nil
}

// ApplyCoupon validates the code against the current subtotal before storing it.
func (s *service) ApplyCoupon(ctx context.Context, sessionID, code string) (*View, error) {
	return s.apply(ctx, sessionID, "ApplyCoupon", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		coupon, err := s.promos.FindCoupon(ctx, code)
		if err != nil {
			return err
		}

		subtotal := pricing.Subtotal(c.Items)
		if _, err := pricing.CheckCoupon(coupon, subtotal, s.now().In(s.settings.Location)); err != nil {
			s.metrics.CouponsRejected.Inc()
			return err
		}

		c.CouponCode = coupon.Code
		return nil
	})
}

func (s *service) RemoveCoupon(ctx context.Context, sessionID string) (*View, error) {
	return s.apply(ctx, sessionID, "RemoveCoupon", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		c.CouponCode = ""
		return nil
	})
}

// SetCashback toggles the cashback checkbox. The phone identifies the account
// and is kept for checkout.
func (s *service) SetCashback(ctx context.Context, sessionID string, use bool, phone string) (*View, error) {
	return s.apply(ctx, sessionID, "SetCashback", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		if strings.TrimSpace(phone) != "" {
			normalized, err := customer.NormalizePhone(phone)
			if err != nil {
				return err
			}
			c.CustomerPhone = normalized
		}
		if use && c.CustomerPhone == "" {
			return ErrPhoneRequired
		}
		c.UseCashback = use
		return nil
	})
}

func (s *service) SetFulfillment(ctx context.Context, sessionID string, f pricing.Fulfillment) (*View, error) {
	return s.apply(ctx, sessionID, "SetFulfillment", func(c *Cart, _ catalog.Snapshot, _ pricing.PromotionRule) error {
		if f != pricing.FulfillmentDelivery && f != pricing.FulfillmentPickup {
			return ErrInvalidFulfillment
		}
		c.Fulfillment = f
		return nil
	})
}

func (s *service) ChooseGift(ctx context.Context, sessionID, productID string) (*View, error) {
	granted := false
	view, err := s.apply(ctx, sessionID, "ChooseGift", func(c *Cart, _ catalog.Snapshot, rule pricing.PromotionRule) error {
		// the gift may only be granted by this very evaluation
		promo := pricing.EvaluatePromotion(c.Items, rule)

		items, err := pricing.ChooseGift(promo.Items, rule, productID)
		if errors.Is(err, pricing.ErrNoGiftInCart) {
			return ErrGiftNotEligible
		}
		if err != nil {
			return err
		}
		granted = promo.Added
		c.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reconcile already sees the gift, so the grant is reported here
	if granted {
		view.Notices = append(view.Notices, pricing.Notice{Kind: pricing.NoticeGiftAdded, Message: "a free gift was added to your cart"})
		s.metrics.GiftsGranted.Inc()
	}
	return view, nil
}
