package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"pizzeria-be/internal/cart"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/events"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/metrics"
	"pizzeria-be/internal/pricing"
	"pizzeria-be/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartReader interface {
	View(ctx context.Context, sessionID string) (*cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

type Settings struct {
	StoreName     string
	StoreWhatsApp string
	// CashbackRate is the percentage of the paid total credited back.
	CashbackRate decimal.Decimal
	Location     *time.Location
	// Topic receives order.placed events.
	Topic string
}

type Service interface {
	Checkout(ctx context.Context, sessionID string, in CheckoutInput) (*CheckoutResult, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, to Status) (*Order, error)
}

type service struct {
	repo      Repository
	carts     CartReader
	publisher events.Publisher
	settings  Settings
	metrics   *metrics.Checkout
	now       func() time.Time
}

func NewService(repo Repository, carts CartReader, publisher events.Publisher, settings Settings, m *metrics.Checkout) Service {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.Topic == "" {
		settings.Topic = events.TopicOrderPlaced
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if m == nil {
		m = metrics.NewCheckout()
	}
	return &service{
		repo:      repo,
		carts:     carts,
		publisher: publisher,
		settings:  settings,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *service) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)
	timer := metrics.StartTimer()

	view, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return nil, ErrEmptyCart
	}
	// Anything reconcile had to change must be seen by the customer first.
	if len(view.Notices) > 0 {
		log.Info("checkout blocked by cart notices", zap.Int("notice_count", len(view.Notices)))
		return nil, ErrCartChanged
	}

	o, err := s.buildOrder(sessionID, view, in)
	if err != nil {
		log.Warn("checkout rejected", zap.Error(err))
		return nil, err
	}

	settlement := Settlement{Debit: o.Totals.CashbackApplied, Credit: o.CashbackEarned}
	if err := s.repo.CreateOrderTx(ctx, o, settlement); err != nil {
		s.metrics.OrdersFailed.Inc()
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	log = log.With(zap.String("order_id", o.ID), zap.String("order_code", o.Code))

	if err := s.publisher.Publish(ctx, s.settings.Topic, o.ID, placedEvent(o)); err != nil {
		log.Error("failed to publish order event", zap.Error(err))
	}

	text := RenderMessage(s.settings.StoreName, o)
	result := &CheckoutResult{
		Order:       o,
		Message:     text,
		WhatsAppURL: WhatsAppURL(s.settings.StoreWhatsApp, text),
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Error("failed to clear cart after checkout", zap.Error(err))
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.ObserveCheckout(timer.Duration())

	log.Info("order placed",
		zap.String("grand_total", pricing.Display(o.Totals.GrandTotal)),
		zap.Int("item_count", len(o.Items)),
	)
	return result, nil
}

func (s *service) buildOrder(sessionID string, view *cart.View, in CheckoutInput) (*Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, ErrNameRequired
	}

	phone, err := customer.NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	totals := view.Quote.Totals.Rounded()
	if totals.CashbackApplied.IsPositive() && view.CustomerPhone != phone {
		return nil, ErrCashbackPhoneChanged
	}

	var address *Address
	if view.Fulfillment == pricing.FulfillmentDelivery {
		if in.Address == nil ||
			strings.TrimSpace(in.Address.Street) == "" ||
			strings.TrimSpace(in.Address.Number) == "" ||
			strings.TrimSpace(in.Address.Neighborhood) == "" {
			return nil, ErrAddressRequired
		}
		a := *in.Address
		a.PostalCode = utils.DigitsOnly(a.PostalCode)
		address = &a
	}

	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	var changeFor *decimal.Decimal
	if in.PaymentMethod == PaymentCash && in.ChangeFor != nil && in.ChangeFor.IsPositive() {
		if in.ChangeFor.LessThan(totals.GrandTotal) {
			return nil, ErrInsufficientChange
		}
		c := in.ChangeFor.Round(2)
		changeFor = &c
	}

	couponCode := ""
	if view.Quote.Coupon != nil {
		couponCode = view.Quote.Coupon.Code
	}

	now := s.now().In(s.settings.Location)
	return &Order{
		ID:             uuid.NewString(),
		Code:           utils.GenerateOrderCode(now),
		SessionID:      sessionID,
		CustomerName:   name,
		Phone:          phone,
		Fulfillment:    view.Fulfillment,
		Address:        address,
		PaymentMethod:  in.PaymentMethod,
		ChangeFor:      changeFor,
		Notes:          strings.TrimSpace(in.Notes),
		Items:          lo.Map(view.Quote.Items, toOrderItem),
		Totals:         totals,
		CouponCode:     couponCode,
		CashbackEarned: pricing.EarnedCashback(totals.GrandTotal, s.settings.CashbackRate),
		Status:         StatusReceived,
	}, nil
}

func toOrderItem(li pricing.LineItem, _ int) OrderItem {
	item := OrderItem{
		ID:          uuid.NewString(),
		ProductID:   li.Primary.ID,
		ProductName: li.Primary.Name,
		Addons:      lo.Map(li.Addons, func(m pricing.Modifier, _ int) string { return m.Name }),
		Notes:       li.Notes,
		Quantity:    li.Quantity,
		UnitPrice:   li.UnitPrice.Round(2),
		LineTotal:   li.LineTotal().Round(2),
		Gift:        li.Gift,
	}
	if li.Secondary != nil {
		item.SecondaryID = li.Secondary.ID
		item.SecondaryName = li.Secondary.Name
	}
	if li.Crust != nil {
		item.CrustName = li.Crust.Name
	}
	return item
}

func placedEvent(o *Order) OrderPlaced {
	return OrderPlaced{
		OrderID:       o.ID,
		Code:          o.Code,
		CustomerID:    o.CustomerID,
		Fulfillment:   o.Fulfillment,
		PaymentMethod: o.PaymentMethod,
		ItemCount:     lo.SumBy(o.Items, func(i OrderItem) int { return i.Quantity }),
		GrandTotal:    pricing.Display(o.Totals.GrandTotal),
		CouponCode:    o.CouponCode,
		PlacedAt:      o.CreatedAt,
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	filter.Search = strings.TrimSpace(filter.Search)

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
	)

	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(to, o.Fulfillment) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatusTx(ctx, o, to); err != nil {
		if !errors.Is(err, ErrStatusConflict) {
			log.Error("failed to update order status", zap.Error(err))
		}
		return nil, err
	}

	log.Info("order status changed", zap.String("from", string(o.Status)), zap.String("to", string(to)))
	o.Status = to
	o.UpdatedAt = s.now()
	return o, nil
}
