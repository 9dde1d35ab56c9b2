package promotion

import (
	"context"
	"errors"
	"strings"

	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/pricing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	// storefront
	FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error)
	Rule(ctx context.Context, snap catalog.Snapshot) (pricing.PromotionRule, error)

	// back-office
	ListCoupons(ctx context.Context) ([]Coupon, error)
	CreateCoupon(ctx context.Context, in CouponInput) (*Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error
	GetRule(ctx context.Context) (*GiftRule, error)
	UpdateRule(ctx context.Context, rule GiftRule, snap catalog.Snapshot) (*GiftRule, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// FindCoupon returns nil without error when no coupon has that code.
func (s *service) FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	code = pricing.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}

	c, err := s.repo.GetCouponByCode(ctx, code)
	if errors.Is(err, ErrCouponNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("coupon lookup failed",
			zap.String("layer", "service"),
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, err
	}

	pc := c.ToPricing()
	return &pc, nil
}

// Rule resolves the stored gift rule against the catalog. Unknown or
// unavailable gift products are dropped.
func (s *service) Rule(ctx context.Context, snap catalog.Snapshot) (pricing.PromotionRule, error) {
	stored, err := s.repo.GetRule(ctx)
	if err != nil {
		return pricing.PromotionRule{}, err
	}

	return pricing.PromotionRule{
		Enabled:  stored.Enabled,
		MinValue: stored.MinValue,
		Products: snap.PricingProducts(stored.ProductIDs),
	}, nil
}

func (s *service) ListCoupons(ctx context.Context) ([]Coupon, error) {
	return s.repo.ListCoupons(ctx)
}

func (s *service) CreateCoupon(ctx context.Context, in CouponInput) (*Coupon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCoupon"),
	)

	in.Code = pricing.NormalizeCode(in.Code)
	if err := validateCoupon(in); err != nil {
		log.Warn("invalid coupon input", zap.String("code", in.Code), zap.Error(err))
		return nil, err
	}

	c, err := s.repo.CreateCoupon(ctx, in)
	if err != nil {
		return nil, err
	}

	log.Info("coupon created", zap.String("coupon_id", c.ID), zap.String("code", c.Code))
	return c, nil
}

var decimalHundred = decimal.NewFromInt(100)

func validateCoupon(in CouponInput) error {
	if in.Code == "" || strings.ContainsAny(in.Code, " \t") {
		return ErrInvalidCode
	}
	if in.Kind != pricing.CouponPercent && in.Kind != pricing.CouponFixed {
		return ErrInvalidKind
	}
	if !in.Value.IsPositive() {
		return ErrInvalidValue
	}
	if in.Kind == pricing.CouponPercent && in.Value.GreaterThan(decimalHundred) {
		return ErrPercentOutOfRange
	}
	if in.MinSubtotal.IsNegative() {
		return ErrInvalidMinimum
	}
	return nil
}

func (s *service) SetCouponActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetCouponActive(ctx, id, active); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("coupon toggled", zap.String("coupon_id", id), zap.Bool("active", active))
	return nil
}

func (s *service) DeleteCoupon(ctx context.Context, id string) error {
	return s.repo.DeleteCoupon(ctx, id)
}

func (s *service) GetRule(ctx context.Context) (*GiftRule, error) {
	return s.repo.GetRule(ctx)
}

// UpdateRule replaces the storewide rule. Every gift must exist in the catalog.
func (s *service) UpdateRule(ctx context.Context, rule GiftRule, snap catalog.Snapshot) (*GiftRule, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateRule"),
	)

	if rule.MinValue.IsNegative() {
		return nil, ErrInvalidMinimum
	}

	rule.ProductIDs = lo.Uniq(lo.Compact(rule.ProductIDs))
	for _, id := range rule.ProductIDs {
		if _, ok := snap.Product(id); !ok {
			log.Warn("unknown gift product", zap.String("product_id", id))
			return nil, ErrUnknownGift
		}
	}

	saved, err := s.repo.SaveRule(ctx, rule)
	if err != nil {
		return nil, err
	}

	log.Info("promotion rule updated",
		zap.Bool("enabled", saved.Enabled),
		zap.String("min_value", saved.MinValue.String()),
		zap.Int("gifts", len(saved.ProductIDs)),
	)
	return saved, nil
}
