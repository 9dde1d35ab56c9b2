package customer

import (
	"context"
	"errors"

	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/pricing"
	"pizzeria-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Account(ctx context.Context, phone string) (pricing.CashbackAccount, error)
	Get(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// NormalizePhone validates a Brazilian phone number and returns its
// canonical digits-only form.
func NormalizePhone(phone string) (string, error) {
	normalized := utils.NormalizePhoneBR(phone)
	if len(normalized) < 12 || len(normalized) > 13 {
		return "", ErrInvalidPhone
	}
	return normalized, nil
}

// Account returns the cashback account for a phone. Unknown customers have a
// zero balance and an empty CustomerID.
func (s *service) Account(ctx context.Context, phone string) (pricing.CashbackAccount, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return pricing.CashbackAccount{}, err
	}

	c, err := s.repo.FindByPhone(ctx, normalized)
	if errors.Is(err, ErrCustomerNotFound) {
		return pricing.CashbackAccount{Balance: decimal.Zero}, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("cashback lookup failed",
			zap.String("layer", "service"),
			zap.String("method", "Account"),
			zap.Error(err),
		)
		return pricing.CashbackAccount{}, err
	}

	return pricing.CashbackAccount{CustomerID: c.ID, Balance: c.CashbackBalance}, nil
}

func (s *service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *service) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdjustBalance"),
		zap.String("customer_id", id),
	)

	c, err := s.repo.AdjustBalance(ctx, id, delta.Round(2))
	if err != nil {
		log.Warn("balance adjustment rejected", zap.String("delta", delta.String()), zap.Error(err))
		return nil, err
	}

	log.Info("cashback balance adjusted",
		zap.String("delta", delta.String()),
		zap.String("balance", c.CashbackBalance.String()),
	)
	return c, nil
}
