package catalog

import (
	"context"
	"strings"
	"time"

	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/pricing"
	"pizzeria-be/internal/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Service interface {
	// storefront
	Menu(ctx context.Context) ([]MenuSection, error)
	AvailableModifiers(ctx context.Context) ([]Modifier, error)
	Snapshot(ctx context.Context) (Snapshot, error)

	// back-office
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*Category, error)
	ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	DeleteProduct(ctx context.Context, id string) error
	ListModifiers(ctx context.Context) ([]Modifier, error)
	CreateModifier(ctx context.Context, in ModifierInput) (*Modifier, error)
	UpdateModifier(ctx context.Context, id string, in ModifierInput) (*Modifier, error)
	DeleteModifier(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Menu groups available products under their category, in category order.
// Empty categories are left out.
func (s *service) Menu(ctx context.Context) ([]MenuSection, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Menu"),
	)
	start := time.Now()

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	products, err := s.repo.ListProducts(ctx, ProductQueryOptions{OnlyAvailable: true})
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	byCategory := lo.GroupBy(products, func(p Product) string { return p.CategoryID })

	sections := make([]MenuSection, 0, len(categories))
	for _, c := range categories {
		items := byCategory[c.ID]
		if len(items) == 0 {
			continue
		}
		sections = append(sections, MenuSection{Category: c, Products: items})
	}

	log.Info("menu loaded",
		zap.Int("sections", len(sections)),
		zap.Int("products", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return sections, nil
}

func (s *service) AvailableModifiers(ctx context.Context) ([]Modifier, error) {
	return s.repo.ListModifiers(ctx, true)
}

// Snapshot loads the whole catalog, unavailable entries included, so the cart
// can tell an unknown id apart from one that is switched off.
func (s *service) Snapshot(ctx context.Context) (Snapshot, error) {
	products, err := s.repo.ListProducts(ctx, ProductQueryOptions{})
	if err != nil {
		return Snapshot{}, err
	}
	modifiers, err := s.repo.ListModifiers(ctx, false)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(products, modifiers), nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	return s.repo.CreateCategory(ctx, name, utils.Slugify(name), in.Position)
}

func (s *service) ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error) {
	return s.repo.ListProducts(ctx, opts)
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	in, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.String("product_id", p.ID),
		zap.String("category_id", p.CategoryID),
		zap.String("price", pricing.Display(p.Price)),
	)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if id == "" {
		return nil, ErrProductNotFound
	}
	in, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateProduct(ctx, id, in)
}

func (s *service) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := s.repo.SetProductAvailability(ctx, id, available); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product availability changed",
		zap.String("product_id", id),
		zap.Bool("available", available),
	)
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) ListModifiers(ctx context.Context) ([]Modifier, error) {
	return s.repo.ListModifiers(ctx, false)
}

func (s *service) CreateModifier(ctx context.Context, in ModifierInput) (*Modifier, error) {
	in, err := validateModifier(in)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateModifier(ctx, in)
}

func (s *service) UpdateModifier(ctx context.Context, id string, in ModifierInput) (*Modifier, error) {
	in, err := validateModifier(in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateModifier(ctx, id, in)
}

func (s *service) DeleteModifier(ctx context.Context, id string) error {
	return s.repo.DeleteModifier(ctx, id)
}

func (s *service) validateProduct(ctx context.Context, in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	if in.Name == "" {
		return in, ErrInvalidName
	}
	if in.Price.IsNegative() {
		return in, ErrInvalidPrice
	}
	if in.CategoryID == "" {
		return in, ErrCategoryRequired
	}

	exists, err := s.repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return in, err
	}
	if !exists {
		return in, ErrCategoryNotFound
	}
	return in, nil
}

func validateModifier(in ModifierInput) (ModifierInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrInvalidName
	}
	if in.Price.IsNegative() {
		return in, ErrInvalidPrice
	}
	if in.Kind != pricing.ModifierCrust && in.Kind != pricing.ModifierAddon {
		return in, ErrInvalidModifierKind
	}
	return in, nil
}
