package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pizzeria-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name, slug string, position int) (*Category, error)
	CategoryExists(ctx context.Context, id string) (bool, error)

	ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	SetProductAvailability(ctx context.Context, id string, available bool) error
	DeleteProduct(ctx context.Context, id string) error

	ListModifiers(ctx context.Context, onlyAvailable bool) ([]Modifier, error)
	CreateModifier(ctx context.Context, in ModifierInput) (*Modifier, error)
	UpdateModifier(ctx context.Context, id string, in ModifierInput) (*Modifier, error)
	DeleteModifier(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const (
	productColumns = `id, category_id, name, description, price, image_url, available, allow_half, created_at, updated_at`

	modifierColumns = `id, name, price, kind, available`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Available,
		&p.AllowHalf,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanModifier(row scanner) (*Modifier, error) {
	var m Modifier
	if err := row.Scan(&m.ID, &m.Name, &m.Price, &m.Kind, &m.Available); err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

// ---------- CATEGORIES ----------

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "ListCategories"))

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, position
		FROM categories
		ORDER BY position ASC, name ASC
	`)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Position); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, name, slug string, position int) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, position)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, position
	`, name, slug, position).Scan(&c.ID, &c.Name, &c.Slug, &c.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		logger.FromCtx(ctx).Error("db: failed to insert category",
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}

func (r *repository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// ---------- PRODUCTS ----------

func (r *repository) ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "ListProducts"),
		zap.String("category_id", opts.CategoryID),
		zap.String("search", opts.Search),
		zap.Bool("only_available", opts.OnlyAvailable),
	)

	query := `SELECT ` + productColumns + ` FROM products`

	where := []string{}
	args := []any{}

	if opts.CategoryID != "" {
		args = append(args, opts.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if opts.OnlyAvailable {
		where = append(where, "available = TRUE")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC"

	log.Debug("Executing ListProducts query",
		zap.String("query", query),
		zap.Any("args", args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return products, nil
}

func (r *repository) GetProductByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (category_id, name, description, price, image_url, available, allow_half)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		in.CategoryID, in.Name, in.Description, in.Price, in.ImageURL, in.Available, in.AllowHalf,
	)
	p, err := scanProduct(row)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert product",
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET category_id = $1,
		    name = $2,
		    description = $3,
		    price = $4,
		    image_url = $5,
		    available = $6,
		    allow_half = $7,
		    updated_at = NOW()
		WHERE id = $8
		RETURNING `+productColumns,
		in.CategoryID, in.Name, in.Description, in.Price, in.ImageURL, in.Available, in.AllowHalf, id,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) SetProductAvailability(ctx context.Context, id string, available bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET available = $1, updated_at = NOW()
		WHERE id = $2
	`, available, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrProductNotFound)
}

func (r *repository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrProductNotFound)
}

// ---------- MODIFIERS ----------

func (r *repository) ListModifiers(ctx context.Context, onlyAvailable bool) ([]Modifier, error) {
	query := `SELECT ` + modifierColumns + ` FROM modifiers`
	if onlyAvailable {
		query += ` WHERE available = TRUE`
	}
	query += ` ORDER BY kind ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListModifiers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var modifiers []Modifier
	for rows.Next() {
		m, err := scanModifier(rows)
		if err != nil {
			return nil, err
		}
		modifiers = append(modifiers, *m)
	}
	return modifiers, rows.Err()
}

func (r *repository) CreateModifier(ctx context.Context, in ModifierInput) (*Modifier, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO modifiers (name, price, kind, available)
		VALUES ($1, $2, $3, $4)
		RETURNING `+modifierColumns,
		in.Name, in.Price, in.Kind, in.Available,
	)
	return scanModifier(row)
}

func (r *repository) UpdateModifier(ctx context.Context, id string, in ModifierInput) (*Modifier, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE modifiers
		SET name = $1, price = $2, kind = $3, available = $4
		WHERE id = $5
		RETURNING `+modifierColumns,
		in.Name, in.Price, in.Kind, in.Available, id,
	)
	m, err := scanModifier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModifierNotFound
	}
	return m, err
}

func (r *repository) DeleteModifier(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM modifiers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrModifierNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
