package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/shopspring/decimal"
)

// Querier is the part of pgxpool.Pool the repositories use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CatalogRepository struct {
	db Querier
}

func NewCatalogRepository(db Querier) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const productColumns = `p.id, p.name, p.price::text, p.stock, p."categoryId"`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanProduct(row pgx.Row, extra ...any) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	dest := append([]any{&p.ID, &p.Name, &price, &p.Stock, &p.CategoryID}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q of product %d: %w", price, p.ID, err)
	}
	p.Price = d
	return p, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *CatalogRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		return scanProduct(row)
	})
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM "Category" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Category])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) CategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM "Category" WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return c, nil
}

// CategoryByName compares names case-insensitively.
func (r *CatalogRepository) CategoryByName(ctx context.Context, name string) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM "Category" WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %q: %w", name, notFound(err))
	}
	return c, nil
}

func (r *CatalogRepository) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	products, err := r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM "Product" p WHERE p."categoryId" = $1 ORDER BY p.id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	return products, nil
}

// ProductsByName returns the products whose name contains fragment, ignoring
// case, in catalog order.
func (r *CatalogRepository) ProductsByName(ctx context.Context, fragment string) ([]domain.Product, error) {
	products, err := r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM "Product" p
		 WHERE p.name ILIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY p.id`, escapeLike(fragment))
	if err != nil {
		return nil, fmt.Errorf("find products %q: %w", fragment, err)
	}
	return products, nil
}

func (r *CatalogRepository) ProductNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM "Product" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query product names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan product names: %w", err)
	}
	return names, nil
}

// MostSoldByCategory ranks the products of a category by ordered units.
func (r *CatalogRepository) MostSoldByCategory(ctx context.Context, categoryID int64) (domain.ProductSales, error) {
	var total int64
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+`, SUM(op.quantity)::bigint AS total
		 FROM "Product" p
		 JOIN "OrderProducts" op ON op."productId" = p.id
		 WHERE p."categoryId" = $1
		 GROUP BY p.id
		 ORDER BY total DESC, p.id
		 LIMIT 1`, categoryID)
	p, err := scanProduct(row, &total)
	if err != nil {
		return domain.ProductSales{}, fmt.Errorf("get most sold of category %d: %w", categoryID, notFound(err))
	}
	return domain.ProductSales{Product: p, TotalQuantity: total}, nil
}

func (r *CatalogRepository) CheapestByCategory(ctx context.Context, categoryID int64) (domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM "Product" p
		 WHERE p."categoryId" = $1
		 ORDER BY p.price, p.id
		 LIMIT 1`, categoryID)
	p, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get cheapest of category %d: %w", categoryID, notFound(err))
	}
	return p, nil
}

// MostOrdered ranks products by the number of order lines they appear in.
func (r *CatalogRepository) MostOrdered(ctx context.Context) (domain.Product, error) {
	var count int64
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+`, COUNT(op.id) AS orders
		 FROM "Product" p
		 JOIN "OrderProducts" op ON op."productId" = p.id
		 GROUP BY p.id
		 ORDER BY orders DESC, p.id
		 LIMIT 1`)
	p, err := scanProduct(row, &count)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get most ordered product: %w", notFound(err))
	}
	return p, nil
}
