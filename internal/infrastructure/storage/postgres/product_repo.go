package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/catalogs/product"
)

const productsTable = "products"

// Compile-time check that ProductRepo implements product.Repository.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var productColumns = []string{
	"id", "sku", "barcode", "name_en", "name_si", "name_ta",
	"unit", "price_retail", "stock_qty", "active",
}

// GetByID retrieves a product.
func (r *ProductRepo) GetByID(ctx context.Context, productID int64) (product.Product, error) {
	q := r.builder.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("build select: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, apperror.NewNotFound("Product", productID)
		}
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves products keyed by id. Missing ids are simply absent.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []int64) (map[int64]product.Product, error) {
	if len(productIDs) == 0 {
		return map[int64]product.Product{}, nil
	}

	q := r.builder.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	result := make(map[int64]product.Product, len(items))
	for _, p := range items {
		result[p.ID] = p
	}
	return result, nil
}

// IncrementStock applies a stock-quantity delta to the product record.
// Must run inside the return commit transaction so a rollback also
// reverts the stock adjustment.
func (r *ProductRepo) IncrementStock(ctx context.Context, productID int64, delta types.Quantity) error {
	q := r.builder.
		Update(productsTable).
		Set("stock_qty", squirrel.Expr("stock_qty + ?", delta)).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("Product", productID)
	}
	return nil
}
