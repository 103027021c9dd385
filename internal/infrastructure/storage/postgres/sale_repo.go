package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
)

const (
	salesTable     = "sales"
	saleLinesTable = "sale_lines"
)

// Compile-time check that SaleRepo implements sales.Repository.
var _ sales.Repository = (*SaleRepo)(nil)

// SaleRepo implements sales.Repository. Strictly read-only: sales are
// written by the checkout flow, never here.
type SaleRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a sale with its lines.
func (r *SaleRepo) GetByID(ctx context.Context, saleID int64) (*sales.Sale, error) {
	q := r.builder.
		Select("id", "invoice_no", "datetime", "cashier_id", "customer_id",
			"price_tier", "gross_total", "discount_total", "tax_total", "net_total",
			"language", "terminal_name").
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sale sales.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("Sale", saleID)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.loadLines(ctx, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByReference resolves an invoice number or scanned receipt barcode.
// Receipt barcodes encode the invoice number verbatim, so both resolve
// through the same column.
func (r *SaleRepo) FindByReference(ctx context.Context, ref string) (*sales.Sale, error) {
	q := r.builder.
		Select("id", "invoice_no", "datetime", "cashier_id", "customer_id",
			"price_tier", "gross_total", "discount_total", "tax_total", "net_total",
			"language", "terminal_name").
		From(salesTable).
		Where(squirrel.Eq{"invoice_no": ref})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sale sales.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("Sale", ref)
		}
		return nil, fmt.Errorf("find sale: %w", err)
	}

	if err := r.loadLines(ctx, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// loadLines fetches sale lines with product names denormalized from the
// catalog, in the sale's display language where available.
func (r *SaleRepo) loadLines(ctx context.Context, sale *sales.Sale) error {
	nameExpr := "p.name_en"
	switch sale.Language {
	case "si":
		nameExpr = "COALESCE(NULLIF(p.name_si, ''), p.name_en)"
	case "ta":
		nameExpr = "COALESCE(NULLIF(p.name_ta, ''), p.name_en)"
	}

	q := r.builder.
		Select("l.id", "l.sale_id", "l.product_id",
			nameExpr+" AS product_name",
			"l.qty", "l.unit_price", "l.line_discount", "l.tax", "l.total").
		From(saleLinesTable + " l").
		Join("products p ON p.id = l.product_id").
		Where(squirrel.Eq{"l.sale_id": sale.ID}).
		OrderBy("l.id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines select: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sale.Lines, sql, args...); err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}
	return nil
}
