package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
)

const movementsTable = "inventory_movements"

// Compile-time check that InventoryRepo implements inventory.Repository.
var _ inventory.Repository = (*InventoryRepo)(nil)

// InventoryRepo implements the inventory movement register.
type InventoryRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txm *TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements.
func (r *InventoryRepo) CreateMovements(ctx context.Context, movements []inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	q := r.builder.
		Insert(movementsTable).
		Columns("line_id", "product_id", "quantity",
			"source_type", "source_line_id", "note", "created_at")

	for _, m := range movements {
		q = q.Values(m.LineID, m.ProductID, m.Quantity,
			m.SourceType, m.SourceLineID, m.Note, m.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// ListByProduct returns movement history for a product, newest first.
func (r *InventoryRepo) ListByProduct(ctx context.Context, productID int64, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	q := r.builder.
		Select("line_id", "product_id", "quantity",
			"source_type", "source_line_id", "note", "created_at").
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var movements []inventory.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// ListBySource returns the movements caused by a given source line.
func (r *InventoryRepo) ListBySource(ctx context.Context, sourceType inventory.SourceType, sourceLineID id.ID) ([]inventory.Movement, error) {
	q := r.builder.
		Select("line_id", "product_id", "quantity",
			"source_type", "source_line_id", "note", "created_at").
		From(movementsTable).
		Where(squirrel.Eq{"source_type": sourceType, "source_line_id": sourceLineID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var movements []inventory.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}
