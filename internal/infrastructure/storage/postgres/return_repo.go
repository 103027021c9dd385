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
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
)

const (
	returnsTable     = "returns"
	returnLinesTable = "return_lines"
)

// Compile-time check that ReturnRepo implements returns.Repository.
var _ returns.Repository = (*ReturnRepo)(nil)

// ReturnRepo implements returns.Repository. Returns are append-only;
// there is no update or delete path.
type ReturnRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txm *TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LockSale locks the sale header row for the duration of the current
// transaction. Concurrent committers for the same sale queue here, so each
// one derives the ledger only after the previous one has committed or
// rolled back.
func (r *ReturnRepo) LockSale(ctx context.Context, saleID int64) error {
	q := r.builder.
		Select("id").
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lock select: %w", err)
	}

	var id int64
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("Sale", saleID)
		}
		return fmt.Errorf("lock sale: %w", err)
	}
	return nil
}

// ledgerRow is the aggregation row for LedgerForSale.
type ledgerRow struct {
	SaleLineID int64 `db:"sale_line_id"`
	Qty        int64 `db:"qty"`
}

// LedgerForSale derives the returned-quantity ledger by folding over the
// committed return lines of a sale. Always a fresh aggregation; the
// result is never cached anywhere.
func (r *ReturnRepo) LedgerForSale(ctx context.Context, saleID int64) (returns.Ledger, error) {
	q := r.builder.
		Select("rl.sale_line_id", "SUM(rl.qty)::bigint AS qty").
		From(returnLinesTable + " rl").
		Join(returnsTable + " rt ON rt.id = rl.return_id").
		Where(squirrel.Eq{"rt.sale_id": saleID}).
		GroupBy("rl.sale_line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger select: %w", err)
	}

	var rows []ledgerRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("derive ledger: %w", err)
	}

	ledger := make(returns.Ledger, len(rows))
	for _, row := range rows {
		ledger[row.SaleLineID] = types.Quantity(row.Qty)
	}
	return ledger, nil
}

// CreateHeader inserts the return header and fills r.ID from the sequence.
func (r *ReturnRepo) CreateHeader(ctx context.Context, ret *returns.Return) error {
	q := r.builder.
		Insert(returnsTable).
		Columns("sale_id", "datetime", "cashier_id", "manager_id", "refund_method",
			"refund_cash", "refund_card", "refund_wallet", "refund_store_credit",
			"reason_summary", "language", "terminal_name", "created_at").
		Values(ret.SaleID, ret.Datetime, ret.CashierID, ret.ManagerID, ret.RefundMethod,
			ret.Payments.Cash, ret.Payments.Card, ret.Payments.Wallet, ret.Payments.StoreCredit,
			ret.ReasonSummary, ret.Language, ret.TerminalName, ret.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&ret.ID); err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// CreateLines batch inserts return lines.
func (r *ReturnRepo) CreateLines(ctx context.Context, returnID int64, lines []returns.ReturnLine) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.
		Insert(returnLinesTable).
		Columns("line_id", "return_id", "sale_line_id", "product_id",
			"qty", "unit_price", "line_refund", "reason_code", "restock")

	for _, l := range lines {
		q = q.Values(l.LineID, returnID, l.SaleLineID, l.ProductID,
			l.Qty, l.UnitPrice, l.LineRefund, l.ReasonCode, l.Restock)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert return lines: %w", err)
	}
	return nil
}

// returnRow flattens the header with its tender columns for scanning.
type returnRow struct {
	returns.Return
	returns.TenderSplit
}

// GetByID retrieves a committed return with its lines.
func (r *ReturnRepo) GetByID(ctx context.Context, returnID int64) (*returns.Return, error) {
	q := r.builder.
		Select("id", "sale_id", "datetime", "cashier_id", "manager_id", "refund_method",
			"refund_cash", "refund_card", "refund_wallet", "refund_store_credit",
			"reason_summary", "language", "terminal_name", "created_at").
		From(returnsTable).
		Where(squirrel.Eq{"id": returnID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var row returnRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("Return", returnID)
		}
		return nil, fmt.Errorf("get return: %w", err)
	}

	ret := row.Return
	ret.Payments = row.TenderSplit

	lq := r.builder.
		Select("line_id", "return_id", "sale_line_id", "product_id",
			"qty", "unit_price", "line_refund", "reason_code", "restock").
		From(returnLinesTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("sale_line_id")

	sql, args, err = lq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines select: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &ret.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("load return lines: %w", err)
	}
	return &ret, nil
}

// List retrieves refund summaries, newest first.
func (r *ReturnRepo) List(ctx context.Context, filter returns.ListFilter) ([]returns.Summary, error) {
	q := r.builder.
		Select("rt.id", "rt.sale_id", "rt.datetime", "rt.cashier_id", "rt.refund_method",
			"COALESCE(SUM(rl.line_refund), 0) AS total",
			"rt.terminal_name").
		From(returnsTable + " rt").
		LeftJoin(returnLinesTable + " rl ON rl.return_id = rt.id").
		GroupBy("rt.id").
		OrderBy("rt.datetime DESC", "rt.id DESC")

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"rt.datetime": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"rt.datetime": *filter.DateTo})
	}
	if filter.Method != nil {
		q = q.Where(squirrel.Eq{"rt.refund_method": *filter.Method})
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

	var summaries []returns.Summary
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &summaries, sql, args...); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return summaries, nil
}
