// Package returns provides the Returns & Refunds core: the derived return
// ledger, eligibility and validation rules, proportional refund calculation,
// the atomic commit path, and the receipt projection.
package returns

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// RefundMethod is the primary tender used for the refund.
type RefundMethod string

const (
	MethodCash   RefundMethod = "CASH"
	MethodCard   RefundMethod = "CARD"
	MethodWallet RefundMethod = "WALLET"
)

// ValidMethod reports whether m is a known refund method.
func ValidMethod(m RefundMethod) bool {
	switch m {
	case MethodCash, MethodCard, MethodWallet:
		return true
	}
	return false
}

// ReasonCode classifies why a line was returned.
type ReasonCode string

const (
	ReasonDamaged        ReasonCode = "DAMAGED"
	ReasonExpired        ReasonCode = "EXPIRED"
	ReasonWrongItem      ReasonCode = "WRONG_ITEM"
	ReasonCustomerChange ReasonCode = "CUSTOMER_CHANGE"
	ReasonOther          ReasonCode = "OTHER"
)

// ValidReason reports whether c is a known reason code.
func ValidReason(c ReasonCode) bool {
	switch c {
	case ReasonDamaged, ReasonExpired, ReasonWrongItem, ReasonCustomerChange, ReasonOther:
		return true
	}
	return false
}

// TenderSplit is the caller-selected refund split across tenders.
// The commit path enforces that it sums exactly to the refund total.
type TenderSplit struct {
	Cash        types.Money `db:"refund_cash" json:"cash"`
	Card        types.Money `db:"refund_card" json:"card"`
	Wallet      types.Money `db:"refund_wallet" json:"wallet"`
	StoreCredit types.Money `db:"refund_store_credit" json:"storeCredit"`
}

// Total sums all tenders.
func (t TenderSplit) Total() types.Money {
	return t.Cash.Add(t.Card).Add(t.Wallet).Add(t.StoreCredit)
}

// Return is a committed return transaction. Create-once, immutable:
// there is no update or void path, corrections are new returns.
type Return struct {
	ID           int64        `db:"id" json:"id"`
	SaleID       int64        `db:"sale_id" json:"saleId"`
	Datetime     time.Time    `db:"datetime" json:"datetime"`
	CashierID    int64        `db:"cashier_id" json:"cashierId"`
	ManagerID    *int64       `db:"manager_id" json:"managerId,omitempty"`
	RefundMethod RefundMethod `db:"refund_method" json:"refundMethod"`

	Payments TenderSplit `db:"-" json:"payments"`

	ReasonSummary string `db:"reason_summary" json:"reasonSummary,omitempty"`
	Language      string `db:"language" json:"language"`
	TerminalName  string `db:"terminal_name" json:"terminalName"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Table part: returned items
	Lines []ReturnLine `db:"-" json:"lines"`
}

// ReturnLine is one returned item, owned exclusively by its Return.
// SaleLineID references (never owns) a line on the original sale.
type ReturnLine struct {
	LineID     id.ID          `db:"line_id" json:"lineId"`
	ReturnID   int64          `db:"return_id" json:"returnId"`
	SaleLineID int64          `db:"sale_line_id" json:"saleLineId"`
	ProductID  int64          `db:"product_id" json:"productId"`
	Qty        types.Quantity `db:"qty" json:"qty"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	LineRefund types.Money    `db:"line_refund" json:"lineRefund"`
	ReasonCode ReasonCode     `db:"reason_code" json:"reasonCode"`
	Restock    bool           `db:"restock" json:"restock"`
}

// RefundTotal sums line refunds.
func (r *Return) RefundTotal() types.Money {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.LineRefund)
	}
	return total
}

// Summary is the list-view projection for history and CSV export.
type Summary struct {
	ID           int64        `db:"id" json:"id"`
	SaleID       int64        `db:"sale_id" json:"saleId"`
	Datetime     time.Time    `db:"datetime" json:"datetime"`
	CashierID    int64        `db:"cashier_id" json:"cashierId"`
	RefundMethod RefundMethod `db:"refund_method" json:"refundMethod"`
	Total        types.Money  `db:"total" json:"total"`
	TerminalName string       `db:"terminal_name" json:"terminalName"`
}

// ListFilter narrows refund history queries.
type ListFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Method   *RefundMethod
	Limit    int
	Offset   int
}

// Ledger maps sale_line_id to the total quantity already returned across
// all committed returns of a sale. Always derived by folding over return
// lines, never cached as a counter.
type Ledger map[int64]types.Quantity

// Returned reports the quantity already returned for a sale line.
// Missing entries mean nothing was returned yet.
func (l Ledger) Returned(saleLineID int64) types.Quantity {
	return l[saleLineID]
}

// Repository defines persistence operations for returns.
// All write methods must be called inside the commit transaction.
type Repository interface {
	// LockSale takes a row lock on the sale header, serializing committers
	// per sale. Must be called inside the commit transaction before
	// LedgerForSale; without it two overlapping transactions would both
	// derive the ledger before either one's lines are visible.
	// Returns apperror.NewNotFound("Sale", id) when the sale does not exist.
	LockSale(ctx context.Context, saleID int64) error

	// LedgerForSale aggregates committed return lines for a sale:
	// SUM(qty) grouped by sale_line_id. Empty ledger when no returns exist.
	LedgerForSale(ctx context.Context, saleID int64) (Ledger, error)

	// CreateHeader inserts the return header and fills r.ID from the
	// generated key.
	CreateHeader(ctx context.Context, r *Return) error

	// CreateLines inserts return lines owned by the given return.
	CreateLines(ctx context.Context, returnID int64, lines []ReturnLine) error

	// GetByID retrieves a committed return with its lines.
	// Returns apperror.NewNotFound("Return", id) when it does not exist.
	GetByID(ctx context.Context, returnID int64) (*Return, error)

	// List retrieves refund summaries for history views.
	List(ctx context.Context, filter ListFilter) ([]Summary, error)
}
