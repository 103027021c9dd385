package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/tx"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/catalogs/product"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

// Auditor records a committed return for the audit trail.
// Called inside the commit transaction; a nil Auditor disables auditing.
type Auditor interface {
	ReturnCommitted(ctx context.Context, r *Return) error
}

// Service provides the Returns & Refunds operations.
type Service struct {
	returns   Repository
	sales     sales.Repository
	catalog   product.Reader
	products  product.Repository
	inventory *inventory.Service
	settings  settings.Repository
	txManager tx.Manager
	auditor   Auditor

	now func() time.Time
}

// NewService creates the returns service.
// catalog may be a cached Reader; products must be the direct repository
// because stock writes happen inside the commit transaction.
func NewService(
	returnsRepo Repository,
	salesRepo sales.Repository,
	catalog product.Reader,
	products product.Repository,
	inventorySvc *inventory.Service,
	settingsRepo settings.Repository,
	txManager tx.Manager,
	auditor Auditor,
) *Service {
	return &Service{
		returns:   returnsRepo,
		sales:     salesRepo,
		catalog:   catalog,
		products:  products,
		inventory: inventorySvc,
		settings:  settingsRepo,
		txManager: txManager,
		auditor:   auditor,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FindSaleByReference resolves an invoice number or scanned receipt barcode
// to the original sale. Used by the return-search surface.
func (s *Service) FindSaleByReference(ctx context.Context, ref string) (*sales.Sale, error) {
	return s.sales.FindByReference(ctx, ref)
}

// ListRefunds retrieves refund summaries for history views and CSV export.
func (s *Service) ListRefunds(ctx context.Context, filter ListFilter) ([]Summary, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.returns.List(ctx, filter)
}

// Validate checks a proposed return against the live ledger.
// Never mutates state; callers may invoke it as often as they like.
func (s *Service) Validate(ctx context.Context, saleID int64, items []Item) (ValidationResult, error) {
	sale, ledger, err := s.loadSaleAndLedger(ctx, saleID)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidateReturn(sale, ledger, items), nil
}

// Calculate computes the refund amounts and the authorization classification
// for a proposed return.
func (s *Service) Calculate(ctx context.Context, saleID int64, items []Item) (Calculation, error) {
	pol, err := s.settings.LoadPolicy(ctx)
	if err != nil {
		return Calculation{}, fmt.Errorf("load policy: %w", err)
	}

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return Calculation{}, err
	}

	return CalculateRefund(sale, items, pol)
}

// CommitLine is one requested return line for Commit.
// Restock nil falls back to the policy default.
type CommitLine struct {
	SaleLineID int64          `json:"saleLineId"`
	Qty        types.Quantity `json:"qty"`
	ReasonCode ReasonCode     `json:"reasonCode"`
	Restock    *bool          `json:"restock,omitempty"`
}

// CommitInput is the full commit request.
type CommitInput struct {
	SaleID        int64        `json:"saleId"`
	Lines         []CommitLine `json:"lines"`
	Payments      TenderSplit  `json:"payments"`
	RefundMethod  RefundMethod `json:"refundMethod"`
	ReasonSummary string       `json:"reasonSummary"`
	Language      string       `json:"language"`
	CashierID     int64        `json:"cashierId"`
	ManagerID     *int64       `json:"managerId,omitempty"`
	TerminalName  string       `json:"terminalName"`
}

// Commit persists a return header, its lines, restock movements and stock
// increments as a single atomic unit.
//
// The transaction first locks the sale header, serializing committers per
// sale, and then re-runs the validator against the ledger as the database
// sees it at that moment. Two concurrent partial returns of the same sale
// therefore cannot jointly exceed the sold quantity: the second committer
// waits on the row lock, re-derives the ledger after the first one has
// committed, and fails validation instead of overcommitting.
func (s *Service) Commit(ctx context.Context, input CommitInput) (*Return, error) {
	if !ValidMethod(input.RefundMethod) {
		return nil, apperror.NewValidation("invalid refund method").
			WithDetail("refund_method", string(input.RefundMethod))
	}
	for i, l := range input.Lines {
		if !ValidReason(l.ReasonCode) {
			return nil, apperror.NewValidation("invalid reason code").
				WithDetail("line", i).
				WithDetail("reason_code", string(l.ReasonCode))
		}
	}

	pol, err := s.settings.LoadPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	var committed *Return

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.returns.LockSale(ctx, input.SaleID); err != nil {
			return err
		}

		sale, err := s.sales.GetByID(ctx, input.SaleID)
		if err != nil {
			return err
		}

		ledger, err := s.returns.LedgerForSale(ctx, input.SaleID)
		if err != nil {
			return fmt.Errorf("derive ledger: %w", err)
		}

		items := make([]Item, len(input.Lines))
		for i, l := range input.Lines {
			items[i] = Item{SaleLineID: l.SaleLineID, Qty: l.Qty}
		}

		if res := ValidateReturn(sale, ledger, items); !res.OK {
			return apperror.NewReturnValidation(res.Errors)
		}

		calc, err := CalculateRefund(sale, items, pol)
		if err != nil {
			return err
		}

		if !input.Payments.Total().Equal(calc.Total) {
			return apperror.NewValidation("Refund payments must sum to the refund total").
				WithDetail("payments_total", input.Payments.Total().StringFixed(2)).
				WithDetail("refund_total", calc.Total.StringFixed(2))
		}

		if calc.ManagerRequired && input.ManagerID == nil {
			return apperror.NewAuthorizationRequired(calc.Total, pol.ManagerPinRequiredAbove)
		}

		ret := &Return{
			SaleID:        input.SaleID,
			Datetime:      s.now(),
			CashierID:     input.CashierID,
			ManagerID:     input.ManagerID,
			RefundMethod:  input.RefundMethod,
			Payments:      input.Payments,
			ReasonSummary: input.ReasonSummary,
			Language:      input.Language,
			TerminalName:  input.TerminalName,
			CreatedAt:     s.now(),
		}

		if err := s.returns.CreateHeader(ctx, ret); err != nil {
			return fmt.Errorf("create return header: %w", err)
		}

		refunds := make(map[int64]RefundLine, len(calc.Lines))
		for _, rl := range calc.Lines {
			refunds[rl.SaleLineID] = rl
		}

		lines := make([]ReturnLine, 0, len(input.Lines))
		for _, in := range input.Lines {
			rl := refunds[in.SaleLineID]
			restock := pol.DefaultRestock
			if in.Restock != nil {
				restock = *in.Restock
			}
			lines = append(lines, ReturnLine{
				LineID:     id.New(),
				ReturnID:   ret.ID,
				SaleLineID: in.SaleLineID,
				ProductID:  rl.ProductID,
				Qty:        in.Qty,
				UnitPrice:  rl.UnitPrice,
				LineRefund: rl.LineRefund,
				ReasonCode: in.ReasonCode,
				Restock:    restock,
			})
		}

		if err := s.returns.CreateLines(ctx, ret.ID, lines); err != nil {
			return fmt.Errorf("create return lines: %w", err)
		}
		ret.Lines = lines

		movements := make([]inventory.Movement, 0, len(lines))
		for _, l := range lines {
			if !l.Restock {
				continue
			}
			movements = append(movements, inventory.NewRestockMovement(
				l.ProductID, l.Qty, l.LineID, ReceiptID(ret.ID),
			))
			if err := s.products.IncrementStock(ctx, l.ProductID, l.Qty); err != nil {
				return fmt.Errorf("increment stock: %w", err)
			}
		}
		if err := s.inventory.RecordRestocks(ctx, movements); err != nil {
			return err
		}

		if s.auditor != nil {
			if err := s.auditor.ReturnCommitted(ctx, ret); err != nil {
				return fmt.Errorf("audit return: %w", err)
			}
		}

		committed = ret
		return nil
	})

	if err != nil {
		// Business errors pass through; anything else was a write failure,
		// fully rolled back and safe to retry with the same input.
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		logger.Error(ctx, "return commit failed", "sale_id", input.SaleID, "error", err)
		return nil, apperror.NewTransactionFailed(err)
	}

	logger.Info(ctx, "return committed",
		"return_id", committed.ID,
		"receipt_id", ReceiptID(committed.ID),
		"sale_id", committed.SaleID,
		"refund_total", committed.RefundTotal().StringFixed(2),
	)

	return committed, nil
}

// Format loads a committed return and projects it into a print-ready
// receipt payload. Reports exactly what was committed.
func (s *Service) Format(ctx context.Context, returnID int64) (*ReceiptPayload, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(ret.Lines))
	for _, l := range ret.Lines {
		productIDs = append(productIDs, l.ProductID)
	}
	catalog, err := s.catalog.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	items := make([]ReceiptItem, 0, len(ret.Lines))
	for _, l := range ret.Lines {
		p := catalog[l.ProductID]
		items = append(items, ReceiptItem{
			SaleLineID: l.SaleLineID,
			ProductID:  l.ProductID,
			SKU:        p.SKU,
			NameEN:     p.NameEN,
			NameSI:     p.NameSI,
			NameTA:     p.NameTA,
			Unit:       string(p.Unit),
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
			LineRefund: l.LineRefund,
			ReasonCode: l.ReasonCode,
		})
	}

	return &ReceiptPayload{
		Type: "return",
		Invoice: Invoice{
			ID:       ReceiptID(ret.ID),
			Datetime: ret.Datetime,
			Language: ret.Language,
			Terminal: ret.TerminalName,
			Items:    items,
			Totals:   ReceiptTotals{Net: ret.RefundTotal()},
			Payments: ret.Payments,
		},
	}, nil
}
