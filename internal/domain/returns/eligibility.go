package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
)

// Eligibility is the fail-closed answer to "may this sale be returned at all".
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ReturnableLine combines a sold line with the derived ledger.
type ReturnableLine struct {
	SaleLineID         int64          `json:"saleLineId"`
	ProductID          int64          `json:"productId"`
	ProductName        string         `json:"productName"`
	QuantitySold       types.Quantity `json:"quantitySold"`
	QuantityReturned   types.Quantity `json:"quantityReturned"`
	QuantityReturnable types.Quantity `json:"quantityReturnable"`
	UnitPrice          types.Money    `json:"unitPrice"`
}

// checkEligibility applies the return-window policy to a loaded sale and
// ledger. now is injected for testability.
func checkEligibility(sale *sales.Sale, ledger Ledger, pol settings.Policy, now time.Time) Eligibility {
	if pol.ReturnWindowDays > 0 {
		cutoff := now.AddDate(0, 0, -pol.ReturnWindowDays)
		if sale.Datetime.Before(cutoff) {
			return Eligibility{
				Allowed: false,
				Reason:  fmt.Sprintf("Sale is outside the %d-day return window", pol.ReturnWindowDays),
			}
		}
	}

	for _, line := range sale.Lines {
		if line.Qty-ledger.Returned(line.ID) > 0 {
			return Eligibility{Allowed: true}
		}
	}
	return Eligibility{Allowed: false, Reason: "Nothing left to return on this sale"}
}

// returnableLines projects sale lines against the ledger, flooring
// returnable quantities at zero.
func returnableLines(sale *sales.Sale, ledger Ledger) []ReturnableLine {
	lines := make([]ReturnableLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		returned := ledger.Returned(l.ID)
		returnable := l.Qty - returned
		if returnable.IsNegative() {
			returnable = 0
		}
		lines = append(lines, ReturnableLine{
			SaleLineID:         l.ID,
			ProductID:          l.ProductID,
			ProductName:        l.ProductName,
			QuantitySold:       l.Qty,
			QuantityReturned:   returned,
			QuantityReturnable: returnable,
			UnitPrice:          l.UnitPrice,
		})
	}
	return lines
}

// loadSaleAndLedger fetches the sale snapshot and derives a fresh ledger.
// The ledger is recomputed on every call, never cached: two validations
// issued close together must both see the true current state.
func (s *Service) loadSaleAndLedger(ctx context.Context, saleID int64) (*sales.Sale, Ledger, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	ledger, err := s.returns.LedgerForSale(ctx, saleID)
	if err != nil {
		return nil, nil, fmt.Errorf("derive ledger: %w", err)
	}

	return sale, ledger, nil
}

// CanRefund determines whether a sale may be returned at all.
// Fails closed: a missing sale yields Allowed=false rather than an error.
func (s *Service) CanRefund(ctx context.Context, saleID int64) (Eligibility, error) {
	pol, err := s.settings.LoadPolicy(ctx)
	if err != nil {
		return Eligibility{}, fmt.Errorf("load policy: %w", err)
	}

	sale, ledger, err := s.loadSaleAndLedger(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return Eligibility{Allowed: false, Reason: "Sale not found"}, nil
		}
		return Eligibility{}, err
	}

	return checkEligibility(sale, ledger, pol, s.now()), nil
}

// ReturnableLines exposes the line-level returnable quantities for a sale.
func (s *Service) ReturnableLines(ctx context.Context, saleID int64) ([]ReturnableLine, error) {
	sale, ledger, err := s.loadSaleAndLedger(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return returnableLines(sale, ledger), nil
}
