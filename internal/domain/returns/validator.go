package returns

import (
	"fmt"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
)

// Item is one requested (sale line, quantity) pair.
type Item struct {
	SaleLineID int64          `json:"saleLineId"`
	Qty        types.Quantity `json:"qty"`
}

// ValidationResult carries every rule violation found, so the caller can
// display all problems at once rather than fixing them one by one.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateReturn checks a proposed return against the sale snapshot and a
// freshly derived ledger. Pure with respect to its inputs: it never mutates
// state, so it is safe to call repeatedly, including a second time inside
// the commit transaction. There the sale header is locked first, so the
// ledger it sees includes every previously committed return for the sale.
//
// Rules are evaluated in order, accumulating all applicable errors.
func ValidateReturn(sale *sales.Sale, ledger Ledger, items []Item) ValidationResult {
	var errs []string

	if len(items) == 0 {
		errs = append(errs, "No items selected for return")
	}

	seen := make(map[int64]bool, len(items))
	var requestedTotal types.Quantity
	for _, item := range items {
		line := sale.Line(item.SaleLineID)
		if line == nil {
			errs = append(errs, fmt.Sprintf("Sale line %d does not belong to this sale", item.SaleLineID))
			continue
		}

		// One entry per sale line: split entries would each pass the
		// availability check on their own while their sum exceeds it.
		if seen[item.SaleLineID] {
			errs = append(errs, fmt.Sprintf("Sale line %d is listed more than once", item.SaleLineID))
			continue
		}
		seen[item.SaleLineID] = true

		if !item.Qty.IsPositive() {
			// Qty 0 is how the UI excludes a line; it is still invalid here.
			errs = append(errs, fmt.Sprintf("Return quantity must be positive for %s", line.ProductName))
			continue
		}

		requestedTotal += item.Qty

		alreadyReturned := ledger.Returned(item.SaleLineID)
		available := line.Qty - alreadyReturned
		if available.IsNegative() {
			available = 0
		}
		if item.Qty > available {
			// The three numbers are reproduced verbatim for auditability.
			errs = append(errs, fmt.Sprintf(
				"Cannot return %s of %s. Only %s available (sold: %s, already returned: %s).",
				item.Qty.Display(), line.ProductName,
				available.Display(), line.Qty.Display(), alreadyReturned.Display(),
			))
		}
	}

	if len(items) > 0 && !requestedTotal.IsPositive() {
		errs = append(errs, "Total return quantity must be greater than zero")
	}

	return ValidationResult{OK: len(errs) == 0, Errors: errs}
}
