package returns

import (
	"testing"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
)

func testSale() *sales.Sale {
	return &sales.Sale{
		ID:        1,
		InvoiceNo: "INV-000042",
		Datetime:  time.Now().Add(-24 * time.Hour),
		CashierID: 7,
		Language:  "en",
		Lines: []sales.SaleLine{
			{
				ID:          10,
				SaleID:      1,
				ProductID:   100,
				ProductName: "Rice 5kg",
				Qty:         types.NewQuantityFromInt(5),
				UnitPrice:   types.MustMoney("10.00"),
			},
			{
				ID:           11,
				SaleID:       1,
				ProductID:    101,
				ProductName:  "Sugar 1kg",
				Qty:          types.NewQuantityFromInt(2),
				UnitPrice:    types.MustMoney("25.00"),
				LineDiscount: types.MustMoney("10.00"),
			},
		},
	}
}

func testSaleLine(lineID, productID int64, name string, qty int64, price, discount string) sales.SaleLine {
	return sales.SaleLine{
		ID:           lineID,
		SaleID:       1,
		ProductID:    productID,
		ProductName:  name,
		Qty:          types.NewQuantityFromInt(qty),
		UnitPrice:    types.MustMoney(price),
		LineDiscount: types.MustMoney(discount),
	}
}

func TestValidateReturn(t *testing.T) {
	tests := []struct {
		name     string
		ledger   Ledger
		items    []Item
		wantOK   bool
		wantErrs []string
	}{
		{
			name:   "valid full return",
			ledger: Ledger{},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(5)}},
			wantOK: true,
		},
		{
			name:   "valid partial return",
			ledger: Ledger{},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(2)}},
			wantOK: true,
		},
		{
			name:     "no items selected",
			ledger:   Ledger{},
			items:    nil,
			wantErrs: []string{"No items selected for return"},
		},
		{
			name:   "unknown sale line",
			ledger: Ledger{},
			items:  []Item{{SaleLineID: 99, Qty: types.NewQuantityFromInt(1)}},
			wantErrs: []string{
				"Sale line 99 does not belong to this sale",
				"Total return quantity must be greater than zero",
			},
		},
		{
			name:   "zero quantity",
			ledger: Ledger{},
			items:  []Item{{SaleLineID: 10, Qty: 0}},
			wantErrs: []string{
				"Return quantity must be positive for Rice 5kg",
				"Total return quantity must be greater than zero",
			},
		},
		{
			name:   "negative quantity",
			ledger: Ledger{},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(-1)}},
			wantErrs: []string{
				"Return quantity must be positive for Rice 5kg",
				"Total return quantity must be greater than zero",
			},
		},
		{
			name:   "duplicate line entries rejected",
			ledger: Ledger{},
			items: []Item{
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(3)},
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(3)},
			},
			wantErrs: []string{
				"Sale line 10 is listed more than once",
			},
		},
		{
			name:   "duplicate entries rejected even within availability",
			ledger: Ledger{},
			items: []Item{
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(1)},
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(1)},
			},
			wantErrs: []string{
				"Sale line 10 is listed more than once",
			},
		},
		{
			name:   "over-return against ledger",
			ledger: Ledger{10: types.NewQuantityFromInt(2)},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(4)}},
			wantErrs: []string{
				"Cannot return 4 of Rice 5kg. Only 3 available (sold: 5, already returned: 2).",
			},
		},
		{
			name:   "over-return fully returned line",
			ledger: Ledger{10: types.NewQuantityFromInt(5)},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(1)}},
			wantErrs: []string{
				"Cannot return 1 of Rice 5kg. Only 0 available (sold: 5, already returned: 5).",
			},
		},
		{
			name:   "fractional quantities in messages",
			ledger: Ledger{10: types.NewQuantityFromFloat64(3.5)},
			items:  []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(2)}},
			wantErrs: []string{
				"Cannot return 2 of Rice 5kg. Only 1.5 available (sold: 5, already returned: 3.5).",
			},
		},
		{
			name:   "errors accumulate across lines",
			ledger: Ledger{},
			items: []Item{
				{SaleLineID: 99, Qty: types.NewQuantityFromInt(1)},
				{SaleLineID: 11, Qty: 0},
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(6)},
			},
			wantErrs: []string{
				"Sale line 99 does not belong to this sale",
				"Return quantity must be positive for Sugar 1kg",
				"Cannot return 6 of Rice 5kg. Only 5 available (sold: 5, already returned: 0).",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateReturn(testSale(), tt.ledger, tt.items)

			if result.OK != tt.wantOK {
				t.Errorf("OK mismatch\nwant: %v\ngot:  %v (errors: %v)", tt.wantOK, result.OK, result.Errors)
			}
			if len(result.Errors) != len(tt.wantErrs) {
				t.Fatalf("error count mismatch\nwant: %v\ngot:  %v", tt.wantErrs, result.Errors)
			}
			for i, want := range tt.wantErrs {
				if result.Errors[i] != want {
					t.Errorf("error %d mismatch\nwant: %s\ngot:  %s", i, want, result.Errors[i])
				}
			}
		})
	}
}

// Validation is pure: running it twice against the same inputs yields the
// same answer and leaves the ledger untouched.
func TestValidateReturn_Idempotent(t *testing.T) {
	sale := testSale()
	ledger := Ledger{10: types.NewQuantityFromInt(2)}
	items := []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(3)}}

	first := ValidateReturn(sale, ledger, items)
	second := ValidateReturn(sale, ledger, items)

	if !first.OK || !second.OK {
		t.Fatalf("expected both validations to pass: first=%v second=%v", first, second)
	}
	if got := ledger.Returned(10); got != types.NewQuantityFromInt(2) {
		t.Errorf("ledger mutated: %v", got)
	}
}
