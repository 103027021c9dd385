package returns

import (
	"testing"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
)

func testPolicy() settings.Policy {
	return settings.Policy{
		ManagerPinRequiredAbove: types.MustMoney("5000.00"),
		ReturnWindowDays:        30,
		DefaultRestock:          true,
	}
}

func TestCalculateRefund(t *testing.T) {
	sale := testSale() // line 10: 5 x 10.00 no discount; line 11: 2 x 25.00, discount 10.00

	tests := []struct {
		name      string
		items     []Item
		wantTotal string
	}{
		{
			name:      "no discount",
			items:     []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(3)}},
			wantTotal: "30.00",
		},
		{
			name:      "full return refunds full discount",
			items:     []Item{{SaleLineID: 11, Qty: types.NewQuantityFromInt(2)}},
			wantTotal: "40.00", // 2*25 - 10
		},
		{
			name:      "half return refunds half the discount",
			items:     []Item{{SaleLineID: 11, Qty: types.NewQuantityFromInt(1)}},
			wantTotal: "20.00", // 25 - 10*(1/2)
		},
		{
			name: "multiple lines sum",
			items: []Item{
				{SaleLineID: 10, Qty: types.NewQuantityFromInt(5)},
				{SaleLineID: 11, Qty: types.NewQuantityFromInt(1)},
			},
			wantTotal: "70.00",
		},
		{
			name: "zero-qty lines are skipped",
			items: []Item{
				{SaleLineID: 10, Qty: 0},
				{SaleLineID: 11, Qty: types.NewQuantityFromInt(1)},
			},
			wantTotal: "20.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := CalculateRefund(sale, tt.items, testPolicy())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := calc.Total.StringFixed(2); got != tt.wantTotal {
				t.Errorf("total mismatch\nwant: %s\ngot:  %s", tt.wantTotal, got)
			}
		})
	}
}

func TestCalculateRefund_HalfDiscountAllocation(t *testing.T) {
	// 2 units sold at 50.00 with a 10.00 line discount; returning 1 unit
	// refunds 50.00 - 10.00*(1/2) = 45.00.
	sale := testSale()
	sale.Lines = append(sale.Lines, testSaleLine(13, 103, "Ghee 500g", 2, "50.00", "10.00"))

	calc, err := CalculateRefund(sale, []Item{{SaleLineID: 13, Qty: types.NewQuantityFromInt(1)}}, testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calc.Total.StringFixed(2); got != "45.00" {
		t.Errorf("expected 45.00, got %s", got)
	}
}

func TestCalculateRefund_FractionalAllocation(t *testing.T) {
	// 3 units sold at 9.99 with a 5.00 line discount; returning 1 unit
	// refunds 9.99 - 5.00/3 = 8.3233... rounded to 8.32.
	sale := testSale()
	sale.Lines = append(sale.Lines, testSaleLine(12, 102, "Oil 1L", 3, "9.99", "5.00"))

	calc, err := CalculateRefund(sale, []Item{{SaleLineID: 12, Qty: types.NewQuantityFromInt(1)}}, testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calc.Total.StringFixed(2); got != "8.32" {
		t.Errorf("expected 8.32, got %s", got)
	}
}

func TestCalculateRefund_UnknownLine(t *testing.T) {
	_, err := CalculateRefund(testSale(), []Item{{SaleLineID: 99, Qty: types.NewQuantityFromInt(1)}}, testPolicy())
	if err == nil {
		t.Fatal("expected error for unknown sale line")
	}
}

func TestCalculateRefund_ManagerThreshold(t *testing.T) {
	pol := testPolicy()
	pol.ManagerPinRequiredAbove = types.MustMoney("40.00")

	tests := []struct {
		name         string
		items        []Item
		wantRequired bool
	}{
		{
			name:         "below threshold",
			items:        []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(3)}}, // 30.00
			wantRequired: false,
		},
		{
			name:         "exactly at threshold requires approval",
			items:        []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(4)}}, // 40.00
			wantRequired: true,
		},
		{
			name:         "above threshold",
			items:        []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(5)}}, // 50.00
			wantRequired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := CalculateRefund(testSale(), tt.items, pol)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calc.ManagerRequired != tt.wantRequired {
				t.Errorf("ManagerRequired mismatch for total %s: want %v, got %v",
					calc.Total.StringFixed(2), tt.wantRequired, calc.ManagerRequired)
			}
		})
	}
}
