package returns

import (
	"github.com/shopspring/decimal"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
)

// RefundLine is the calculated refund for one requested line.
type RefundLine struct {
	SaleLineID int64          `json:"saleLineId"`
	ProductID  int64          `json:"productId"`
	Qty        types.Quantity `json:"qty"`
	UnitPrice  types.Money    `json:"unitPrice"`
	LineRefund types.Money    `json:"lineRefund"`
}

// Calculation is the refund amount per line, the aggregate total, and the
// authorization classification.
type Calculation struct {
	Lines []RefundLine `json:"lines"`
	Total types.Money  `json:"total"`

	// ManagerRequired is true when Total meets or exceeds the configured
	// threshold; the caller must then supply manager authorization before
	// invoking Commit.
	ManagerRequired bool        `json:"managerRequired"`
	Threshold       types.Money `json:"threshold"`
}

// CalculateRefund computes per-line refunds with proportional discount
// allocation:
//
//	line_refund = unit_price*qty - line_discount*(qty/qty_sold)
//
// Returning half the units refunds half of the line's original discount —
// not zero and not the full amount. Line refunds are rounded to cents.
//
// The caller is expected to have validated items first; unknown sale lines
// surface as a validation error here as well so the calculator cannot
// silently produce a partial total.
func CalculateRefund(sale *sales.Sale, items []Item, pol settings.Policy) (Calculation, error) {
	calc := Calculation{
		Lines:     make([]RefundLine, 0, len(items)),
		Total:     decimal.Zero,
		Threshold: pol.ManagerPinRequiredAbove,
	}

	for _, item := range items {
		line := sale.Line(item.SaleLineID)
		if line == nil {
			return Calculation{}, apperror.NewValidation("sale line not found").
				WithDetail("sale_line_id", item.SaleLineID)
		}
		if !item.Qty.IsPositive() {
			continue
		}

		qty := item.Qty.Decimal()
		sold := line.Qty.Decimal()

		refund := line.UnitPrice.Mul(qty)
		if !line.LineDiscount.IsZero() && sold.IsPositive() {
			refund = refund.Sub(line.LineDiscount.Mul(qty.Div(sold)))
		}
		refund = refund.Round(2)

		calc.Lines = append(calc.Lines, RefundLine{
			SaleLineID: item.SaleLineID,
			ProductID:  line.ProductID,
			Qty:        item.Qty,
			UnitPrice:  line.UnitPrice,
			LineRefund: refund,
		})
		calc.Total = calc.Total.Add(refund)
	}

	calc.ManagerRequired = calc.Total.GreaterThanOrEqual(pol.ManagerPinRequiredAbove)

	return calc, nil
}
