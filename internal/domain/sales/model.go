// Package sales provides the completed-sale read model.
// Sales are created at checkout time outside this service and are
// strictly read-only here: the returns core only ever reads them.
package sales

import (
	"context"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// PriceTier identifies which price column applied at checkout.
type PriceTier string

const (
	TierRetail    PriceTier = "Retail"
	TierWholesale PriceTier = "Wholesale"
	TierCredit    PriceTier = "Credit"
	TierOther     PriceTier = "Other"
)

// Sale is an immutable record of a completed sale.
type Sale struct {
	ID            int64       `db:"id" json:"id"`
	InvoiceNo     string      `db:"invoice_no" json:"invoiceNo"`
	Datetime      time.Time   `db:"datetime" json:"datetime"`
	CashierID     int64       `db:"cashier_id" json:"cashierId"`
	CustomerID    *int64      `db:"customer_id" json:"customerId,omitempty"`
	PriceTier     PriceTier   `db:"price_tier" json:"priceTier"`
	GrossTotal    types.Money `db:"gross_total" json:"grossTotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	NetTotal      types.Money `db:"net_total" json:"netTotal"`
	Language      string      `db:"language" json:"language"`
	TerminalName  string      `db:"terminal_name" json:"terminalName"`

	// Table part: sold items
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one sold item on a completed sale.
// ProductName is denormalized at read time for validation messages and receipts.
type SaleLine struct {
	ID           int64          `db:"id" json:"id"`
	SaleID       int64          `db:"sale_id" json:"saleId"`
	ProductID    int64          `db:"product_id" json:"productId"`
	ProductName  string         `db:"product_name" json:"productName"`
	Qty          types.Quantity `db:"qty" json:"qty"`
	UnitPrice    types.Money    `db:"unit_price" json:"unitPrice"`
	LineDiscount types.Money    `db:"line_discount" json:"lineDiscount"`
	Tax          types.Money    `db:"tax" json:"tax"`
	Total        types.Money    `db:"total" json:"total"`
}

// Line returns the sale line with the given id, or nil.
func (s *Sale) Line(saleLineID int64) *SaleLine {
	for i := range s.Lines {
		if s.Lines[i].ID == saleLineID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Repository defines read operations over completed sales.
type Repository interface {
	// GetByID retrieves a sale with its lines.
	// Returns apperror.NewNotFound("Sale", id) when the sale does not exist.
	GetByID(ctx context.Context, saleID int64) (*Sale, error)

	// FindByReference resolves an invoice number or scanned receipt barcode
	// to a sale with its lines. Used by the return-search surface.
	FindByReference(ctx context.Context, ref string) (*Sale, error)
}
