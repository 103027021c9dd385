// Package product provides the product catalog.
// Names are stored in three languages (English, Sinhala, Tamil) so receipts
// can print in the customer's language.
package product

import (
	"context"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// Unit is the stock-keeping unit kind.
type Unit string

const (
	UnitPiece Unit = "pc"
	UnitKilo  Unit = "kg"
)

// Product represents a catalog item.
type Product struct {
	ID       int64   `db:"id" json:"id"`
	SKU      string  `db:"sku" json:"sku"`
	Barcode  *string `db:"barcode" json:"barcode,omitempty"`
	NameEN   string  `db:"name_en" json:"nameEn"`
	NameSI   string  `db:"name_si" json:"nameSi"`
	NameTA   string  `db:"name_ta" json:"nameTa"`
	Unit     Unit    `db:"unit" json:"unit"`

	PriceRetail types.Money `db:"price_retail" json:"priceRetail"`

	// StockQty is the on-hand quantity. It is the one piece of shared
	// mutable state the returns core writes (restock on commit).
	StockQty types.Quantity `db:"stock_qty" json:"stockQty"`

	Active bool `db:"active" json:"active"`
}

// Name returns the localized name for the given language code,
// falling back to English when the localization is empty.
func (p Product) Name(lang string) string {
	switch lang {
	case "si":
		if p.NameSI != "" {
			return p.NameSI
		}
	case "ta":
		if p.NameTA != "" {
			return p.NameTA
		}
	}
	return p.NameEN
}

// Reader defines catalog lookups used by eligibility and receipts.
type Reader interface {
	// GetByID retrieves a product.
	// Returns apperror.NewNotFound("Product", id) when it does not exist.
	GetByID(ctx context.Context, productID int64) (Product, error)

	// GetByIDs retrieves products keyed by id. Missing ids are absent
	// from the result, not an error.
	GetByIDs(ctx context.Context, productIDs []int64) (map[int64]Product, error)
}

// Repository extends Reader with the stock write used during commit.
type Repository interface {
	Reader

	// IncrementStock applies a stock-quantity delta to the product record.
	// Must be called inside the return commit transaction.
	IncrementStock(ctx context.Context, productID int64, delta types.Quantity) error
}
