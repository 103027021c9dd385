package returns

import (
	"fmt"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// ReceiptPayload is the print-ready projection of a committed return.
// It is a pure read of what was committed; amounts are never re-derived
// from the ledger.
type ReceiptPayload struct {
	Type    string  `json:"type"`
	Invoice Invoice `json:"invoice"`
}

// Invoice is the receipt body.
type Invoice struct {
	ID       string        `json:"id"`
	Datetime time.Time     `json:"datetime"`
	Language string        `json:"language"`
	Terminal string        `json:"terminal"`
	Items    []ReceiptItem `json:"items"`
	Totals   ReceiptTotals `json:"totals"`
	Payments TenderSplit   `json:"payments"`
}

// ReceiptItem is one returned line with localized product names joined in.
type ReceiptItem struct {
	SaleLineID int64          `json:"saleLineId"`
	ProductID  int64          `json:"productId"`
	SKU        string         `json:"sku"`
	NameEN     string         `json:"nameEn"`
	NameSI     string         `json:"nameSi"`
	NameTA     string         `json:"nameTa"`
	Unit       string         `json:"unit"`
	Qty        types.Quantity `json:"qty"`
	UnitPrice  types.Money    `json:"unitPrice"`
	LineRefund types.Money    `json:"lineRefund"`
	ReasonCode ReasonCode     `json:"reasonCode"`
}

// ReceiptTotals carries the committed refund total.
type ReceiptTotals struct {
	Net types.Money `json:"net"`
}

// ReceiptID formats the invoice-style identifier for a return.
// Return ids are sequential, so the projection is deterministic: RET-000001.
func ReceiptID(returnID int64) string {
	return fmt.Sprintf("RET-%06d", returnID)
}
