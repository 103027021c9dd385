package dto

import (
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
)

// ReturnItemRequest is one requested (sale line, quantity) pair.
type ReturnItemRequest struct {
	SaleLineID int64          `json:"saleLineId" binding:"required"`
	Qty        types.Quantity `json:"qty"`
}

// ValidateReturnRequest asks whether a proposed return would be accepted.
type ValidateReturnRequest struct {
	SaleID int64               `json:"saleId" binding:"required"`
	Items  []ReturnItemRequest `json:"items"`
}

// CalculateReturnRequest mirrors ValidateReturnRequest for the refund quote.
type CalculateReturnRequest = ValidateReturnRequest

// CommitLineRequest is one line of a commit request.
type CommitLineRequest struct {
	SaleLineID int64              `json:"saleLineId" binding:"required"`
	Qty        types.Quantity     `json:"qty"`
	ReasonCode returns.ReasonCode `json:"reasonCode" binding:"required"`
	Restock    *bool              `json:"restock,omitempty"`
}

// TenderSplitRequest is the refund split across tenders.
type TenderSplitRequest struct {
	Cash        types.Money `json:"cash"`
	Card        types.Money `json:"card"`
	Wallet      types.Money `json:"wallet"`
	StoreCredit types.Money `json:"storeCredit"`
}

// CommitReturnRequest is the full commit payload.
type CommitReturnRequest struct {
	SaleID        int64                `json:"saleId" binding:"required"`
	Lines         []CommitLineRequest  `json:"lines" binding:"required"`
	Payments      TenderSplitRequest   `json:"payments"`
	RefundMethod  returns.RefundMethod `json:"refundMethod" binding:"required"`
	ReasonSummary string               `json:"reasonSummary"`
	Language      string               `json:"language"`
	ManagerPIN    string               `json:"managerPin,omitempty"`
}

// CommitReturnResponse acknowledges a committed return.
type CommitReturnResponse struct {
	ID        int64       `json:"id"`
	ReceiptID string      `json:"receiptId"`
	Total     types.Money `json:"total"`
}

// ListReturnsQuery narrows refund history queries.
type ListReturnsQuery struct {
	DateFrom *time.Time            `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time            `form:"dateTo" time_format:"2006-01-02"`
	Method   *returns.RefundMethod `form:"method"`
	Limit    int                   `form:"limit"`
	Offset   int                   `form:"offset"`
}
