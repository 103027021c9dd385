package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1/dto"
)

// ReturnsHandler exposes the returns workflow: validate, quote, commit,
// receipt and history.
type ReturnsHandler struct {
	*BaseHandler
	service *returns.Service
	auth    *auth.Service
}

// NewReturnsHandler creates a new returns handler.
func NewReturnsHandler(base *BaseHandler, service *returns.Service, authService *auth.Service) *ReturnsHandler {
	return &ReturnsHandler{BaseHandler: base, service: service, auth: authService}
}

// Validate checks a proposed return without committing anything.
// POST /returns/validate
func (h *ReturnsHandler) Validate(c *gin.Context) {
	var req dto.ValidateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req.SaleID, toItems(req.Items))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Calculate quotes the refund for a proposed return.
// POST /returns/calculate
func (h *ReturnsHandler) Calculate(c *gin.Context) {
	var req dto.CalculateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	calc, err := h.service.Calculate(c.Request.Context(), req.SaleID, toItems(req.Items))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, calc)
}

// Commit creates the return transaction.
// POST /returns
func (h *ReturnsHandler) Commit(c *gin.Context) {
	var req dto.CommitReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := returns.CommitInput{
		SaleID:        req.SaleID,
		Payments:      toTenderSplit(req.Payments),
		RefundMethod:  req.RefundMethod,
		ReasonSummary: req.ReasonSummary,
		Language:      req.Language,
		CashierID:     h.UserID(c),
		TerminalName:  h.Terminal(c),
	}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, returns.CommitLine{
			SaleLineID: l.SaleLineID,
			Qty:        l.Qty,
			ReasonCode: l.ReasonCode,
			Restock:    l.Restock,
		})
	}

	// A manager PIN in the request is resolved to the approving user before
	// the commit path runs; the threshold check itself stays inside Commit.
	if req.ManagerPIN != "" {
		pin, err := h.auth.VerifyManagerPIN(c.Request.Context(), req.ManagerPIN)
		if err != nil {
			h.Error(c, err)
			return
		}
		if !pin.Success {
			h.Error(c, apperror.NewForbidden("manager PIN rejected"))
			return
		}
		input.ManagerID = &pin.UserID
	}

	ret, err := h.service.Commit(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.CommitReturnResponse{
		ID:        ret.ID,
		ReceiptID: returns.ReceiptID(ret.ID),
		Total:     ret.RefundTotal(),
	})
}

// Receipt returns the print-ready payload for a committed return.
// GET /returns/:id/receipt
func (h *ReturnsHandler) Receipt(c *gin.Context) {
	returnID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	payload, err := h.service.Format(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, payload)
}

// List returns refund history.
// GET /returns
func (h *ReturnsHandler) List(c *gin.Context) {
	var q dto.ListReturnsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summaries, err := h.service.ListRefunds(c.Request.Context(), returns.ListFilter{
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Method:   q.Method,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summaries)
}

// ExportCSV streams refund history as CSV for back-office reconciliation.
// GET /returns/export
func (h *ReturnsHandler) ExportCSV(c *gin.Context) {
	var q dto.ListReturnsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summaries, err := h.service.ListRefunds(c.Request.Context(), returns.ListFilter{
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Method:   q.Method,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="refunds.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"receipt_id", "sale_id", "datetime", "cashier_id", "method", "total", "terminal"})
	for _, s := range summaries {
		_ = w.Write([]string{
			returns.ReceiptID(s.ID),
			fmt.Sprintf("%d", s.SaleID),
			s.Datetime.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", s.CashierID),
			string(s.RefundMethod),
			s.Total.StringFixed(2),
			s.TerminalName,
		})
	}
	w.Flush()
}

func toItems(items []dto.ReturnItemRequest) []returns.Item {
	out := make([]returns.Item, len(items))
	for i, it := range items {
		out[i] = returns.Item{SaleLineID: it.SaleLineID, Qty: it.Qty}
	}
	return out
}

func toTenderSplit(t dto.TenderSplitRequest) returns.TenderSplit {
	return returns.TenderSplit{
		Cash:        t.Cash,
		Card:        t.Card,
		Wallet:      t.Wallet,
		StoreCredit: t.StoreCredit,
	}
}
