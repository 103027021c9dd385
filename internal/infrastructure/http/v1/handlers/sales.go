package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
)

// SalesHandler exposes the sale-lookup side of the returns workflow.
type SalesHandler struct {
	*BaseHandler
	service *returns.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *returns.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// Lookup resolves an invoice number or scanned receipt barcode to a sale.
// GET /sales/lookup?ref=INV-000123
func (h *SalesHandler) Lookup(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		h.Error(c, apperror.NewValidation("ref query parameter is required"))
		return
	}

	sale, err := h.service.FindSaleByReference(c.Request.Context(), ref)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Eligibility reports whether a sale may be returned at all.
// GET /sales/:id/eligibility
func (h *SalesHandler) Eligibility(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	elig, err := h.service.CanRefund(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, elig)
}

// ReturnableLines reports per-line returnable quantities for a sale.
// GET /sales/:id/returnable-lines
func (h *SalesHandler) ReturnableLines(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	lines, err := h.service.ReturnableLines(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lines)
}
