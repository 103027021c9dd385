package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1/dto"
)

// InventoryHandler exposes the movement register for stock investigations.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// Movements returns movement history for a product, newest first.
// GET /inventory/:productId/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "productId")
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	movements, err := h.service.History(c.Request.Context(), productID, inventory.MovementFilter{
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}
