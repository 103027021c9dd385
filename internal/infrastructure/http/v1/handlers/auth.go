package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1/dto"
)

// AuthHandler exposes terminal login and manager-PIN verification.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login issues a terminal session token.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Username, req.PIN, req.Terminal)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// VerifyPin checks a manager PIN for refund approval.
// POST /auth/verify-pin
func (h *AuthHandler) VerifyPin(c *gin.Context) {
	var req dto.VerifyPinRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.VerifyManagerPIN(c.Request.Context(), req.PIN)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.VerifyPinResponse{Success: result.Success, UserID: result.UserID})
}
