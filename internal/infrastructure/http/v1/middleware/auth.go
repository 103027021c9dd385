package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/reqctx"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
)

// TokenValidator interface for token validation.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Session, error)
}

// Auth middleware validates session tokens and populates request context
// with the operator's identity and terminal.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		session, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		// Enrich the request metadata placed there by Trace
		if req := reqctx.Get(c.Request.Context()); req != nil {
			req.UserID = strconv.FormatInt(session.UserID, 10)
			req.Terminal = session.Terminal
		}

		c.Set("user_id", session.UserID)
		c.Set("user_role", session.Role)
		c.Set("terminal", session.Terminal)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
