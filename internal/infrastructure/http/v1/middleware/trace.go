package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/reqctx"
)

// HeaderRequestID is the request correlation header.
const HeaderRequestID = "X-Request-ID"

// Trace middleware attaches request metadata to the context so every log
// line and audit row downstream carries the same correlation id.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		req := &reqctx.Request{RequestID: requestID}
		ctx := reqctx.WithRequest(c.Request.Context(), req)
		c.Request = c.Request.WithContext(ctx)

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
