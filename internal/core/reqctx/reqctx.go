// Package reqctx carries per-request metadata (request id, user, terminal)
// through context for logging and audit enrichment.
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// Request contains request-scoped metadata.
type Request struct {
	RequestID string
	UserID    string
	Terminal  string
}

type requestKey struct{}

// WithRequest adds request metadata to context.
func WithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// Get returns request metadata from context, or nil.
func Get(ctx context.Context) *Request {
	if v, ok := ctx.Value(requestKey{}).(*Request); ok {
		return v
	}
	return nil
}

// RequestID returns the request id from context or empty string.
func RequestID(ctx context.Context) string {
	if r := Get(ctx); r != nil {
		return r.RequestID
	}
	return ""
}

// UserID returns the authenticated user id from context or empty string.
func UserID(ctx context.Context) string {
	if r := Get(ctx); r != nil {
		return r.UserID
	}
	return ""
}

// NewRequest creates request metadata with a generated id.
func NewRequest() *Request {
	return &Request{RequestID: uuid.New().String()}
}
