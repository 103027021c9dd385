// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse is returned from create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery holds common pagination parameters.
type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
