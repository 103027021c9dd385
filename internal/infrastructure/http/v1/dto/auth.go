package dto

// LoginRequest is the terminal login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	PIN      string `json:"pin" binding:"required"`
	Terminal string `json:"terminal"`
}

// VerifyPinRequest is the manager-PIN approval payload.
type VerifyPinRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// VerifyPinResponse reports whether the PIN matched an authorized manager.
type VerifyPinResponse struct {
	Success bool  `json:"success"`
	UserID  int64 `json:"userId,omitempty"`
}
