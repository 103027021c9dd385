// Package auth provides cashier/manager authentication: terminal login
// sessions and the manager PIN check used to approve large refunds.
package auth

import (
	"context"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
)

// Role is a POS user role.
type Role string

const (
	RoleCashier Role = "CASHIER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// User is a POS operator. PINHash is a bcrypt hash of the numeric PIN;
// the plain PIN is never stored.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Role      Role      `db:"role" json:"role"`
	PINHash   string    `db:"pin_hash" json:"-"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CanApproveRefunds reports whether the user may authorize refunds above
// the manager threshold.
func (u *User) CanApproveRefunds() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// CanLogin checks account status before issuing a session.
func (u *User) CanLogin() error {
	if !u.Active {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Repository defines persistence operations for users.
type Repository interface {
	// GetByID retrieves a user.
	// Returns apperror.NewNotFound("User", id) when it does not exist.
	GetByID(ctx context.Context, userID int64) (*User, error)

	// GetByUsername retrieves a user by login name.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ListManagers returns active users allowed to approve refunds.
	ListManagers(ctx context.Context) ([]User, error)
}
