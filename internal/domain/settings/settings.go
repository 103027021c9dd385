// Package settings provides the return-policy configuration.
// Policy values live in a DB-backed settings table and are loaded into an
// immutable snapshot per operation, so the core stays testable with varying
// policy values instead of reading ambient global state.
package settings

import (
	"context"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// Setting keys in the settings table.
const (
	KeyManagerPinRequiredAbove = "manager_pin_required_above"
	KeyReturnWindowDays        = "return_window_days"
	KeyDefaultRestock          = "default_restock"
)

// Policy is the snapshot of return-policy values consumed by the returns core.
type Policy struct {
	// ManagerPinRequiredAbove is the refund total at or above which a
	// second authorized user must approve the transaction.
	ManagerPinRequiredAbove types.Money

	// ReturnWindowDays is the maximum age of a sale still eligible for return.
	ReturnWindowDays int

	// DefaultRestock applies when a return line does not specify restock.
	DefaultRestock bool
}

// DefaultPolicy returns the values used when the settings table has no override.
func DefaultPolicy() Policy {
	return Policy{
		ManagerPinRequiredAbove: types.MustMoney("5000.00"),
		ReturnWindowDays:        30,
		DefaultRestock:          true,
	}
}

// Repository loads the policy snapshot.
type Repository interface {
	// LoadPolicy reads the current policy values, applying defaults for
	// missing keys.
	LoadPolicy(ctx context.Context) (Policy, error)
}

// Static is a fixed-policy Repository for tests and single-store setups.
type Static struct {
	Policy Policy
}

// LoadPolicy implements Repository.
func (s Static) LoadPolicy(ctx context.Context) (Policy, error) {
	return s.Policy, nil
}
