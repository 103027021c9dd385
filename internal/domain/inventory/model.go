// Package inventory provides the inventory movement register.
// Movements are immutable append-only rows; on-hand stock on the product
// record is adjusted in the same transaction that records the movement.
package inventory

import (
	"context"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
)

// SourceType identifies the record that caused a movement.
type SourceType string

const (
	// SourceReturnLine marks a restock caused by a committed return line.
	SourceReturnLine SourceType = "return_line"
)

// Movement is one inventory register row. Quantity is a signed delta;
// return restocks are always positive.
type Movement struct {
	LineID       id.ID          `db:"line_id" json:"lineId"`
	ProductID    int64          `db:"product_id" json:"productId"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	SourceType   SourceType     `db:"source_type" json:"sourceType"`
	SourceLineID id.ID          `db:"source_line_id" json:"sourceLineId"`
	Note         string         `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}

// NewRestockMovement creates a positive movement caused by a return line.
func NewRestockMovement(productID int64, qty types.Quantity, returnLineID id.ID, note string) Movement {
	return Movement{
		LineID:       id.New(),
		ProductID:    productID,
		Quantity:     qty,
		SourceType:   SourceReturnLine,
		SourceLineID: returnLineID,
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines register operations.
type Repository interface {
	// CreateMovements batch inserts movements (inside the commit transaction).
	CreateMovements(ctx context.Context, movements []Movement) error

	// ListByProduct returns movement history for a product, newest first.
	ListByProduct(ctx context.Context, productID int64, filter MovementFilter) ([]Movement, error)

	// ListBySource returns the movements caused by a given source line.
	ListBySource(ctx context.Context, sourceType SourceType, sourceLineID id.ID) ([]Movement, error)
}
