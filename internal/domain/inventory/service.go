package inventory

import (
	"context"
	"fmt"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

// Service provides business operations for the inventory register.
// Transactions are managed by the caller (the return commit path).
type Service struct {
	repo Repository
}

// NewService creates a new inventory register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordRestocks records restock movements from a committed return.
// Must be called within the commit transaction.
func (s *Service) RecordRestocks(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.SourceLineID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: source_line_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded restock movements", "count", len(movements))

	return nil
}

// History returns movement history for a product, newest first.
func (s *Service) History(ctx context.Context, productID int64, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListByProduct(ctx, productID, filter)
}
