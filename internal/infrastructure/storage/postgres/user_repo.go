package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
)

const usersTable = "users"

// Compile-time check that UserRepo implements auth.Repository.
var _ auth.Repository = (*UserRepo)(nil)

// UserRepo implements auth.Repository.
type UserRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id", "username", "name", "role", "pin_hash", "active", "created_at",
}

// GetByID retrieves a user.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*auth.User, error) {
	q := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u auth.User
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("User", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByUsername retrieves a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	q := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"username": username})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u auth.User
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("User", username)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListManagers returns active users allowed to approve refunds.
func (r *UserRepo) ListManagers(ctx context.Context) ([]auth.User, error) {
	q := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{
			"active": true,
			"role":   []auth.Role{auth.RoleManager, auth.RoleAdmin},
		}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var users []auth.User
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &users, sql, args...); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	return users, nil
}
