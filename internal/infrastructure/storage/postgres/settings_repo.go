package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

const settingsTable = "settings"

// Compile-time check that SettingsRepo implements settings.Repository.
var _ settings.Repository = (*SettingsRepo)(nil)

// SettingsRepo loads return-policy values from a key-value settings table.
// Missing or malformed values fall back to defaults rather than failing:
// the store must keep serving returns even with a half-seeded table.
type SettingsRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txm *TxManager) *SettingsRepo {
	return &SettingsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// LoadPolicy reads the current policy values, applying defaults for
// missing keys.
func (r *SettingsRepo) LoadPolicy(ctx context.Context) (settings.Policy, error) {
	q := r.builder.
		Select("key", "value").
		From(settingsTable).
		Where(squirrel.Eq{"key": []string{
			settings.KeyManagerPinRequiredAbove,
			settings.KeyReturnWindowDays,
			settings.KeyDefaultRestock,
		}})

	sql, args, err := q.ToSql()
	if err != nil {
		return settings.Policy{}, fmt.Errorf("build select: %w", err)
	}

	var rows []settingRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return settings.Policy{}, fmt.Errorf("load settings: %w", err)
	}

	pol := settings.DefaultPolicy()
	for _, row := range rows {
		switch row.Key {
		case settings.KeyManagerPinRequiredAbove:
			if v, err := types.NewMoneyFromString(row.Value); err == nil {
				pol.ManagerPinRequiredAbove = v
			} else {
				logger.Warn(ctx, "malformed setting ignored", "key", row.Key, "value", row.Value)
			}
		case settings.KeyReturnWindowDays:
			if v, err := strconv.Atoi(row.Value); err == nil && v >= 0 {
				pol.ReturnWindowDays = v
			} else {
				logger.Warn(ctx, "malformed setting ignored", "key", row.Key, "value", row.Value)
			}
		case settings.KeyDefaultRestock:
			if v, err := strconv.ParseBool(row.Value); err == nil {
				pol.DefaultRestock = v
			} else {
				logger.Warn(ctx, "malformed setting ignored", "key", row.Key, "value", row.Value)
			}
		}
	}
	return pol, nil
}
