package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepo persists favorite sets keyed by storage key. Writes replace
// the full set in one transaction, matching the overwrite-only semantics of
// the other storage backends.
type FavoriteRepo struct {
	pool *pgxpool.Pool
}

// Load returns the stored codes for key, sorted. An unknown key reads as an
// empty set.
func (r *FavoriteRepo) Load(ctx context.Context, key string) ([]string, error) {
	defer observeStorage(ctx, "favorites.load")()

	rows, err := r.pool.Query(ctx,
		`SELECT session_code FROM favorites WHERE storage_key = $1 ORDER BY session_code`, key)
	if err != nil {
		return nil, fmt.Errorf("load favorites %q: %w", key, err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan favorite for %q: %w", key, err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load favorites %q: %w", key, err)
	}
	return codes, nil
}

// Save replaces the stored set for key with ids.
func (r *FavoriteRepo) Save(ctx context.Context, key string, ids []string) error {
	defer observeStorage(ctx, "favorites.save")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save favorites %q: %w", key, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM favorites WHERE storage_key = $1`, key); err != nil {
		return fmt.Errorf("clear favorites %q: %w", key, err)
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO favorites (storage_key, session_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			key, id); err != nil {
			return fmt.Errorf("insert favorite %q for %q: %w", id, key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit favorites %q: %w", key, err)
	}
	return nil
}
