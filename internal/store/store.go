package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store aggregates the Postgres-backed persistence used when the companion
// runs with a database configured. For single-user deployments the file
// backend in internal/favorites covers the same contract without a server.
type Store struct {
	pool *pgxpool.Pool

	// Favorites satisfies favorites.Storage.
	Favorites *FavoriteRepo
}

// New wires the repositories onto a shared connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:      pool,
		Favorites: &FavoriteRepo{pool: pool},
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeStorage(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}
