package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/club-portal/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Store bundles the SQLite repositories over one connection pool. It
// satisfies every repository interface of the persistence package.
type Store struct {
	*UserRepository
	*PlayerRepository
	*TrainingRepository
	*AuthSessionRepository

	pool *ConnectionPool
}

// Open connects to the database described by cfg and applies pending
// migrations before returning.
func Open(ctx context.Context, cfg migration.SQLiteConfig, logger *slog.Logger) (*Store, error) {
	pool, err := NewConnectionPool(cfg, logger)
	if err != nil {
		return nil, err
	}

	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLiteExecutor(pool.DB(), logger),
		migrationDir,
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: migrate %s: %w", cfg.Path, err)
	}

	return &Store{
		UserRepository:        NewUserRepository(pool),
		PlayerRepository:      NewPlayerRepository(pool),
		TrainingRepository:    NewTrainingRepository(pool),
		AuthSessionRepository: NewAuthSessionRepository(pool),
		pool:                  pool,
	}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
