package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/club-portal/internal/persistence"
	"github.com/example/club-portal/internal/persistence/memory"
	"github.com/example/club-portal/internal/persistence/sqlite"
	"github.com/example/club-portal/internal/persistence/sqlite/migration"
)

// Harness exposes the persistence repositories of one store instance so the
// same contract tests can run against every implementation.
type Harness struct {
	Name         string
	Users        persistence.UserRepository
	Players      persistence.PlayerRepository
	Trainings    persistence.TrainingRepository
	AuthSessions persistence.AuthSessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *Harness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// SQLiteHarness is a Harness backed by a migrated SQLite file.
type SQLiteHarness struct {
	Harness
	Store *sqlite.Store
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "club.db")
	store, err := sqlite.Open(context.Background(), migration.TempFileTestSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Harness: Harness{
			Name:         "sqlite",
			Users:        store,
			Players:      store,
			Trainings:    store,
			AuthSessions: store,
			cleanup: func() {
				_ = store.Close()
			},
		},
		Store: store,
	}

	tb.Cleanup(harness.Close)
	return harness
}

// NewMemoryHarness constructs a Harness backed by the in-memory store.
func NewMemoryHarness(tb testing.TB) *Harness {
	tb.Helper()

	store := memory.New()
	return &Harness{
		Name:         "memory",
		Users:        store,
		Players:      store,
		Trainings:    store,
		AuthSessions: store,
	}
}

// Harnesses returns one harness per store implementation.
func Harnesses(tb testing.TB) []*Harness {
	tb.Helper()
	return []*Harness{&NewSQLiteHarness(tb).Harness, NewMemoryHarness(tb)}
}
