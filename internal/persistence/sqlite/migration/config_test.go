package migration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDSNCarriesPragmas(t *testing.T) {
	cfg := SQLiteConfig{
		Path:              "/tmp/club.db",
		BusyTimeout:       2 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
	}
	dsn := NewConnectionManager(cfg).DSN()

	if !strings.HasPrefix(dsn, "file:/tmp/club.db?") {
		t.Fatalf("unexpected DSN prefix: %s", dsn)
	}
	for _, want := range []string{"busy_timeout%282000%29", "foreign_keys%281%29", "journal_mode%28WAL%29"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected %s in DSN %s", want, dsn)
		}
	}

	if got := NewConnectionManager(SQLiteConfig{Path: "x.db"}).DSN(); got != "file:x.db" {
		t.Fatalf("expected bare DSN without pragmas, got %s", got)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SQLiteConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultSQLiteConfig("data/club.db")},
		{name: "empty path", cfg: SQLiteConfig{Path: " "}, wantErr: true},
		{name: "query in path", cfg: SQLiteConfig{Path: "a.db?mode=ro"}, wantErr: true},
		{name: "bad journal", cfg: SQLiteConfig{Path: "a.db", JournalMode: "FAST"}, wantErr: true},
		{name: "bad synchronous", cfg: SQLiteConfig{Path: "a.db", Synchronous: "SOMETIMES"}, wantErr: true},
		{name: "negative pool", cfg: SQLiteConfig{Path: "a.db", MaxOpenConns: -1}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewConnectionManager(tc.cfg).ValidateConfig()
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateConfig() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestForeignKeysEnabledOnEveryConnection(t *testing.T) {
	db, err := NewConnectionManager(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "fk.db"))).GetConnection()
	if err != nil {
		t.Fatalf("GetConnection returned error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conns := make([]interface{ Close() error }, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn returned error: %v", err)
		}
		conns = append(conns, conn)

		var enabled int
		if err := conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
			t.Fatalf("PRAGMA foreign_keys: %v", err)
		}
		if enabled != 1 {
			t.Fatalf("connection %d: expected foreign keys enabled", i)
		}
	}
	for _, c := range conns {
		c.Close()
	}
}
