// Package migration applies versioned SQL schema changes to SQLite databases.
//
// Migrations are read from an fs.FS, usually an embed.FS compiled into the
// binary, and follow the naming convention {version}_{description}.sql
// (for example "001_initial_schema.sql"). Each file runs inside a
// transaction and is recorded in a schema_migrations table together with its
// SHA-256 checksum. A recorded migration whose file content later changes is
// reported as ErrChecksumMismatch instead of being silently skipped.
//
// Example usage:
//
//	manager := migration.NewMigrationManager(
//		migration.NewFileScanner(migrationsFS),
//		migration.NewSQLiteExecutor(db, logger),
//		"migrations",
//		logger,
//	)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
