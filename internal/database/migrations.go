package database

import (
	"fmt"
	"log/slog"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all schema migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schema_version_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_hybrid_analyses_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS hybrid_analyses (
				id TEXT PRIMARY KEY,
				text TEXT NOT NULL,
				fingerprint TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'queued',
				method TEXT,
				confidence REAL,
				result TEXT,
				last_error TEXT,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_hybrid_analyses_fingerprint ON hybrid_analyses(fingerprint);
			CREATE INDEX IF NOT EXISTS idx_hybrid_analyses_status ON hybrid_analyses(status);
			CREATE INDEX IF NOT EXISTS idx_hybrid_analyses_created_at ON hybrid_analyses(created_at);
		`,
	},
	{
		Version: 3,
		Name:    "create_comparisons_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS comparisons (
				id TEXT PRIMARY KEY,
				text_a TEXT NOT NULL,
				text_b TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'queued',
				winner INTEGER,
				margin INTEGER,
				result TEXT,
				last_error TEXT,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_comparisons_status ON comparisons(status);
			CREATE INDEX IF NOT EXISTS idx_comparisons_created_at ON comparisons(created_at);
		`,
	},
	{
		Version: 4,
		Name:    "add_method_index",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_hybrid_analyses_method ON hybrid_analyses(method);
		`,
	},
}

// Migrate runs all pending migrations.
func (db *DB) Migrate() error {
	// Ensure schema_version table exists before reading it.
	if _, err := db.conn.Exec(migrations[0].SQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	slog.Info("checked schema version", "current", currentVersion)

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration", "version", migration.Version, "name", migration.Name)
	}

	return nil
}
