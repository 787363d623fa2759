package sqlite

import (
	"database/sql"
	"fmt"
)

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending migrations to a SQLite database.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db: db,
		migrations: []migration{
			{Version: 1, Name: "detections", Apply: migrateV001},
			{Version: 2, Name: "users", Apply: migrateV002},
		},
	}
}

// Run creates the schema_migrations tracking table, then applies each
// migration that hasn't been recorded yet, in order.
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range r.migrations {
		applied, err := r.isApplied(m.Version)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied {
			continue
		}

		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

func (r *MigrationRunner) isApplied(version int) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// apply executes a migration inside a transaction and records it.
func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}

func migrateV001(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_type TEXT NOT NULL,
		brand TEXT NOT NULL,
		model_or_series TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		metals TEXT NOT NULL DEFAULT '[]',
		semiconductors TEXT NOT NULL DEFAULT '[]',
		battery_materials TEXT NOT NULL DEFAULT '[]',
		structural_materials TEXT NOT NULL DEFAULT '[]',
		component_count INTEGER NOT NULL DEFAULT 0,
		confidence REAL NOT NULL DEFAULT 100 CHECK (confidence >= 0 AND confidence <= 100),
		created_at INTEGER NOT NULL
	);

	CREATE INDEX idx_detections_product_type ON detections(product_type);
	CREATE INDEX idx_detections_created_at ON detections(created_at);
	`)
	return err
}

func migrateV002(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		image TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`)
	return err
}
