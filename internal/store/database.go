// Package store persists batch runs and per-feed provisioning results to
// PostgreSQL so a run's outcome can be inspected after the fact.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the PostgreSQL connection.
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase opens and verifies a database connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migrations are applied in order, tracked in schema_migrations.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_create_factory_runs",
		sql: `
			CREATE TABLE IF NOT EXISTS factory_runs (
				run_id UUID PRIMARY KEY,
				sport TEXT NOT NULL,
				started_at TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ,
				created_count INT NOT NULL DEFAULT 0,
				error_count INT NOT NULL DEFAULT 0
			)
		`,
	},
	{
		version: "002_create_feed_results",
		sql: `
			CREATE TABLE IF NOT EXISTS feed_results (
				result_id SERIAL PRIMARY KEY,
				run_id UUID NOT NULL REFERENCES factory_runs(run_id),
				name TEXT NOT NULL,
				sport TEXT NOT NULL,
				state TEXT NOT NULL,
				created BOOLEAN NOT NULL,
				verified BOOLEAN NOT NULL,
				feed_pubkey TEXT,
				update_auth_pubkey TEXT,
				job_count INT NOT NULL DEFAULT 0,
				error TEXT,
				recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "003_index_feed_results_run",
		sql:     `CREATE INDEX IF NOT EXISTS idx_feed_results_run ON feed_results(run_id)`,
	},
}

// RunMigrations applies all pending migrations.
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m.version, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")
	return nil
}

func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *Database) runMigration(version, migration string) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}
	return tx.Commit()
}
