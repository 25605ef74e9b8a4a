// Package database provides the SQLite connection and schema migrations
// for portfolio state: positions, tax lots, valuation snapshots and saved
// what-if scenarios.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path (used by the backup service)
func (db *DB) Path() string {
	return db.path
}

// Migrate creates the schema when missing. Statements are idempotent so
// Migrate is safe to run on every startup.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS portfolios (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
			ticker TEXT NOT NULL,
			quantity REAL NOT NULL DEFAULT 0,
			avg_cost_basis REAL NOT NULL DEFAULT 0,
			current_price REAL,
			sector TEXT NOT NULL DEFAULT 'Other',
			asset_class TEXT NOT NULL DEFAULT 'STOCK',
			currency TEXT NOT NULL DEFAULT 'USD',
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(portfolio_id, ticker)
		)`,
		`CREATE TABLE IF NOT EXISTS tax_lots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			portfolio_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			quantity REAL NOT NULL,
			cost_basis REAL NOT NULL,
			purchase_date TEXT NOT NULL,
			sold_quantity REAL NOT NULL DEFAULT 0,
			wash_sale INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tax_lots_position
			ON tax_lots(portfolio_id, ticker, purchase_date)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			portfolio_id TEXT NOT NULL,
			date TEXT NOT NULL,
			total_value REAL NOT NULL,
			cumulative_return REAL NOT NULL DEFAULT 0,
			benchmark_value REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (portfolio_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS scenarios (
			id TEXT PRIMARY KEY,
			portfolio_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			changes TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS calc_cache (
			cache_key TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
