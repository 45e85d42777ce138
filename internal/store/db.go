// Package store archives scored runs in sqlite so the report server can
// serve the latest run without re-scoring. Nothing here feeds back into the
// pipeline: the model itself is never persisted across runs.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection with pooling and prepared statements.
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB opens (creating if needed) the run archive under dataDir.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "demoaudit_runs.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Run archive initialized", "path", dbPath)
	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			record_count INTEGER NOT NULL,
			severe_count INTEGER NOT NULL,
			early_warning_count INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scored_records (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			state TEXT NOT NULL,
			district TEXT NOT NULL,
			pincode TEXT NOT NULL,
			demo_age_5_17 REAL NOT NULL,
			demo_age_17_ REAL NOT NULL,
			total_population REAL NOT NULL,
			youth_ratio REAL NOT NULL,
			pop_change REAL NOT NULL,
			shock_score REAL NOT NULL,
			ml_flag BOOLEAN NOT NULL,
			ml_score REAL NOT NULL,
			severity TEXT NOT NULL,
			reason TEXT NOT NULL,
			confidence REAL NOT NULL,
			persistence REAL NOT NULL,
			impact_score REAL NOT NULL,
			recommended_action TEXT NOT NULL,
			state_avg_youth_ratio REAL NOT NULL,
			peer_deviation REAL NOT NULL,
			early_warning BOOLEAN NOT NULL,
			data_trust_score REAL NOT NULL,
			row_index INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,

		`CREATE TABLE IF NOT EXISTS district_risk (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			district TEXT NOT NULL,
			severe_cases INTEGER NOT NULL,
			avg_impact REAL NOT NULL,
			dominant_reason TEXT NOT NULL,
			rank INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_records_run ON scored_records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_records_severity ON scored_records(run_id, severity)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_records_impact ON scored_records(run_id, impact_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_district_risk_run ON district_risk(run_id, rank)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_run": `INSERT INTO runs (id, created_at, record_count, severe_count, early_warning_count)
			VALUES (?, ?, ?, ?, ?)`,

		"latest_run": `SELECT id, created_at, record_count, severe_count, early_warning_count
			FROM runs ORDER BY created_at DESC LIMIT 1`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
