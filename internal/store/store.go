// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store owns the reaction/measurement/reference relational model
// on SQLite, with an FTS5 index over reactions kept in sync by triggers.
// A Store is constructed per process with an explicit database handle;
// there are no ambient globals.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

// DBFileName is the live database file name under the data directory.
const DBFileName = "reactions.db"

// Store manages the reactions SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the live database at dataDir/reactions.db and
// ensures the schema exists.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewStoreAt(filepath.Join(cfg.DataDir, DBFileName), cfg)
}

// NewStoreAt opens a database at an explicit path. Offline rebuilds use
// this to assemble a fresh database beside the live one before swapping.
func NewStoreAt(dbPath string, cfg types.StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const migrationInit = "001_init"

func (s *Store) createSchema() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var applied int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM schema_migrations WHERE name = ?`, migrationInit,
	).Scan(&applied); err != nil {
		return fmt.Errorf("checking migrations: %w", err)
	}
	if applied > 0 {
		return nil
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS reactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_no INTEGER NOT NULL,
			table_category TEXT NOT NULL,
			sequence_no TEXT,
			reaction_name TEXT,
			formula_latex TEXT,
			formula_canonical TEXT NOT NULL,
			reactants TEXT,
			products TEXT,
			reactant_species TEXT,
			product_species TEXT,
			notes TEXT,
			image_path TEXT,
			source_path TEXT,
			validated INTEGER NOT NULL DEFAULT 0,
			validated_by TEXT,
			validated_at TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_dedup
			ON reactions(table_no, formula_canonical)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_source_path ON reactions(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_validated ON reactions(validated)`,
		`CREATE TABLE IF NOT EXISTS references_map (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT UNIQUE,
			citation_text TEXT,
			doi TEXT UNIQUE,
			doi_status TEXT NOT NULL DEFAULT 'unknown',
			raw_text TEXT,
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reaction_id INTEGER NOT NULL REFERENCES reactions(id) ON DELETE CASCADE,
			pH TEXT,
			temperature_C REAL,
			rate_value TEXT NOT NULL,
			rate_value_num REAL,
			rate_units TEXT,
			method TEXT,
			conditions TEXT,
			reference_id INTEGER REFERENCES references_map(id) ON DELETE SET NULL,
			references_raw TEXT,
			source_path TEXT,
			page_info TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_reaction_source
			ON measurements(reaction_id, source_path)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS reactions_fts USING fts5(
			reaction_name, formula_canonical, notes, content='reactions', content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS reactions_ai AFTER INSERT ON reactions BEGIN
			INSERT INTO reactions_fts(rowid, reaction_name, formula_canonical, notes)
			VALUES (new.id, new.reaction_name, new.formula_canonical, new.notes);
		END`,
		`CREATE TRIGGER IF NOT EXISTS reactions_ad AFTER DELETE ON reactions BEGIN
			INSERT INTO reactions_fts(reactions_fts, rowid, reaction_name, formula_canonical, notes)
			VALUES ('delete', old.id, old.reaction_name, old.formula_canonical, old.notes);
		END`,
		`CREATE TRIGGER IF NOT EXISTS reactions_au AFTER UPDATE ON reactions BEGIN
			INSERT INTO reactions_fts(reactions_fts, rowid, reaction_name, formula_canonical, notes)
			VALUES ('delete', old.id, old.reaction_name, old.formula_canonical, old.notes);
			INSERT INTO reactions_fts(rowid, reaction_name, formula_canonical, notes)
			VALUES (new.id, new.reaction_name, new.formula_canonical, new.notes);
		END`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	if _, err := s.db.Exec(
		`INSERT INTO schema_migrations(name) VALUES (?)`, migrationInit,
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return nil
}

// RebuildIndex recomputes the FTS index from the reactions table. It is
// idempotent and is used after bulk loads that bypass the trigger path.
func (s *Store) RebuildIndex(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reactions_fts(reactions_fts) VALUES('rebuild')`,
	); err != nil {
		return fmt.Errorf("rebuilding FTS index: %w", err)
	}
	return nil
}

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the write helpers run both standalone and inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// canonicalSourcePath rewrites a source path relative to the data
// directory with forward slashes, falling back to the bare file name so
// databases stay portable across machines.
func (s *Store) canonicalSourcePath(p string) string {
	if p == "" {
		return ""
	}
	if s.dataDir != "" {
		if rel, err := filepath.Rel(s.dataDir, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Base(p)
	}
	return filepath.ToSlash(p)
}

// nullable maps empty strings to NULL so COALESCE-style updates never
// blank a stored value.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
