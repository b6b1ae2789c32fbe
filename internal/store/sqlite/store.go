// Package sqlite stores command specs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Store implements spec.Store with one row per spec.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ spec.Store = (*Store)(nil)

// Config contains configuration for the SQLite store.
type Config struct {
	// Path is the filesystem path to the SQLite database file, or ":memory:".
	// Default: ~/.local/share/cmdspec/specs.db
	Path string

	// MaxOpenConns sets the maximum number of open connections.
	// For SQLite, this should typically be low to avoid lock contention.
	MaxOpenConns int

	// Logger is used for structured logging (optional)
	Logger *slog.Logger
}

// New opens (creating if needed) the database at cfg.Path.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.Path = filepath.Join(homeDir, ".local", "share", "cmdspec", "specs.db")
	}

	memory := cfg.Path == ":memory:"
	connStr := cfg.Path
	if !memory {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		connStr += "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database
	maxConns := cfg.MaxOpenConns
	if maxConns == 0 {
		maxConns = 5
	}
	if memory {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(min(maxConns, 2))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, logger: logger.With("component", "sqlite_store")}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS specs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		mode TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '',
		document TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load retrieves and validates the spec stored under id.
func (s *Store) Load(ctx context.Context, id string) (*spec.CommandSpec, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &cmderrors.ValidationError{Field: "id", Message: "spec ID cannot be empty"}
	}

	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM specs WHERE id = ?`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cmderrors.NotFoundError{Resource: "spec", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spec %s: %w", id, err)
	}

	cs, err := spec.Parse([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("stored spec %s is invalid: %w", id, err)
	}
	return cs, nil
}

// LoadAll returns every valid stored spec ordered by ID. Rows that no longer
// validate are logged and skipped.
func (s *Store) LoadAll(ctx context.Context) ([]*spec.CommandSpec, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM specs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	defer rows.Close()

	var specs []*spec.CommandSpec
	for rows.Next() {
		var id, document string
		if err := rows.Scan(&id, &document); err != nil {
			return nil, fmt.Errorf("failed to scan spec: %w", err)
		}
		cs, err := spec.Parse([]byte(document))
		if err != nil {
			s.logger.Warn("skipping invalid stored spec", "spec_id", id, "error", err)
			continue
		}
		specs = append(specs, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	if specs == nil {
		specs = []*spec.CommandSpec{}
	}
	return specs, nil
}

// Save validates cs and creates or replaces its row.
func (s *Store) Save(ctx context.Context, cs *spec.CommandSpec) error {
	if err := spec.Check(cs); err != nil {
		return err
	}
	document, err := spec.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to encode spec %s: %w", cs.ID, err)
	}

	query := `
	INSERT INTO specs (id, title, mode, tags, document, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		mode = excluded.mode,
		tags = excluded.tags,
		document = excluded.document,
		updated_at = CURRENT_TIMESTAMP
	`
	_, err = s.db.ExecContext(ctx, query,
		cs.ID,
		cs.Title,
		string(cs.Mode),
		strings.Join(cs.Metadata.Tags, ","),
		string(document),
	)
	if err != nil {
		return fmt.Errorf("failed to save spec %s: %w", cs.ID, err)
	}
	s.logger.Debug("spec saved", "spec_id", cs.ID)
	return nil
}

// Delete removes the spec stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &cmderrors.ValidationError{Field: "id", Message: "spec ID cannot be empty"}
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM specs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spec %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete spec %s: %w", id, err)
	}
	if n == 0 {
		return &cmderrors.NotFoundError{Resource: "spec", ID: id}
	}
	return nil
}
