// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history journals conversion attempts in a local SQLite database
// and exports them as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cwp/image-converter/pkg/types"
)

const (
	appDir       = "image-converter"
	dbFile       = "history.db"
	defaultLimit = 20

	// timestampStyle is fixed-width so created_at sorts lexically.
	timestampStyle = "2006-01-02T15:04:05.000000000Z07:00"
)

// DefaultPath returns $XDG_DATA_HOME/image-converter/history.db, falling
// back to ~/.local/share when XDG_DATA_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDir, dbFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appDir, dbFile), nil
}

// Store manages the conversion journal.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input_path TEXT NOT NULL,
			output_path TEXT,
			input_format TEXT,
			output_format TEXT,
			status TEXT NOT NULL,
			reason TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends entry to the journal. A zero CreatedAt is stamped with
// the current time.
func (s *Store) Record(ctx context.Context, entry types.HistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (input_path, output_path, input_format, output_format, status, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.InputPath, entry.OutputPath, string(entry.InputFormat), string(entry.OutputFormat),
		string(entry.Status), entry.Reason, entry.CreatedAt.UTC().Format(timestampStyle),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Status keeps only entries with this status when non-empty.
	Status types.ConversionStatus

	// Limit caps the number of entries. Zero uses the default (20); a
	// negative value returns everything.
	Limit int
}

// List returns journal entries, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.HistoryEntry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, input_path, output_path, input_format, output_format, status, reason, created_at
		FROM conversions WHERE 1=1`)
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	qb.WriteString(` ORDER BY created_at DESC, id DESC`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var (
			e                              types.HistoryEntry
			outPath, inFmt, outFmt, reason sql.NullString
			status, created                string
		)
		if err := rows.Scan(&e.ID, &e.InputPath, &outPath, &inFmt, &outFmt, &status, &reason, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.OutputPath = outPath.String
		e.InputFormat = types.ImageFormat(inFmt.String)
		e.OutputFormat = types.ImageFormat(outFmt.String)
		e.Status = types.ConversionStatus(status)
		e.Reason = reason.String
		if t, err := time.Parse(timestampStyle, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every journal entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}
