// Package store handles SQLite persistence for practice texts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound reports a missing text row.
var ErrNotFound = errors.New("text not found")

// Store wraps SQLite access for the text table.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS data (
			id INTEGER PRIMARY KEY,
			txt TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// TextByID returns the snippet stored under id.
func (s *Store) TextByID(ctx context.Context, id int) (string, error) {
	var txt string
	err := s.db.QueryRowContext(ctx, `SELECT txt FROM data WHERE id = ?`, id).Scan(&txt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return txt, nil
}

// Count returns the number of stored snippets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertTexts appends snippets after the current highest id and returns how many were stored.
// Blank snippets are skipped.
func (s *Store) InsertTexts(ctx context.Context, texts []string) (n int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO data (txt) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, txt := range texts {
		txt = strings.TrimSpace(txt)
		if txt == "" {
			continue
		}
		if _, err = stmt.ExecContext(ctx, txt); err != nil {
			return 0, err
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
