package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/gymchat/internal/models"
	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a local SQLite file so session context survives
// restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the session database at dir/session.db.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "session.db"))
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS last_records (
			user_id    TEXT PRIMARY KEY,
			action     TEXT NOT NULL,
			weight     REAL NOT NULL,
			reps       INTEGER NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hinted_actions (
			user_id TEXT NOT NULL,
			action  TEXT NOT NULL,
			PRIMARY KEY (user_id, action)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating session tables: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, userID string) (*models.Record, error) {
	var rec models.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT action, weight, reps FROM last_records WHERE user_id = ?`,
		userID,
	).Scan(&rec.Action, &rec.Weight, &rec.Reps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last record: %w", err)
	}
	return &rec, nil
}

func (s *SQLite) Set(ctx context.Context, userID string, rec models.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO last_records (user_id, action, weight, reps, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		userID, rec.Action, rec.Weight, rec.Reps,
	)
	if err != nil {
		return fmt.Errorf("writing last record: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM last_records WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing last record: %w", err)
	}
	return nil
}

func (s *SQLite) MarkHinted(ctx context.Context, userID, action string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hinted_actions (user_id, action) VALUES (?, ?)`,
		userID, action,
	)
	if err != nil {
		return false, fmt.Errorf("marking hint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking hint: %w", err)
	}
	return n == 1, nil
}

func (s *SQLite) Reset(ctx context.Context, userID string) error {
	if err := s.Clear(ctx, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hinted_actions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing hints: %w", err)
	}
	return nil
}

// Close closes the session database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
