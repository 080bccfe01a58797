package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymchat/internal/models"
	"github.com/jackc/pgx/v5"
)

// EnsureUser creates the user on first sight. Updates last_seen and
// display_name on each call.
func (db *DB) EnsureUser(ctx context.Context, login, displayName string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
	`, login, displayName)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given login, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := db.Pool.QueryRow(ctx,
		`SELECT login, display_name, is_coach, last_seen FROM users WHERE login = $1`,
		login).Scan(&u.Login, &u.DisplayName, &u.IsCoach, &u.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// SetCoach toggles coach mode for a user.
func (db *DB) SetCoach(ctx context.Context, login string, enabled bool) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE users SET is_coach = $2 WHERE login = $1`, login, enabled)
	if err != nil {
		return fmt.Errorf("updating coach mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
