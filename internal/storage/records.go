package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymchat/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, user_id, action, weight, reps, sets, created_at`

// AddRecord inserts rec and returns it with the storage-assigned ID and
// creation time.
func (db *DB) AddRecord(ctx context.Context, rec models.Record) (models.Record, error) {
	rec.ID = uuid.New()
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO records (id, user_id, action, weight, reps, sets)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		rec.ID, rec.UserID, rec.Action, rec.Weight, rec.Reps, rec.Sets,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return models.Record{}, fmt.Errorf("inserting record: %w", err)
	}
	return rec, nil
}

// QueryByUserSince returns a user's records created at or after since,
// newest first.
func (db *DB) QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.Record, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM records
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC, seq DESC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CountByUserActionSince counts a user's sets of action created at or after since.
func (db *DB) CountByUserActionSince(ctx context.Context, userID, action string, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM records
		 WHERE user_id = $1 AND action = $2 AND created_at >= $3`,
		userID, action, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// DeleteMostRecent removes the user's newest record. It reports false when
// the user has no records.
func (db *DB) DeleteMostRecent(ctx context.Context, userID string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM records WHERE id = (
			SELECT id FROM records WHERE user_id = $1
			ORDER BY created_at DESC, seq DESC LIMIT 1
		)`, userID)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MostRecent returns the user's newest record, or nil when there is none.
func (db *DB) MostRecent(ctx context.Context, userID string) (*models.Record, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM records WHERE user_id = $1
		 ORDER BY created_at DESC, seq DESC LIMIT 1`, userID)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest record: %w", err)
	}
	return &r, nil
}

func scanRecord(row pgx.Row) (models.Record, error) {
	var r models.Record
	err := row.Scan(&r.ID, &r.UserID, &r.Action, &r.Weight, &r.Reps, &r.Sets, &r.CreatedAt)
	return r, err
}
