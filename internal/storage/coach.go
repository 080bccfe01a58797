package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymchat/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertRelation activates the coach/student link, creating it if needed.
// It reports whether a new relation was created.
func (db *DB) UpsertRelation(ctx context.Context, coach, student string) (bool, error) {
	var inserted bool
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO coach_student_relations (id, coach_login, student_login, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (coach_login, student_login) DO UPDATE
			SET status = 'active', updated_at = NOW()
		RETURNING (xmax = 0)
	`, uuid.New(), coach, student).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upserting relation: %w", err)
	}
	return inserted, nil
}

// GetRelation returns the link between coach and student, or ErrNotFound.
func (db *DB) GetRelation(ctx context.Context, coach, student string) (*models.CoachRelation, error) {
	var r models.CoachRelation
	err := db.Pool.QueryRow(ctx, `
		SELECT id, coach_login, student_login, status, created_at, updated_at
		FROM coach_student_relations
		WHERE coach_login = $1 AND student_login = $2
	`, coach, student).Scan(&r.ID, &r.CoachLogin, &r.StudentLogin, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying relation: %w", err)
	}
	return &r, nil
}

// ListStudents returns the coach's active students.
func (db *DB) ListStudents(ctx context.Context, coach string) ([]models.Student, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.student_login, COALESCE(u.display_name, ''), r.status, r.id
		FROM coach_student_relations r
		LEFT JOIN users u ON u.login = r.student_login
		WHERE r.coach_login = $1 AND r.status = 'active'
		ORDER BY r.created_at
	`, coach)
	if err != nil {
		return nil, fmt.Errorf("querying students: %w", err)
	}
	defer rows.Close()

	var result []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.Login, &s.DisplayName, &s.Status, &s.RelationID); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
