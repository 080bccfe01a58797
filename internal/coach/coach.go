// Package coach implements coach mode: a user flagged as coach may authorize
// students and log sets on their behalf.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/gymchat/internal/models"
	"github.com/claude/gymchat/internal/storage"
)

var (
	ErrNotCoach       = errors.New("coach mode is not enabled")
	ErrSelf           = errors.New("cannot authorize yourself")
	ErrUnknownStudent = errors.New("student has never used the service")
	ErrNotAuthorized  = errors.New("no active coach relation")
)

// Store is the persistence the service needs. Both storage.DB and
// storage.Memory satisfy it.
type Store interface {
	GetUser(ctx context.Context, login string) (*models.User, error)
	SetCoach(ctx context.Context, login string, enabled bool) error
	UpsertRelation(ctx context.Context, coach, student string) (bool, error)
	GetRelation(ctx context.Context, coach, student string) (*models.CoachRelation, error)
	ListStudents(ctx context.Context, coach string) ([]models.Student, error)
}

// Service applies coach-mode rules on top of a Store.
type Service struct {
	store Store
	log   *slog.Logger
}

// New creates a Service.
func New(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// SetMode turns coach mode on or off for login.
func (s *Service) SetMode(ctx context.Context, login string, enabled bool) error {
	if err := s.store.SetCoach(ctx, login, enabled); err != nil {
		return fmt.Errorf("setting coach mode: %w", err)
	}
	s.log.Info("coach mode changed", "user", login, "enabled", enabled)
	return nil
}

// AuthorizeStudent links student to coach. Existing relations are
// re-activated. It reports whether a new relation was created.
func (s *Service) AuthorizeStudent(ctx context.Context, coach, student string) (bool, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return false, ErrUnknownStudent
	}
	if student == coach {
		return false, ErrSelf
	}
	if err := s.requireCoach(ctx, coach); err != nil {
		return false, err
	}
	if _, err := s.store.GetUser(ctx, student); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, ErrUnknownStudent
		}
		return false, fmt.Errorf("looking up student: %w", err)
	}

	created, err := s.store.UpsertRelation(ctx, coach, student)
	if err != nil {
		return false, err
	}
	s.log.Info("student authorized", "coach", coach, "student", student, "created", created)
	return created, nil
}

// Students lists the coach's active students.
func (s *Service) Students(ctx context.Context, coach string) ([]models.Student, error) {
	if err := s.requireCoach(ctx, coach); err != nil {
		return nil, err
	}
	students, err := s.store.ListStudents(ctx, coach)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// ActingUser returns the user an interpretation should run as. An empty
// student means the caller acts for themselves.
func (s *Service) ActingUser(ctx context.Context, caller, student string) (string, error) {
	student = strings.TrimSpace(student)
	if student == "" || student == caller {
		return caller, nil
	}
	if err := s.requireCoach(ctx, caller); err != nil {
		return "", err
	}
	rel, err := s.store.GetRelation(ctx, caller, student)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotAuthorized
	}
	if err != nil {
		return "", fmt.Errorf("looking up relation: %w", err)
	}
	if rel.Status != models.RelationActive {
		return "", ErrNotAuthorized
	}
	return student, nil
}

func (s *Service) requireCoach(ctx context.Context, login string) error {
	u, err := s.store.GetUser(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotCoach
	}
	if err != nil {
		return fmt.Errorf("looking up coach: %w", err)
	}
	if !u.IsCoach {
		return ErrNotCoach
	}
	return nil
}
