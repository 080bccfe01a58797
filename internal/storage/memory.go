package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/claude/gymchat/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process implementation of the DB repository methods, used
// for local runs without PostgreSQL and in tests.
type Memory struct {
	mu        sync.Mutex
	now       func() time.Time
	records   []models.Record
	users     map[string]models.User
	relations map[[2]string]models.CoachRelation
}

// NewMemory returns an empty store that timestamps with now.
// A nil now uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:       now,
		users:     make(map[string]models.User),
		relations: make(map[[2]string]models.CoachRelation),
	}
}

// AddRecord stores rec with a fresh ID. Timestamps are kept strictly
// increasing per user so ordering is total.
func (m *Memory) AddRecord(_ context.Context, rec models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = uuid.New()
	rec.CreatedAt = m.now()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID != rec.UserID {
			continue
		}
		if !rec.CreatedAt.After(m.records[i].CreatedAt) {
			rec.CreatedAt = m.records[i].CreatedAt.Add(time.Microsecond)
		}
		break
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *Memory) QueryByUserSince(_ context.Context, userID string, since time.Time) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Record
	for _, r := range m.records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) CountByUserActionSince(_ context.Context, userID, action string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.records {
		if r.UserID == userID && r.Action == action && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteMostRecent(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.latestIndex(userID)
	if i < 0 {
		return false, nil
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return true, nil
}

func (m *Memory) MostRecent(_ context.Context, userID string) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.latestIndex(userID)
	if i < 0 {
		return nil, nil
	}
	r := m.records[i]
	return &r, nil
}

func (m *Memory) latestIndex(userID string) int {
	idx := -1
	for i, r := range m.records {
		if r.UserID != userID {
			continue
		}
		if idx < 0 || !r.CreatedAt.Before(m.records[idx].CreatedAt) {
			idx = i
		}
	}
	return idx
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) EnsureUser(_ context.Context, login, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.users[login]
	u.Login = login
	if displayName != "" {
		u.DisplayName = displayName
	}
	u.LastSeen = m.now()
	m.users[login] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[login]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) SetCoach(_ context.Context, login string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[login]
	if !ok {
		return ErrNotFound
	}
	u.IsCoach = enabled
	m.users[login] = u
	return nil
}

func (m *Memory) UpsertRelation(_ context.Context, coach, student string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [2]string{coach, student}
	now := m.now()
	r, ok := m.relations[key]
	if !ok {
		r = models.CoachRelation{ID: uuid.New(), CoachLogin: coach, StudentLogin: student, CreatedAt: now}
	}
	r.Status = models.RelationActive
	r.UpdatedAt = now
	m.relations[key] = r
	return !ok, nil
}

func (m *Memory) GetRelation(_ context.Context, coach, student string) (*models.CoachRelation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.relations[[2]string{coach, student}]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListStudents(_ context.Context, coach string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rels []models.CoachRelation
	for _, r := range m.relations {
		if r.CoachLogin == coach && r.Status == models.RelationActive {
			rels = append(rels, r)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].CreatedAt.Before(rels[j].CreatedAt) })

	result := make([]models.Student, 0, len(rels))
	for _, r := range rels {
		result = append(result, models.Student{
			Login:       r.StudentLogin,
			DisplayName: m.users[r.StudentLogin].DisplayName,
			Status:      r.Status,
			RelationID:  r.ID,
		})
	}
	return result, nil
}
