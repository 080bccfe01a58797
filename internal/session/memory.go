package session

import (
	"context"
	"sync"

	"github.com/claude/gymchat/internal/models"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.Mutex
	last   map[string]models.Record
	hinted map[string]map[string]bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		last:   make(map[string]models.Record),
		hinted: make(map[string]map[string]bool),
	}
}

func (m *Memory) Get(_ context.Context, userID string) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.last[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Set(_ context.Context, userID string, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[userID] = rec.Context()
	return nil
}

func (m *Memory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.last, userID)
	return nil
}

func (m *Memory) MarkHinted(_ context.Context, userID, action string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := m.hinted[userID]
	if actions == nil {
		actions = make(map[string]bool)
		m.hinted[userID] = actions
	}
	if actions[action] {
		return false, nil
	}
	actions[action] = true
	return true, nil
}

func (m *Memory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.last, userID)
	delete(m.hinted, userID)
	return nil
}
