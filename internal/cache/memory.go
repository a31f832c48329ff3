package cache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/models"
)

type Memory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]models.User)}
}

func (m *Memory) Read(_ context.Context, key string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[key]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) Write(_ context.Context, key string, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[key] = u
	return nil
}
