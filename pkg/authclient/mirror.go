package authclient

import (
	"context"
	"sync"
)

// Keys written to a Mirror.
const (
	mirrorKeyUser  = "user"
	mirrorKeyToken = "token"
)

// Mirror is durable key/value storage for the current user and token.
// Get reports ok=false for a missing key.
type Mirror interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryMirror is a Mirror that lives only as long as the process.
type MemoryMirror struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{values: make(map[string]string)}
}

func (m *MemoryMirror) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryMirror) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryMirror) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
