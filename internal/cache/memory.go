package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	body    []byte
	expires time.Time
}

// Memory is an in-process Views used when no Redis is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ Views = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key(path)]
	m.mu.RUnlock()

	if !ok || (m.ttl > 0 && m.now().After(e.expires)) {
		return nil, ErrMiss
	}

	return e.body, nil
}

func (m *Memory) Set(_ context.Context, path string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key(path)] = entry{body: body, expires: m.now().Add(m.ttl)}

	return nil
}

func (m *Memory) Invalidate(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key(path))

	return nil
}
