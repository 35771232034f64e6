package storage

import "sync"

// MemoryStore is a process-local KeyValueStore
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	subs   subscribers
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	m.subs.notify(key)
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.values, key)
	}
	m.mu.Unlock()
	m.subs.notify(keys...)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	m.values = make(map[string]string)
	m.mu.Unlock()
	m.subs.notify(keys...)
	return nil
}

func (m *MemoryStore) Subscribe(fn func(key string)) func() {
	return m.subs.add(fn)
}
