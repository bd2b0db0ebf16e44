package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"collegeevents/internal/domain"
)

// MemoryStore keeps JSON-encoded values in a map. Values are encoded on Set so
// that callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ domain.KVStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := decode(key, raw, dst); err != nil {
		return true, err
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SetMany(_ context.Context, values map[string]any) error {
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		encoded[key] = raw
	}
	m.mu.Lock()
	for key, raw := range encoded {
		m.entries[key] = raw
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

// SetRaw stores raw bytes under key without encoding them.
func (m *MemoryStore) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.entries[key] = append([]byte(nil), raw...)
	m.mu.Unlock()
}

func (m *MemoryStore) Close() error { return nil }
