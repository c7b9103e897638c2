package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend is an in-memory implementation of Backend, used in tests and
// for ephemeral sessions.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryBackend creates a new empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string][]byte)}
}

// Get returns the bytes stored under key, or ErrNotFound.
func (m *MemoryBackend) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	value, ok := ns[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, overwriting any previous value.
func (m *MemoryBackend) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	ns[key] = stored
	return nil
}

// Delete removes key from the namespace.
func (m *MemoryBackend) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		return ErrNotFound
	}
	if _, ok := ns[key]; !ok {
		return ErrNotFound
	}
	delete(ns, key)
	return nil
}

// ListNamespace returns all entries in the namespace in key order.
func (m *MemoryBackend) ListNamespace(_ context.Context, namespace string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.data[namespace]
	if !ok {
		return nil, nil
	}
	entries := make([]Entry, 0, len(ns))
	for k, v := range ns {
		value := make([]byte, len(v))
		copy(value, v)
		entries = append(entries, Entry{Key: k, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// ClearNamespace removes every entry in the namespace.
func (m *MemoryBackend) ClearNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
