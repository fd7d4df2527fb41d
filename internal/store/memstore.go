package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used by tests and document seeding.
// Safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any

	// FailWith, when set, makes every call return that error. Lets tests
	// exercise the transient-failure paths.
	FailWith error
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]map[string]any)}
}

func (m *MemStore) GetDocument(_ context.Context, path string) (map[string]any, bool, error) {
	if m.FailWith != nil {
		return nil, false, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	return doc, ok, nil
}

func (m *MemStore) SetDocument(_ context.Context, path string, data map[string]any) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = data
	return nil
}

func (m *MemStore) DeleteDocument(_ context.Context, path string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
	return nil
}

func (m *MemStore) ListCollection(_ context.Context, path string) ([]Entry, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := path + "/"
	var out []Entry
	for p, doc := range m.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		key := strings.TrimPrefix(p, prefix)
		if key == "" || strings.Contains(key, "/") {
			continue
		}
		out = append(out, Entry{Key: key, Data: doc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemStore) Close() error { return nil }
