package metastore

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store used by unit tests and local development.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte // "namespace/key" → document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func memKey(namespace, key string) string { return namespace + "/" + key }

// Read implements Store.
func (m *Memory) Read(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[memKey(namespace, key)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.docs[memKey(namespace, key)] = cp
	return nil
}

// WriteExpiring implements Store. The in-memory store does not
// garbage-collect; the expiry is accepted and ignored.
func (m *Memory) WriteExpiring(ctx context.Context, namespace, key string, value []byte, _ time.Time) error {
	return m.Write(ctx, namespace, key, value)
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, memKey(namespace, key))
	return nil
}

// List implements Store.
func (m *Memory) List(_ context.Context, namespace string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := namespace + "/"
	out := make(map[string][]byte)
	for k, v := range m.docs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[k[len(prefix):]] = cp
		}
	}
	return out, nil
}
