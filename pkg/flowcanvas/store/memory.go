package store

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory workflow store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]Workflow
	closed bool
}

// NewMemoryStore creates a new in-memory workflow store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Workflow),
	}
}

// Load implements Store.
func (m *MemoryStore) Load(id string) (*Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	w, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneWorkflow(w), nil
}

// Save implements Store.
func (m *MemoryStore) Save(id, name string, data json.RawMessage) (*Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	w, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}

	w.Name = name
	w.Data = cloneRaw(data)
	w.UpdatedAt = time.Now().UTC()
	m.data[id] = w
	return cloneWorkflow(w), nil
}

// Create implements Store.
func (m *MemoryStore) Create(name string, data json.RawMessage) (*Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	now := time.Now().UTC()
	w := Workflow{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      cloneRaw(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.data[w.ID] = w
	return cloneWorkflow(w), nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, id)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	summaries := make([]Summary, 0, len(m.data))
	for _, w := range m.data {
		summaries = append(summaries, Summary{
			ID:        w.ID,
			Name:      w.Name,
			UpdatedAt: w.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored workflows. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// cloneWorkflow copies a workflow so callers cannot mutate stored data.
func cloneWorkflow(w Workflow) *Workflow {
	c := w
	c.Data = cloneRaw(w.Data)
	return &c
}

// cloneRaw copies a raw JSON blob.
func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
