package store

import (
	"sort"
	"sync"

	"casesync/internal/engine"
	"casesync/internal/model"
)

// MemoryStore is an in-memory implementation of engine.SuggestionStore,
// useful for testing and ephemeral runs. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	suggestions map[string]*model.Suggestion
	audits      []*model.Audit
}

// NewMemoryStore creates a new empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{suggestions: make(map[string]*model.Suggestion)}
}

// Get returns the suggestion with the given ID, or nil if unknown.
func (m *MemoryStore) Get(id string) (*model.Suggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.suggestions[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

// Upsert merges suggestions into the store keyed by ID.
func (m *MemoryStore) Upsert(suggestions []*model.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, incoming := range suggestions {
		m.suggestions[incoming.ID] = mergeSuggestion(m.suggestions[incoming.ID], incoming)
	}
	return nil
}

// MarkLinked transitions a pending suggestion to linked.
func (m *MemoryStore) MarkLinked(id, caseID, slotKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.suggestions[id]
	if !ok {
		return engine.ErrNotFound
	}
	if s.Status != model.StatusPending {
		return engine.ErrNotPending
	}
	s.Status = model.StatusLinked
	s.LinkedCaseID = caseID
	s.LinkedSlotKey = slotKey
	return nil
}

// MarkIgnored transitions a pending suggestion to ignored.
func (m *MemoryStore) MarkIgnored(id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.suggestions[id]
	if !ok {
		return engine.ErrNotFound
	}
	if s.Status != model.StatusPending {
		return engine.ErrNotPending
	}
	s.Status = model.StatusIgnored
	s.Notes = reason
	return nil
}

// ByStatus returns all suggestions with the given status.
func (m *MemoryStore) ByStatus(status model.Status) ([]*model.Suggestion, error) {
	return m.filter(func(s *model.Suggestion) bool {
		return s.Status == status
	}), nil
}

// ByCase returns all pending suggestions whose guessed case matches.
func (m *MemoryStore) ByCase(caseID string) ([]*model.Suggestion, error) {
	return m.filter(func(s *model.Suggestion) bool {
		return s.GuessedCaseID == caseID && s.Status == model.StatusPending
	}), nil
}

// ByContentHash returns all suggestions with the given content hash.
func (m *MemoryStore) ByContentHash(hash string) ([]*model.Suggestion, error) {
	return m.filter(func(s *model.Suggestion) bool {
		return s.ContentHash == hash
	}), nil
}

// ByNameSize returns all suggestions with the given display name and size.
func (m *MemoryStore) ByNameSize(name string, size int64) ([]*model.Suggestion, error) {
	return m.filter(func(s *model.Suggestion) bool {
		return s.DisplayName == name && s.SizeBytes == size
	}), nil
}

func (m *MemoryStore) filter(keep func(*model.Suggestion) bool) []*model.Suggestion {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Suggestion
	for _, s := range m.suggestions {
		if keep(s) {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemotePath < out[j].RemotePath })
	return out
}

// AppendAudit appends one immutable audit record.
func (m *MemoryStore) AppendAudit(a *model.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *a
	m.audits = append(m.audits, &copied)
	return nil
}

// Audits returns the most recent audit records, newest first.
func (m *MemoryStore) Audits(limit int) ([]*model.Audit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Audit
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *m.audits[i]
		out = append(out, &copied)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Compile-time check that MemoryStore implements engine.SuggestionStore
var _ engine.SuggestionStore = (*MemoryStore)(nil)
