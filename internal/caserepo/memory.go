package caserepo

import (
	"fmt"
	"sort"
	"sync"

	"casesync/internal/engine"
	"casesync/internal/model"
)

// MemoryRepository is an in-memory implementation of engine.CaseRepository.
// Safe for concurrent use.
type MemoryRepository struct {
	mu          sync.RWMutex
	cases       map[string]*model.Case       // id -> case
	attachments map[string]*model.Attachment // caseID/slotKey -> attachment
}

// NewMemoryRepository creates a new empty in-memory case repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		cases:       make(map[string]*model.Case),
		attachments: make(map[string]*model.Attachment),
	}
}

func attachmentKey(caseID, slotKey string) string {
	return caseID + "/" + slotKey
}

// Get returns the case with the given ID, or nil if unknown.
func (r *MemoryRepository) Get(id string) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

// FindByCode returns the case with an exact code match, or nil.
func (r *MemoryRepository) FindByCode(code string) (*model.Case, error) {
	if code == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cases {
		if c.Code == code {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

// All returns every known case.
func (r *MemoryRepository) All() ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// Create adds a new case.
func (r *MemoryRepository) Create(c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return fmt.Errorf("case already exists: %s", c.ID)
	}
	copied := *c
	r.cases[c.ID] = &copied
	return nil
}

// Attachment returns the file attached to a case's document slot, or nil.
func (r *MemoryRepository) Attachment(caseID, slotKey string) (*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	att, ok := r.attachments[attachmentKey(caseID, slotKey)]
	if !ok {
		return nil, nil
	}
	out := *att
	return &out, nil
}

// Attach sets the file attached to a case's document slot.
func (r *MemoryRepository) Attach(att *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Mirrors the cases foreign key the SQLite repository enforces.
	if _, ok := r.cases[att.CaseID]; !ok {
		return fmt.Errorf("unknown case: %s", att.CaseID)
	}
	copied := *att
	r.attachments[attachmentKey(att.CaseID, att.SlotKey)] = &copied
	return nil
}

// Compile-time check that MemoryRepository implements engine.CaseRepository
var _ engine.CaseRepository = (*MemoryRepository)(nil)
