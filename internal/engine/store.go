package engine

import "casesync/internal/model"

// SuggestionStore is the keyed repository over suggestions and the audit log.
// It is the single shared mutable resource of the engine: implementations
// must be safe under concurrent callers, because link/ignore calls from
// reviewers can arrive at any time, including mid-sync.
type SuggestionStore interface {
	// Get returns the suggestion with the given ID, or nil if unknown.
	Get(id string) (*model.Suggestion, error)

	// Upsert merges suggestions into the store keyed by ID. Unseen IDs are
	// inserted; existing ones have their scan fields refreshed in place.
	// A non-pending status never regresses back to pending, with one
	// exception: error returns to pending on a successful rescan.
	// Upserts are idempotent and commutative with respect to ID.
	Upsert(suggestions []*model.Suggestion) error

	// MarkLinked transitions a pending suggestion to linked, recording the
	// confirmed case and slot alongside the untouched heuristic guesses.
	// Returns ErrNotFound for unknown IDs and ErrNotPending when the
	// suggestion already left pending.
	MarkLinked(id, caseID, slotKey string) error

	// MarkIgnored transitions a pending suggestion to ignored, recording the
	// reason in the notes. Same error contract as MarkLinked.
	MarkIgnored(id, reason string) error

	// ByStatus returns all suggestions with the given status.
	ByStatus(status model.Status) ([]*model.Suggestion, error)

	// ByCase returns all pending suggestions whose guessed case matches.
	ByCase(caseID string) ([]*model.Suggestion, error)

	// ByContentHash returns all suggestions with the given content hash.
	ByContentHash(hash string) ([]*model.Suggestion, error)

	// ByNameSize returns all suggestions with the given display name and size.
	ByNameSize(name string, size int64) ([]*model.Suggestion, error)

	// AppendAudit appends one immutable audit record. Audit entries are never
	// edited or deleted.
	AppendAudit(a *model.Audit) error

	// Audits returns the most recent audit records, newest first.
	Audits(limit int) ([]*model.Audit, error)

	// Close releases the underlying storage.
	Close() error
}
