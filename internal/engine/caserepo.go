package engine

import "casesync/internal/model"

// CaseRepository is the narrow contract to the case/document store. The case
// store itself is an external collaborator; the engine only looks cases up,
// creates them on explicit reviewer request, and attaches confirmed files to
// document slots.
type CaseRepository interface {
	// Get returns the case with the given ID, or nil if unknown.
	Get(id string) (*model.Case, error)

	// FindByCode returns the case with an exact code match, or nil.
	FindByCode(code string) (*model.Case, error)

	// All returns every known case.
	All() ([]*model.Case, error)

	// Create adds a new case.
	Create(c *model.Case) error

	// Attachment returns the file currently attached to a case's document
	// slot, or nil when the slot is empty.
	Attachment(caseID, slotKey string) (*model.Attachment, error)

	// Attach sets the file attached to a case's document slot, replacing any
	// previous attachment.
	Attach(att *model.Attachment) error
}
