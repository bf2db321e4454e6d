package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status is the review state of a Suggestion.
type Status string

const (
	StatusPending Status = "pending"
	StatusLinked  Status = "linked"
	StatusIgnored Status = "ignored"
	StatusError   Status = "error"
)

// Terminal reports whether a status can no longer be changed by the
// sync pipeline. Linked and ignored suggestions stay closed; error is
// recoverable on the next successful scan.
func (s Status) Terminal() bool {
	return s == StatusLinked || s == StatusIgnored
}

// AuditAction identifies the kind of decision an audit entry records.
type AuditAction string

const (
	ActionLinked  AuditAction = "linked"
	ActionIgnored AuditAction = "ignored"
	ActionNewCase AuditAction = "new-case"
)

// SlotMatch is one guessed document category with its confidence in (0, 1].
// Slot matches are produced fresh by the matcher on every scan and stored
// as part of a Suggestion; they are never persisted independently.
type SlotMatch struct {
	Key        string  `json:"key"`
	Confidence float64 `json:"confidence"`
}

// Suggestion is a candidate file discovered on the remote, one per distinct
// physical file revision. The ID is derived from (remote path, revision) so
// repeated listings upsert rather than duplicate.
type Suggestion struct {
	ID            string
	RemotePath    string
	DisplayName   string
	SizeBytes     int64
	MimeType      string
	ContentHash   string // SHA-256 hex digest of file bytes
	RevisedAt     time.Time
	GuessedCaseID string      // empty when no confident case guess
	GuessedSlots  []SlotMatch // highest confidence first, at most 3
	Status        Status
	LinkedCaseID  string // reviewer-confirmed case, set on the linked transition
	LinkedSlotKey string
	Notes         string
}

// SuggestionID derives the stable key for a (remote path, revision) pair.
func SuggestionID(remotePath, revision string) string {
	h := sha256.Sum256([]byte(remotePath + "\x00" + revision))
	return hex.EncodeToString(h[:])
}

// Audit is one immutable record of a human or automatic decision.
// Audit entries are only ever appended, never edited or deleted.
type Audit struct {
	ID          string
	Action      AuditAction
	CaseID      string // empty for ignore decisions
	SlotKey     string // empty for ignore decisions
	RemotePath  string
	ContentHash string
	At          time.Time
	By          string // actor
	Reason      string
}

// Case is a case record as seen through the case repository.
type Case struct {
	ID          string
	Code        string // short case code, e.g. "ABC123"; may be empty
	DisplayName string // e.g. "Anna Kowalski"
}

// Attachment is a confirmed file reference held by a case's document slot.
type Attachment struct {
	CaseID      string
	SlotKey     string
	RemotePath  string
	ContentHash string
	SizeBytes   int64
	MimeType    string
	LinkedAt    time.Time
}

// FileEntry is one file reported by the remote storage listing.
type FileEntry struct {
	Path       string // full remote path, e.g. /CASES/SMITH_JOHN/passport.jpg
	Name       string // base name
	SizeBytes  int64
	Revision   string // opaque revision marker (ETag, mtime token, ...)
	ModifiedAt time.Time
}
