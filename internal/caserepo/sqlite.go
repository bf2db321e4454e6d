// Package caserepo provides access to the case/document store the engine
// reconciles into: case lookup and document-slot attachments.
package caserepo

import (
	"database/sql"
	"errors"
	"fmt"

	"casesync/internal/engine"
	"casesync/internal/model"
)

// SQLiteRepository implements engine.CaseRepository over the cases and
// attachments tables. It shares the suggestion store's database connection.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an existing, already-migrated database connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the case with the given ID, or nil if unknown.
func (r *SQLiteRepository) Get(id string) (*model.Case, error) {
	c := &model.Case{}
	err := r.db.QueryRow(`SELECT id, code, display_name FROM cases WHERE id = ?`, id).
		Scan(&c.ID, &c.Code, &c.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding case: %w", err)
	}
	return c, nil
}

// FindByCode returns the case with an exact code match, or nil.
func (r *SQLiteRepository) FindByCode(code string) (*model.Case, error) {
	if code == "" {
		return nil, nil
	}
	c := &model.Case{}
	err := r.db.QueryRow(`SELECT id, code, display_name FROM cases WHERE code = ?`, code).
		Scan(&c.ID, &c.Code, &c.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding case by code: %w", err)
	}
	return c, nil
}

// All returns every known case.
func (r *SQLiteRepository) All() ([]*model.Case, error) {
	rows, err := r.db.Query(`SELECT id, code, display_name FROM cases ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var out []*model.Case
	for rows.Next() {
		c := &model.Case{}
		if err := rows.Scan(&c.ID, &c.Code, &c.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cases: %w", err)
	}
	return out, nil
}

// Create adds a new case.
func (r *SQLiteRepository) Create(c *model.Case) error {
	_, err := r.db.Exec(`INSERT INTO cases (id, code, display_name) VALUES (?, ?, ?)`,
		c.ID, c.Code, c.DisplayName)
	if err != nil {
		return fmt.Errorf("creating case: %w", err)
	}
	return nil
}

// Attachment returns the file attached to a case's document slot, or nil.
func (r *SQLiteRepository) Attachment(caseID, slotKey string) (*model.Attachment, error) {
	att := &model.Attachment{}
	err := r.db.QueryRow(`
		SELECT case_id, slot_key, remote_path, content_hash, size_bytes, mime_type, linked_at
		FROM attachments WHERE case_id = ? AND slot_key = ?`, caseID, slotKey).
		Scan(&att.CaseID, &att.SlotKey, &att.RemotePath, &att.ContentHash,
			&att.SizeBytes, &att.MimeType, &att.LinkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Slot is empty
	}
	if err != nil {
		return nil, fmt.Errorf("finding attachment: %w", err)
	}
	return att, nil
}

// Attach sets the file attached to a case's document slot, replacing any
// previous attachment.
func (r *SQLiteRepository) Attach(att *model.Attachment) error {
	_, err := r.db.Exec(`
		INSERT INTO attachments (case_id, slot_key, remote_path, content_hash, size_bytes, mime_type, linked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (case_id, slot_key) DO UPDATE SET
			remote_path = excluded.remote_path,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			mime_type = excluded.mime_type,
			linked_at = excluded.linked_at`,
		att.CaseID, att.SlotKey, att.RemotePath, att.ContentHash,
		att.SizeBytes, att.MimeType, att.LinkedAt)
	if err != nil {
		return fmt.Errorf("attaching file: %w", err)
	}
	return nil
}

// Compile-time check that SQLiteRepository implements engine.CaseRepository
var _ engine.CaseRepository = (*SQLiteRepository)(nil)
