package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"casesync/internal/engine"
	"casesync/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements engine.SuggestionStore backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for use in tools and tests that need a properly
// configured connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const suggestionColumns = `id, remote_path, display_name, size_bytes, mime_type,
	content_hash, revised_at, guessed_case_id, guessed_slots, status,
	linked_case_id, linked_slot_key, notes`

// Get returns the suggestion with the given ID, or nil if unknown.
func (s *SQLiteStore) Get(id string) (*model.Suggestion, error) {
	row := s.db.QueryRow(`SELECT `+suggestionColumns+` FROM suggestions WHERE id = ?`, id)
	sg, err := scanSuggestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding suggestion: %w", err)
	}
	return sg, nil
}

// Upsert merges suggestions into the store in a single transaction.
func (s *SQLiteStore) Upsert(suggestions []*model.Suggestion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, incoming := range suggestions {
		row := tx.QueryRow(`SELECT `+suggestionColumns+` FROM suggestions WHERE id = ?`, incoming.ID)
		existing, err := scanSuggestion(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("loading suggestion %s: %w", incoming.ID, err)
		}

		merged := mergeSuggestion(existing, incoming)
		slots, err := json.Marshal(merged.GuessedSlots)
		if err != nil {
			return fmt.Errorf("encoding slot guesses: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO suggestions (`+suggestionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				remote_path = excluded.remote_path,
				display_name = excluded.display_name,
				size_bytes = excluded.size_bytes,
				mime_type = excluded.mime_type,
				content_hash = excluded.content_hash,
				revised_at = excluded.revised_at,
				guessed_case_id = excluded.guessed_case_id,
				guessed_slots = excluded.guessed_slots,
				status = excluded.status,
				linked_case_id = excluded.linked_case_id,
				linked_slot_key = excluded.linked_slot_key,
				notes = excluded.notes`,
			merged.ID, merged.RemotePath, merged.DisplayName, merged.SizeBytes,
			merged.MimeType, merged.ContentHash, merged.RevisedAt,
			merged.GuessedCaseID, string(slots), string(merged.Status),
			merged.LinkedCaseID, merged.LinkedSlotKey, merged.Notes)
		if err != nil {
			return fmt.Errorf("upserting suggestion %s: %w", incoming.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkLinked transitions a pending suggestion to linked.
func (s *SQLiteStore) MarkLinked(id, caseID, slotKey string) error {
	return s.transition(id, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE suggestions SET status = ?, linked_case_id = ?, linked_slot_key = ? WHERE id = ?`,
			string(model.StatusLinked), caseID, slotKey, id)
		return err
	})
}

// MarkIgnored transitions a pending suggestion to ignored.
func (s *SQLiteStore) MarkIgnored(id, reason string) error {
	return s.transition(id, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE suggestions SET status = ?, notes = ? WHERE id = ?`,
			string(model.StatusIgnored), reason, id)
		return err
	})
}

// transition performs a guarded pending -> terminal status change. The check
// and update share one transaction so concurrent link/ignore calls are
// linearized: at most one of them wins the transition.
func (s *SQLiteStore) transition(id string, update func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow(`SELECT status FROM suggestions WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading suggestion status: %w", err)
	}
	if model.Status(status) != model.StatusPending {
		return engine.ErrNotPending
	}

	if err := update(tx); err != nil {
		return fmt.Errorf("updating suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ByStatus returns all suggestions with the given status.
func (s *SQLiteStore) ByStatus(status model.Status) ([]*model.Suggestion, error) {
	return s.query(`SELECT `+suggestionColumns+` FROM suggestions WHERE status = ? ORDER BY remote_path`,
		string(status))
}

// ByCase returns all pending suggestions whose guessed case matches.
func (s *SQLiteStore) ByCase(caseID string) ([]*model.Suggestion, error) {
	return s.query(`SELECT `+suggestionColumns+` FROM suggestions
		WHERE guessed_case_id = ? AND status = ? ORDER BY remote_path`,
		caseID, string(model.StatusPending))
}

// ByContentHash returns all suggestions with the given content hash.
func (s *SQLiteStore) ByContentHash(hash string) ([]*model.Suggestion, error) {
	return s.query(`SELECT `+suggestionColumns+` FROM suggestions WHERE content_hash = ?`, hash)
}

// ByNameSize returns all suggestions with the given display name and size.
func (s *SQLiteStore) ByNameSize(name string, size int64) ([]*model.Suggestion, error) {
	return s.query(`SELECT `+suggestionColumns+` FROM suggestions
		WHERE display_name = ? AND size_bytes = ?`, name, size)
}

func (s *SQLiteStore) query(q string, args ...any) ([]*model.Suggestion, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	var out []*model.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestions: %w", err)
	}
	return out, nil
}

// AppendAudit appends one immutable audit record.
func (s *SQLiteStore) AppendAudit(a *model.Audit) error {
	_, err := s.db.Exec(`
		INSERT INTO audits (id, action, case_id, slot_key, remote_path, content_hash, at, actor, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Action), a.CaseID, a.SlotKey, a.RemotePath, a.ContentHash, a.At, a.By, a.Reason)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// Audits returns the most recent audit records, newest first.
func (s *SQLiteStore) Audits(limit int) ([]*model.Audit, error) {
	rows, err := s.db.Query(`
		SELECT id, action, case_id, slot_key, remote_path, content_hash, at, actor, reason
		FROM audits ORDER BY at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var out []*model.Audit
	for rows.Next() {
		a := &model.Audit{}
		var action string
		if err := rows.Scan(&a.ID, &action, &a.CaseID, &a.SlotKey, &a.RemotePath,
			&a.ContentHash, &a.At, &a.By, &a.Reason); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		a.Action = model.AuditAction(action)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return out, nil
}

// DB exposes the underlying connection so the case repository can share it.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row scanner) (*model.Suggestion, error) {
	sg := &model.Suggestion{}
	var slots, status string
	err := row.Scan(&sg.ID, &sg.RemotePath, &sg.DisplayName, &sg.SizeBytes, &sg.MimeType,
		&sg.ContentHash, &sg.RevisedAt, &sg.GuessedCaseID, &slots, &status,
		&sg.LinkedCaseID, &sg.LinkedSlotKey, &sg.Notes)
	if err != nil {
		return nil, err
	}
	sg.Status = model.Status(status)
	if err := json.Unmarshal([]byte(slots), &sg.GuessedSlots); err != nil {
		return nil, fmt.Errorf("decoding slot guesses: %w", err)
	}
	return sg, nil
}

// Compile-time check that SQLiteStore implements engine.SuggestionStore
var _ engine.SuggestionStore = (*SQLiteStore)(nil)
