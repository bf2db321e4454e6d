package engine

import (
	"fmt"

	"casesync/internal/model"
)

// Link commits a reviewer-confirmed (suggestion, case, slot) triple: it
// attaches the file to the case's document slot, transitions the suggestion
// to linked, and appends one linked audit entry.
//
// If the target slot already holds a different content hash the call fails
// with ErrSlotConflict unless overwrite is set; overwriting is always an
// explicit caller decision.
func (e *Engine) Link(suggestionID, caseID, slotKey, actor string, overwrite bool) error {
	if !model.IsSlotKey(slotKey) {
		return fmt.Errorf("unknown slot key: %s", slotKey)
	}

	s, err := e.store.Get(suggestionID)
	if err != nil {
		return fmt.Errorf("loading suggestion: %w", err)
	}
	if s == nil {
		return ErrNotFound
	}
	if s.Status != model.StatusPending {
		return ErrNotPending
	}

	c, err := e.cases.Get(caseID)
	if err != nil {
		return fmt.Errorf("loading case: %w", err)
	}
	if c == nil {
		return fmt.Errorf("unknown case: %s", caseID)
	}

	existing, err := e.cases.Attachment(caseID, slotKey)
	if err != nil {
		return fmt.Errorf("checking slot attachment: %w", err)
	}
	overwrote := false
	if existing != nil && existing.ContentHash != s.ContentHash {
		if !overwrite {
			return fmt.Errorf("case %s slot %s: %w", caseID, slotKey, ErrSlotConflict)
		}
		overwrote = true
	}

	// Claim the pending -> linked transition before touching any case data.
	// The store guard admits exactly one caller per suggestion; a losing
	// concurrent call exits here without attaching anywhere.
	if err := e.store.MarkLinked(suggestionID, caseID, slotKey); err != nil {
		return err
	}

	if err := e.cases.Attach(&model.Attachment{
		CaseID:      caseID,
		SlotKey:     slotKey,
		RemotePath:  s.RemotePath,
		ContentHash: s.ContentHash,
		SizeBytes:   s.SizeBytes,
		MimeType:    s.MimeType,
		LinkedAt:    e.clock.Now(),
	}); err != nil {
		e.logger.Error("attach failed after link transition",
			"id", suggestionID, "case", caseID, "slot", slotKey, "error", err)
		return fmt.Errorf("suggestion %s marked linked but attaching to case %s failed: %w",
			suggestionID, caseID, err)
	}

	reason := ""
	if overwrote {
		reason = "overwrote existing attachment"
	}
	if err := e.store.AppendAudit(&model.Audit{
		ID:          e.idgen.New(),
		Action:      model.ActionLinked,
		CaseID:      caseID,
		SlotKey:     slotKey,
		RemotePath:  s.RemotePath,
		ContentHash: s.ContentHash,
		At:          e.clock.Now(),
		By:          actor,
		Reason:      reason,
	}); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}

	e.logger.Info("suggestion linked", "id", suggestionID, "case", caseID, "slot", slotKey, "by", actor)
	return nil
}

// LinkNewCase creates a new case for the suggestion and links it in one
// operation. It appends a new-case audit entry for the creation, then the
// usual linked entry.
func (e *Engine) LinkNewCase(suggestionID, caseName, slotKey, actor string) (string, error) {
	// Validate everything Link will check before creating the case, so a
	// doomed call leaves no orphan case and no audit entry behind.
	if !model.IsSlotKey(slotKey) {
		return "", fmt.Errorf("unknown slot key: %s", slotKey)
	}

	s, err := e.store.Get(suggestionID)
	if err != nil {
		return "", fmt.Errorf("loading suggestion: %w", err)
	}
	if s == nil {
		return "", ErrNotFound
	}
	if s.Status != model.StatusPending {
		return "", ErrNotPending
	}

	c := &model.Case{ID: e.idgen.New(), DisplayName: caseName}
	if err := e.cases.Create(c); err != nil {
		return "", fmt.Errorf("creating case: %w", err)
	}

	if err := e.store.AppendAudit(&model.Audit{
		ID:          e.idgen.New(),
		Action:      model.ActionNewCase,
		CaseID:      c.ID,
		RemotePath:  s.RemotePath,
		ContentHash: s.ContentHash,
		At:          e.clock.Now(),
		By:          actor,
		Reason:      fmt.Sprintf("case created for %s", caseName),
	}); err != nil {
		return "", fmt.Errorf("appending audit entry: %w", err)
	}

	if err := e.Link(suggestionID, c.ID, slotKey, actor, false); err != nil {
		return "", err
	}
	return c.ID, nil
}

// Ignore records a reviewer's decision to not attach the file anywhere: the
// suggestion transitions to ignored and one ignored audit entry is appended.
// No case data is touched.
func (e *Engine) Ignore(suggestionID, reason, actor string) error {
	s, err := e.store.Get(suggestionID)
	if err != nil {
		return fmt.Errorf("loading suggestion: %w", err)
	}
	if s == nil {
		return ErrNotFound
	}
	if s.Status != model.StatusPending {
		return ErrNotPending
	}

	if err := e.store.MarkIgnored(suggestionID, reason); err != nil {
		return err
	}

	if err := e.store.AppendAudit(&model.Audit{
		ID:          e.idgen.New(),
		Action:      model.ActionIgnored,
		RemotePath:  s.RemotePath,
		ContentHash: s.ContentHash,
		At:          e.clock.Now(),
		By:          actor,
		Reason:      reason,
	}); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}

	e.logger.Info("suggestion ignored", "id", suggestionID, "by", actor)
	return nil
}
