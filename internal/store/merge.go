package store

import "casesync/internal/model"

// mergeSuggestion applies the upsert rules shared by all store
// implementations. Scan fields are refreshed from the incoming record; the
// status only moves for non-terminal suggestions, so linked and ignored never
// regress to pending, while error returns to pending on a successful rescan
// (and pending moves to error on a failed one).
//
// An incoming error record carries no fingerprint or guesses, so empty scan
// fields never wipe previously known values.
func mergeSuggestion(existing, incoming *model.Suggestion) *model.Suggestion {
	if existing == nil {
		out := *incoming
		return &out
	}

	out := *existing
	out.RemotePath = incoming.RemotePath
	out.DisplayName = incoming.DisplayName
	out.RevisedAt = incoming.RevisedAt
	if incoming.SizeBytes > 0 {
		out.SizeBytes = incoming.SizeBytes
	}
	if incoming.MimeType != "" {
		out.MimeType = incoming.MimeType
	}
	if incoming.ContentHash != "" {
		out.ContentHash = incoming.ContentHash
	}
	if incoming.GuessedCaseID != "" {
		out.GuessedCaseID = incoming.GuessedCaseID
	}
	if len(incoming.GuessedSlots) > 0 {
		out.GuessedSlots = incoming.GuessedSlots
	}

	if !existing.Status.Terminal() {
		out.Status = incoming.Status
		out.Notes = incoming.Notes
	}
	return &out
}
