// Package dedup decides whether a freshly observed remote file is already
// known. Remote listings can report the same logical file several times
// across paginated pages or editor save-churn; without this filtering the
// review queue would show the same document repeatedly.
package dedup

import (
	"fmt"
	"time"

	"casesync/internal/model"
)

// DefaultWindow is the near-duplicate time window: two observations of the
// same name and size whose revision timestamps fall within it are treated as
// one logical event (e.g. a metadata-only touch).
const DefaultWindow = 5 * time.Minute

// Index is the narrow view of the suggestion store the deduplicator queries.
type Index interface {
	// ByContentHash returns all suggestions with the given content hash.
	ByContentHash(hash string) ([]*model.Suggestion, error)

	// ByNameSize returns all suggestions with the given display name and size.
	ByNameSize(name string, size int64) ([]*model.Suggestion, error)
}

// Decision is the result of checking one candidate.
type Decision struct {
	Duplicate bool
	Of        string // ID of the suggestion the candidate duplicates
	Reason    string // "exact" or "near", for logging
}

// Deduplicator checks candidates against previously stored suggestions.
type Deduplicator struct {
	index  Index
	window time.Duration
}

// New creates a Deduplicator over the given index. A non-positive window
// selects DefaultWindow.
func New(index Index, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{index: index, window: window}
}

// Check evaluates the two duplicate rules in order:
//
//  1. Exact: an existing suggestion has the same content hash AND the same
//     remote path — a re-observation of the same physical file. Two copies of
//     identical bytes at different paths are NOT duplicates; each remote copy
//     gets its own suggestion.
//  2. Near: an existing suggestion shares display name and size and its
//     revision timestamp is within the window — the same event seen through a
//     metadata touch.
//
// A candidate is never matched against its own stored record (same ID), so a
// suggestion that previously failed with status error can be re-processed.
func (d *Deduplicator) Check(c *model.Suggestion) (Decision, error) {
	byHash, err := d.index.ByContentHash(c.ContentHash)
	if err != nil {
		return Decision{}, fmt.Errorf("querying by content hash: %w", err)
	}
	for _, existing := range byHash {
		if existing.ID == c.ID {
			continue
		}
		if existing.RemotePath == c.RemotePath {
			return Decision{Duplicate: true, Of: existing.ID, Reason: "exact"}, nil
		}
	}

	byName, err := d.index.ByNameSize(c.DisplayName, c.SizeBytes)
	if err != nil {
		return Decision{}, fmt.Errorf("querying by name and size: %w", err)
	}
	for _, existing := range byName {
		if existing.ID == c.ID {
			continue
		}
		if withinWindow(existing.RevisedAt, c.RevisedAt, d.window) {
			return Decision{Duplicate: true, Of: existing.ID, Reason: "near"}, nil
		}
	}

	return Decision{}, nil
}

// CollapseToLatest collapses multiple observations of the same physical file
// within one batch, keyed by (content hash, remote path), keeping only the
// entry with the most recent revision timestamp. Ordering of the surviving
// entries follows their first appearance in the batch.
func CollapseToLatest(batch []*model.Suggestion) []*model.Suggestion {
	type key struct {
		hash string
		path string
	}

	latest := make(map[key]*model.Suggestion, len(batch))
	var order []key
	for _, s := range batch {
		k := key{hash: s.ContentHash, path: s.RemotePath}
		if existing, ok := latest[k]; ok {
			if s.RevisedAt.After(existing.RevisedAt) {
				latest[k] = s
			}
			continue
		}
		latest[k] = s
		order = append(order, k)
	}

	out := make([]*model.Suggestion, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
