package engine

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"casesync/internal/dedup"
	"casesync/internal/fingerprint"
	"casesync/internal/model"
)

// SyncResult reports the outcome of one sync cycle. Errors are per-file or
// per-page: a failure local to one file never aborts the cycle, and a listing
// failure ends the cycle early with progress from earlier pages preserved.
type SyncResult struct {
	NewOrUpdated []*model.Suggestion
	Errors       []error
}

// SyncNow runs one sync cycle on demand. If a cycle is already running it
// returns ErrSyncInProgress instead of waiting: two cycles never overlap.
func (e *Engine) SyncNow(ctx context.Context) (*SyncResult, error) {
	if !e.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()
	return e.sync(ctx), nil
}

// sync walks the remote tree, fingerprints new or changed files, attaches
// case/slot guesses, filters duplicates, and upserts the results.
func (e *Engine) sync(ctx context.Context) *SyncResult {
	res := &SyncResult{}

	entries := e.listAll(ctx, res)

	// Download only files whose (path, revision) is not already tracked.
	// Suggestions in error state are re-processed so they recover on a
	// successful rescan.
	var todo []model.FileEntry
	for _, entry := range entries {
		id := model.SuggestionID(entry.Path, entry.Revision)
		existing, err := e.store.Get(id)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("looking up %s: %w", entry.Path, err))
			continue
		}
		if existing != nil && existing.Status != model.StatusError {
			continue
		}
		todo = append(todo, entry)
	}

	var (
		mu         sync.Mutex
		candidates []*model.Suggestion
		failures   []*model.Suggestion
	)

	var g errgroup.Group
	g.SetLimit(e.opts.Parallelism)
	for _, entry := range todo {
		g.Go(func() error {
			cand, err := e.processEntry(ctx, entry)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("file skipped", "path", entry.Path, "error", err)
				res.Errors = append(res.Errors, err)
				failures = append(failures, errorSuggestion(entry, err))
				return nil
			}
			candidates = append(candidates, cand)
			return nil
		})
	}
	g.Wait()

	var keep []*model.Suggestion
	for _, c := range dedup.CollapseToLatest(candidates) {
		decision, err := e.dedup.Check(c)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("dedup check for %s: %w", c.RemotePath, err))
			continue
		}
		if decision.Duplicate {
			e.logger.Debug("duplicate dropped", "path", c.RemotePath, "of", decision.Of, "rule", decision.Reason)
			continue
		}
		keep = append(keep, c)
	}
	keep = append(keep, failures...)

	if len(keep) > 0 {
		if err := e.store.Upsert(keep); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("upserting suggestions: %w", err))
		} else {
			res.NewOrUpdated = keep
		}
	}

	e.logger.Info("sync complete",
		"discovered", len(entries),
		"updated", len(res.NewOrUpdated),
		"errors", len(res.Errors))
	return res
}

// listAll walks the cursor-paginated remote listing until the remote signals
// no more pages. On a page failure the cycle keeps the entries already
// discovered and ends the walk early; the next scheduled run retries.
func (e *Engine) listAll(ctx context.Context, res *SyncResult) []model.FileEntry {
	var entries []model.FileEntry
	cursor := ""
	for {
		page, err := e.remote.List(ctx, e.opts.Root, cursor)
		if err != nil {
			e.logger.Error("remote listing failed", "root", e.opts.Root, "error", err)
			res.Errors = append(res.Errors, fmt.Errorf("listing %s: %w", e.opts.Root, err))
			break
		}
		entries = append(entries, page.Entries...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return entries
}

// processEntry downloads, fingerprints and matches one file entry, producing
// a pending suggestion candidate.
func (e *Engine) processEntry(ctx context.Context, entry model.FileEntry) (*model.Suggestion, error) {
	data, err := e.remote.Download(ctx, entry.Path)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", entry.Path, err)
	}

	hash := fingerprint.SumBytes(data)

	if e.cache != nil {
		if err := e.cache.Put(hash, data); err != nil {
			// Cache writes are best-effort; the pipeline works without them.
			e.logger.Warn("content cache write failed", "path", entry.Path, "error", err)
		}
	}

	caseID, err := e.matcher.GuessCase(entry.Path)
	if err != nil {
		// A failed lookup is treated like ambiguity: no guess, human decides.
		e.logger.Warn("case guess failed", "path", entry.Path, "error", err)
		caseID = ""
	}

	return &model.Suggestion{
		ID:            model.SuggestionID(entry.Path, entry.Revision),
		RemotePath:    entry.Path,
		DisplayName:   entry.Name,
		SizeBytes:     int64(len(data)),
		MimeType:      mime.TypeByExtension(strings.ToLower(path.Ext(entry.Name))),
		ContentHash:   hash,
		RevisedAt:     entry.ModifiedAt,
		GuessedCaseID: caseID,
		GuessedSlots:  e.matcher.GuessSlots(entry.Name),
		Status:        model.StatusPending,
	}, nil
}

// errorSuggestion records a per-file pipeline failure so the file is retried
// on the next cycle instead of being surfaced to a reviewer.
func errorSuggestion(entry model.FileEntry, cause error) *model.Suggestion {
	return &model.Suggestion{
		ID:          model.SuggestionID(entry.Path, entry.Revision),
		RemotePath:  entry.Path,
		DisplayName: entry.Name,
		SizeBytes:   entry.SizeBytes,
		RevisedAt:   entry.ModifiedAt,
		Status:      model.StatusError,
		Notes:       cause.Error(),
	}
}
