package engine

import "errors"

var (
	// ErrNotFound is returned when a suggestion ID is unknown.
	ErrNotFound = errors.New("suggestion not found")

	// ErrNotPending is returned when link or ignore is called on a suggestion
	// that already left pending. Callers must not retry blindly: the action
	// should not have been offered.
	ErrNotPending = errors.New("suggestion is not pending")

	// ErrSlotConflict is returned when the target case slot already holds a
	// different file. The caller decides whether to overwrite; the engine
	// never overwrites silently.
	ErrSlotConflict = errors.New("case slot already holds a different file")

	// ErrSyncInProgress is returned by SyncNow when a sync cycle is already
	// running. Two cycles never overlap.
	ErrSyncInProgress = errors.New("sync already in progress")
)
