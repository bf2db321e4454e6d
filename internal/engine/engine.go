// Package engine implements the file-reconciliation pipeline: it walks the
// remote tree, fingerprints and deduplicates discovered files, attaches case
// and slot guesses, and maintains the reviewable suggestion queue with its
// audit trail. Exactly one engine instance is authoritative for a given
// remote root; running two against the same root is unsupported.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"casesync/internal/dedup"
	"casesync/internal/match"
)

// Options carries the engine's tunables.
type Options struct {
	// Root is the remote folder the engine reconciles, e.g. "/CASES".
	Root string

	// Interval between scheduled sync cycles.
	Interval time.Duration

	// Parallelism bounds concurrent remote downloads within one cycle.
	Parallelism int
}

// Engine coordinates the sync pipeline and the link/ignore operations.
// Construction does not start polling: the caller drives the lifecycle with
// Start and Stop, and tests can call SyncNow directly without a timer.
type Engine struct {
	store   SuggestionStore
	cases   CaseRepository
	remote  Remote
	cache   ContentCache // may be nil
	matcher *match.Matcher
	dedup   *dedup.Deduplicator
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	opts    Options

	// syncMu serializes sync cycles: the scheduled timer and SyncNow both
	// take it with TryLock, so two cycles never overlap.
	syncMu sync.Mutex

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Engine with the provided collaborators. cache may be nil
// when no content cache is configured.
func New(store SuggestionStore, cases CaseRepository, remote Remote, cache ContentCache,
	matcher *match.Matcher, deduplicator *dedup.Deduplicator,
	logger Logger, clock Clock, idgen IDGenerator, opts Options) *Engine {

	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	return &Engine{
		store:   store,
		cases:   cases,
		remote:  remote,
		cache:   cache,
		matcher: matcher,
		dedup:   deduplicator,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		opts:    opts,
	}
}

// Start begins scheduled polling. The first sync cycle runs immediately,
// later ones on the configured interval. Returns an error if the engine is
// already running.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel != nil {
		return errors.New("engine already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx, e.done)

	e.logger.Info("polling started", "root", e.opts.Root, "interval", e.opts.Interval)
	return nil
}

// Stop cancels the poll timer and waits for any in-flight sync cycle to
// finish. Partial upserts from an aborted cycle are harmless: they are
// idempotent and completed on the next run. Stop is a no-op when the engine
// is not running.
func (e *Engine) Stop() {
	e.runMu.Lock()
	cancel := e.cancel
	done := e.done
	e.cancel = nil
	e.done = nil
	e.runMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		e.logger.Info("polling stopped")
	}
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	e.scheduledSync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scheduledSync(ctx)
		}
	}
}

func (e *Engine) scheduledSync(ctx context.Context) {
	if _, err := e.SyncNow(ctx); err != nil {
		// Only a concurrently running manual sync can cause this; the tick
		// is skipped rather than queued.
		e.logger.Debug("scheduled sync skipped", "error", err)
	}
}
