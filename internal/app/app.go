// Package app is the application layer between the CLI and the engine. It
// constructs all collaborators from config, exposes high-level operations,
// and manages resource lifecycles on Close.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"casesync/internal/cache"
	"casesync/internal/caserepo"
	"casesync/internal/config"
	"casesync/internal/dedup"
	"casesync/internal/encryption"
	"casesync/internal/engine"
	"casesync/internal/match"
	"casesync/internal/model"
	"casesync/internal/remote"
	"casesync/internal/store"
)

// App wires the suggestion store, case repository, remote client, content
// cache and engine together from a Config. The caller must call Close when
// done.
type App struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	cases     *caserepo.SQLiteRepository
	cache     engine.ContentCache
	encryptor encryption.Encryptor
	engine    *engine.Engine
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating suggestion store: %w", err)
	}

	cases := caserepo.NewSQLiteRepository(st.DB())

	rc, err := remote.NewClientFromConfig(ctx, cfg.Remote)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating remote client: %w", err)
	}

	cc, err := cache.NewCacheFromConfig(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating content cache: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	matcher := match.New(cfg.Root, cases, cfg.MatchThreshold)
	deduplicator := dedup.New(st, cfg.DedupWindow())

	eng := engine.New(st, cases, rc, cc, matcher, deduplicator,
		&slogAdapter{l: logger}, engine.RealClock{}, engine.UUIDGenerator{},
		engine.Options{
			Root:        cfg.Root,
			Interval:    cfg.PollInterval(),
			Parallelism: cfg.Parallelism,
		})

	return &App{
		cfg:       cfg,
		store:     st,
		cases:     cases,
		cache:     cc,
		encryptor: encryption.NewAgeEncryptor(cfg.Encryption),
		engine:    eng,
		logFile:   logFile,
	}, nil
}

// Sync runs one sync cycle against the remote and returns its result.
func (a *App) Sync(ctx context.Context) (*engine.SyncResult, error) {
	return a.engine.SyncNow(ctx)
}

// Serve starts scheduled polling and blocks until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.engine.Stop()
	return nil
}

// Pending returns the pending suggestion queue. When caseID is non-empty the
// queue is filtered to suggestions guessed for that case.
func (a *App) Pending(caseID string) ([]*model.Suggestion, error) {
	if caseID != "" {
		return a.store.ByCase(caseID)
	}
	return a.store.ByStatus(model.StatusPending)
}

// Link attaches a pending suggestion to a case's document slot.
func (a *App) Link(suggestionID, caseID, slotKey string, overwrite bool) error {
	return a.engine.Link(suggestionID, caseID, slotKey, a.actor(), overwrite)
}

// LinkNewCase creates a new case named caseName and links the suggestion to
// it. Returns the new case's ID.
func (a *App) LinkNewCase(suggestionID, caseName, slotKey string) (string, error) {
	return a.engine.LinkNewCase(suggestionID, caseName, slotKey, a.actor())
}

// Ignore marks a pending suggestion as not relevant to any case.
func (a *App) Ignore(suggestionID, reason string) error {
	return a.engine.Ignore(suggestionID, reason, a.actor())
}

// Audits returns the most recent audit entries, newest first.
func (a *App) Audits(limit int) ([]*model.Audit, error) {
	return a.store.Audits(limit)
}

// Cases returns all known cases.
func (a *App) Cases() ([]*model.Case, error) {
	return a.cases.All()
}

// SetupEncryption generates the age key pair for an encrypted content cache.
func (a *App) SetupEncryption(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// CacheEncrypted reports whether the configured content cache stores
// ciphertext and thus needs a passphrase for reads.
func (a *App) CacheEncrypted() bool {
	return a.cache != nil && a.cache.Encrypted()
}

// ExportContent writes the cached bytes for a content hash to w, decrypting
// them when the cache is encrypted. passphrase is only consulted for an
// encrypted cache.
func (a *App) ExportContent(hash string, w io.Writer, passphrase string) error {
	if a.cache == nil {
		return fmt.Errorf("no content cache configured")
	}

	if !a.cache.Encrypted() {
		return a.cache.Get(hash, w)
	}

	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	var ciphertext bytes.Buffer
	if err := a.cache.Get(hash, &ciphertext); err != nil {
		return err
	}
	if err := dc.Decrypt(&ciphertext, w); err != nil {
		return fmt.Errorf("decrypting content: %w", err)
	}
	return nil
}

func (a *App) actor() string {
	if a.cfg.Actor != "" {
		return a.cfg.Actor
	}
	return "casesync"
}

// Close releases the store connection and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
