// Package cache stores downloaded file bytes content-addressed by hash so
// review tooling can serve a document without re-downloading it from the
// remote. The cache is an optimization only; every caller must tolerate a
// miss.
package cache

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"casesync/internal/engine"
)

// MemoryCache is an in-memory implementation of the content cache.
// Safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	content map[string][]byte
}

// NewMemoryCache creates a new empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{content: make(map[string][]byte)}
}

// Put stores data under its content hash. Idempotent.
func (m *MemoryCache) Put(hash string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.content[hash] = copied
	return nil
}

// Get writes the stored bytes to w.
func (m *MemoryCache) Get(hash string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[hash]
	if !ok {
		return fmt.Errorf("content not cached: %s", hash)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// Encrypted always returns false for the in-memory cache.
func (m *MemoryCache) Encrypted() bool {
	return false
}

// Compile-time check that MemoryCache implements engine.ContentCache
var _ engine.ContentCache = (*MemoryCache)(nil)
