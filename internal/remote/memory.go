// Package remote implements the cloud-storage contract the engine polls:
// cursor-paginated listing of a folder tree and file download.
package remote

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"casesync/internal/engine"
	"casesync/internal/model"
)

// defaultPageSize is the listing page size when none is configured.
const defaultPageSize = 500

// MemoryClient is an in-memory implementation of the remote contract. It is
// used for tests and dry runs: files are added programmatically and listings
// paginate deterministically over the sorted paths. Safe for concurrent use.
type MemoryClient struct {
	mu       sync.RWMutex
	files    map[string]memoryFile
	pageSize int

	// ListErr, when set, fails every List call. DownloadErrs fails Download
	// for specific paths. DownloadHook, when set, runs at the start of every
	// Download; tests use it to hold a sync open at a known point. All three
	// are test knobs.
	ListErr      error
	DownloadErrs map[string]error
	DownloadHook func(path string)
}

type memoryFile struct {
	data       []byte
	modifiedAt time.Time
	revision   string
}

// NewMemoryClient creates an empty in-memory remote. pageSize <= 0 selects
// the default.
func NewMemoryClient(pageSize int) *MemoryClient {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &MemoryClient{
		files:        make(map[string]memoryFile),
		pageSize:     pageSize,
		DownloadErrs: make(map[string]error),
	}
}

// AddFile stores a file at path. The revision marker is derived from the
// modification time and size, so touching a file changes its revision.
func (c *MemoryClient) AddFile(path string, data []byte, modifiedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files[path] = memoryFile{
		data:       data,
		modifiedAt: modifiedAt,
		revision:   fmt.Sprintf("%x-%d", modifiedAt.UnixNano(), len(data)),
	}
}

// RemoveFile deletes a file from the remote.
func (c *MemoryClient) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

// List returns one page of file entries under path.
func (c *MemoryClient) List(_ context.Context, path, cursor string) (engine.Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ListErr != nil {
		return engine.Page{}, c.ListErr
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	var paths []string
	for p := range c.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return engine.Page{}, fmt.Errorf("invalid cursor: %q", cursor)
		}
		start = n
	}
	if start > len(paths) {
		start = len(paths)
	}

	end := start + c.pageSize
	if end > len(paths) {
		end = len(paths)
	}

	page := engine.Page{}
	for _, p := range paths[start:end] {
		f := c.files[p]
		page.Entries = append(page.Entries, model.FileEntry{
			Path:       p,
			Name:       p[strings.LastIndex(p, "/")+1:],
			SizeBytes:  int64(len(f.data)),
			Revision:   f.revision,
			ModifiedAt: f.modifiedAt,
		})
	}
	if end < len(paths) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// Download returns the raw bytes of the file at path.
func (c *MemoryClient) Download(_ context.Context, path string) ([]byte, error) {
	if c.DownloadHook != nil {
		c.DownloadHook(path)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.DownloadErrs[path]; err != nil {
		return nil, err
	}
	f, ok := c.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

// Compile-time check that MemoryClient implements engine.Remote
var _ engine.Remote = (*MemoryClient)(nil)
