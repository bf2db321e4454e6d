package remote

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"casesync/internal/engine"
	"casesync/internal/model"
)

// FilesystemClient serves a local directory tree through the remote contract,
// useful when the "cloud" folder is a mounted share. Remote paths map onto
// the base directory: remote /CASES/X/file.pdf reads <base>/CASES/X/file.pdf.
//
// Listing walks the tree into a sorted snapshot and paginates over it with an
// index cursor; the revision marker is derived from mtime and size so edits
// change it but a pure re-listing does not.
type FilesystemClient struct {
	base     string
	pageSize int
}

// NewFilesystemClient creates a filesystem-backed remote rooted at base.
// pageSize <= 0 selects the default.
func NewFilesystemClient(base string, pageSize int) (*FilesystemClient, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("remote base not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("remote base is not a directory: %s", base)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &FilesystemClient{base: base, pageSize: pageSize}, nil
}

// List returns one page of file entries under path.
func (c *FilesystemClient) List(_ context.Context, path, cursor string) (engine.Page, error) {
	entries, err := c.walk(path)
	if err != nil {
		return engine.Page{}, err
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return engine.Page{}, fmt.Errorf("invalid cursor: %q", cursor)
		}
		start = n
	}
	if start > len(entries) {
		start = len(entries)
	}

	end := start + c.pageSize
	if end > len(entries) {
		end = len(entries)
	}

	page := engine.Page{Entries: entries[start:end]}
	if end < len(entries) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// walk collects all regular files under the remote path, sorted by path.
// Symlinks and other special files are skipped: only regular files can be
// fingerprinted and attached.
func (c *FilesystemClient) walk(remotePath string) ([]model.FileEntry, error) {
	localRoot := c.localPath(remotePath)

	var entries []model.FileEntry
	err := filepath.WalkDir(localRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			return err
		}
		entries = append(entries, model.FileEntry{
			Path:       strings.TrimSuffix(remotePath, "/") + "/" + filepath.ToSlash(rel),
			Name:       d.Name(),
			SizeBytes:  info.Size(),
			Revision:   fmt.Sprintf("%x-%d", info.ModTime().UnixNano(), info.Size()),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", remotePath, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Download returns the raw bytes of the file at path.
func (c *FilesystemClient) Download(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(c.localPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (c *FilesystemClient) localPath(remotePath string) string {
	return filepath.Join(c.base, filepath.FromSlash(strings.TrimPrefix(remotePath, "/")))
}

// Compile-time check that FilesystemClient implements engine.Remote
var _ engine.Remote = (*FilesystemClient)(nil)
