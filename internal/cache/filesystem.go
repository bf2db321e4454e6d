package cache

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"casesync/internal/encryption"
	"casesync/internal/engine"
)

// FilesystemCache stores content as files named by hash under a content
// directory. When an encryptor is set, bytes are encrypted before hitting
// disk; Get then returns ciphertext and the caller decrypts with an unlocked
// decryption context.
type FilesystemCache struct {
	contentDir string
	encryptor  encryption.Encryptor // nil for a plaintext cache
}

// NewFilesystemCache creates a filesystem cache rooted at the given path.
// encryptor may be nil for a plaintext cache.
func NewFilesystemCache(root string, encryptor encryption.Encryptor) (*FilesystemCache, error) {
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &FilesystemCache{contentDir: contentDir, encryptor: encryptor}, nil
}

// Put stores data under its content hash. If the hash is already present the
// write is skipped (idempotent).
func (c *FilesystemCache) Put(hash string, data []byte) error {
	destPath := filepath.Join(c.contentDir, hash)
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	var payload io.Reader = bytes.NewReader(data)
	if c.encryptor != nil {
		var buf bytes.Buffer
		if err := c.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
			return fmt.Errorf("encrypting content: %w", err)
		}
		payload = &buf
	}

	return writeFileAtomic(destPath, payload)
}

// Get writes the stored bytes (ciphertext when encryption is configured) to w.
func (c *FilesystemCache) Get(hash string, w io.Writer) error {
	f, err := os.Open(filepath.Join(c.contentDir, hash))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("content not cached: %s", hash)
		}
		return fmt.Errorf("failed to open cached content: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read cached content: %w", err)
	}
	return nil
}

// Encrypted reports whether stored bytes are encrypted at rest.
func (c *FilesystemCache) Encrypted() bool {
	return c.encryptor != nil
}

// writeFileAtomic writes data from r to destPath using a temp file + rename.
func writeFileAtomic(destPath string, r io.Reader) error {
	// Create temp file in the same directory to ensure atomic rename works.
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FilesystemCache implements engine.ContentCache
var _ engine.ContentCache = (*FilesystemCache)(nil)
