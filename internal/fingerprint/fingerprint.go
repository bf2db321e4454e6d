// Package fingerprint computes content-addressable digests of file bytes.
// Digests depend only on content, never on filename or timestamps: two files
// with identical bytes produce identical digests regardless of path.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Sum reads all of r and returns the lowercase hex SHA-256 digest and the
// number of bytes read. On a read error no partial digest is returned.
func Sum(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, fmt.Errorf("reading content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// SumBytes returns the lowercase hex SHA-256 digest of data.
func SumBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
