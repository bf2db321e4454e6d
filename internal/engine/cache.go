package engine

import "io"

// ContentCache stores downloaded file bytes keyed by content hash so review
// tooling can serve a file's content without re-downloading it. The cache is
// strictly an optimization: every operation must tolerate a miss.
type ContentCache interface {
	// Put stores data under its content hash. Storing the same hash twice is
	// safe and cheap.
	Put(hash string, data []byte) error

	// Get writes the stored bytes (possibly ciphertext, see Encrypted) to w.
	Get(hash string, w io.Writer) error

	// Encrypted reports whether stored bytes are encrypted at rest and need
	// an unlocked decryption context to read.
	Encrypted() bool
}
