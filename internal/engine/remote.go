package engine

import (
	"context"

	"casesync/internal/model"
)

// Page is one page of a cursor-paginated remote listing.
type Page struct {
	Entries    []model.FileEntry
	NextCursor string // empty when this is the last page
}

// Remote is the contract to the external cloud storage. Implementations
// handle folder traversal themselves: List reports file entries only,
// recursively under path. Listing and downloading are the only blocking
// operations in the pipeline.
type Remote interface {
	// List returns one page of file entries under path. Pass the previous
	// page's NextCursor to continue; an empty cursor starts from the top.
	List(ctx context.Context, path, cursor string) (Page, error)

	// Download returns the raw bytes of the file at path.
	Download(ctx context.Context, path string) ([]byte, error)
}
