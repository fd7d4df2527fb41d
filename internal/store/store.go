package store

import (
	"context"
	"strings"
)

// Entry is one document inside a collection listing.
type Entry struct {
	Key  string
	Data map[string]any
}

// Store is the minimal document-store API the engine is written against.
//
// Paths are slash-joined segments alternating collection/document, e.g.
// "users/u1" or "universities/nstu/schedule/G1/first/3". GetDocument reports
// ok=false for a missing document; only transport/storage faults surface as
// errors. ListCollection returns the direct child documents of a collection,
// keyed by their last path segment.
type Store interface {
	GetDocument(ctx context.Context, path string) (map[string]any, bool, error)
	SetDocument(ctx context.Context, path string, data map[string]any) error
	DeleteDocument(ctx context.Context, path string) error
	ListCollection(ctx context.Context, path string) ([]Entry, error)
	Close() error
}

// Path joins segments into a document/collection path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}
