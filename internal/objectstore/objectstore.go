// Package objectstore defines the backend-agnostic capability set that
// stackwriter and stackreader depend on: list, ranged reads, streaming
// reads and writes, and per-entry metadata. Concrete adapters (s3store,
// fsstore) and a memstore fake for tests all satisfy ObjectStore.
package objectstore

import (
	"context"
	"io"
	"time"
)

// Entry describes one object returned by List.
type Entry struct {
	Name         string
	Mode         uint32
	LastModified time.Time
	Size         int64
}

// Reader is a forward-only reader over a byte range of an object.
type Reader interface {
	io.Reader
	io.Closer

	// ReadExact fills buf entirely or returns an error, including
	// io.ErrUnexpectedEOF if the object ends before buf is filled.
	ReadExact(buf []byte) error
}

// Writer is a single-shot, append-only writer: there is no seek, and
// nothing written is visible to readers until Close succeeds.
type Writer interface {
	io.Writer
	io.Closer
}

// Range selects a byte span of an object. End is exclusive; an End of 0
// means "read to the end of the object" (open-ended).
type Range struct {
	Start int64
	End   int64 // 0 means open-ended
}

// Open returns a Range covering the whole object.
func Open() Range { return Range{} }

// From returns a Range starting at start and running to the end of the
// object.
func From(start int64) Range { return Range{Start: start} }

// Span returns a Range covering [start, end).
func Span(start, end int64) Range { return Range{Start: start, End: end} }

// ObjectStore is the capability set the core depends on. Any backend
// that implements it — a hosted object API, a local filesystem, an
// in-memory fake — is a valid home for stacks.
type ObjectStore interface {
	// List enumerates objects whose key begins with prefix, in
	// unspecified order. Implementations MAY stream results lazily;
	// callers MUST NOT assume the full set materializes before the
	// first entry is consumed.
	List(ctx context.Context, prefix string) (EntryIterator, error)

	// RangeRead reads rng of key into memory in one call.
	RangeRead(ctx context.Context, key string, rng Range) ([]byte, error)

	// StreamReader opens a forward-only reader over rng of key.
	StreamReader(ctx context.Context, key string, rng Range) (Reader, error)

	// StreamWriter opens a single-shot append writer for key. The
	// object does not exist (or is not updated, for backends with
	// atomic rename-on-close semantics) until Close succeeds.
	StreamWriter(ctx context.Context, key string) (Writer, error)

	// Metadata returns the entry's mode and last-modified time.
	Metadata(ctx context.Context, key string) (Entry, error)
}

// EntryIterator walks a List result one Entry at a time.
type EntryIterator interface {
	// Next advances to the next entry, returning false when the
	// sequence is exhausted or an error occurred (check Err).
	Next(ctx context.Context) bool
	Entry() Entry
	Err() error
}
