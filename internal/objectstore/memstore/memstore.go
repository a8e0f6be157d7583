// Package memstore implements an in-memory objectstore.ObjectStore for
// unit tests that exercise stackwriter and stackreader without a real
// backend.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// Store is a goroutine-safe in-memory ObjectStore. The zero value is
// ready to use.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
	mtimes  map[string]time.Time
}

var _ objectstore.ObjectStore = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{objects: make(map[string][]byte), mtimes: make(map[string]time.Time)}
}

func (s *Store) List(ctx context.Context, prefix string) (objectstore.EntryIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []objectstore.Entry
	for key, body := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entries = append(entries, objectstore.Entry{
			Name:         key,
			LastModified: s.mtimes[key],
			Size:         int64(len(body)),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &sliceIterator{entries: entries}, nil
}

func (s *Store) RangeRead(ctx context.Context, key string, rng objectstore.Range) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.objects[key]
	if !ok {
		return nil, stackerr.Newf(stackerr.IOError, "object %q not found", key)
	}

	start, end := rng.Start, rng.End
	if end == 0 || end > int64(len(body)) {
		end = int64(len(body))
	}
	if start > int64(len(body)) {
		start = int64(len(body))
	}
	out := make([]byte, end-start)
	copy(out, body[start:end])
	return out, nil
}

func (s *Store) StreamReader(ctx context.Context, key string, rng objectstore.Range) (objectstore.Reader, error) {
	body, err := s.RangeRead(ctx, key, rng)
	if err != nil {
		return nil, err
	}
	return &reader{r: bytes.NewReader(body)}, nil
}

func (s *Store) StreamWriter(ctx context.Context, key string) (objectstore.Writer, error) {
	return &writer{store: s, key: key}, nil
}

func (s *Store) Metadata(ctx context.Context, key string) (objectstore.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.objects[key]
	if !ok {
		return objectstore.Entry{}, stackerr.Newf(stackerr.IOError, "object %q not found", key)
	}
	return objectstore.Entry{Name: key, LastModified: s.mtimes[key], Size: int64(len(body))}, nil
}

// Put installs an object directly, bypassing StreamWriter — useful for
// seeding fixtures in tests.
func (s *Store) Put(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	s.objects[key] = cp
	s.mtimes[key] = time.Now()
}

type reader struct {
	r *bytes.Reader
}

func (r *reader) Read(p []byte) (int, error) { return r.r.Read(p) }
func (r *reader) Close() error                { return nil }

func (r *reader) ReadExact(buf []byte) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return stackerr.Wrap(stackerr.IOError, err, "short read")
	}
	return nil
}

type writer struct {
	store  *Store
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.store.Put(w.key, w.buf.Bytes())
	return nil
}

type sliceIterator struct {
	entries []objectstore.Entry
	idx     int
}

func (s *sliceIterator) Next(ctx context.Context) bool {
	if s.idx >= len(s.entries) {
		return false
	}
	s.idx++
	return true
}

func (s *sliceIterator) Entry() objectstore.Entry { return s.entries[s.idx-1] }
func (s *sliceIterator) Err() error                 { return nil }
