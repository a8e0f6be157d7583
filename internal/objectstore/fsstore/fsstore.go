// Package fsstore adapts a local directory tree to the
// objectstore.ObjectStore capability set, for single-node deployments and
// local development against stacks without a hosted object store.
package fsstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// Store is a filesystem-backed ObjectStore rooted at Root. Keys are
// slash-separated and map directly onto nested directories under Root.
type Store struct {
	root string
}

var _ objectstore.ObjectStore = (*Store)(nil)

// New returns a Store rooted at root. The directory must already exist.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.ConfigError, err, fmt.Sprintf("stat root %q", root))
	}
	if !info.IsDir() {
		return nil, stackerr.Newf(stackerr.ConfigError, "root %q is not a directory", root)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Store) List(ctx context.Context, prefix string) (objectstore.EntryIterator, error) {
	var entries []objectstore.Entry

	base := s.path(prefix)
	dir, glob := base, ""
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		dir, glob = filepath.Split(base)
		_ = glob
	}

	walkRoot := dir
	if walkRoot == "" {
		walkRoot = s.root
	}

	err := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, objectstore.Entry{
			Name:         key,
			Mode:         uint32(info.Mode()),
			LastModified: info.ModTime(),
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("walk prefix %q", prefix))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &sliceIterator{entries: entries}, nil
}

func (s *Store) RangeRead(ctx context.Context, key string, rng objectstore.Range) ([]byte, error) {
	r, err := s.StreamReader(ctx, key, rng)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("read %q", key))
	}
	return body, nil
}

func (s *Store) StreamReader(ctx context.Context, key string, rng objectstore.Range) (objectstore.Reader, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("object %q not found", key))
		}
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("open %q", key))
	}

	if rng.Start != 0 {
		if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
			f.Close()
			return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("seek %q", key))
		}
	}

	var limit io.Reader = f
	if rng.End != 0 {
		limit = io.LimitReader(f, rng.End-rng.Start)
	}
	return &reader{r: limit, f: f}, nil
}

func (s *Store) StreamWriter(ctx context.Context, key string) (objectstore.Writer, error) {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("mkdir for %q", key))
	}

	// Write to a temp file in the same directory and rename on Close,
	// so the object is invisible to readers until the writer finalizes.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("create temp for %q", key))
	}
	return &writer{f: tmp, finalPath: p}, nil
}

func (s *Store) Metadata(ctx context.Context, key string) (objectstore.Entry, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return objectstore.Entry{}, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("object %q not found", key))
		}
		return objectstore.Entry{}, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("stat %q", key))
	}
	return objectstore.Entry{
		Name:         key,
		Mode:         uint32(info.Mode()),
		LastModified: info.ModTime(),
		Size:         info.Size(),
	}, nil
}

type reader struct {
	r io.Reader
	f *os.File
}

func (r *reader) Read(p []byte) (int, error) { return r.r.Read(p) }
func (r *reader) Close() error                { return r.f.Close() }

func (r *reader) ReadExact(buf []byte) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return stackerr.Wrap(stackerr.IOError, err, "short read")
	}
	return nil
}

type writer struct {
	f         *os.File
	finalPath string
	closed    bool
}

func (w *writer) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return stackerr.Wrap(stackerr.CloseError, err, fmt.Sprintf("close temp file for %q", w.finalPath))
	}
	if err := os.Rename(w.f.Name(), w.finalPath); err != nil {
		os.Remove(w.f.Name())
		return stackerr.Wrap(stackerr.CloseError, err, fmt.Sprintf("rename into place %q", w.finalPath))
	}
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
