package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/hupe1980/arrayseq/internal/mmap"
)

// ErrInvalidName is returned for names that would resolve outside the store.
var ErrInvalidName = errors.New("blobstore: invalid blob name")

const tempPrefix = ".tmp-"

// LocalStore keeps archives as files below a root directory. Writes land in a
// temporary sibling that is renamed into place on Close, so readers never see
// a partial archive.
type LocalStore struct {
	root string
	perm os.FileMode
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileMode sets the permission bits of published archives. Default: 0644.
func WithFileMode(perm os.FileMode) LocalOption {
	return func(s *LocalStore) { s.perm = perm.Perm() }
}

// NewLocalStore returns a store rooted at root. The directory is created on
// the first write.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, perm: 0o644}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// path maps a slash-separated name below root.
func (s *LocalStore) path(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, rel), nil
}

// Open maps the archive read-only.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(p)
	if err != nil {
		return nil, err
	}
	_ = m.Advise(mmap.AccessSequential)
	return &localBlob{m: m}, nil
}

func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	final, err := s.path(name)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, tempPrefix+filepath.Base(final)+"-*")
	if err != nil {
		return nil, err
	}
	return &localWriter{f: f, final: final, perm: s.perm}, nil
}

// Put writes and syncs data, then publishes it.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (err error) {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = Abort(w)
		}
	}()
	if _, err = w.Write(data); err != nil {
		return err
	}
	if err = w.Sync(); err != nil {
		return err
	}
	return w.Close()
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List walks root and skips in-flight temporaries. A missing root lists
// nothing.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := fs.WalkDir(os.DirFS(s.root), ".", func(name string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil:
			return err
		case d.IsDir(), strings.HasPrefix(d.Name(), tempPrefix):
			return nil
		case strings.HasPrefix(name, prefix):
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) Size() int64 { return int64(b.m.Size()) }

func (b *localBlob) Close() error { return b.m.Close() }

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.m.ReadAt(p, off)
}

// ReadRange serves the range straight from the mapping.
func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	data, err := b.m.Slice(off, int(min(length, b.Size())))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Bytes exposes the mapping. It fails once the blob is closed.
func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}

type localWriter struct {
	f     *os.File
	final string
	perm  os.FileMode
}

func (w *localWriter) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *localWriter) Sync() error { return w.f.Sync() }

// Close publishes the temporary file under its final name and syncs the
// directory entry.
func (w *localWriter) Close() error {
	tmp := w.f.Name()
	err := w.f.Chmod(w.perm)
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, w.final)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return syncDir(filepath.Dir(w.final))
}

// Abort removes the temporary file without publishing it.
func (w *localWriter) Abort() error {
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	err = d.Sync()
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return err
}
