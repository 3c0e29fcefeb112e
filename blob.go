package arrayseq

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/arrayseq/blobstore"
	"github.com/hupe1980/arrayseq/internal/mmap"
	"github.com/hupe1980/arrayseq/resource"
)

// maxParallelLoads bounds LoadBlobs fan-out when no resource controller is
// configured.
const maxParallelLoads = 16

// SaveFile writes the archive to path. The file appears atomically.
func (s *Sequence) SaveFile(path string, opts ...SaveOption) error {
	ctx := context.Background()
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	store := blobstore.NewLocalStore(dir)
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("arrayseq: save %s: %w", path, err)
	}
	bw := bufio.NewWriter(w)
	if err := s.save(ctx, bw, path, applySaveOptions(opts)); err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = blobstore.Abort(w)
		return fmt.Errorf("arrayseq: save %s: %w", path, err)
	}
	if err := w.Sync(); err != nil {
		_ = blobstore.Abort(w)
		return fmt.Errorf("arrayseq: save %s: %w", path, err)
	}
	return w.Close()
}

// OpenFile loads the archive at path through a read-only memory mapping.
// Every array is copied out before the mapping is released.
func OpenFile(path string, opts ...Option) (*Sequence, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arrayseq: open %s: %w", path, err)
	}
	defer m.Close()
	_ = m.Advise(mmap.AccessSequential)

	return load(context.Background(), bytes.NewReader(m.Bytes()), path, applyOptions(opts))
}

// SaveBlob writes the archive to store under name in a single atomic Put.
// The upload holds one background slot and is paced by the IO limit of the
// sequence's resource controller, if any.
func (s *Sequence) SaveBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...SaveOption) error {
	rc := s.cfg.rc
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	var buf bytes.Buffer
	w := resource.NewRateLimitedWriter(ctx, &buf, rc)
	if err := s.save(ctx, w, "blob:"+name, applySaveOptions(opts)); err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("arrayseq: save blob %s: %w", name, err)
	}
	return nil
}

// LoadBlob reads the archive stored under name.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Sequence, error) {
	return loadBlob(ctx, store, name, applyOptions(opts))
}

func loadBlob(ctx context.Context, store blobstore.BlobStore, name string, cfg *config) (*Sequence, error) {
	if err := cfg.rc.AcquireBackground(ctx); err != nil {
		return nil, err
	}
	defer cfg.rc.ReleaseBackground()

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("arrayseq: load blob %s: %w", name, err)
	}
	defer b.Close()

	var r io.Reader
	if m, ok := b.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, fmt.Errorf("arrayseq: load blob %s: %w", name, err)
		}
		r = bytes.NewReader(data)
	} else {
		rc, err := b.ReadRange(ctx, 0, b.Size())
		if err != nil {
			return nil, fmt.Errorf("arrayseq: load blob %s: %w", name, err)
		}
		defer rc.Close()
		r = bufio.NewReader(rc)
	}
	return load(ctx, resource.NewRateLimitedReader(ctx, r, cfg.rc), "blob:"+name, cfg)
}

// LoadBlobs loads several archives concurrently, returning them in the
// order of names. The first failure cancels the remaining loads.
func LoadBlobs(ctx context.Context, store blobstore.BlobStore, names []string, opts ...Option) ([]*Sequence, error) {
	cfg := applyOptions(opts)
	out := make([]*Sequence, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, name := range names {
		g.Go(func() error {
			s, err := loadBlob(gctx, store, name, cfg)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
