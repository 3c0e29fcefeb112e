package arrayseq

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/arrayseq/blobstore"
	"github.com/hupe1980/arrayseq/codec"
	"github.com/hupe1980/arrayseq/resource"
	"github.com/hupe1980/arrayseq/testutil"
)

func saved(t *testing.T, s *Sequence, opts ...SaveOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, opts...))
	return buf.Bytes()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(41)
	s := mustSeq(t, nonEmpty(randomArrays(t, rng, 50, 8, 3))...)

	tests := []struct {
		name string
		opts []SaveOption
	}{
		{"Default", nil},
		{"LZ4", []SaveOption{WithCompression(CompressionLZ4)}},
		{"ZSTD", []SaveOption{WithCompression(CompressionZSTD)}},
		{"JSONCodec", []SaveOption{WithCodec(codec.JSON{})}},
		{"NilCodec", []SaveOption{WithCodec(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(bytes.NewReader(saved(t, s, tt.opts...)))
			require.NoError(t, err)
			assert.True(t, s.Equal(got))
			assert.Equal(t, s.DType(), got.DType())
			assert.Equal(t, s.Offsets(), got.Offsets())
			assert.Equal(t, s.TotalRows(), got.Capacity())
			assert.False(t, got.IsView())
		})
	}
}

type namedCodec struct{ codec.JSON }

func (namedCodec) Name() string { return "test-json" }

func TestSaveLoad_RegisteredCodec(t *testing.T) {
	s := mustSeq(t, ints(t, 2, 1, 4))
	archive := saved(t, s, WithCodec(namedCodec{}))

	if _, registered := codec.ByName("test-json"); !registered {
		_, err := Load(bytes.NewReader(archive))
		require.ErrorIs(t, err, ErrInvalidArchive)
		require.NoError(t, codec.Register(namedCodec{}))
	}
	got, err := Load(bytes.NewReader(archive))
	require.NoError(t, err)
	assert.True(t, s.Equal(got))
}

func TestSaveLoad_DTypes(t *testing.T) {
	mask, err := FromBools([]bool{true, false, false, true}, 2, 2)
	require.NoError(t, err)
	for _, s := range []*Sequence{mustSeq(t, mask), mustSeq(t, ints(t, 3, 1, -5))} {
		got, err := Load(bytes.NewReader(saved(t, s)))
		require.NoError(t, err)
		assert.Equal(t, s.DType(), got.DType())
		assert.True(t, s.Equal(got))
	}
}

func TestSaveLoad_Empty(t *testing.T) {
	got, err := Load(bytes.NewReader(saved(t, New())))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	data, err := got.Data()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, data.Shape())

	require.NoError(t, got.Append(floats(t, 2, 3, 0)))
	assert.Equal(t, []int{3}, got.CommonShape())
}

func TestSaveLoad_ViewIsPacked(t *testing.T) {
	s := New(WithGrowthFactor(4))
	for i := range 5 {
		require.NoError(t, s.Append(floats(t, i+1, 2, float64(10*i))))
	}
	v, err := s.Select([]int{4, 1, 1}, []int{1})
	require.NoError(t, err)

	got, err := Load(bytes.NewReader(saved(t, v)))
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
	assert.Equal(t, []int{0, 5, 7}, got.Offsets())
	assert.Equal(t, []int{1}, got.CommonShape())
	assert.Equal(t, 9, got.Capacity())
}

func TestLoad_ThenAppend(t *testing.T) {
	s := mustSeq(t, floats(t, 2, 2, 0))
	got, err := Load(bytes.NewReader(saved(t, s)))
	require.NoError(t, err)

	require.NoError(t, got.Append(floats(t, 3, 2, 100)))
	assert.Equal(t, []int{2, 3}, got.Lengths())
	assert.Equal(t, []int{0, 2}, got.Offsets())
}

func TestLoad_Corruption(t *testing.T) {
	s := mustSeq(t, floats(t, 2, 2, 0), floats(t, 1, 2, 4))
	archive := saved(t, s)

	corrupt := func(at int) []byte {
		b := bytes.Clone(archive)
		b[at] ^= 0xff
		return b
	}

	t.Run("Magic", func(t *testing.T) {
		_, err := Load(bytes.NewReader(corrupt(0)))
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("HeaderChecksum", func(t *testing.T) {
		_, err := Load(bytes.NewReader(corrupt(12)))
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("PayloadChecksum", func(t *testing.T) {
		_, err := Load(bytes.NewReader(corrupt(len(archive) - 1)))
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("Truncated", func(t *testing.T) {
		for n := range len(archive) {
			_, err := Load(bytes.NewReader(archive[:n]))
			require.ErrorIs(t, err, ErrInvalidArchive, "truncated to %d bytes", n)
		}
	})

	t.Run("UnknownCodec", func(t *testing.T) {
		b := bytes.Clone(archive)
		copy(b[archiveHeaderSize:], "xx")
		_, err := Load(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("ElementCount", func(t *testing.T) {
		h := &archiveHeader{
			Magic:    archiveMagic,
			Version:  archiveVersion,
			Sections: archiveSections,
			CodecLen: uint16(len(codec.Default.Name())),
			Elements: 3,
			Rows:     3,
		}
		b := bytes.Clone(archive)
		copy(b, h.encode())
		_, err := Load(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})
}

func TestSave_InvalidCompression(t *testing.T) {
	var buf bytes.Buffer
	err := mustSeq(t, floats(t, 1, 1, 0)).Save(&buf, WithCompression(Compression(200)))
	assert.ErrorIs(t, err, ErrUnsupportedOperand)
}

func TestSave_StaleView(t *testing.T) {
	s := mustSeq(t, floats(t, 1, 2, 0))
	v, err := s.Slice(All())
	require.NoError(t, err)
	require.NoError(t, s.Append(floats(t, 4, 2, 0)))

	var buf bytes.Buffer
	assert.ErrorIs(t, v.Save(&buf), ErrStaleView)
}

func TestSaveFile_OpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seq.asq")
	s := mustSeq(t, ints(t, 3, 2, 0), ints(t, 1, 2, 6))

	require.NoError(t, s.SaveFile(path, WithCompression(CompressionZSTD)))
	got, err := OpenFile(path)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))

	t.Run("FailedSaveLeavesNothing", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.asq")
		err := s.SaveFile(bad, WithCompression(Compression(200)))
		require.Error(t, err)
		_, statErr := os.Stat(bad)
		assert.True(t, os.IsNotExist(statErr))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := OpenFile(filepath.Join(dir, "missing.asq"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

// streamingStore hides the Mappable fast path of the wrapped store.
type streamingStore struct {
	blobstore.BlobStore
}

type streamingBlob struct {
	blobstore.Blob
}

func (s streamingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return streamingBlob{Blob: b}, nil
}

func TestSaveLoadBlob(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	s := mustSeq(t, nonEmpty(randomArrays(t, rng, 20, 4, 2))...)

	stores := map[string]blobstore.BlobStore{
		"Memory":    blobstore.NewMemoryStore(),
		"Local":     blobstore.NewLocalStore(t.TempDir()),
		"Streaming": streamingStore{BlobStore: blobstore.NewMemoryStore()},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveBlob(ctx, store, "seqs/a.asq", WithCompression(CompressionLZ4)))
			got, err := LoadBlob(ctx, store, "seqs/a.asq")
			require.NoError(t, err)
			assert.True(t, s.Equal(got))

			_, err = LoadBlob(ctx, store, "seqs/missing.asq")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestLoadBlobs(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 2})

	want := make([]*Sequence, 6)
	names := make([]string, len(want))
	for i := range want {
		want[i] = mustSeq(t, floats(t, i+1, 2, float64(i)))
		names[i] = filepath.Join("batch", string(rune('a'+i)))
		require.NoError(t, want[i].SaveBlob(ctx, store, names[i]))
	}

	got, err := LoadBlobs(ctx, store, names, WithResourceController(rc))
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "blob %s", names[i])
	}

	_, err = LoadBlobs(ctx, store, append(names, "batch/missing"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestSaveLoad_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	s, err := FromArrays([]Array{floats(t, 2, 2, 0)}, WithMetricsCollector(mc))
	require.NoError(t, err)

	archive := saved(t, s)
	_, err = Load(bytes.NewReader(archive), WithMetricsCollector(mc))
	require.NoError(t, err)
	_, err = Load(bytes.NewReader(archive[:10]), WithMetricsCollector(mc))
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, int64(len(archive)), stats.SaveBytes)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(len(archive)), stats.LoadBytes)
}
