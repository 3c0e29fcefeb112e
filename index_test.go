package arrayseq

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/arrayseq/testutil"
)

func TestSlicePositions(t *testing.T) {
	tests := []struct {
		name string
		sl   Slice
		want []int
	}{
		{"All", All(), []int{0, 1, 2, 3, 4}},
		{"Range", Range(1, 3), []int{1, 2}},
		{"NegativeStart", From(-2), []int{3, 4}},
		{"NegativeStop", To(-1), []int{0, 1, 2, 3}},
		{"Reverse", All().Step(-1), []int{4, 3, 2, 1, 0}},
		{"ReverseFrom", From(3).Step(-2), []int{3, 1}},
		{"ReverseTo", To(1).Step(-1), []int{4, 3, 2}},
		{"Stride", All().Step(2), []int{0, 2, 4}},
		{"ClippedStart", Range(-10, 2), []int{0, 1}},
		{"OutOfRange", Range(10, 20), []int{}},
		{"Empty", Range(3, 1), []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sl.positions(5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := All().Step(0).positions(5)
	assert.ErrorIs(t, err, ErrValue)

	assert.Equal(t, "1:3", Range(1, 3).String())
	assert.Equal(t, "::-1", All().Step(-1).String())
}

func TestSelect(t *testing.T) {
	s := mustSeq(t, floats(t, 2, 2, 0), floats(t, 1, 2, 10), floats(t, 3, 2, 20))

	t.Run("Integer", func(t *testing.T) {
		v, err := s.Select(int8(-1))
		require.NoError(t, err)
		assert.True(t, v.IsView())
		assert.Equal(t, []int{3}, v.Lengths())
	})

	t.Run("IntegerSlice", func(t *testing.T) {
		v, err := s.Select([]uint16{2, 0, 2})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 3}, v.Lengths())
		assert.Equal(t, []int{3, 0, 3}, v.Offsets())
	})

	t.Run("Slice", func(t *testing.T) {
		v, err := s.Slice(All().Step(-1))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, v.Lengths())
	})

	t.Run("Bitmap", func(t *testing.T) {
		v, err := s.Select(roaring.BitmapOf(2, 0))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, v.Lengths())

		_, err = s.Select(roaring.BitmapOf(3))
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("MaskLength", func(t *testing.T) {
		_, err := s.Filter([]bool{true})
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := s.Take([]int{0, 3})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = s.Select(-4)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("UnsupportedKind", func(t *testing.T) {
		_, err := s.Select(1.5)
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		assert.ErrorIs(t, err, ErrType)
		_, err = s.Select("0")
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
	})

	t.Run("DataHoldsReferencedRowsOnly", func(t *testing.T) {
		v, err := s.Take([]int{2})
		require.NoError(t, err)
		data, err := v.Data()
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2}, data.Shape())
		assert.Equal(t, []float64{20, 21, 22, 23, 24, 25}, data.Float64s())
	})

	t.Run("ChainedViews", func(t *testing.T) {
		v, err := s.Take([]int{2, 1, 0})
		require.NoError(t, err)
		w, err := v.Slice(Range(0, 2))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1}, w.Lengths())
		assert.True(t, w.SharesStorage(s))
	})
}

func TestSelect_IndexListProperty(t *testing.T) {
	rng := testutil.NewRNG(11)
	s := mustSeq(t, nonEmpty(randomArrays(t, rng, 40, 6, 2))...)
	n := s.Len()

	for range 20 {
		idx := make([]int, rng.Intn(2*n))
		for i := range idx {
			idx[i] = rng.Intn(2*n) - n
		}
		v, err := s.Take(idx)
		require.NoError(t, err)

		want := make([]Array, len(idx))
		for i, p := range idx {
			want[i], err = s.At(p)
			require.NoError(t, err)
		}
		requireElements(t, want, v)
	}
}

func TestSelect_MaskProperty(t *testing.T) {
	rng := testutil.NewRNG(12)
	s := mustSeq(t, nonEmpty(randomArrays(t, rng, 40, 6, 2))...)

	for _, p := range []float64{0, 0.3, 0.7, 1} {
		mask := rng.Mask(s.Len(), p)
		v, err := s.Filter(mask)
		require.NoError(t, err)

		var want []Array
		for i, keep := range mask {
			if keep {
				a, err := s.At(i)
				require.NoError(t, err)
				want = append(want, a)
			}
		}
		requireElements(t, want, v)
	}
}

func TestSelect_Trailing(t *testing.T) {
	// Elements of shape (n, 2, 3).
	a, err := FromFloat64s([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, 2, 2, 3)
	require.NoError(t, err)
	s := mustSeq(t, a)

	t.Run("IntegerDropsAxis", func(t *testing.T) {
		v, err := s.Select(All(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, v.CommonShape())
		el, err := v.At(0)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, el.Shape())
		assert.Equal(t, []float64{3, 4, 5, 9, 10, 11}, el.Float64s())
	})

	t.Run("InnerAxis", func(t *testing.T) {
		v, err := s.Columns(All(), 0)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, v.CommonShape())
		el, err := v.At(0)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 3, 6, 9}, el.Float64s())
	})

	t.Run("Composes", func(t *testing.T) {
		v, err := s.Columns(Range(0, 2), []int{2, 1})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2}, v.CommonShape())

		w, err := v.Columns(1)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, w.CommonShape())
		el, err := w.At(0)
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 4, 11, 10}, el.Float64s())
	})

	t.Run("Mask", func(t *testing.T) {
		v, err := s.Columns([]bool{false, true}, []bool{true, false, true})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, v.CommonShape())
		data, err := v.Data()
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 5, 9, 11}, data.Float64s())
	})

	t.Run("Identity", func(t *testing.T) {
		v, err := s.Columns(All(), All())
		require.NoError(t, err)
		assert.Nil(t, v.sel)
	})

	t.Run("TooManySelectors", func(t *testing.T) {
		_, err := s.Columns(0, 0, 0)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("UnsupportedSelector", func(t *testing.T) {
		_, err := s.Columns("x")
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
	})
}

func TestSet(t *testing.T) {
	build := func(t *testing.T) *Sequence {
		return mustSeq(t, floats(t, 2, 2, 0), floats(t, 1, 2, 10), floats(t, 3, 2, 20))
	}
	elem := func(t *testing.T, s *Sequence, i int) []float64 {
		a, err := s.At(i)
		require.NoError(t, err)
		return a.Float64s()
	}

	t.Run("TrailingColumn", func(t *testing.T) {
		s := build(t)
		require.NoError(t, s.Set(All(), 0, 0))
		assert.Equal(t, []float64{0, 1, 0, 3}, elem(t, s, 0))
		assert.Equal(t, []float64{0, 11}, elem(t, s, 1))
		assert.Equal(t, []float64{0, 21, 0, 23, 0, 25}, elem(t, s, 2))
	})

	t.Run("TrailingWithElementIndex", func(t *testing.T) {
		s := build(t)
		require.NoError(t, s.Set(2, floats(t, 3, 1, -3), []int{1}))
		assert.Equal(t, []float64{20, -3, 22, -2, 24, -1}, elem(t, s, 2))
		assert.Equal(t, []float64{0, 1, 2, 3}, elem(t, s, 0))

		err := s.Set(0, 1, 5)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, []float64{0, 1, 2, 3}, elem(t, s, 0))
	})

	t.Run("ScalarBroadcast", func(t *testing.T) {
		s := build(t)
		require.NoError(t, s.Set(1, 7))
		assert.Equal(t, []float64{7, 7}, elem(t, s, 1))
		assert.Equal(t, []float64{0, 1, 2, 3}, elem(t, s, 0))
	})

	t.Run("Array", func(t *testing.T) {
		s := build(t)
		require.NoError(t, s.Set([]int{0}, ints(t, 2, 2, 100)))
		assert.Equal(t, []float64{100, 101, 102, 103}, elem(t, s, 0))

		err := s.Set(0, floats(t, 3, 2, 0))
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("Arrays", func(t *testing.T) {
		s := build(t)
		require.NoError(t, s.Set([]bool{true, true, false}, []Array{floats(t, 2, 2, 50), floats(t, 1, 2, 60)}))
		assert.Equal(t, []float64{60, 61}, elem(t, s, 1))

		err := s.Set(Range(0, 2), []Array{floats(t, 2, 2, -1)})
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.Equal(t, []float64{60, 61}, elem(t, s, 1))
	})

	t.Run("Sequence", func(t *testing.T) {
		s := build(t)
		src := mustSeq(t, ints(t, 1, 2, -2), ints(t, 3, 2, -8))
		require.NoError(t, s.Set([]int{1, 2}, src))
		assert.Equal(t, []float64{-2, -1}, elem(t, s, 1))
		assert.Equal(t, []float64{-8, -7, -6, -5, -4, -3}, elem(t, s, 2))

		err := s.Set([]int{2, 1}, src)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("OverlappingSource", func(t *testing.T) {
		s := mustSeq(t, floats(t, 1, 2, 0), floats(t, 1, 2, 2), floats(t, 1, 2, 4))
		src, err := s.Take([]int{1, 0})
		require.NoError(t, err)

		require.NoError(t, s.Set([]int{0, 1}, src))
		assert.Equal(t, []float64{2, 3}, elem(t, s, 0))
		assert.Equal(t, []float64{0, 1}, elem(t, s, 1))
	})

	t.Run("ThroughColumnView", func(t *testing.T) {
		s := build(t)
		v, err := s.Columns(0)
		require.NoError(t, err)
		require.NoError(t, v.Set(All(), 9))
		assert.Equal(t, []float64{9, 1, 9, 3}, elem(t, s, 0))
		assert.Equal(t, []float64{9, 11}, elem(t, s, 1))
	})

	t.Run("CastsToSequenceDType", func(t *testing.T) {
		s := mustSeq(t, ints(t, 1, 2, 0))
		require.NoError(t, s.Set(0, 2.9))
		a, err := s.At(0)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 2}, a.Int64s())
	})

	t.Run("UnsupportedValue", func(t *testing.T) {
		s := build(t)
		assert.ErrorIs(t, s.Set(0, "x"), ErrUnsupportedOperand)
		assert.ErrorIs(t, s.Set(0.5, 1), ErrUnsupportedOperand)
		assert.ErrorIs(t, s.Set(5, 1), ErrIndexOutOfRange)
	})
}
