package arrayseq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/arrayseq/testutil"
)

func TestResultType(t *testing.T) {
	tests := []struct {
		op   Op
		a, b DType
		want DType
	}{
		{OpAdd, Bool, Bool, Int},
		{OpAdd, Int, Float, Float},
		{OpMul, Bool, Int, Int},
		{OpFloorDiv, Int, Int, Int},
		{OpPow, Float, Int, Float},
		{OpTrueDiv, Int, Int, Float},
		{OpTrueDiv, Bool, Bool, Float},
		{OpAnd, Bool, Bool, Bool},
		{OpXor, Bool, Int, Int},
		{OpShl, Bool, Bool, Int},
		{OpEq, Float, Int, Bool},
		{OpGe, Bool, Float, Bool},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := resultType(tt.op, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s %s %s", tt.a, tt.op, tt.b)
		})
	}

	for _, op := range []Op{OpAnd, OpOr, OpXor, OpShl, OpShr} {
		_, err := resultType(op, Float, Int)
		assert.ErrorIs(t, err, ErrUnsupportedOperand, op.String())
	}

	_, err := resultType(Op(99), Int, Int)
	assert.ErrorIs(t, err, ErrUnsupportedOperand)
	assert.Equal(t, "op(99)", Op(99).String())
}

func TestInPlaceType(t *testing.T) {
	_, err := inPlaceType(OpTrueDiv, Int, Float)
	assert.ErrorIs(t, err, ErrUnsupportedOperand)

	_, err = inPlaceType(OpAdd, Int, Float)
	assert.ErrorIs(t, err, ErrUnsupportedOperand)

	_, err = inPlaceType(OpAdd, Bool, Bool)
	assert.ErrorIs(t, err, ErrUnsupportedOperand)

	got, err := inPlaceType(OpAdd, Float, Int)
	require.NoError(t, err)
	assert.Equal(t, Float, got)
}

func TestApply_Scalar(t *testing.T) {
	s := mustSeq(t, ints(t, 2, 2, 0), ints(t, 1, 2, 4))

	t.Run("Add", func(t *testing.T) {
		r, err := s.Add(10)
		require.NoError(t, err)
		assert.Equal(t, Int, r.DType())
		data, err := r.Data()
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 11, 12, 13, 14, 15}, data.Int64s())
		assert.Equal(t, s.Lengths(), r.Lengths())
		assert.False(t, r.SharesStorage(s))
	})

	t.Run("FloatPromotes", func(t *testing.T) {
		r, err := s.Mul(0.5)
		require.NoError(t, err)
		assert.Equal(t, Float, r.DType())
		data, err := r.Data()
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2, 2.5}, data.Float64s())
	})

	t.Run("TrueDivision", func(t *testing.T) {
		r, err := s.Div(4)
		require.NoError(t, err)
		assert.Equal(t, Float, r.DType())
		el, err := r.At(1)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1.25}, el.Float64s())
	})

	t.Run("Comparison", func(t *testing.T) {
		r, err := s.Ge(3)
		require.NoError(t, err)
		assert.Equal(t, Bool, r.DType())
		data, err := r.Data()
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false, false, true, true, true}, data.Bools())
	})

	t.Run("UnsignedScalar", func(t *testing.T) {
		r, err := s.Sub(uint8(1))
		require.NoError(t, err)
		assert.Equal(t, Int, r.DType())
	})

	t.Run("UnsupportedOperand", func(t *testing.T) {
		_, err := s.Add("1")
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.Add([]int{1})
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.Add((*Sequence)(nil))
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
	})
}

func TestApply_Sequence(t *testing.T) {
	rng := testutil.NewRNG(21)
	arrays := nonEmpty(randomArrays(t, rng, 25, 5, 3))
	a := mustSeq(t, arrays...)
	b, err := a.Mul(2)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	for i := range a.Len() {
		x, err := a.At(i)
		require.NoError(t, err)
		y, err := sum.At(i)
		require.NoError(t, err)
		for j, v := range x.Float64s() {
			assert.InDelta(t, 3*v, y.Float64s()[j], 1e-12)
		}
	}

	eq, err := sum.Eq(sum)
	require.NoError(t, err)
	data, err := eq.Data()
	require.NoError(t, err)
	for _, v := range data.Bools() {
		assert.True(t, v)
	}
}

func TestApply_LayoutMismatch(t *testing.T) {
	a := mustSeq(t, ints(t, 2, 2, 0), ints(t, 1, 2, 4))
	before, err := a.Copy()
	require.NoError(t, err)

	tests := []struct {
		name  string
		other *Sequence
	}{
		{"Count", mustSeq(t, ints(t, 2, 2, 0))},
		{"Lengths", mustSeq(t, ints(t, 1, 2, 0), ints(t, 2, 2, 4))},
		{"CommonShape", mustSeq(t, ints(t, 2, 1, 0), ints(t, 1, 1, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Add(tt.other)
			assert.ErrorIs(t, err, ErrShapeMismatch)
			assert.ErrorIs(t, err, ErrValue)

			_, err = a.AddInPlace(tt.other)
			assert.ErrorIs(t, err, ErrShapeMismatch)
			assert.True(t, before.Equal(a))
		})
	}
}

func TestApplyInPlace(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		s := mustSeq(t, ints(t, 2, 2, 0))
		r, err := s.AddInPlace(1)
		require.NoError(t, err)
		assert.Same(t, s, r)
		el, err := s.At(0)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4}, el.Int64s())
	})

	t.Run("IntTrueDivisionRejected", func(t *testing.T) {
		s := mustSeq(t, ints(t, 2, 2, 0))
		_, err := s.DivInPlace(2.0)
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.MulInPlace(1.5)
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.DivInPlace(2)
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.DivInPlace(true)
		assert.ErrorIs(t, err, ErrUnsupportedOperand)
		_, err = s.DivInPlace(mustSeq(t, ints(t, 2, 2, 1)))
		assert.ErrorIs(t, err, ErrUnsupportedOperand)

		el, err := s.At(0)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1, 2, 3}, el.Int64s())
	})

	t.Run("FloatAcceptsInt", func(t *testing.T) {
		s := mustSeq(t, floats(t, 1, 2, 3))
		_, err := s.DivInPlace(2)
		require.NoError(t, err)
		_, err = s.PowInPlace(2)
		require.NoError(t, err)
		el, err := s.At(0)
		require.NoError(t, err)
		assert.Equal(t, []float64{2.25, 4}, el.Float64s())
	})

	t.Run("ThroughView", func(t *testing.T) {
		s := mustSeq(t, ints(t, 1, 2, 0), ints(t, 1, 2, 10), ints(t, 1, 2, 20))
		v, err := s.Take([]int{2, 0})
		require.NoError(t, err)
		_, err = v.SubInPlace(100)
		require.NoError(t, err)

		data, err := s.Data()
		require.NoError(t, err)
		assert.Equal(t, []int64{-100, -99, 10, 11, -80, -79}, data.Int64s())
	})

	t.Run("ThroughColumnView", func(t *testing.T) {
		s := mustSeq(t, floats(t, 2, 3, 0))
		v, err := s.Columns([]int{0, 2})
		require.NoError(t, err)
		_, err = v.MulInPlace(-1)
		require.NoError(t, err)
		el, err := s.At(0)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, -2, -3, 4, -5}, el.Float64s())
	})

	t.Run("Sequence", func(t *testing.T) {
		s := mustSeq(t, floats(t, 2, 2, 0), floats(t, 1, 2, 4))
		o := mustSeq(t, ints(t, 2, 2, 1), ints(t, 1, 2, 1))
		_, err := s.ModInPlace(o)
		require.NoError(t, err)
		data, err := s.Data()
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2, 3, 0, 1}, data.Float64s())
	})
}

func TestApply_Domain(t *testing.T) {
	s := mustSeq(t, ints(t, 1, 3, 1))

	_, err := s.Pow(-1)
	assert.ErrorIs(t, err, ErrDomain)
	assert.ErrorIs(t, err, ErrValue)

	_, err = s.PowInPlace(-2)
	assert.ErrorIs(t, err, ErrDomain)

	exps := mustSeq(t, ints(t, 1, 3, -1))
	_, err = s.Pow(exps)
	assert.ErrorIs(t, err, ErrDomain)

	r, err := s.Pow(-1.0)
	require.NoError(t, err)
	el, err := r.At(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.5, 1.0 / 3}, el.Float64s(), 1e-12)

	r, err = s.Pow(3)
	require.NoError(t, err)
	el, err = r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 8, 27}, el.Int64s())
}

func TestArithInt(t *testing.T) {
	tests := []struct {
		op   Op
		x, y int64
		want int64
	}{
		{OpFloorDiv, 7, 2, 3},
		{OpFloorDiv, -7, 2, -4},
		{OpFloorDiv, 7, -2, -4},
		{OpFloorDiv, -7, -2, 3},
		{OpFloorDiv, -6, 2, -3},
		{OpFloorDiv, 5, 0, 0},
		{OpMod, 7, 3, 1},
		{OpMod, -7, 3, 2},
		{OpMod, 7, -3, -2},
		{OpMod, -7, -3, -1},
		{OpMod, 5, 0, 0},
		{OpPow, 2, 10, 1024},
		{OpPow, -3, 3, -27},
		{OpPow, 5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, arithInt(tt.op, tt.x, tt.y), "%d %s %d", tt.x, tt.op, tt.y)
	}
}

func TestArithFloat(t *testing.T) {
	assert.Equal(t, -4.0, arithFloat(OpFloorDiv, -7, 2))
	assert.Equal(t, 2.0, arithFloat(OpMod, -7, 3))
	assert.Equal(t, -2.0, arithFloat(OpMod, 7, -3))
	assert.True(t, math.IsNaN(arithFloat(OpMod, 1, 0)))
	assert.True(t, math.IsInf(arithFloat(OpFloorDiv, 1, 0), 1))
}

func TestShift(t *testing.T) {
	assert.Equal(t, int64(8), shift(OpShl, 1, 3))
	assert.Equal(t, int64(0), shift(OpShl, 1, 64))
	assert.Equal(t, int64(0), shift(OpShl, 1, -1))
	assert.Equal(t, int64(2), shift(OpShr, 8, 2))
	assert.Equal(t, int64(-1), shift(OpShr, -8, 100))
	assert.Equal(t, int64(0), shift(OpShr, 8, 64))

	s := mustSeq(t, ints(t, 1, 2, 1))
	r, err := s.Apply(OpShl, true)
	require.NoError(t, err)
	el, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, el.Int64s())

	_, err = s.Apply(OpShr, 1.0)
	assert.ErrorIs(t, err, ErrUnsupportedOperand)
}

func TestBitwise(t *testing.T) {
	a, err := FromBools([]bool{true, false, true, false}, 2, 2)
	require.NoError(t, err)
	b, err := FromBools([]bool{true, true, false, false}, 2, 2)
	require.NoError(t, err)
	x, y := mustSeq(t, a), mustSeq(t, b)

	want := map[Op][]bool{
		OpAnd: {true, false, false, false},
		OpOr:  {true, true, true, false},
		OpXor: {false, true, true, false},
	}
	for op, w := range want {
		r, err := x.Apply(op, y)
		require.NoError(t, err)
		assert.Equal(t, Bool, r.DType())
		data, err := r.Data()
		require.NoError(t, err)
		assert.Equal(t, w, data.Bools(), op.String())
	}

	r, err := mustSeq(t, ints(t, 1, 2, 6)).Apply(OpAnd, 3)
	require.NoError(t, err)
	el, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, el.Int64s())
}

func TestUnary(t *testing.T) {
	s := mustSeq(t, ints(t, 1, 3, -1))

	r, err := s.Negate()
	require.NoError(t, err)
	el, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, -1}, el.Int64s())

	r, err = s.Abs()
	require.NoError(t, err)
	el, err = r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, 1}, el.Int64s())

	r, err = s.Invert()
	require.NoError(t, err)
	el, err = r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, -1, -2}, el.Int64s())

	mask, err := FromBools([]bool{true, false}, 1, 2)
	require.NoError(t, err)
	b := mustSeq(t, mask)
	r, err = b.Invert()
	require.NoError(t, err)
	el, err = r.At(0)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, el.Bools())

	_, err = b.Negate()
	assert.ErrorIs(t, err, ErrUnsupportedOperand)
	_, err = mustSeq(t, floats(t, 1, 1, 0)).Invert()
	assert.ErrorIs(t, err, ErrUnsupportedOperand)
}

func TestApply_PreservesViewLayout(t *testing.T) {
	s := mustSeq(t, floats(t, 2, 2, 0), floats(t, 3, 2, 4), floats(t, 1, 2, 10))
	v, err := s.Take([]int{2, 2, 0})
	require.NoError(t, err)

	r, err := v.Add(1)
	require.NoError(t, err)
	assert.False(t, r.IsView())
	assert.Equal(t, []int{1, 1, 2}, r.Lengths())
	assert.Equal(t, []int{0, 1, 2}, r.Offsets())
	el, err := r.At(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, el.Float64s())
}

func TestApply_StaleView(t *testing.T) {
	s := New()
	require.NoError(t, s.Append(floats(t, 1, 2, 0)))
	v, err := s.Slice(All())
	require.NoError(t, err)
	require.NoError(t, s.Append(floats(t, 4, 2, 0)))

	_, err = v.Add(1)
	assert.ErrorIs(t, err, ErrStaleView)
}
