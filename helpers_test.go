package arrayseq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/arrayseq/testutil"
)

// floats returns an (n, d) Float array holding start, start+1, ...
func floats(t *testing.T, n, d int, start float64) Array {
	t.Helper()
	data := make([]float64, n*d)
	for i := range data {
		data[i] = start + float64(i)
	}
	a, err := FromFloat64s(data, n, d)
	require.NoError(t, err)
	return a
}

// ints returns an (n, d) Int array holding start, start+1, ...
func ints(t *testing.T, n, d int, start int64) Array {
	t.Helper()
	data := make([]int64, n*d)
	for i := range data {
		data[i] = start + int64(i)
	}
	a, err := FromInt64s(data, n, d)
	require.NoError(t, err)
	return a
}

// randomArrays returns count Float elements of up to maxLen rows of width d.
func randomArrays(t *testing.T, rng *testutil.RNG, count, maxLen, d int) []Array {
	t.Helper()
	data, lengths := rng.Elements(count, maxLen, d)
	out := make([]Array, count)
	for i := range out {
		a, err := FromFloat64s(data[i], lengths[i], d)
		require.NoError(t, err)
		out[i] = a
	}
	return out
}

func mustSeq(t *testing.T, arrays ...Array) *Sequence {
	t.Helper()
	s, err := FromArrays(arrays)
	require.NoError(t, err)
	return s
}

// requireElements checks s element by element against want.
func requireElements(t *testing.T, want []Array, s *Sequence) {
	t.Helper()
	require.Equal(t, len(want), s.Len())
	for i, w := range want {
		got, err := s.At(i)
		require.NoError(t, err)
		require.Truef(t, w.Equal(got), "element %d: want %v, got %v", i, w, got)
	}
}

// nonEmpty drops zero-size arrays, which sequences skip on append.
func nonEmpty(arrays []Array) []Array {
	var out []Array
	for _, a := range arrays {
		if a.Size() > 0 {
			out = append(out, a)
		}
	}
	return out
}
