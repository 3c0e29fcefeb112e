package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformRows(t *testing.T) {
	rows := NewRNG(4711).UniformRows(8, 3)

	assert.Len(t, rows, 8)
	for _, row := range rows {
		assert.Len(t, row, 3)
		assert.Equal(t, 3, cap(row))
		for _, x := range row {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.Less(t, x, 1.0)
		}
	}
}

func TestElements(t *testing.T) {
	data, lengths := NewRNG(4711).Elements(50, 7, 3)

	assert.Len(t, data, 50)
	assert.Len(t, lengths, 50)
	for i, n := range lengths {
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 7)
		assert.Len(t, data[i], n*3)
	}
}

func TestFillInts(t *testing.T) {
	v := make([]int64, 100)
	NewRNG(4711).FillInts(v, -5, 5)

	for _, x := range v {
		assert.GreaterOrEqual(t, x, int64(-5))
		assert.Less(t, x, int64(5))
	}
}

func TestPermAndMask(t *testing.T) {
	rng := NewRNG(4711)

	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, rng.Perm(5))
	assert.Len(t, rng.Mask(10, 0.5), 10)
	assert.NotContains(t, rng.Mask(10, 0), true)
	assert.NotContains(t, rng.Mask(10, 1), false)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	first := rng.UniformRows(1, 10)
	n := rng.Intn(100)

	rng.Reset()
	assert.Equal(t, first, rng.UniformRows(1, 10))
	assert.Equal(t, n, rng.Intn(100))
	assert.Equal(t, int64(4711), rng.Seed())
}
