package arrayseq

import (
	"github.com/hupe1980/arrayseq/internal/mem"
)

// buffer is a flat run of values of one dtype.
// Bool buffers only ever hold 0 and 1.
type buffer struct {
	dtype  DType
	ints   []int64
	floats []float64
}

func newBuffer(dtype DType, n int) buffer {
	if dtype == Float {
		return buffer{dtype: Float, floats: mem.AllocAlignedFloat64(n)}
	}
	return buffer{dtype: dtype, ints: mem.AllocAlignedInt64(n)}
}

func (b buffer) len() int {
	if b.dtype == Float {
		return len(b.floats)
	}
	return len(b.ints)
}

func (b buffer) float(i int) float64 {
	if b.dtype == Float {
		return b.floats[i]
	}
	return float64(b.ints[i])
}

func (b buffer) int(i int) int64 {
	if b.dtype == Float {
		return int64(b.floats[i])
	}
	return b.ints[i]
}

func (b buffer) truth(i int) bool {
	if b.dtype == Float {
		return b.floats[i] != 0
	}
	return b.ints[i] != 0
}

// set casts src[j] to b's dtype and stores it at i.
func (b buffer) set(i int, src buffer, j int) {
	switch b.dtype {
	case Float:
		b.floats[i] = src.float(j)
	case Int:
		b.ints[i] = src.int(j)
	default:
		if src.truth(j) {
			b.ints[i] = 1
		} else {
			b.ints[i] = 0
		}
	}
}

// copyFrom casts n values of src starting at j into b starting at i.
func (b buffer) copyFrom(i int, src buffer, j, n int) {
	if n <= 0 {
		return
	}
	if b.dtype == src.dtype || (b.dtype == Int && src.dtype == Bool) {
		if b.dtype == Float {
			copy(b.floats[i:i+n], src.floats[j:j+n])
		} else {
			copy(b.ints[i:i+n], src.ints[j:j+n])
		}
		return
	}
	for k := range n {
		b.set(i+k, src, j+k)
	}
}

func (b buffer) clone() buffer {
	out := newBuffer(b.dtype, b.len())
	out.copyFrom(0, b, 0, b.len())
	return out
}

func (b buffer) astype(dtype DType) buffer {
	if b.dtype == dtype {
		return b.clone()
	}
	out := newBuffer(dtype, b.len())
	out.copyFrom(0, b, 0, b.len())
	return out
}

// valueEqual compares b[i] and o[j] numerically.
func (b buffer) valueEqual(i int, o buffer, j int) bool {
	if b.dtype == Float || o.dtype == Float {
		return b.float(i) == o.float(j)
	}
	return b.ints[i] == o.ints[j]
}
