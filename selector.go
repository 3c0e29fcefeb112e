package arrayseq

import (
	"fmt"
	"math"
	"slices"
)

// Slice selects positions start:stop:step with Python semantics: negative
// bounds count from the end, out-of-range bounds are clipped and a negative
// step walks backwards. The zero value selects everything.
type Slice struct {
	start, stop, step          int
	hasStart, hasStop, hasStep bool
}

// All selects every position.
func All() Slice { return Slice{} }

// Range selects positions [start, stop).
func Range(start, stop int) Slice {
	return Slice{start: start, stop: stop, hasStart: true, hasStop: true}
}

// From selects positions from start to the end.
func From(start int) Slice { return Slice{start: start, hasStart: true} }

// To selects positions before stop.
func To(stop int) Slice { return Slice{stop: stop, hasStop: true} }

// Step returns a copy of s with the given step. A zero step is rejected when
// the slice is used.
func (s Slice) Step(step int) Slice {
	s.step, s.hasStep = step, true
	return s
}

func (s Slice) String() string {
	part := func(v int, ok bool) string {
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	}
	out := part(s.start, s.hasStart) + ":" + part(s.stop, s.hasStop)
	if s.hasStep {
		out += ":" + fmt.Sprint(s.step)
	}
	return out
}

// positions resolves the slice against a length n.
func (s Slice) positions(n int) ([]int, error) {
	step := 1
	if s.hasStep {
		step = s.step
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: slice step cannot be zero", ErrValue)
	}

	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clip := func(v int, ok bool, def int) int {
		if !ok {
			return def
		}
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}

	var start, stop int
	if step > 0 {
		start, stop = clip(s.start, s.hasStart, lower), clip(s.stop, s.hasStop, upper)
	} else {
		start, stop = clip(s.start, s.hasStart, upper), clip(s.stop, s.hasStop, lower)
	}

	var out []int
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// normalize resolves integer positions against a length n; negatives count
// from the end.
func normalize[T integer](xs []T, n int) ([]int, error) {
	out := make([]int, len(xs))
	for i, x := range xs {
		p, err := normalizeOne(x, n)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func normalizeOne[T integer](x T, n int) (int, error) {
	if x >= 0 && uint64(x) > math.MaxInt {
		return 0, fmt.Errorf("%w: position %d for length %d", ErrIndexOutOfRange, uint64(x), n)
	}
	p := int(x)
	if p < 0 {
		p += n
	}
	if p < 0 || p >= n {
		return 0, outOfRange(int(x), n)
	}
	return p, nil
}

func maskPositions(mask []bool, n int) ([]int, error) {
	if len(mask) != n {
		return nil, countError("mask", "boolean index length", n, len(mask))
	}
	out := []int{}
	for i, keep := range mask {
		if keep {
			out = append(out, i)
		}
	}
	return out, nil
}

// axisSelector resolves one selector against an axis of length n. keep is
// false when the selector is a plain integer, which drops the axis.
func axisSelector(sel any, n int) (idx []int, keep bool, err error) {
	switch v := sel.(type) {
	case Slice:
		idx, err = v.positions(n)
		return idx, true, err
	case []bool:
		idx, err = maskPositions(v, n)
		return idx, true, err
	}
	if p, ok, err := intPosition(sel, n); ok {
		if err != nil {
			return nil, false, err
		}
		return []int{p}, false, nil
	}
	if idx, ok, err := intPositions(sel, n); ok {
		return idx, true, err
	}
	return nil, false, unsupported("select", "trailing selector of type %T", sel)
}

// intPosition handles every Go integer kind.
func intPosition(v any, n int) (int, bool, error) {
	var p int
	var err error
	switch x := v.(type) {
	case int:
		p, err = normalizeOne(x, n)
	case int8:
		p, err = normalizeOne(x, n)
	case int16:
		p, err = normalizeOne(x, n)
	case int32:
		p, err = normalizeOne(x, n)
	case int64:
		p, err = normalizeOne(x, n)
	case uint:
		p, err = normalizeOne(x, n)
	case uint8:
		p, err = normalizeOne(x, n)
	case uint16:
		p, err = normalizeOne(x, n)
	case uint32:
		p, err = normalizeOne(x, n)
	case uint64:
		p, err = normalizeOne(x, n)
	default:
		return 0, false, nil
	}
	return p, true, err
}

// intPositions handles slices of every Go integer kind.
func intPositions(v any, n int) ([]int, bool, error) {
	var pos []int
	var err error
	switch x := v.(type) {
	case []int:
		pos, err = normalize(x, n)
	case []int8:
		pos, err = normalize(x, n)
	case []int16:
		pos, err = normalize(x, n)
	case []int32:
		pos, err = normalize(x, n)
	case []int64:
		pos, err = normalize(x, n)
	case []uint:
		pos, err = normalize(x, n)
	case []uint8:
		pos, err = normalize(x, n)
	case []uint16:
		pos, err = normalize(x, n)
	case []uint32:
		pos, err = normalize(x, n)
	case []uint64:
		pos, err = normalize(x, n)
	default:
		return nil, false, nil
	}
	return pos, true, err
}

// projection selects columns of every row. shape is the selected common
// shape; cols are flat offsets into a store row, row-major over shape.
type projection struct {
	shape []int
	cols  []int
}

func identityProjection(shape []int, width int) *projection {
	cols := make([]int, width)
	for i := range cols {
		cols[i] = i
	}
	return &projection{shape: cloneInts(shape), cols: cols}
}

// compose applies trailing selectors on top of base (nil means identity
// over storeShape). Axes without a selector are kept whole.
func compose(base *projection, storeShape []int, width int, trailing []any) (*projection, error) {
	if len(trailing) == 0 {
		return base, nil
	}
	cur := base
	if cur == nil {
		cur = identityProjection(storeShape, width)
	}
	if len(trailing) > len(cur.shape) {
		return nil, fmt.Errorf("%w: %d trailing selectors for common shape %s", ErrIndexOutOfRange, len(trailing), formatShape(cur.shape))
	}

	rank := len(cur.shape)
	axes := make([][]int, rank)
	shape := []int{}
	for k := range rank {
		if k >= len(trailing) {
			axes[k], _ = All().positions(cur.shape[k])
			shape = append(shape, cur.shape[k])
			continue
		}
		idx, keep, err := axisSelector(trailing[k], cur.shape[k])
		if err != nil {
			return nil, err
		}
		axes[k] = idx
		if keep {
			shape = append(shape, len(idx))
		}
	}

	strides := make([]int, rank)
	stride := 1
	for k := rank - 1; k >= 0; k-- {
		strides[k] = stride
		stride *= cur.shape[k]
	}

	cols := []int{}
	for _, a := range axes {
		if len(a) == 0 {
			return &projection{shape: shape, cols: cols}, nil
		}
	}
	counter := make([]int, rank)
	for {
		flat := 0
		for k := range rank {
			flat += axes[k][counter[k]] * strides[k]
		}
		cols = append(cols, cur.cols[flat])

		k := rank - 1
		for ; k >= 0; k-- {
			counter[k]++
			if counter[k] < len(axes[k]) {
				break
			}
			counter[k] = 0
		}
		if k < 0 {
			break
		}
	}

	if slices.Equal(shape, storeShape) && isIdentity(cols) {
		return nil, nil
	}
	return &projection{shape: shape, cols: cols}, nil
}

func isIdentity(cols []int) bool {
	for i, c := range cols {
		if c != i {
			return false
		}
	}
	return true
}
