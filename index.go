package arrayseq

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
)

// positions resolves an element index against the sequence.
func (s *Sequence) positions(op string, index any) ([]int, error) {
	n := s.Len()
	switch v := index.(type) {
	case Slice:
		return v.positions(n)
	case []bool:
		return maskPositions(v, n)
	case *roaring.Bitmap:
		if v == nil {
			return nil, unsupported(op, "nil bitmap")
		}
		if !v.IsEmpty() && uint64(v.Maximum()) >= uint64(n) {
			return nil, outOfRange(int(v.Maximum()), n)
		}
		pos := make([]int, 0, v.GetCardinality())
		it := v.Iterator()
		for it.HasNext() {
			pos = append(pos, int(it.Next()))
		}
		return pos, nil
	}
	if p, ok, err := intPosition(index, n); ok {
		if err != nil {
			return nil, err
		}
		return []int{p}, nil
	}
	if pos, ok, err := intPositions(index, n); ok {
		return pos, err
	}
	return nil, unsupported(op, "index of type %T", index)
}

// Select returns a view of the elements chosen by index, sharing storage.
//
// index may be any Go integer (one-element view), a Slice, a slice of
// integers (any order, repeats allowed, negatives count from the end), a
// []bool mask of length Len() or a *roaring.Bitmap of positions. Optional
// trailing selectors apply to the common shape axes in order: an integer
// drops its axis; a Slice, integer slice or []bool keeps it. Selectors are
// applied lazily on every read and compose across chained selections.
func (s *Sequence) Select(index any, trailing ...any) (*Sequence, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	pos, err := s.positions("select", index)
	if err != nil {
		return nil, err
	}
	sel, err := compose(s.sel, s.store.shape, s.store.width, trailing)
	if err != nil {
		return nil, err
	}
	table, err := s.table.take(pos)
	if err != nil {
		return nil, err
	}
	return s.derive(table, sel), nil
}

// Slice is shorthand for Select(sl).
func (s *Sequence) Slice(sl Slice) (*Sequence, error) { return s.Select(sl) }

// Take is shorthand for Select(idx).
func (s *Sequence) Take(idx []int) (*Sequence, error) { return s.Select(idx) }

// Filter is shorthand for Select(mask).
func (s *Sequence) Filter(mask []bool) (*Sequence, error) { return s.Select(mask) }

// Columns selects along the common shape only, keeping every element.
func (s *Sequence) Columns(trailing ...any) (*Sequence, error) {
	return s.Select(All(), trailing...)
}

// source is the validated right-hand side of Set: either a flat run of
// values (broadcast when bcast) or a sequence read in place.
type source struct {
	values buffer
	bcast  bool
	seq    *Sequence
}

// Set assigns value to the elements chosen by index. index and trailing
// follow the Select grammar; with trailing selectors only the chosen part of
// the common shape is written, so Set(All(), 0, 0) zeroes column 0.
//
// value may be a Go scalar (broadcast), an Array (exactly one selected
// element), a []Array or a *Sequence. Element counts, per-element lengths and
// the common shape must match exactly. Nothing is written unless the whole
// assignment validates. Values are cast to the sequence dtype.
func (s *Sequence) Set(index any, value any, trailing ...any) error {
	if len(trailing) > 0 {
		v, err := s.Select(index, trailing...)
		if err != nil {
			return err
		}
		return v.Set(All(), value)
	}
	if err := s.check(); err != nil {
		return err
	}
	pos, err := s.positions("set", index)
	if err != nil {
		return err
	}
	target, err := s.table.take(pos)
	if err != nil {
		return err
	}
	if err := target.check(s.store.rows); err != nil {
		return err
	}

	src, err := s.setSource(target, value)
	if err != nil {
		return err
	}

	k := s.rowWidth()
	at := 0
	for i := range target.len() {
		n := target.lengths[i]
		if src.seq != nil {
			s.assignRows(src.seq, src.seq.table.offsets[i], target.offsets[i], n)
			continue
		}
		s.writeRows(src.values, at, target.offsets[i], n, src.bcast)
		at += n * k
	}
	return nil
}

// assignRows copies n selected rows of v starting at srcOff into the
// selected columns of store rows starting at dstOff.
func (s *Sequence) assignRows(v *Sequence, srcOff, dstOff, n int) {
	w, vw := s.store.width, v.store.width
	for r := range n {
		for j := range s.rowWidth() {
			dc, sc := j, j
			if s.sel != nil {
				dc = s.sel.cols[j]
			}
			if v.sel != nil {
				sc = v.sel.cols[j]
			}
			s.store.set((dstOff+r)*w+dc, v.store.buffer, (srcOff+r)*vw+sc)
		}
	}
}

func (s *Sequence) setSource(target indexTable, value any) (source, error) {
	shape := s.shape()

	switch v := value.(type) {
	case *Sequence:
		if v == nil {
			return source{}, unsupported("set", "nil sequence")
		}
		if err := v.ready(); err != nil {
			return source{}, err
		}
		if err := matchLayout("set", target, shape, v.table, v.shape()); err != nil {
			return source{}, err
		}
		// Rows read and written through the same store must not interleave.
		if v.store == s.store && overlaps(target, v.table, s.store.rows) {
			return source{values: v.gather(v.store.dtype)}, nil
		}
		return source{seq: v}, nil
	case Array:
		return s.arraysSource(target, shape, []Array{v})
	case []Array:
		return s.arraysSource(target, shape, v)
	}

	if sc, ok := scalarOf(value); ok {
		return source{values: sc.buffer(), bcast: true}, nil
	}
	return source{}, unsupported("set", "value of type %T", value)
}

func (s *Sequence) arraysSource(target indexTable, shape []int, arrays []Array) (source, error) {
	if len(arrays) != target.len() {
		return source{}, countError("set", "element count", target.len(), len(arrays))
	}
	total := 0
	dtype := Bool
	for i, a := range arrays {
		want := append([]int{target.lengths[i]}, shape...)
		if !shapeEqual(a.shape, want) {
			return source{}, shapeError("set", want, a.shape)
		}
		total += a.len()
		dtype = promote(dtype, a.dtype)
	}
	values := newBuffer(dtype, total)
	at := 0
	for _, a := range arrays {
		values.copyFrom(at, a.buffer, 0, a.len())
		at += a.len()
	}
	return source{values: values}, nil
}

// matchLayout checks element counts, per-element lengths and common shapes.
func matchLayout(op string, want indexTable, wantShape []int, got indexTable, gotShape []int) error {
	if want.len() != got.len() {
		return countError(op, "element count", want.len(), got.len())
	}
	for i := range want.lengths {
		if want.lengths[i] != got.lengths[i] {
			return countError(op, fmt.Sprintf("length of element %d", i), want.lengths[i], got.lengths[i])
		}
	}
	if !shapeEqual(wantShape, gotShape) {
		return shapeError(op, wantShape, gotShape)
	}
	return nil
}

// overlaps reports whether any row referenced by b is also referenced by a.
func overlaps(a, b indexTable, rows int) bool {
	if rows <= 0 || rows > math.MaxInt32 {
		return rows > 0
	}
	bs := bitset.New(uint(rows))
	for i := range a.len() {
		for r := a.offsets[i]; r < a.offsets[i]+a.lengths[i]; r++ {
			bs.Set(uint(r))
		}
	}
	for i := range b.len() {
		for r := b.offsets[i]; r < b.offsets[i]+b.lengths[i]; r++ {
			if bs.Test(uint(r)) {
				return true
			}
		}
	}
	return false
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
