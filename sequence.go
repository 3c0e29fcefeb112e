package arrayseq

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/arrayseq/internal/conv"
)

// Sequence is a list of variable-length arrays sharing one trailing shape,
// stored back to back in a single buffer.
//
// A packed sequence owns its buffer and its offsets are the prefix sums of
// its lengths. A view, returned by Select and its shorthands, shares the
// buffer of the sequence it was cut from and may reference rows in any order.
// Views are invalidated when the owner reallocates (growth beyond capacity
// or ShrinkToFit); using a stale view fails with ErrStaleView. Appending
// within capacity does not invalidate views.
//
// A Sequence is not safe for concurrent mutation. Concurrent reads with no
// writer are safe.
type Sequence struct {
	store *backingStore
	table indexTable
	view  bool
	sel   *projection
	gen   uint64
	cfg   *config
}

// New returns an empty sequence: no elements, common shape (), Float dtype.
func New(opts ...Option) *Sequence {
	return newEmpty(applyOptions(opts))
}

func newEmpty(cfg *config) *Sequence {
	return &Sequence{store: emptyStore(Float), cfg: cfg}
}

// FromArrays builds a packed sequence with a single exact allocation.
// Zero-size arrays are skipped; the dtype is the promotion of all inputs.
func FromArrays(arrays []Array, opts ...Option) (*Sequence, error) {
	s := New(opts...)
	if err := s.Extend(arrays...); err != nil {
		return nil, err
	}
	return s, nil
}

// FromSequence returns an independent packed copy of src.
func FromSequence(src *Sequence) (*Sequence, error) {
	return src.Copy()
}

// FromParts builds a sequence from raw parts: data of shape
// (rows, common_shape...), and one offset and length per element.
//
// The parts are copied but not cross-checked; an inconsistent table is
// reported as ErrCorruptState when elements are read.
func FromParts(data Array, offsets, lengths []int, opts ...Option) (*Sequence, error) {
	return fromParts(applyOptions(opts), data.clone(), data.shape, slices.Clone(offsets), slices.Clone(lengths))
}

func fromParts(cfg *config, values buffer, shape []int, offsets, lengths []int) (*Sequence, error) {
	if len(shape) == 0 {
		return nil, shapeError("from parts", []int{0}, shape)
	}
	st, err := newStore(cfg, values.dtype, shape[1:], 0)
	if err != nil {
		return nil, err
	}
	rows := shape[0]
	if want := rows * st.width; values.len() != want {
		return nil, fmt.Errorf("%w: %d values for data of shape %s", ErrShapeMismatch, values.len(), formatShape(shape))
	}
	if st.acct != nil {
		bytes, err := st.bytesFor(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		if err := cfg.rc.AcquireMemory(bytes); err != nil {
			return nil, fmt.Errorf("arrayseq: from parts: %w", err)
		}
		st.acct.bytes.Add(bytes)
	}
	st.buffer = values
	st.rows, st.capacity = rows, rows
	if offsets == nil {
		offsets = []int{}
	}
	if lengths == nil {
		lengths = []int{}
	}
	return &Sequence{
		store: st,
		table: indexTable{offsets: offsets, lengths: lengths},
		gen:   st.gen,
		cfg:   cfg,
	}, nil
}

// derive returns a view over the same store.
func (s *Sequence) derive(table indexTable, sel *projection) *Sequence {
	return &Sequence{store: s.store, table: table, view: true, sel: sel, gen: s.gen, cfg: s.cfg}
}

// check fails with ErrStaleView if the store was reallocated since this
// sequence last observed it.
func (s *Sequence) check() error {
	if s.gen != s.store.gen {
		return fmt.Errorf("%w: generation %d, store at %d", ErrStaleView, s.gen, s.store.gen)
	}
	return nil
}

// ready combines the staleness check with a full index table check.
func (s *Sequence) ready() error {
	if err := s.check(); err != nil {
		return err
	}
	return s.table.check(s.store.rows)
}

// Len returns the number of elements.
func (s *Sequence) Len() int { return s.table.len() }

// TotalRows returns the sum of all element lengths.
func (s *Sequence) TotalRows() int { return s.table.totalRows() }

// CommonShape returns the trailing shape shared by all elements, after any
// trailing selection.
func (s *Sequence) CommonShape() []int { return cloneInts(s.shape()) }

func (s *Sequence) shape() []int {
	if s.sel != nil {
		return s.sel.shape
	}
	return s.store.shape
}

// rowWidth is the number of values per selected row.
func (s *Sequence) rowWidth() int {
	if s.sel != nil {
		return len(s.sel.cols)
	}
	return s.store.width
}

// DType returns the element type.
func (s *Sequence) DType() DType { return s.store.dtype }

// IsView reports whether the sequence shares or reorders another's storage.
func (s *Sequence) IsView() bool { return s.view }

// Offsets returns a copy of the element offsets.
func (s *Sequence) Offsets() []int { return slices.Clone(s.table.offsets) }

// Lengths returns a copy of the element lengths.
func (s *Sequence) Lengths() []int { return slices.Clone(s.table.lengths) }

// Capacity returns the number of rows the backing store can hold without
// reallocating.
func (s *Sequence) Capacity() int { return s.store.capacity }

// SharesStorage reports whether both sequences use the same backing store.
func (s *Sequence) SharesStorage(other *Sequence) bool {
	return other != nil && s.store == other.store
}

// IsSequence reports whether v is a *Sequence.
func IsSequence(v any) bool {
	_, ok := v.(*Sequence)
	return ok
}

// readRows copies n selected rows starting at store row off into dst at
// value position at, casting to dst's dtype.
func (s *Sequence) readRows(dst buffer, at, off, n int) {
	w := s.store.width
	if s.sel == nil {
		dst.copyFrom(at, s.store.buffer, off*w, n*w)
		return
	}
	cols := s.sel.cols
	for r := range n {
		base := (off + r) * w
		row := at + r*len(cols)
		for j, c := range cols {
			dst.set(row+j, s.store.buffer, base+c)
		}
	}
}

// writeRows stores n selected rows from src, starting at value position at,
// into store rows starting at off. bcast repeats src[0] instead.
func (s *Sequence) writeRows(src buffer, at, off, n int, bcast bool) {
	w, k := s.store.width, s.rowWidth()
	dst := s.store.buffer
	for r := range n {
		base := (off + r) * w
		for j := range k {
			col := j
			if s.sel != nil {
				col = s.sel.cols[j]
			}
			from := 0
			if !bcast {
				from = at + r*k + j
			}
			dst.set(base+col, src, from)
		}
	}
}

// element copies element i.
func (s *Sequence) element(i int) (Array, error) {
	if err := s.table.checkEntry(i, s.store.rows); err != nil {
		return Array{}, err
	}
	off, n := s.table.offsets[i], s.table.lengths[i]
	k := s.rowWidth()
	buf := newBuffer(s.store.dtype, n*k)
	s.readRows(buf, 0, off, n)
	return Array{buffer: buf, shape: append([]int{n}, s.shape()...)}, nil
}

// gather copies every referenced row, in element order, cast to dtype.
func (s *Sequence) gather(dtype DType) buffer {
	k := s.rowWidth()
	buf := newBuffer(dtype, s.table.totalRows()*k)
	at := 0
	for i := range s.table.len() {
		n := s.table.lengths[i]
		s.readRows(buf, at, s.table.offsets[i], n)
		at += n * k
	}
	return buf
}

// Data returns a dense copy of the referenced rows, in element order, with
// shape (TotalRows(), CommonShape()...). An empty sequence yields a rank-1
// array of length 0.
func (s *Sequence) Data() (Array, error) {
	if err := s.ready(); err != nil {
		return Array{}, err
	}
	return Array{
		buffer: s.gather(s.store.dtype),
		shape:  append([]int{s.table.totalRows()}, s.shape()...),
	}, nil
}

// Copy returns an independent packed sequence with exact capacity. Views
// pack exactly the rows they reference, in view order.
func (s *Sequence) Copy() (*Sequence, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.packed(s.store.dtype)
}

func (s *Sequence) packed(dtype DType) (*Sequence, error) {
	st, err := packedStore(s.cfg, s.store, s.sel, dtype, s.table)
	if err != nil {
		return nil, err
	}
	return &Sequence{store: st, table: packedTable(s.table.lengths), gen: st.gen, cfg: s.cfg}, nil
}

// detach replaces a view's shared storage with a packed copy.
func (s *Sequence) detach() error {
	c, err := s.Copy()
	if err != nil {
		return err
	}
	s.store, s.table, s.view, s.sel, s.gen = c.store, c.table, false, nil, c.gen
	return nil
}

// At returns a copy of element i. Negative positions count from the end.
func (s *Sequence) At(i int) (Array, error) {
	if err := s.check(); err != nil {
		return Array{}, err
	}
	p, err := normalizeOne(i, s.Len())
	if err != nil {
		return Array{}, err
	}
	return s.element(p)
}

// Each calls fn with a copy of every element, in order, stopping at the
// first error.
func (s *Sequence) Each(fn func(i int, a Array) error) error {
	if err := s.check(); err != nil {
		return err
	}
	for i := range s.Len() {
		a, err := s.element(i)
		if err != nil {
			return err
		}
		if err := fn(i, a); err != nil {
			return err
		}
	}
	return nil
}

// Arrays returns a copy of every element.
func (s *Sequence) Arrays() ([]Array, error) {
	out := make([]Array, 0, s.Len())
	err := s.Each(func(_ int, a Array) error {
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether both sequences hold the same number of elements
// with equal shapes and values. Storage layout and dtype are ignored.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil || s.Len() != other.Len() || !slices.Equal(s.shape(), other.shape()) {
		return false
	}
	if !slices.Equal(s.table.lengths, other.table.lengths) {
		return false
	}
	if s.ready() != nil || other.ready() != nil {
		return false
	}
	a, b := s.gather(s.store.dtype), other.gather(other.store.dtype)
	for i := range a.len() {
		if !a.valueEqual(i, b, i) {
			return false
		}
	}
	return true
}

// NonZero returns the positions of elements holding at least one nonzero
// value. The bitmap can be passed back to Select.
func (s *Sequence) NonZero() (*roaring.Bitmap, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	bm := roaring.New()
	k := s.rowWidth()
	for i := range s.Len() {
		n := s.table.lengths[i]
		vals := newBuffer(s.store.dtype, n*k)
		s.readRows(vals, 0, s.table.offsets[i], n)
		for j := range vals.len() {
			if vals.truth(j) {
				p, err := conv.IntToUint32(i)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
				}
				bm.Add(p)
				break
			}
		}
	}
	return bm, nil
}
