package arrayseq

import "fmt"

// Append adds one element. Its shape must be (n, CommonShape()...); an empty
// sequence adopts the element's trailing shape and dtype. Zero-size
// elements are ignored and add no index entry. Values are cast to the
// sequence dtype.
//
// Appending to a view first detaches it into a packed copy, so rows shared
// with other sequences are never overwritten.
func (s *Sequence) Append(a Array) error {
	return s.Extend(a)
}

// Extend appends every array with a single growth. All arrays are validated
// before any row is written.
func (s *Sequence) Extend(arrays ...Array) error {
	if err := s.check(); err != nil {
		return err
	}

	adopt := s.adopting()
	var shape []int
	var dtype DType
	if !adopt {
		shape, dtype = s.shape(), s.store.dtype
	}

	total, nonEmpty := 0, 0
	for i, a := range arrays {
		if a.Rank() == 0 {
			return fmt.Errorf("%w: extend: element %d is rank-0", ErrShapeMismatch, i)
		}
		if a.Size() == 0 {
			continue
		}
		if nonEmpty == 0 && adopt {
			shape, dtype = a.trailing(), a.dtype
		} else if !shapeEqual(a.trailing(), shape) {
			return shapeError("extend", shape, a.trailing())
		}
		if adopt {
			dtype = promote(dtype, a.dtype)
		}
		total += a.Len()
		nonEmpty++
	}
	if nonEmpty == 0 {
		return nil
	}

	if err := s.prepare(adopt, shape, dtype, total); err != nil {
		return err
	}
	for _, a := range arrays {
		if a.Size() == 0 {
			continue
		}
		off := s.store.rows
		s.store.appendRows(a.buffer, 0, a.Len())
		s.table.push(off, a.Len())
	}
	return nil
}

// ExtendSequence appends every element of other, including zero-length
// ones. Views contribute only the rows they reference.
func (s *Sequence) ExtendSequence(other *Sequence) error {
	if err := s.check(); err != nil {
		return err
	}
	if other == nil {
		return unsupported("extend", "nil sequence")
	}
	if err := other.ready(); err != nil {
		return err
	}
	if other.Len() == 0 {
		return nil
	}
	if other.store == s.store {
		// Growth would invalidate a source sharing our store.
		c, err := other.Copy()
		if err != nil {
			return err
		}
		other = c
	}

	adopt := s.adopting()
	shape, dtype := s.shape(), s.store.dtype
	if adopt {
		shape, dtype = other.shape(), other.store.dtype
	} else if !shapeEqual(other.shape(), shape) {
		return shapeError("extend", shape, other.shape())
	}

	if err := s.prepare(adopt, shape, dtype, other.TotalRows()); err != nil {
		return err
	}
	var cols []int
	if other.sel != nil {
		cols = other.sel.cols
	}
	for i := range other.Len() {
		off, n := s.store.rows, other.table.lengths[i]
		s.store.appendProjected(other.store, other.table.offsets[i], n, cols)
		s.table.push(off, n)
	}
	return nil
}

// ExtendIterator drains it and appends every element. The whole stream is
// validated before anything is written.
func (s *Sequence) ExtendIterator(it Iterator) error {
	return s.Extend(drain(it)...)
}

// ShrinkToFit trims the backing store to the used rows. A view is detached
// into a packed copy instead. Outstanding views of a reallocated store
// become stale.
func (s *Sequence) ShrinkToFit() error {
	if err := s.check(); err != nil {
		return err
	}
	if s.view {
		return s.detach()
	}
	if err := s.store.shrinkToFit(s.cfg); err != nil {
		return err
	}
	s.gen = s.store.gen
	return nil
}

// adopting reports whether the next non-empty element defines the common
// shape and dtype.
func (s *Sequence) adopting() bool {
	return s.store.rows == 0 && s.table.totalRows() == 0
}

// prepare detaches views, installs a fresh store when adopting a shape and
// reserves room for rows more rows.
func (s *Sequence) prepare(adopt bool, shape []int, dtype DType, rows int) error {
	if s.view {
		if err := s.detach(); err != nil {
			return err
		}
	}
	if adopt {
		st, err := newStore(s.cfg, dtype, shape, 0)
		if err != nil {
			return err
		}
		s.store, s.sel, s.gen = st, nil, st.gen
	}
	if err := s.store.reserve(s.cfg, rows); err != nil {
		return err
	}
	s.gen = s.store.gen
	return nil
}
