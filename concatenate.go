package arrayseq

import (
	"fmt"

	"github.com/hupe1980/arrayseq/internal/conv"
)

// Concatenate merges seqs into a new packed sequence that never aliases any
// input.
//
// With axis 0 the result holds every element of every input, in input
// order. Inputs without rows are ignored for the common shape check, the
// others must agree, and the dtype is the promotion over inputs with rows.
//
// With axis > 0 corresponding elements are stacked along element axis axis
// (common shape axis axis-1). The inputs must have the same element count
// and per-element lengths, and common shapes that agree on every other axis.
//
// Axes outside [0, rank] fail with ErrShapeMismatch. No inputs yield an
// empty sequence.
func Concatenate(seqs []*Sequence, axis int, opts ...Option) (*Sequence, error) {
	for i, s := range seqs {
		if s == nil {
			return nil, unsupported("concatenate", "nil sequence at position %d", i)
		}
		if err := s.ready(); err != nil {
			return nil, err
		}
	}
	cfg := applyOptions(opts)
	if len(seqs) == 0 {
		return newEmpty(cfg), nil
	}
	if axis == 0 {
		return concatElements(cfg, seqs)
	}
	return concatAxis(cfg, seqs, axis)
}

func concatElements(cfg *config, seqs []*Sequence) (*Sequence, error) {
	var (
		shape []int
		dtype = seqs[0].store.dtype
		first = true
		total int
		count int
	)
	for _, s := range seqs {
		count += s.Len()
		if s.TotalRows() == 0 {
			continue
		}
		if first {
			shape, dtype, first = s.shape(), s.store.dtype, false
		} else if !shapeEqual(s.shape(), shape) {
			return nil, shapeError("concatenate", shape, s.shape())
		}
		dtype = promote(dtype, s.store.dtype)
		total += s.TotalRows()
	}
	if count == 0 {
		return newEmpty(cfg), nil
	}
	if first {
		// Only zero-length elements: keep their entries over an empty store.
		st := emptyStore(dtype)
		out := &Sequence{store: st, gen: st.gen, cfg: cfg}
		for range count {
			out.table.push(0, 0)
		}
		return out, nil
	}

	st, err := newStore(cfg, dtype, shape, total)
	if err != nil {
		return nil, err
	}
	out := &Sequence{store: st, gen: st.gen, cfg: cfg}
	for _, s := range seqs {
		var cols []int
		if s.sel != nil {
			cols = s.sel.cols
		}
		for i := range s.Len() {
			off, n := st.rows, s.table.lengths[i]
			if n > 0 {
				st.appendProjected(s.store, s.table.offsets[i], n, cols)
			}
			out.table.push(off, n)
		}
	}
	return out, nil
}

func concatAxis(cfg *config, seqs []*Sequence, axis int) (*Sequence, error) {
	ref := seqs[0]
	rank := len(ref.shape())
	if axis < 0 || axis > rank {
		return nil, fmt.Errorf("%w: concatenate: axis %d out of range for elements of rank %d", ErrShapeMismatch, axis, rank+1)
	}
	ax := axis - 1

	outShape := cloneInts(ref.shape())
	outShape[ax] = 0
	dtype := ref.store.dtype
	for _, s := range seqs {
		if err := matchLayout("concatenate", ref.table, nil, s.table, nil); err != nil {
			return nil, err
		}
		shape := s.shape()
		if len(shape) != rank {
			return nil, shapeError("concatenate", ref.shape(), shape)
		}
		for d := range shape {
			if d != ax && shape[d] != ref.shape()[d] {
				return nil, shapeError("concatenate", ref.shape(), shape)
			}
		}
		outShape[ax] += shape[ax]
		dtype = promote(dtype, s.store.dtype)
	}
	if ref.Len() == 0 {
		return newEmpty(cfg), nil
	}

	total := ref.TotalRows()
	outer, err := conv.Product(ref.shape()[:ax])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	outer *= total
	stride, err := conv.Product(outShape[ax:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}

	st, err := newStore(cfg, dtype, outShape, total)
	if err != nil {
		return nil, err
	}

	at := 0
	for _, s := range seqs {
		inner, err := conv.Product(s.shape()[ax:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		src := s.gather(dtype)
		for o := range outer {
			st.copyFrom(o*stride+at, src, o*inner, inner)
		}
		at += inner
	}
	st.rows = total
	return &Sequence{store: st, table: packedTable(ref.table.lengths), gen: st.gen, cfg: cfg}, nil
}
