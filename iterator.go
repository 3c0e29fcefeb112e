package arrayseq

import (
	"context"
	"iter"
)

// Iterator is a one-shot source of arrays. Once Next reports false the
// iterator is drained and keeps reporting false.
type Iterator interface {
	Next() (Array, bool)
}

type stopper interface {
	Stop()
}

type pullIterator struct {
	next func() (Array, bool)
	stop func()
	done bool
}

// Iter adapts a Go iterator. Call Stop if the result is abandoned before it
// is drained; the constructors in this package do so themselves.
func Iter(seq iter.Seq[Array]) Iterator {
	next, stop := iter.Pull(seq)
	return &pullIterator{next: next, stop: stop}
}

func (p *pullIterator) Next() (Array, bool) {
	if p.done {
		return Array{}, false
	}
	a, ok := p.next()
	if !ok {
		p.Stop()
	}
	return a, ok
}

// Stop releases the underlying iterator.
func (p *pullIterator) Stop() {
	p.done = true
	p.stop()
}

type sliceIterator struct {
	arrays []Array
}

// SliceIterator returns a one-shot iterator over arrays.
func SliceIterator(arrays []Array) Iterator {
	return &sliceIterator{arrays: arrays}
}

func (it *sliceIterator) Next() (Array, bool) {
	if len(it.arrays) == 0 {
		return Array{}, false
	}
	a := it.arrays[0]
	it.arrays = it.arrays[1:]
	return a, true
}

func drain(it Iterator) []Array {
	if st, ok := it.(stopper); ok {
		defer st.Stop()
	}
	var out []Array
	for {
		a, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, a)
	}
}

// FromIterator builds a sequence from a stream of unknown length.
//
// Arrays are batched until the batch reaches the buffer size (see
// WithBufferSize), then flushed into the backing store with one growth per
// flush. The result may carry slack capacity; ShrinkToFit or Copy trim it.
// A drained iterator yields an empty sequence.
func FromIterator(it Iterator, opts ...Option) (*Sequence, error) {
	s := New(opts...)
	if err := s.fill(it); err != nil {
		return nil, err
	}
	return s, nil
}

// FromSeq is FromIterator over a Go iterator.
func FromSeq(seq iter.Seq[Array], opts ...Option) (*Sequence, error) {
	return FromIterator(Iter(seq), opts...)
}

func (s *Sequence) fill(it Iterator) error {
	if st, ok := it.(stopper); ok {
		defer st.Stop()
	}

	var batch []Array
	bytes, rows := 0, 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Extend(batch...); err != nil {
			return err
		}
		s.cfg.logger.LogFlush(context.Background(), len(batch), rows)
		s.cfg.metricsCollector.RecordFlush(len(batch), rows)
		clear(batch)
		batch, bytes, rows = batch[:0], 0, 0
		return nil
	}

	for {
		a, ok := it.Next()
		if !ok {
			break
		}
		batch = append(batch, a)
		bytes += a.Size() * 8
		rows += a.Len()
		if bytes >= s.cfg.bufferSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
