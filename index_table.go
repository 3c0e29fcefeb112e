package arrayseq

import (
	"fmt"
	"slices"
)

// indexTable maps element positions to row ranges of a backing store.
type indexTable struct {
	offsets []int
	lengths []int
}

// packedTable returns the table of contiguous elements with the given lengths.
func packedTable(lengths []int) indexTable {
	t := indexTable{offsets: make([]int, len(lengths)), lengths: slices.Clone(lengths)}
	off := 0
	for i, n := range lengths {
		t.offsets[i] = off
		off += n
	}
	return t
}

func (t indexTable) len() int { return len(t.offsets) }

func (t indexTable) totalRows() int {
	n := 0
	for _, l := range t.lengths {
		n += l
	}
	return n
}

func (t *indexTable) push(off, n int) {
	t.offsets = append(t.offsets, off)
	t.lengths = append(t.lengths, n)
}

// take returns the entries at pos, in order. Positions must be below
// len(offsets); a table whose columns disagree in length is corrupt.
func (t indexTable) take(pos []int) (indexTable, error) {
	if len(t.offsets) != len(t.lengths) {
		return indexTable{}, fmt.Errorf("%w: %d offsets, %d lengths", ErrCorruptState, len(t.offsets), len(t.lengths))
	}
	out := indexTable{offsets: make([]int, len(pos)), lengths: make([]int, len(pos))}
	for i, p := range pos {
		out.offsets[i] = t.offsets[p]
		out.lengths[i] = t.lengths[p]
	}
	return out, nil
}

// check verifies that the table is consistent with a store of rows rows.
func (t indexTable) check(rows int) error {
	if len(t.offsets) != len(t.lengths) {
		return fmt.Errorf("%w: %d offsets, %d lengths", ErrCorruptState, len(t.offsets), len(t.lengths))
	}
	for i := range t.offsets {
		if err := t.checkEntry(i, rows); err != nil {
			return err
		}
	}
	return nil
}

func (t indexTable) checkEntry(i, rows int) error {
	if len(t.offsets) != len(t.lengths) {
		return fmt.Errorf("%w: %d offsets, %d lengths", ErrCorruptState, len(t.offsets), len(t.lengths))
	}
	off, n := t.offsets[i], t.lengths[i]
	if off < 0 || n < 0 || off > rows-n {
		return fmt.Errorf("%w: element %d spans rows [%d, %d) of %d", ErrCorruptState, i, off, off+n, rows)
	}
	return nil
}
