package arrayseq

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/hupe1980/arrayseq/internal/conv"
	"github.com/hupe1980/arrayseq/resource"
)

// backingStore is a growable buffer of rows sharing one common shape.
//
// Only rows [0, rows) hold data; the remaining capacity is slack. Every
// reallocation bumps gen so views holding the old generation can detect
// that their offsets may no longer be trusted.
type backingStore struct {
	buffer
	shape    []int
	width    int
	rows     int
	capacity int
	gen      uint64
	acct     *memAccount
}

// memAccount tracks the bytes a store reserved from a resource controller.
// It is released by a runtime cleanup once the store becomes unreachable.
type memAccount struct {
	rc    *resource.Controller
	bytes atomic.Int64
}

func (a *memAccount) release() {
	a.rc.ReleaseMemory(a.bytes.Swap(0))
}

func newStore(cfg *config, dtype DType, shape []int, capacity int) (*backingStore, error) {
	width, err := conv.Product(shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	st := &backingStore{
		buffer: buffer{dtype: dtype},
		shape:  cloneInts(shape),
		width:  width,
	}
	if cfg.rc != nil {
		st.acct = &memAccount{rc: cfg.rc}
		runtime.AddCleanup(st, func(a *memAccount) { a.release() }, st.acct)
	}
	if capacity > 0 {
		if err := st.realloc(cfg, capacity); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// emptyStore is the store of a sequence with no elements: rank-1 data of
// length 0, common shape ().
func emptyStore(dtype DType) *backingStore {
	return &backingStore{buffer: buffer{dtype: dtype}, shape: []int{}, width: 1}
}

func (st *backingStore) bytesFor(capacity int) (int64, error) {
	n, err := conv.MulInt(capacity, st.width)
	if err != nil {
		return 0, err
	}
	n, err = conv.MulInt(n, 8)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// reserve makes room for extra more rows, growing by the configured factor.
func (st *backingStore) reserve(cfg *config, extra int) error {
	need := st.rows + extra
	if need <= st.capacity {
		return nil
	}
	grown := math.Ceil(float64(st.capacity) * (1 + cfg.growth))
	capacity := need
	if grown < float64(math.MaxInt) && int(grown) > need {
		capacity = int(grown)
	}
	return st.realloc(cfg, capacity)
}

// shrinkToFit reallocates to exactly rows. No-op if already exact.
func (st *backingStore) shrinkToFit(cfg *config) error {
	if st.capacity == st.rows {
		return nil
	}
	return st.realloc(cfg, st.rows)
}

// realloc moves the used rows into a buffer of the given capacity.
func (st *backingStore) realloc(cfg *config, capacity int) error {
	from := st.capacity
	log := cfg.logger.WithShape(st.shape, st.dtype)
	newBytes, err := st.bytesFor(capacity)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		log.LogGrow(context.Background(), from, capacity, err)
		return err
	}
	oldBytes, _ := st.bytesFor(from)

	if st.acct != nil {
		if delta := newBytes - oldBytes; delta > 0 {
			if err := st.acct.rc.AcquireMemory(delta); err != nil {
				err = fmt.Errorf("arrayseq: grow to %d rows: %w", capacity, err)
				log.LogGrow(context.Background(), from, capacity, err)
				return err
			}
			st.acct.bytes.Add(delta)
		} else if delta < 0 {
			st.acct.rc.ReleaseMemory(-delta)
			st.acct.bytes.Add(delta)
		}
	}

	next := newBuffer(st.dtype, capacity*st.width)
	next.copyFrom(0, st.buffer, 0, st.rows*st.width)
	st.buffer = next
	st.capacity = capacity
	st.gen++

	log.LogGrow(context.Background(), from, capacity, nil)
	cfg.metricsCollector.RecordGrow(from, capacity, newBytes)
	return nil
}

// appendRows copies n rows of src, starting at row srcRow, after the used
// rows. The caller reserves capacity first.
func (st *backingStore) appendRows(src buffer, srcRow, n int) {
	st.copyFrom(st.rows*st.width, src, srcRow*st.width, n*st.width)
	st.rows += n
}

// packedStore copies the given row ranges, in order and projected through
// sel, into a new store with exact capacity.
func packedStore(cfg *config, src *backingStore, sel *projection, dtype DType, table indexTable) (*backingStore, error) {
	shape, cols := src.shape, []int(nil)
	if sel != nil {
		shape, cols = sel.shape, sel.cols
	}
	st, err := newStore(cfg, dtype, shape, table.totalRows())
	if err != nil {
		return nil, err
	}
	for i := range table.len() {
		st.appendProjected(src, table.offsets[i], table.lengths[i], cols)
	}
	return st, nil
}

// appendProjected copies n rows of src starting at off, keeping only cols
// (all columns when cols is nil).
func (st *backingStore) appendProjected(src *backingStore, off, n int, cols []int) {
	if cols == nil {
		st.appendRows(src.buffer, off, n)
		return
	}
	for r := range n {
		base := (off + r) * src.width
		dst := (st.rows + r) * st.width
		for j, c := range cols {
			st.set(dst+j, src.buffer, base+c)
		}
	}
	st.rows += n
}
