package arrayseq

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Save writes the packed form of s to w: the referenced rows only (never
// slack), with offsets rewritten as prefix sums of the lengths. An empty
// sequence stores rank-1, zero-length data.
func (s *Sequence) Save(w io.Writer, opts ...SaveOption) error {
	return s.save(context.Background(), w, "stream", applySaveOptions(opts))
}

func (s *Sequence) save(ctx context.Context, w io.Writer, target string, o saveOptions) (err error) {
	start := time.Now()
	aw := &archiveWriter{w: w, codec: o.codec, comp: o.compression}
	defer func() {
		s.cfg.metricsCollector.RecordSave(aw.n, time.Since(start), err)
		s.cfg.logger.LogSave(ctx, target, aw.n, err)
	}()

	if !o.compression.Valid() {
		return fmt.Errorf("%w: save: compression %s", ErrUnsupportedOperand, o.compression)
	}
	if err := s.ready(); err != nil {
		return err
	}

	rows := s.TotalRows()
	shape := []int{0}
	if s.Len() > 0 {
		shape = append([]int{rows}, s.shape()...)
	}
	dtype := s.store.dtype

	if err := aw.writeHeader(s.Len(), rows); err != nil {
		return err
	}
	sections := []struct {
		desc sectionDescriptor
		raw  []byte
	}{
		{sectionDescriptor{Name: "data", DType: dtype.String(), Shape: shape}, encodeValues(s.gather(dtype))},
		{sectionDescriptor{Name: "offsets", DType: Int.String(), Shape: []int{s.Len()}}, encodeInts(packedTable(s.table.lengths).offsets)},
		{sectionDescriptor{Name: "lengths", DType: Int.String(), Shape: []int{s.Len()}}, encodeInts(s.table.lengths)},
	}
	for _, sec := range sections {
		if err := aw.writeSection(sec.desc, sec.raw); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an archive written by Save. The result is a packed sequence
// that accepts further appends.
func Load(r io.Reader, opts ...Option) (*Sequence, error) {
	return load(context.Background(), r, "stream", applyOptions(opts))
}

func load(ctx context.Context, r io.Reader, source string, cfg *config) (s *Sequence, err error) {
	start := time.Now()
	ar := &archiveReader{r: r}
	defer func() {
		cfg.metricsCollector.RecordLoad(ar.n, time.Since(start), err)
		cfg.logger.LogLoad(ctx, source, ar.n, err)
	}()

	h, err := ar.readHeader()
	if err != nil {
		return nil, err
	}

	desc, raw, err := ar.readSection(sectionNames[0])
	if err != nil {
		return nil, err
	}
	dtype, err := ParseDType(desc.DType)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %w", ErrInvalidArchive, err)
	}
	if len(desc.Shape) == 0 || uint64(desc.Shape[0]) != h.Rows {
		return nil, fmt.Errorf("%w: data shape %s for %d rows", ErrInvalidArchive, formatShape(desc.Shape), h.Rows)
	}
	n, err := checkShape(desc.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %w", ErrInvalidArchive, err)
	}
	values, err := decodeValues(dtype, raw, n)
	if err != nil {
		return nil, err
	}

	var parts [2][]int
	for i, name := range sectionNames[1:] {
		desc, raw, err := ar.readSection(name)
		if err != nil {
			return nil, err
		}
		if parts[i], err = decodeInts(desc, raw); err != nil {
			return nil, err
		}
		if uint64(len(parts[i])) != h.Elements {
			return nil, fmt.Errorf("%w: %d %s for %d elements", ErrInvalidArchive, len(parts[i]), name, h.Elements)
		}
	}

	return fromParts(cfg, values, desc.Shape, parts[0], parts[1])
}
