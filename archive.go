package arrayseq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/arrayseq/codec"
	"github.com/hupe1980/arrayseq/internal/compress"
	"github.com/hupe1980/arrayseq/internal/conv"
	"github.com/hupe1980/arrayseq/internal/hash"
)

// Archive layout (little-endian):
//
//	Header (32 bytes)
//	  Magic        uint32  "ASQ1"
//	  Version      uint16
//	  Flags        uint16  reserved, zero
//	  Compression  uint8
//	  Sections     uint8   always 3
//	  CodecLen     uint16
//	  Elements     uint64
//	  Rows         uint64
//	  Checksum     uint32  CRC32C of bytes [0:28]
//	Codec name (CodecLen bytes)
//	Sections "data", "offsets", "lengths", each:
//	  DescriptorLen uint32
//	  Descriptor    codec-encoded {name, dtype, shape}
//	  PayloadLen    uint64
//	  Payload       compress block of the raw values
//	  Checksum      uint32  CRC32C of the raw values
//
// Raw values are 8 bytes per int64/float64 and 1 byte per bool.
const (
	archiveMagic   = 0x31515341 // "ASQ1"
	archiveVersion = 1

	archiveHeaderSize = 4 + 2 + 2 + 1 + 1 + 2 + 8 + 8 + 4
	archiveSections   = 3

	maxCodecNameLen   = 64
	maxDescriptorSize = 1 << 20
	maxPayloadSize    = compress.HeaderSize + math.MaxUint32
)

var sectionNames = [archiveSections]string{"data", "offsets", "lengths"}

type archiveHeader struct {
	Magic       uint32
	Version     uint16
	Flags       uint16
	Compression Compression
	Sections    uint8
	CodecLen    uint16
	Elements    uint64
	Rows        uint64
	Checksum    uint32
}

func (h *archiveHeader) encode() []byte {
	buf := make([]byte, archiveHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	binary.LittleEndian.PutUint16(buf[6:], h.Flags)
	buf[8] = uint8(h.Compression)
	buf[9] = h.Sections
	binary.LittleEndian.PutUint16(buf[10:], h.CodecLen)
	binary.LittleEndian.PutUint64(buf[12:], h.Elements)
	binary.LittleEndian.PutUint64(buf[20:], h.Rows)
	h.Checksum = hash.CRC32C(buf[:28])
	binary.LittleEndian.PutUint32(buf[28:], h.Checksum)
	return buf
}

func decodeArchiveHeader(buf []byte) (*archiveHeader, error) {
	if len(buf) < archiveHeaderSize {
		return nil, fmt.Errorf("%w: header too short", ErrInvalidArchive)
	}
	h := &archiveHeader{}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != archiveMagic {
		return nil, fmt.Errorf("%w: invalid magic %#x", ErrInvalidArchive, h.Magic)
	}
	h.Checksum = binary.LittleEndian.Uint32(buf[28:])
	if got := hash.CRC32C(buf[:28]); got != h.Checksum {
		return nil, fmt.Errorf("%w: header: stored %#08x, computed %#08x", ErrChecksum, h.Checksum, got)
	}
	h.Version = binary.LittleEndian.Uint16(buf[4:])
	if h.Version != archiveVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArchive, h.Version)
	}
	h.Flags = binary.LittleEndian.Uint16(buf[6:])
	if h.Flags != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", ErrInvalidArchive, h.Flags)
	}
	h.Compression = Compression(buf[8])
	if !h.Compression.Valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidArchive, buf[8])
	}
	h.Sections = buf[9]
	if h.Sections != archiveSections {
		return nil, fmt.Errorf("%w: %d sections, want %d", ErrInvalidArchive, h.Sections, archiveSections)
	}
	h.CodecLen = binary.LittleEndian.Uint16(buf[10:])
	if h.CodecLen == 0 || h.CodecLen > maxCodecNameLen {
		return nil, fmt.Errorf("%w: codec name length %d", ErrInvalidArchive, h.CodecLen)
	}
	h.Elements = binary.LittleEndian.Uint64(buf[12:])
	h.Rows = binary.LittleEndian.Uint64(buf[20:])
	return h, nil
}

// sectionDescriptor names a section and the array it holds.
type sectionDescriptor struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Shape []int  `json:"shape"`
}

// archiveWriter writes sections and counts the bytes written.
type archiveWriter struct {
	w     io.Writer
	codec codec.Codec
	comp  Compression
	n     int64
}

func (aw *archiveWriter) write(p []byte) error {
	n, err := aw.w.Write(p)
	aw.n += int64(n)
	return err
}

func (aw *archiveWriter) writeHeader(elements, rows int) error {
	name := aw.codec.Name()
	if len(name) == 0 || len(name) > maxCodecNameLen {
		return fmt.Errorf("arrayseq: save: codec name %q", name)
	}
	ne, err := conv.IntToUint64(elements)
	if err != nil {
		return fmt.Errorf("arrayseq: save: %w", err)
	}
	nr, err := conv.IntToUint64(rows)
	if err != nil {
		return fmt.Errorf("arrayseq: save: %w", err)
	}
	h := archiveHeader{
		Magic:       archiveMagic,
		Version:     archiveVersion,
		Compression: aw.comp,
		Sections:    archiveSections,
		CodecLen:    uint16(len(name)),
		Elements:    ne,
		Rows:        nr,
	}
	if err := aw.write(h.encode()); err != nil {
		return err
	}
	return aw.write([]byte(name))
}

func (aw *archiveWriter) writeSection(desc sectionDescriptor, raw []byte) error {
	d, err := aw.codec.Marshal(desc)
	if err != nil {
		return fmt.Errorf("arrayseq: save: encode %s descriptor: %w", desc.Name, err)
	}
	block, err := compress.Encode(raw, aw.comp)
	if err != nil {
		return fmt.Errorf("arrayseq: save: compress %s: %w", desc.Name, err)
	}

	var u32 [4]byte
	var u64 [8]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(d)))
	if err := aw.write(u32[:]); err != nil {
		return err
	}
	if err := aw.write(d); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(u64[:], uint64(len(block)))
	if err := aw.write(u64[:]); err != nil {
		return err
	}
	if err := aw.write(block); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(u32[:], hash.CRC32C(raw))
	return aw.write(u32[:])
}

// archiveReader reads sections and counts the bytes read.
type archiveReader struct {
	r     io.Reader
	codec codec.Codec
	comp  Compression
	n     int64
}

func (ar *archiveReader) readFull(p []byte) error {
	n, err := io.ReadFull(ar.r, p)
	ar.n += int64(n)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated", ErrInvalidArchive)
	}
	return err
}

// readChunk reads n bytes without trusting n for the allocation.
func (ar *archiveReader) readChunk(n uint64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(ar.r, int64(n)))
	ar.n += int64(len(buf))
	if err != nil {
		return nil, err
	}
	if uint64(len(buf)) != n {
		return nil, fmt.Errorf("%w: truncated", ErrInvalidArchive)
	}
	return buf, nil
}

func (ar *archiveReader) readHeader() (*archiveHeader, error) {
	buf := make([]byte, archiveHeaderSize)
	if err := ar.readFull(buf); err != nil {
		return nil, err
	}
	h, err := decodeArchiveHeader(buf)
	if err != nil {
		return nil, err
	}
	name := make([]byte, h.CodecLen)
	if err := ar.readFull(name); err != nil {
		return nil, err
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidArchive, name)
	}
	ar.codec, ar.comp = c, h.Compression
	return h, nil
}

func (ar *archiveReader) readSection(want string) (sectionDescriptor, []byte, error) {
	var desc sectionDescriptor
	var u32 [4]byte
	var u64 [8]byte

	if err := ar.readFull(u32[:]); err != nil {
		return desc, nil, err
	}
	dlen := binary.LittleEndian.Uint32(u32[:])
	if dlen == 0 || dlen > maxDescriptorSize {
		return desc, nil, fmt.Errorf("%w: %s descriptor length %d", ErrInvalidArchive, want, dlen)
	}
	d := make([]byte, dlen)
	if err := ar.readFull(d); err != nil {
		return desc, nil, err
	}
	if err := ar.codec.Unmarshal(d, &desc); err != nil {
		return desc, nil, fmt.Errorf("%w: %s descriptor: %w", ErrInvalidArchive, want, err)
	}
	if desc.Name != want {
		return desc, nil, fmt.Errorf("%w: section %q, want %q", ErrInvalidArchive, desc.Name, want)
	}

	if err := ar.readFull(u64[:]); err != nil {
		return desc, nil, err
	}
	plen := binary.LittleEndian.Uint64(u64[:])
	if plen < compress.HeaderSize || plen > maxPayloadSize {
		return desc, nil, fmt.Errorf("%w: %s payload length %d", ErrInvalidArchive, want, plen)
	}
	block, err := ar.readChunk(plen)
	if err != nil {
		return desc, nil, err
	}
	raw, err := compress.Decode(block, ar.comp)
	if err != nil {
		return desc, nil, fmt.Errorf("%w: %s: %w", ErrInvalidArchive, want, err)
	}

	if err := ar.readFull(u32[:]); err != nil {
		return desc, nil, err
	}
	if stored, got := binary.LittleEndian.Uint32(u32[:]), hash.CRC32C(raw); stored != got {
		return desc, nil, fmt.Errorf("%w: %s: stored %#08x, computed %#08x", ErrChecksum, want, stored, got)
	}
	return desc, raw, nil
}

// encodeValues lays out b as raw section bytes.
func encodeValues(b buffer) []byte {
	switch b.dtype {
	case Float:
		out := make([]byte, 8*len(b.floats))
		for i, v := range b.floats {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
		}
		return out
	case Int:
		out := make([]byte, 8*len(b.ints))
		for i, v := range b.ints {
			binary.LittleEndian.PutUint64(out[8*i:], uint64(v))
		}
		return out
	default:
		out := make([]byte, len(b.ints))
		for i, v := range b.ints {
			out[i] = byte(v)
		}
		return out
	}
}

// decodeValues parses n raw values of dtype. Bool bytes are normalised to 0/1.
func decodeValues(dtype DType, raw []byte, n int) (buffer, error) {
	size := 8
	if dtype == Bool {
		size = 1
	}
	if want, err := conv.MulInt(n, size); err != nil || len(raw) != want {
		return buffer{}, fmt.Errorf("%w: %d payload bytes for %d %s values", ErrInvalidArchive, len(raw), n, dtype)
	}
	b := newBuffer(dtype, n)
	switch dtype {
	case Float:
		for i := range b.floats {
			b.floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	case Int:
		for i := range b.ints {
			b.ints[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	default:
		for i, v := range raw {
			if v != 0 {
				b.ints[i] = 1
			}
		}
	}
	return b, nil
}

func encodeInts(xs []int) []byte {
	out := make([]byte, 8*len(xs))
	for i, v := range xs {
		binary.LittleEndian.PutUint64(out[8*i:], uint64(v))
	}
	return out
}

func decodeInts(desc sectionDescriptor, raw []byte) ([]int, error) {
	if desc.DType != Int.String() || len(desc.Shape) != 1 || desc.Shape[0] < 0 {
		return nil, fmt.Errorf("%w: %s must be a rank-1 int64 array, got %s %s",
			ErrInvalidArchive, desc.Name, desc.DType, formatShape(desc.Shape))
	}
	b, err := decodeValues(Int, raw, desc.Shape[0])
	if err != nil {
		return nil, err
	}
	out := make([]int, len(b.ints))
	for i, v := range b.ints {
		if out[i], err = conv.Int64ToInt(v); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrInvalidArchive, desc.Name, i, err)
		}
	}
	return out, nil
}
