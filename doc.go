// Package arrayseq provides a compact container for large collections of
// variable-length numeric arrays that share one trailing shape.
//
// A Sequence stores its elements back to back in a single growable buffer
// and indexes them with an offset/length table, instead of one allocation
// per element. Thousands of point lists of differing lengths cost one
// buffer and two integer slices.
//
// # Quick Start
//
// Building from a collection:
//
//	a, _ := arrayseq.FromFloatRows([][]float64{{0, 0, 0}, {1, 1, 1}})
//	b, _ := arrayseq.FromFloatRows([][]float64{{2, 2, 2}})
//	seq, _ := arrayseq.FromArrays([]arrayseq.Array{a, b})
//	seq.Len()         // 2
//	seq.Offsets()     // [0 2]
//	seq.CommonShape() // [3]
//
// Building from a stream of unknown length, in bounded-memory batches:
//
//	seq, _ := arrayseq.FromSeq(points, arrayseq.WithBufferSize(1<<20))
//
// # Views
//
// Select and its shorthands return views that share the buffer:
//
//	head, _ := seq.Slice(arrayseq.To(10))        // first 10 elements
//	some, _ := seq.Take([]int{4, 0, 4})           // reordered, repeated
//	xs, _ := seq.Select(arrayseq.All(), 0)        // first column of every row
//	yz, _ := seq.Columns(arrayseq.Range(1, 3))    // columns 1 and 2
//
// Views stay valid while the owner appends within its capacity. Once the
// owner reallocates (growth or ShrinkToFit) every older view fails with
// ErrStaleView. Copy turns a view into an independent packed sequence.
//
// # Operators
//
// Elementwise operators accept a Go scalar or a sequence with the same
// layout. Validation always happens before any write:
//
//	scaled, _ := seq.Mul(2.5)
//	_, err := seq.AddInPlace(other) // ErrShapeMismatch leaves seq unchanged
//
// # Persistence
//
// Save and Load use a small three-section archive (data, offsets,
// lengths) with CRC32C checksums and optional LZ4/ZSTD compression. The
// blob helpers write to any blobstore.BlobStore (local disk, memory, S3,
// MinIO):
//
//	_ = seq.Save(w, arrayseq.WithCompression(arrayseq.CompressionZSTD))
//	seq, _ = arrayseq.Load(r)
//	_ = seq.SaveBlob(ctx, store, "tracts/subject-01.asq")
//
// # Errors
//
// Every error matches exactly one class with errors.Is: ErrValue (shape,
// domain, corrupt table, stale view), ErrType (unsupported operand) or
// ErrIndex (out-of-range position). Archive errors are ErrInvalidArchive
// and ErrChecksum.
package arrayseq
