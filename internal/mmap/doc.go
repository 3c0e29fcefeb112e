// Package mmap provides read-only memory-mapped file access.
//
// Archives opened from the local filesystem are mapped instead of read so the
// decoder can walk the sections in place. Decoded arrays are always copied out
// of the mapping before it is closed; nothing returned by the archive reader
// aliases mapped memory.
//
// # Usage
//
//	m, err := mmap.Open("points.asq")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
package mmap
