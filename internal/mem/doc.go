// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Backing stores allocate their row buffers 64-byte aligned so that the
// first row of every buffer starts on a cache line.
package mem
