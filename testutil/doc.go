// Package testutil provides testing utilities for arrayseq.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic random elements: variable-length runs of
// fixed-width rows, the shape of data a sequence holds.
//
// # Random Elements
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.UniformRows(10, 3)              // 10 rows of width 3 in [0, 1)
//	data, lengths := rng.Elements(100, 50, 3)   // 100 elements, 0..50 rows each
package testutil
