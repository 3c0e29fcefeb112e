// Package conv provides checked integer conversions.
//
// Archive headers carry fixed-width unsigned integers that must be validated
// before they are used as Go ints (slice lengths, shape products). Use these
// helpers on every value read from untrusted input; use plain casts for values
// that are bounded by construction (loop indices, lengths of live slices).
package conv
