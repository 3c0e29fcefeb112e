package arrayseq

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	// ErrValue marks invalid values: shape disagreements, domain errors,
	// inconsistent index tables and stale views.
	ErrValue = errors.New("arrayseq: value error")
	// ErrType marks unsupported index kinds, operand kinds and dtype combinations.
	ErrType = errors.New("arrayseq: type error")
	// ErrIndex marks out-of-range positions.
	ErrIndex = errors.New("arrayseq: index error")
)

var (
	// ErrShapeMismatch is returned when element counts, per-element row counts
	// or common shapes disagree.
	ErrShapeMismatch = fmt.Errorf("%w: shape mismatch", ErrValue)

	// ErrDomain is returned when an integer base is raised to a negative power.
	ErrDomain = fmt.Errorf("%w: integers to negative integer powers are not allowed", ErrValue)

	// ErrCorruptState is returned lazily when offsets and lengths disagree
	// or reference rows outside the backing store.
	ErrCorruptState = fmt.Errorf("%w: inconsistent index table", ErrValue)

	// ErrStaleView is returned when a view is used after its backing store
	// was reallocated by the owning sequence.
	ErrStaleView = fmt.Errorf("%w: view invalidated by reallocation", ErrValue)

	// ErrUnsupportedOperand is returned for index kinds, operand kinds or
	// dtype combinations an operation does not accept.
	ErrUnsupportedOperand = fmt.Errorf("%w: unsupported operand", ErrType)

	// ErrIndexOutOfRange is returned when a position is outside the sequence.
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrIndex)
)

var (
	// ErrInvalidArchive is returned when an archive is truncated, carries an
	// unknown magic/version or describes sections inconsistently.
	ErrInvalidArchive = errors.New("arrayseq: invalid archive")

	// ErrChecksum is returned when a header or section checksum does not match.
	ErrChecksum = errors.New("arrayseq: checksum mismatch")
)

// ShapeError describes a shape disagreement.
//
// It satisfies errors.Is(err, ErrShapeMismatch).
type ShapeError struct {
	Op       string
	Expected []int
	Actual   []int
	cause    error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("arrayseq: %s: shape mismatch: expected %s, got %s", e.Op, formatShape(e.Expected), formatShape(e.Actual))
}

// Unwrap returns ErrShapeMismatch joined with the underlying cause, if any.
func (e *ShapeError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrShapeMismatch, e.cause}
	}
	return []error{ErrShapeMismatch}
}

func shapeError(op string, expected, actual []int) error {
	return &ShapeError{Op: op, Expected: cloneInts(expected), Actual: cloneInts(actual)}
}

// countError reports a disagreement in element counts or per-element lengths.
func countError(op, what string, expected, actual int) error {
	return fmt.Errorf("%w: %s: %s: expected %d, got %d", ErrShapeMismatch, op, what, expected, actual)
}

func unsupported(op string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupportedOperand, op, fmt.Sprintf(format, args...))
}

func outOfRange(pos, n int) error {
	return fmt.Errorf("%w: position %d for sequence of length %d", ErrIndexOutOfRange, pos, n)
}
