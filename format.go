package arrayseq

import (
	"strconv"
	"strings"
)

// formatShape renders a shape as a tuple: (), (5,), (4, 3).
func formatShape(shape []int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, d := range shape {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(d))
	}
	if len(shape) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// String renders the array with nested brackets, row-major.
func (a Array) String() string {
	var b strings.Builder
	a.write(&b, 0, 0)
	return b.String()
}

func (a Array) write(b *strings.Builder, axis, off int) int {
	if axis == len(a.shape) {
		b.WriteString(a.format(off))
		return off + 1
	}
	b.WriteByte('[')
	for i := range a.shape[axis] {
		if i > 0 {
			b.WriteByte(' ')
		}
		off = a.write(b, axis+1, off)
	}
	b.WriteByte(']')
	return off
}

func (a Array) format(i int) string {
	switch a.dtype {
	case Float:
		return strconv.FormatFloat(a.floats[i], 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(a.ints[i] != 0)
	default:
		return strconv.FormatInt(a.ints[i], 10)
	}
}

// String renders the sequence as its list of elements. Sequences longer than
// the print threshold (see WithPrintThreshold) show only the first and last
// three elements.
func (s *Sequence) String() string {
	if err := s.ready(); err != nil {
		return "Sequence(<" + err.Error() + ">)"
	}
	n := s.Len()
	show := func(i int) string {
		a, err := s.element(i)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return a.String()
	}

	parts := make([]string, 0, min(n, 7))
	if n > s.cfg.printThreshold && n > 6 {
		for i := range 3 {
			parts = append(parts, show(i))
		}
		parts = append(parts, "...")
		for i := n - 3; i < n; i++ {
			parts = append(parts, show(i))
		}
	} else {
		for i := range n {
			parts = append(parts, show(i))
		}
	}
	return "Sequence([" + strings.Join(parts, ", ") + "], common_shape=" +
		formatShape(s.shape()) + ", dtype=" + s.store.dtype.String() + ")"
}
