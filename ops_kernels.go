package arrayseq

import "math"

// binaryOp computes a op b into a new buffer of dtype out. b is broadcast
// when bcast is set.
func binaryOp(op Op, a, b buffer, bcast bool, out DType) buffer {
	n := a.len()
	res := newBuffer(out, n)
	j := func(i int) int {
		if bcast {
			return 0
		}
		return i
	}

	switch op.class() {
	case classCompare:
		useFloat := a.dtype == Float || b.dtype == Float
		for i := range n {
			var r bool
			if useFloat {
				r = compareFloat(op, a.float(i), b.float(j(i)))
			} else {
				r = compareInt(op, a.ints[i], b.ints[j(i)])
			}
			if r {
				res.ints[i] = 1
			}
		}
	case classTrueDiv:
		for i := range n {
			res.floats[i] = a.float(i) / b.float(j(i))
		}
	case classBitwise:
		for i := range n {
			res.ints[i] = bitwise(op, a.ints[i], b.ints[j(i)])
		}
	case classShift:
		for i := range n {
			res.ints[i] = shift(op, a.ints[i], b.ints[j(i)])
		}
	default:
		if out == Float {
			for i := range n {
				res.floats[i] = arithFloat(op, a.float(i), b.float(j(i)))
			}
		} else {
			for i := range n {
				res.ints[i] = arithInt(op, a.ints[i], b.ints[j(i)])
			}
		}
	}
	return res
}

func compareFloat(op Op, x, y float64) bool {
	switch op {
	case OpEq:
		return x == y
	case OpNe:
		return x != y
	case OpLt:
		return x < y
	case OpLe:
		return x <= y
	case OpGt:
		return x > y
	default:
		return x >= y
	}
}

func compareInt(op Op, x, y int64) bool {
	switch op {
	case OpEq:
		return x == y
	case OpNe:
		return x != y
	case OpLt:
		return x < y
	case OpLe:
		return x <= y
	case OpGt:
		return x > y
	default:
		return x >= y
	}
}

func bitwise(op Op, x, y int64) int64 {
	switch op {
	case OpAnd:
		return x & y
	case OpOr:
		return x | y
	default:
		return x ^ y
	}
}

// shift saturates counts outside [0, 63].
func shift(op Op, x, y int64) int64 {
	if op == OpShl {
		if y < 0 || y > 63 {
			return 0
		}
		return x << y
	}
	if y < 0 || y > 63 {
		return x >> 63
	}
	return x >> y
}

// arithInt follows Python's sign rules for floor division and modulo.
// Division or modulo by zero yields 0.
func arithInt(op Op, x, y int64) int64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpFloorDiv:
		if y == 0 {
			return 0
		}
		q := x / y
		if x%y != 0 && (x < 0) != (y < 0) {
			q--
		}
		return q
	case OpMod:
		if y == 0 {
			return 0
		}
		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return r
	default:
		return ipow(x, y)
	}
}

// ipow computes x**y for y >= 0 with wrapping overflow.
func ipow(x, y int64) int64 {
	r := int64(1)
	for y > 0 {
		if y&1 == 1 {
			r *= x
		}
		x *= x
		y >>= 1
	}
	return r
}

func arithFloat(op Op, x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpFloorDiv:
		return math.Floor(x / y)
	case OpMod:
		if y == 0 {
			return math.NaN()
		}
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return r
	default:
		return math.Pow(x, y)
	}
}

func negate(b buffer) {
	if b.dtype == Float {
		for i, v := range b.floats {
			b.floats[i] = -v
		}
		return
	}
	for i, v := range b.ints {
		b.ints[i] = -v
	}
}

func absolute(b buffer) {
	if b.dtype == Float {
		for i, v := range b.floats {
			b.floats[i] = math.Abs(v)
		}
		return
	}
	for i, v := range b.ints {
		if v < 0 {
			b.ints[i] = -v
		}
	}
}

func invert(b buffer) {
	if b.dtype == Bool {
		for i, v := range b.ints {
			b.ints[i] = 1 - v
		}
		return
	}
	for i, v := range b.ints {
		b.ints[i] = ^v
	}
}
