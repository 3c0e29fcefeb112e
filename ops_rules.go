package arrayseq

import "fmt"

// Op is a binary elementwise operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpTrueDiv
	OpFloorDiv
	OpMod
	OpPow
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

type opClass uint8

const (
	classArith opClass = iota
	classTrueDiv
	classBitwise
	classShift
	classCompare
)

var opTable = [...]struct {
	symbol string
	class  opClass
}{
	OpAdd:      {"+", classArith},
	OpSub:      {"-", classArith},
	OpMul:      {"*", classArith},
	OpTrueDiv:  {"/", classTrueDiv},
	OpFloorDiv: {"//", classArith},
	OpMod:      {"%", classArith},
	OpPow:      {"**", classArith},
	OpAnd:      {"&", classBitwise},
	OpOr:       {"|", classBitwise},
	OpXor:      {"^", classBitwise},
	OpShl:      {"<<", classShift},
	OpShr:      {">>", classShift},
	OpEq:       {"==", classCompare},
	OpNe:       {"!=", classCompare},
	OpLt:       {"<", classCompare},
	OpLe:       {"<=", classCompare},
	OpGt:       {">", classCompare},
	OpGe:       {">=", classCompare},
}

func (o Op) valid() bool { return int(o) < len(opTable) }

func (o Op) String() string {
	if !o.valid() {
		return fmt.Sprintf("op(%d)", uint8(o))
	}
	return opTable[o].symbol
}

func (o Op) class() opClass { return opTable[o].class }

// resultType returns the dtype of a op b, or ErrUnsupportedOperand.
//
//	arithmetic   promote(a, b), Bool promoted to Int
//	true divide  Float
//	bitwise      promote(a, b); Float operands rejected
//	shift        Int; Float operands rejected
//	comparison   Bool
func resultType(op Op, a, b DType) (DType, error) {
	if !op.valid() {
		return 0, unsupported("apply", "unknown operator %d", uint8(op))
	}
	switch op.class() {
	case classArith:
		return max(promote(a, b), Int), nil
	case classTrueDiv:
		return Float, nil
	case classBitwise:
		if a == Float || b == Float {
			return 0, unsupported(op.String(), "bitwise operator on %s and %s", a, b)
		}
		return promote(a, b), nil
	case classShift:
		if a == Float || b == Float {
			return 0, unsupported(op.String(), "shift on %s and %s", a, b)
		}
		return Int, nil
	default:
		return Bool, nil
	}
}

// inPlaceType applies resultType and requires the receiver dtype to be kept.
func inPlaceType(op Op, recv, other DType) (DType, error) {
	out, err := resultType(op, recv, other)
	if err != nil {
		return 0, err
	}
	if out != recv {
		return 0, unsupported(op.String()+"=", "result %s cannot be stored in a %s sequence", out, recv)
	}
	return out, nil
}

// checkDomain rejects integer powers with negative exponents.
func checkDomain(op Op, out DType, exp buffer) error {
	if op != OpPow || out == Float || exp.dtype == Float {
		return nil
	}
	for _, e := range exp.ints {
		if e < 0 {
			return ErrDomain
		}
	}
	return nil
}
