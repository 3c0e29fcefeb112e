package arrayseq

import (
	"fmt"
	"math"
	"reflect"
)

// DType is the element type of a sequence.
//
// Bool and Int values are stored as int64 (bools as 0/1), Float values as
// float64. The constants are ordered by promotion rank.
type DType uint8

const (
	Bool DType = iota
	Int
	Float
)

func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int:
		return "int64"
	case Float:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

func (d DType) valid() bool { return d <= Float }

// ParseDType parses the names produced by DType.String.
func ParseDType(s string) (DType, error) {
	switch s {
	case "bool":
		return Bool, nil
	case "int64":
		return Int, nil
	case "float64":
		return Float, nil
	default:
		return 0, fmt.Errorf("%w: unknown dtype %q", ErrUnsupportedOperand, s)
	}
}

// promote returns the smallest dtype both operands can be cast to safely.
func promote(a, b DType) DType { return max(a, b) }

// scalar is a broadcast operand.
type scalar struct {
	dtype DType
	i     int64
	f     float64
}

func (s scalar) buffer() buffer {
	if s.dtype == Float {
		return buffer{dtype: Float, floats: []float64{s.f}}
	}
	return buffer{dtype: s.dtype, ints: []int64{s.i}}
}

// scalarOf classifies Go bool, integer and float kinds.
// Unsigned values above math.MaxInt64 become Float, as they do in numpy.
func scalarOf(v any) (scalar, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return scalar{dtype: Bool, i: 1}, true
		}
		return scalar{dtype: Bool}, true
	case int:
		return scalar{dtype: Int, i: int64(x)}, true
	case int64:
		return scalar{dtype: Int, i: x}, true
	case float64:
		return scalar{dtype: Float, f: x}, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return scalarOf(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar{dtype: Int, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return scalar{dtype: Float, f: float64(u)}, true
		}
		return scalar{dtype: Int, i: int64(u)}, true
	case reflect.Float32, reflect.Float64:
		return scalar{dtype: Float, f: rv.Float()}, true
	default:
		return scalar{}, false
	}
}
