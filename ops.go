package arrayseq

// operand resolves the right-hand side of a binary operator: a Go scalar
// (broadcast) or a *Sequence with exactly the receiver's layout.
func (s *Sequence) operand(op Op, other any) (buffer, bool, error) {
	if o, ok := other.(*Sequence); ok {
		if o == nil {
			return buffer{}, false, unsupported(op.String(), "nil sequence")
		}
		if err := o.ready(); err != nil {
			return buffer{}, false, err
		}
		if err := matchLayout(op.String(), s.table, s.shape(), o.table, o.shape()); err != nil {
			return buffer{}, false, err
		}
		return o.gather(o.store.dtype), false, nil
	}
	if sc, ok := scalarOf(other); ok {
		return sc.buffer(), true, nil
	}
	return buffer{}, false, unsupported(op.String(), "operand of type %T", other)
}

// Apply returns a new packed sequence holding s op other. other is a Go
// bool, integer or float scalar, or a *Sequence with the same element
// count, element lengths and common shape.
func (s *Sequence) Apply(op Op, other any) (*Sequence, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rhs, bcast, err := s.operand(op, other)
	if err != nil {
		return nil, err
	}
	out, err := resultType(op, s.store.dtype, rhs.dtype)
	if err != nil {
		return nil, err
	}
	if err := checkDomain(op, out, rhs); err != nil {
		return nil, err
	}
	return s.result(binaryOp(op, s.gather(s.store.dtype), rhs, bcast, out))
}

// ApplyInPlace computes s op other into the rows s references and returns s.
// The result dtype must equal the receiver's (no implicit promotion in
// place); otherwise ErrUnsupportedOperand is returned and s is unchanged.
//
// Through a view this writes into rows shared with other sequences. Rows
// referenced more than once receive the value computed for the last
// reference.
func (s *Sequence) ApplyInPlace(op Op, other any) (*Sequence, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rhs, bcast, err := s.operand(op, other)
	if err != nil {
		return nil, err
	}
	out, err := inPlaceType(op, s.store.dtype, rhs.dtype)
	if err != nil {
		return nil, err
	}
	if err := checkDomain(op, out, rhs); err != nil {
		return nil, err
	}

	res := binaryOp(op, s.gather(s.store.dtype), rhs, bcast, out)
	k, at := s.rowWidth(), 0
	for i := range s.Len() {
		n := s.table.lengths[i]
		s.writeRows(res, at, s.table.offsets[i], n, false)
		at += n * k
	}
	return s, nil
}

// result wraps values laid out like s's referenced rows into a new packed
// sequence.
func (s *Sequence) result(values buffer) (*Sequence, error) {
	total := s.table.totalRows()
	st, err := newStore(s.cfg, values.dtype, s.shape(), total)
	if err != nil {
		return nil, err
	}
	st.appendRows(values, 0, total)
	return &Sequence{store: st, table: packedTable(s.table.lengths), gen: st.gen, cfg: s.cfg}, nil
}

// Negate returns -s. Bool sequences are rejected.
func (s *Sequence) Negate() (*Sequence, error) {
	if s.store.dtype == Bool {
		return nil, unsupported("negate", "bool sequence")
	}
	return s.unary(negate)
}

// Abs returns |s|. Bool sequences are returned unchanged (as a copy).
func (s *Sequence) Abs() (*Sequence, error) {
	return s.unary(absolute)
}

// Invert returns ~s: logical not for Bool, bitwise not for Int. Float
// sequences are rejected.
func (s *Sequence) Invert() (*Sequence, error) {
	if s.store.dtype == Float {
		return nil, unsupported("invert", "float sequence")
	}
	return s.unary(invert)
}

func (s *Sequence) unary(fn func(buffer)) (*Sequence, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	values := s.gather(s.store.dtype)
	fn(values)
	return s.result(values)
}

// Add returns s + other.
func (s *Sequence) Add(other any) (*Sequence, error) { return s.Apply(OpAdd, other) }

// Sub returns s - other.
func (s *Sequence) Sub(other any) (*Sequence, error) { return s.Apply(OpSub, other) }

// Mul returns s * other.
func (s *Sequence) Mul(other any) (*Sequence, error) { return s.Apply(OpMul, other) }

// Div returns the true quotient s / other as a Float sequence.
func (s *Sequence) Div(other any) (*Sequence, error) { return s.Apply(OpTrueDiv, other) }

// FloorDiv returns s // other.
func (s *Sequence) FloorDiv(other any) (*Sequence, error) { return s.Apply(OpFloorDiv, other) }

// Mod returns s % other with the sign of other.
func (s *Sequence) Mod(other any) (*Sequence, error) { return s.Apply(OpMod, other) }

// Pow returns s ** other.
func (s *Sequence) Pow(other any) (*Sequence, error) { return s.Apply(OpPow, other) }

// Eq returns the Bool sequence s == other.
func (s *Sequence) Eq(other any) (*Sequence, error) { return s.Apply(OpEq, other) }

// Ne returns the Bool sequence s != other.
func (s *Sequence) Ne(other any) (*Sequence, error) { return s.Apply(OpNe, other) }

// Lt returns the Bool sequence s < other.
func (s *Sequence) Lt(other any) (*Sequence, error) { return s.Apply(OpLt, other) }

// Le returns the Bool sequence s <= other.
func (s *Sequence) Le(other any) (*Sequence, error) { return s.Apply(OpLe, other) }

// Gt returns the Bool sequence s > other.
func (s *Sequence) Gt(other any) (*Sequence, error) { return s.Apply(OpGt, other) }

// Ge returns the Bool sequence s >= other.
func (s *Sequence) Ge(other any) (*Sequence, error) { return s.Apply(OpGe, other) }

// AddInPlace computes s += other.
func (s *Sequence) AddInPlace(other any) (*Sequence, error) { return s.ApplyInPlace(OpAdd, other) }

// SubInPlace computes s -= other.
func (s *Sequence) SubInPlace(other any) (*Sequence, error) { return s.ApplyInPlace(OpSub, other) }

// MulInPlace computes s *= other.
func (s *Sequence) MulInPlace(other any) (*Sequence, error) { return s.ApplyInPlace(OpMul, other) }

// DivInPlace computes s /= other. Only Float sequences accept it.
func (s *Sequence) DivInPlace(other any) (*Sequence, error) {
	return s.ApplyInPlace(OpTrueDiv, other)
}

// FloorDivInPlace computes s //= other.
func (s *Sequence) FloorDivInPlace(other any) (*Sequence, error) {
	return s.ApplyInPlace(OpFloorDiv, other)
}

// ModInPlace computes s %= other.
func (s *Sequence) ModInPlace(other any) (*Sequence, error) { return s.ApplyInPlace(OpMod, other) }

// PowInPlace computes s **= other.
func (s *Sequence) PowInPlace(other any) (*Sequence, error) { return s.ApplyInPlace(OpPow, other) }
