package vm

import "github.com/pkg/errors"

// Registers is the fixed-size, zero-indexed register file. All cells begin
// as Int(0); total heap usage is tracked incrementally and must never
// exceed limit.
type Registers struct {
	cells []Value
	limit int
	used  int
}

// NewRegisters builds a register file of n cells, all Int(0), with the
// given heap byte budget.
func NewRegisters(n, heapLimit int) *Registers {
	cells := make([]Value, n)
	for i := range cells {
		cells[i] = IntValue(0)
	}
	return &Registers{cells: cells, limit: heapLimit, used: n * IntValue(0).heapBytes()}
}

// Len returns the number of register cells.
func (r *Registers) Len() int { return len(r.cells) }

// HeapUsed returns current heap byte usage.
func (r *Registers) HeapUsed() int { return r.used }

// HeapLimit returns the configured heap byte budget.
func (r *Registers) HeapLimit() int { return r.limit }

// HeapAvailable returns the remaining heap byte budget.
func (r *Registers) HeapAvailable() int { return r.limit - r.used }

// Cell returns the current value of register idx, for inspection (tests,
// host introspection). It does not go through read_any's operand handling.
func (r *Registers) Cell(idx int) (Value, error) {
	if idx < 0 || idx >= len(r.cells) {
		return Value{}, errors.Wrapf(ErrRegisterOutOfBounds, "register r%d", idx)
	}
	return r.cells[idx], nil
}

// ReadAny implements read_any(op): Literal/String/Array return their
// embedded payload, Register returns the cell's current value, anything
// else is an error.
func (r *Registers) ReadAny(op Operand) (Value, error) {
	switch op.Kind {
	case OpndLiteral:
		return IntValue(op.Int), nil
	case OpndString:
		return StrValue(op.Str), nil
	case OpndArray:
		return ArrValue(op.Arr), nil
	case OpndRegister:
		return r.Cell(int(op.Int))
	default:
		return Value{}, errors.Errorf("read_any: operand kind %d has no value", op.Kind)
	}
}

// ReadInt implements read_int(op): as ReadAny, but fails with
// ErrTypeMismatch if the resolved value is not an Int.
func (r *Registers) ReadInt(op Operand) (int64, error) {
	v, err := r.ReadAny(op)
	if err != nil {
		return 0, err
	}
	if !v.IsInt() {
		return 0, errors.Wrapf(ErrTypeMismatch, "expected int, got %s", v.Kind)
	}
	return v.I, nil
}

// Write implements write(dest_op, new_value): dest_op must be a Register.
// The heap delta is computed and checked against the budget before the
// cell is mutated; never mutate-then-rollback, so the register is never
// observed in an over-budget state.
func (r *Registers) Write(dest Operand, val Value) error {
	if dest.Kind != OpndRegister {
		return errors.Wrapf(ErrIllegalDestination, "destination kind %d is not a register", dest.Kind)
	}
	idx := int(dest.Int)
	if idx < 0 || idx >= len(r.cells) {
		return errors.Wrapf(ErrRegisterOutOfBounds, "register r%d", idx)
	}
	cur := r.cells[idx]
	delta := val.heapBytes() - cur.heapBytes()
	if r.used+delta > r.limit {
		return errors.Wrapf(ErrHeapOverflow, "write to r%d would use %d/%d bytes", idx, r.used+delta, r.limit)
	}
	r.used += delta
	r.cells[idx] = val
	return nil
}
