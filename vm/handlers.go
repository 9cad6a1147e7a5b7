package vm

import (
	"math/rand"

	"github.com/pkg/errors"
)

// execSet implements SET val_op, dest_reg.
func (i *Instance) execSet(ins Instruction) error {
	val, err := i.regs.ReadAny(ins.Operands[0])
	if err != nil {
		return err
	}
	return i.regs.Write(ins.Operands[1], val)
}

// execPrint implements PRINT val_op: append read_any(val_op) to the output
// buffer.
func (i *Instance) execPrint(ins Instruction) error {
	val, err := i.regs.ReadAny(ins.Operands[0])
	if err != nil {
		return err
	}
	i.output = append(i.output, val)
	return nil
}

// execArith implements ADD/SUB/MUL: two ints, dest.
func (i *Instance) execArith(ins Instruction) error {
	a, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	b, err := i.regs.ReadInt(ins.Operands[1])
	if err != nil {
		return err
	}
	var result int64
	switch ins.Opcode {
	case OpAdd:
		result = a + b
	case OpSub:
		result = a - b
	case OpMul:
		result = a * b
	}
	return i.regs.Write(ins.Operands[2], IntValue(result))
}

// execDivMod implements DIV/MOD: two ints, dest; fails on a zero divisor.
func (i *Instance) execDivMod(ins Instruction) error {
	a, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	b, err := i.regs.ReadInt(ins.Operands[1])
	if err != nil {
		return err
	}
	if b == 0 {
		return errors.Wrap(ErrDivisionByZero, "DIV/MOD")
	}
	var result int64
	if ins.Opcode == OpDiv {
		result = a / b
	} else {
		result = a % b
	}
	return i.regs.Write(ins.Operands[2], IntValue(result))
}

// execPow implements POW base, exp, dest: integer exponentiation.
func (i *Instance) execPow(ins Instruction) error {
	base, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	exp, err := i.regs.ReadInt(ins.Operands[1])
	if err != nil {
		return err
	}
	return i.regs.Write(ins.Operands[2], IntValue(intPow(base, exp)))
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

// execUnary implements SQRT/ABS: int, dest. SQRT truncates.
func (i *Instance) execUnary(ins Instruction) error {
	n, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	var result int64
	switch ins.Opcode {
	case OpSqrt:
		result = intSqrt(n)
	case OpAbs:
		if n < 0 {
			result = -n
		} else {
			result = n
		}
	}
	return i.regs.Write(ins.Operands[1], IntValue(result))
}

// intSqrt computes the truncating integer square root of n via Newton's
// method. Negative input yields 0 (no floating point, no complex domain).
func intSqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// execMinMax implements MIN/MAX: two ints, dest.
func (i *Instance) execMinMax(ins Instruction) error {
	a, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	b, err := i.regs.ReadInt(ins.Operands[1])
	if err != nil {
		return err
	}
	var result int64
	switch ins.Opcode {
	case OpMin:
		if a < b {
			result = a
		} else {
			result = b
		}
	case OpMax:
		if a > b {
			result = a
		} else {
			result = b
		}
	}
	return i.regs.Write(ins.Operands[2], IntValue(result))
}

// execIncDec implements INC/DEC reg: the register must currently hold an
// int.
func (i *Instance) execIncDec(ins Instruction) error {
	dest := ins.Operands[0]
	n, err := i.regs.ReadInt(dest)
	if err != nil {
		return err
	}
	if ins.Opcode == OpInc {
		n++
	} else {
		n--
	}
	return i.regs.Write(dest, IntValue(n))
}

// execRng implements RNG lo, hi, dest: a uniform integer in [lo, hi]
// inclusive.
func (i *Instance) execRng(ins Instruction) error {
	lo, err := i.regs.ReadInt(ins.Operands[0])
	if err != nil {
		return err
	}
	hi, err := i.regs.ReadInt(ins.Operands[1])
	if err != nil {
		return err
	}
	var result int64
	if hi <= lo {
		result = lo
	} else {
		result = lo + rand.Int63n(hi-lo+1)
	}
	return i.regs.Write(ins.Operands[2], IntValue(result))
}

// execJump implements JUMP label_index.
func (i *Instance) execJump(ins Instruction) (bool, error) {
	i.pc = int(ins.Operands[0].Int)
	return true, nil
}

// execIf implements IF v1, op, v2, label_true [, label_false].
func (i *Instance) execIf(ins Instruction) (bool, error) {
	result, err := i.evalComparison(ins.Operands[0], ins.Operands[1], ins.Operands[2])
	if err != nil {
		return false, err
	}
	if result {
		i.pc = int(ins.Operands[3].Int)
		return true, nil
	}
	if len(ins.Operands) > 4 {
		i.pc = int(ins.Operands[4].Int)
		return true, nil
	}
	return false, nil
}

// execUntil implements UNTIL v1, op, v2: on true, fall through; on false,
// stay on this instruction (mark ip_modified so Step does not advance),
// yielding once per step until the condition becomes true.
func (i *Instance) execUntil(ins Instruction) (bool, error) {
	result, err := i.evalComparison(ins.Operands[0], ins.Operands[1], ins.Operands[2])
	if err != nil {
		return false, err
	}
	if result {
		return false, nil
	}
	return true, nil
}

// execCall implements CALL label_index: push (ip+1), jump.
func (i *Instance) execCall(ins Instruction) (bool, error) {
	if err := i.calls.Push(i.pc + 1); err != nil {
		return false, err
	}
	i.pc = int(ins.Operands[0].Int)
	return true, nil
}

// execRet implements RET: pop return address into ip.
func (i *Instance) execRet(ins Instruction) (bool, error) {
	addr, err := i.calls.Pop()
	if err != nil {
		return false, err
	}
	i.pc = addr
	return true, nil
}

// evalComparison implements the comparison semantics shared by IF/UNTIL.
func (i *Instance) evalComparison(lhs, op, rhs Operand) (bool, error) {
	a, err := i.regs.ReadAny(lhs)
	if err != nil {
		return false, err
	}
	b, err := i.regs.ReadAny(rhs)
	if err != nil {
		return false, err
	}

	switch op.Kind {
	case OpndEQ, OpndNEQ:
		eq, err := valuesEqual(a, b)
		if err != nil {
			return false, err
		}
		if op.Kind == OpndEQ {
			return eq, nil
		}
		return !eq, nil
	case OpndLT, OpndGT, OpndLE, OpndGE:
		if a.Kind == KindStr || b.Kind == KindStr {
			return false, errors.Wrap(ErrTypeMismatch, "strings are not ordered")
		}
		av, err := numericValue(a)
		if err != nil {
			return false, err
		}
		bv, err := numericValue(b)
		if err != nil {
			return false, err
		}
		switch op.Kind {
		case OpndLT:
			return av < bv, nil
		case OpndGT:
			return av > bv, nil
		case OpndLE:
			return av <= bv, nil
		default: // OpndGE
			return av >= bv, nil
		}
	default:
		return false, errors.Errorf("operand is not a comparison marker: kind %d", op.Kind)
	}
}

// numericValue reduces an Int/Arr value to the int64 used for ordering
// comparisons: an Int compares as itself, an Arr compares as the sum of its
// elements.
func numericValue(v Value) (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.I, nil
	case KindArr:
		return v.sum(), nil
	default:
		return 0, errors.Wrap(ErrTypeMismatch, "value is not numeric")
	}
}

// valuesEqual implements equality for ==/!=: if either side is a String,
// both sides must be strings and equality compares content; if either side
// is an Array (and neither is a String), compare by element sum; otherwise
// numeric comparison.
func valuesEqual(a, b Value) (bool, error) {
	if a.Kind == KindStr || b.Kind == KindStr {
		if a.Kind != KindStr || b.Kind != KindStr {
			return false, nil
		}
		return a.S == b.S, nil
	}
	av, err := numericValue(a)
	if err != nil {
		return false, err
	}
	bv, err := numericValue(b)
	if err != nil {
		return false, err
	}
	return av == bv, nil
}
