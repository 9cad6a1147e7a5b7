package vm

import (
	"testing"

	"github.com/pkg/errors"
)

func run(t *testing.T, i *Instance, program Program) {
	t.Helper()
	i.Load(program)
	if err := i.RunFast(10000); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestExecAddPrintHalt(t *testing.T) {
	i := New(WithRegisters(4, 256))
	run(t, i, Program{
		{Opcode: OpSet, Operands: []Operand{Literal(15), Register(0)}},
		{Opcode: OpSet, Operands: []Operand{Literal(27), Register(1)}},
		{Opcode: OpAdd, Operands: []Operand{Register(0), Register(1), Register(2)}},
		{Opcode: OpPrint, Operands: []Operand{Register(2)}},
		{Opcode: OpHalt},
	})
	if len(i.Output()) != 1 || i.Output()[0].I != 42 {
		t.Fatalf("%+v", errors.Errorf("expected output [42], got %v", i.Output()))
	}
}

func TestExecCountdownWithIf(t *testing.T) {
	// SET 5 >> r0 / POINT loop / PRINT r0 / DEC r0 / IF r0 > 0 >> loop(1) / HALT
	i := New(WithRegisters(2, 256))
	run(t, i, Program{
		{Opcode: OpSet, Operands: []Operand{Literal(5), Register(0)}},
		{Opcode: OpPoint, Operands: []Operand{LabelOperand(1)}},
		{Opcode: OpPrint, Operands: []Operand{Register(0)}},
		{Opcode: OpDec, Operands: []Operand{Register(0)}},
		{Opcode: OpIf, Operands: []Operand{Register(0), {Kind: OpndGT}, Literal(0), LabelOperand(1)}},
		{Opcode: OpHalt},
	})
	want := []int64{5, 4, 3, 2, 1}
	if len(i.Output()) != len(want) {
		t.Fatalf("%+v", errors.Errorf("expected %d outputs, got %v", len(want), i.Output()))
	}
	for idx, w := range want {
		if i.Output()[idx].I != w {
			t.Errorf("%+v", errors.Errorf("output[%d] = %d, want %d", idx, i.Output()[idx].I, w))
		}
	}
}

func TestExecCallRetFactorial(t *testing.T) {
	// r0 = n, r1 = accumulator, computes 5! recursively using CALL/RET
	// SET 5 >> r0 / SET 1 >> r1 / CALL fact(5) / PRINT r1 / HALT
	// POINT fact(5) / IF r0 <= 1 >> done(10) / MUL r1 r0 >> r1 / DEC r0 / CALL fact(5) / POINT done(10) / RET
	i := New(WithRegisters(2, 256), WithCallStackLimit(8))
	run(t, i, Program{
		{Opcode: OpSet, Operands: []Operand{Literal(5), Register(0)}},
		{Opcode: OpSet, Operands: []Operand{Literal(1), Register(1)}},
		{Opcode: OpCall, Operands: []Operand{LabelOperand(5)}},
		{Opcode: OpPrint, Operands: []Operand{Register(1)}},
		{Opcode: OpHalt},
		{Opcode: OpPoint, Operands: []Operand{LabelOperand(5)}},
		{Opcode: OpIf, Operands: []Operand{Register(0), {Kind: OpndLE}, Literal(1), LabelOperand(10)}},
		{Opcode: OpMul, Operands: []Operand{Register(1), Register(0), Register(1)}},
		{Opcode: OpDec, Operands: []Operand{Register(0)}},
		{Opcode: OpCall, Operands: []Operand{LabelOperand(5)}},
		{Opcode: OpPoint, Operands: []Operand{LabelOperand(10)}},
		{Opcode: OpRet},
	})
	if len(i.Output()) != 1 || i.Output()[0].I != 120 {
		t.Fatalf("%+v", errors.Errorf("expected output [120], got %v", i.Output()))
	}
}

func TestExecUntilBlocksThenAdvances(t *testing.T) {
	i := New(WithRegisters(1, 256))
	i.Load(Program{
		{Opcode: OpUntil, Operands: []Operand{Register(0), {Kind: OpndGE}, Literal(3)}},
		{Opcode: OpPrint, Operands: []Operand{Register(0)}},
		{Opcode: OpHalt},
	})
	for n := 0; n < 3; n++ {
		if err := i.Step(); err != nil {
			t.Fatalf("%+v", err)
		}
		if i.PC() != 0 {
			t.Fatalf("%+v", errors.Errorf("UNTIL should not advance while false, pc=%d", i.PC()))
		}
		if err := i.Write(Register(0), IntValue(int64(n+1))); err != nil {
			t.Fatalf("%+v", err)
		}
	}
	if err := i.Step(); err != nil {
		t.Fatalf("%+v", err)
	}
	if i.PC() != 1 {
		t.Fatalf("%+v", errors.Errorf("UNTIL should advance once condition is true, pc=%d", i.PC()))
	}
}

func TestExecDivisionByZero(t *testing.T) {
	i := New(WithRegisters(2, 256))
	i.Load(Program{
		{Opcode: OpDiv, Operands: []Operand{Literal(1), Literal(0), Register(0)}},
	})
	err := i.Step()
	if errors.Cause(err) != ErrDivisionByZero {
		t.Errorf("%+v", errors.Errorf("expected ErrDivisionByZero, got %v", err))
	}
}

func TestExecPeripheralUnresolved(t *testing.T) {
	i := New(WithRegisters(1, 256))
	i.Load(Program{
		{Opcode: OpPeripheral, Peripheral: "ARRAY_SORT", Operands: []Operand{Register(0)}},
	})
	err := i.Step()
	if errors.Cause(err) != ErrPeripheralUnresolved {
		t.Errorf("%+v", errors.Errorf("expected ErrPeripheralUnresolved, got %v", err))
	}
}

func TestExecCallStackOverflow(t *testing.T) {
	i := New(WithRegisters(1, 256), WithCallStackLimit(1))
	i.Load(Program{
		{Opcode: OpCall, Operands: []Operand{LabelOperand(1)}},
		{Opcode: OpCall, Operands: []Operand{LabelOperand(0)}},
	})
	if err := i.Step(); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := i.Step(); errors.Cause(err) != ErrStackOverflow {
		t.Errorf("%+v", errors.Errorf("expected ErrStackOverflow, got %v", err))
	}
}

func TestExecRetUnderflow(t *testing.T) {
	i := New(WithRegisters(1, 256))
	i.Load(Program{{Opcode: OpRet}})
	if err := i.Step(); errors.Cause(err) != ErrStackUnderflow {
		t.Errorf("%+v", errors.Errorf("expected ErrStackUnderflow, got %v", err))
	}
}

func TestExecStringEqualityAndOrderingMismatch(t *testing.T) {
	i := New(WithRegisters(2, 256))
	i.Load(Program{
		{Opcode: OpSet, Operands: []Operand{StringOperand("a"), Register(0)}},
		{Opcode: OpSet, Operands: []Operand{StringOperand("a"), Register(1)}},
		{Opcode: OpIf, Operands: []Operand{Register(0), {Kind: OpndEQ}, Register(1), LabelOperand(4)}},
		{Opcode: OpHalt},
		{Opcode: OpUntil, Operands: []Operand{Register(0), {Kind: OpndLT}, Register(1)}},
	})
	for n := 0; n < 3; n++ {
		if err := i.Step(); err != nil {
			t.Fatalf("%+v", err)
		}
	}
	err := i.Step()
	if errors.Cause(err) != ErrTypeMismatch {
		t.Errorf("%+v", errors.Errorf("expected ErrTypeMismatch ordering two strings, got %v", err))
	}
}

func TestExecArrayComparisonBySum(t *testing.T) {
	i := New(WithRegisters(1, 256))
	i.Load(Program{
		// [1,2,3] sums to 6, so 6 == array should be true
		{Opcode: OpIf, Operands: []Operand{Literal(6), {Kind: OpndEQ}, ArrayOperand([]int64{1, 2, 3}), LabelOperand(2)}},
		{Opcode: OpHalt},
		{Opcode: OpNop},
	})
	if err := i.Step(); err != nil {
		t.Fatalf("%+v", err)
	}
	if i.PC() != 2 {
		t.Errorf("%+v", errors.Errorf("expected jump to instruction 2, pc=%d", i.PC()))
	}
}
