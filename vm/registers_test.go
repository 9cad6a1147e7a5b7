package vm

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRegistersStartAtZero(t *testing.T) {
	r := NewRegisters(4, 64)
	for i := 0; i < 4; i++ {
		v, err := r.Cell(i)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if v.Kind != KindInt || v.I != 0 {
			t.Errorf("%+v", errors.Errorf("register r%d = %v, want Int(0)", i, v))
		}
	}
}

func TestRegistersWriteWithinBudget(t *testing.T) {
	r := NewRegisters(2, 16)
	if err := r.Write(Register(0), StrValue("hi")); err != nil {
		t.Fatalf("%+v", err)
	}
	if r.HeapUsed() != 5 { // "hi"+1 (3) + r1's Int (2) = 5
		t.Errorf("%+v", errors.Errorf("heap used = %d, want 5", r.HeapUsed()))
	}
}

func TestRegistersHeapOverflowRejected(t *testing.T) {
	// register count 2: r0, r1 start as Int(0) = 2 bytes each = 4 bytes used.
	r := NewRegisters(2, 4)
	err := r.Write(Register(0), StrValue("toolong"))
	if errors.Cause(err) != ErrHeapOverflow {
		t.Fatalf("%+v", errors.Errorf("expected ErrHeapOverflow, got %v", err))
	}
	v, _ := r.Cell(0)
	if v.Kind != KindInt || v.I != 0 {
		t.Errorf("%+v", errors.Errorf("register r0 was mutated despite rejected write: %v", v))
	}
}

func TestRegistersHeapExactlyAtLimitAccepted(t *testing.T) {
	r := NewRegisters(1, 2)
	if err := r.Write(Register(0), IntValue(5)); err != nil {
		t.Fatalf("%+v", err)
	}
	if r.HeapUsed() != 2 {
		t.Errorf("%+v", errors.Errorf("heap used = %d, want 2", r.HeapUsed()))
	}
}

func TestRegistersOneByteOverLimitRejected(t *testing.T) {
	r := NewRegisters(1, 1)
	err := r.Write(Register(0), IntValue(5))
	if errors.Cause(err) != ErrHeapOverflow {
		t.Fatalf("%+v", errors.Errorf("expected ErrHeapOverflow, got %v", err))
	}
}

func TestRegistersOutOfBoundsIndex(t *testing.T) {
	r := NewRegisters(2, 64)
	if _, err := r.Cell(2); errors.Cause(err) != ErrRegisterOutOfBounds {
		t.Errorf("%+v", errors.Errorf("expected ErrRegisterOutOfBounds for index == count, got %v", err))
	}
	if _, err := r.Cell(1); err != nil {
		t.Errorf("%+v", errors.Errorf("index count-1 should be accepted: %v", err))
	}
}

func TestRegistersWriteToNonRegisterIsIllegal(t *testing.T) {
	r := NewRegisters(2, 64)
	err := r.Write(Literal(5), IntValue(1))
	if errors.Cause(err) != ErrIllegalDestination {
		t.Errorf("%+v", errors.Errorf("expected ErrIllegalDestination, got %v", err))
	}
}

func TestReadIntRejectsStringAndArray(t *testing.T) {
	r := NewRegisters(2, 64)
	if err := r.Write(Register(0), StrValue("x")); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := r.ReadInt(Register(0)); errors.Cause(err) != ErrTypeMismatch {
		t.Errorf("%+v", errors.Errorf("expected ErrTypeMismatch reading a string as int, got %v", err))
	}
	if err := r.Write(Register(1), ArrValue([]int64{1, 2})); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := r.ReadInt(Register(1)); errors.Cause(err) != ErrTypeMismatch {
		t.Errorf("%+v", errors.Errorf("expected ErrTypeMismatch reading an array as int, got %v", err))
	}
}

func TestCallStackBoundary(t *testing.T) {
	c := NewCallStack(2)
	if err := c.Push(10); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := c.Push(20); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := c.Push(30); errors.Cause(err) != ErrStackOverflow {
		t.Errorf("%+v", errors.Errorf("expected ErrStackOverflow at depth == limit, got %v", err))
	}
	if v, err := c.Pop(); err != nil || v != 20 {
		t.Errorf("%+v", errors.Errorf("expected pop 20, got %d, %v", v, err))
	}
	if v, err := c.Pop(); err != nil || v != 10 {
		t.Errorf("%+v", errors.Errorf("expected pop 10, got %d, %v", v, err))
	}
	if _, err := c.Pop(); errors.Cause(err) != ErrStackUnderflow {
		t.Errorf("%+v", errors.Errorf("expected ErrStackUnderflow on empty stack, got %v", err))
	}
}
