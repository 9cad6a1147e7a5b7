package asm

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/verpitek/panspark/vm"
)

func TestParseOperandLiteral(t *testing.T) {
	op, err := ParseOperand("42")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if op.Kind != vm.OpndLiteral || op.Int != 42 {
		t.Errorf("%+v", errors.Errorf("got %+v, want Literal(42)", op))
	}
}

func TestParseOperandNegativeLiteral(t *testing.T) {
	op, err := ParseOperand("-7")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if op.Kind != vm.OpndLiteral || op.Int != -7 {
		t.Errorf("%+v", errors.Errorf("got %+v, want Literal(-7)", op))
	}
}

func TestParseOperandRegister(t *testing.T) {
	op, err := ParseOperand("r12")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if op.Kind != vm.OpndRegister || op.Int != 12 {
		t.Errorf("%+v", errors.Errorf("got %+v, want Register(12)", op))
	}
}

func TestParseOperandString(t *testing.T) {
	op, err := ParseOperand(`"hi there"`)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if op.Kind != vm.OpndString || op.Str != "hi there" {
		t.Errorf("%+v", errors.Errorf("got %+v, want StringOperand(\"hi there\")", op))
	}
}

func TestParseOperandArray(t *testing.T) {
	op, err := ParseOperand("[1, 2, 3]")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []int64{1, 2, 3}
	if op.Kind != vm.OpndArray || len(op.Arr) != len(want) {
		t.Fatalf("%+v", errors.Errorf("got %+v, want ArrayOperand(%v)", op, want))
	}
	for idx, w := range want {
		if op.Arr[idx] != w {
			t.Errorf("%+v", errors.Errorf("element[%d] = %d, want %d", idx, op.Arr[idx], w))
		}
	}
}

func TestParseOperandEmptyArrayRejected(t *testing.T) {
	_, err := ParseOperand("[]")
	if errors.Cause(err) != vm.ErrCompile {
		t.Errorf("%+v", errors.Errorf("expected ErrCompile for empty array literal, got %v", err))
	}
}

func TestParseOperandArrayWithBadElementRejected(t *testing.T) {
	_, err := ParseOperand("[1, x, 3]")
	if errors.Cause(err) != vm.ErrCompile {
		t.Errorf("%+v", errors.Errorf("expected ErrCompile for non-numeric array element, got %v", err))
	}
}

func TestParseOperandComparisonMarkers(t *testing.T) {
	cases := map[string]vm.OperandKind{
		"==": vm.OpndEQ,
		"!=": vm.OpndNEQ,
		"<":  vm.OpndLT,
		">":  vm.OpndGT,
		"<=": vm.OpndLE,
		">=": vm.OpndGE,
	}
	for tok, want := range cases {
		op, err := ParseOperand(tok)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if op.Kind != want || !op.IsComparison() {
			t.Errorf("%+v", errors.Errorf("token %q parsed as kind %d, want %d", tok, op.Kind, want))
		}
	}
}

func TestParseOperandGarbageIsCompileError(t *testing.T) {
	_, err := ParseOperand("not-a-number")
	if errors.Cause(err) != vm.ErrCompile {
		t.Errorf("%+v", errors.Errorf("expected ErrCompile, got %v", err))
	}
}
