package asm

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/verpitek/panspark/vm"
)

var comparisonMarkers = map[string]vm.OperandKind{
	"==": vm.OpndEQ,
	"!=": vm.OpndNEQ,
	"<":  vm.OpndLT,
	">":  vm.OpndGT,
	"<=": vm.OpndLE,
	">=": vm.OpndGE,
}

// ParseOperand classifies a single non-opcode, non-">>" token into a typed
// Operand.
func ParseOperand(token string) (vm.Operand, error) {
	if len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) {
		return vm.StringOperand(token[1 : len(token)-1]), nil
	}
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		return parseArrayOperand(token)
	}
	if kind, ok := comparisonMarkers[token]; ok {
		return vm.Operand{Kind: kind}, nil
	}
	if len(token) >= 2 && token[0] == 'r' {
		if idx, ok := parseUint(token[1:]); ok {
			return vm.Register(idx), nil
		}
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return vm.Operand{}, errors.Wrapf(vm.ErrCompile, "invalid operand %q", token)
	}
	return vm.Literal(n), nil
}

func parseUint(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseArrayOperand(token string) (vm.Operand, error) {
	inner := token[1 : len(token)-1]
	if strings.TrimSpace(inner) == "" {
		return vm.Operand{}, errors.Wrapf(vm.ErrCompile, "empty array literal %q", token)
	}
	parts := strings.Split(inner, ",")
	nums := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return vm.Operand{}, errors.Wrapf(vm.ErrCompile, "invalid array element %q in %q", p, token)
		}
		nums = append(nums, n)
	}
	return vm.ArrayOperand(nums), nil
}
