package asm

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/verpitek/panspark/vm"
)

// PeripheralChecker reports whether a name has a registered peripheral
// handler. *vm.PeripheralRegistry satisfies this interface.
type PeripheralChecker interface {
	Has(name string) bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithPeripherals supplies the peripheral registry an unrecognized opcode
// mnemonic is checked against. Without this option, any non-built-in
// mnemonic is a compile error.
func WithPeripherals(p PeripheralChecker) Option {
	return func(c *Compiler) { c.peripherals = p }
}

// WithLogger attaches a logrus logger for Debug-level diagnostics
// (named-variable declaration counts, instruction and label counts, and
// mnemonics bound to peripherals). nil (the default) keeps the compiler
// silent.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Compiler) { c.log = log }
}

// Compiler turns PanSpark source into a vm.Program via four ordered
// passes: named-variable substitution, sanitize, label collection, and
// opcode encoding.
type Compiler struct {
	peripherals PeripheralChecker
	log         *logrus.Logger
}

// New builds a Compiler with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sourceLine struct {
	text   string
	lineNo int
}

func splitLines(source string) []sourceLine {
	raw := strings.Split(source, "\n")
	lines := make([]sourceLine, len(raw))
	for i, t := range raw {
		lines[i] = sourceLine{text: t, lineNo: i + 1}
	}
	return lines
}

var declRe = regexp.MustCompile(`^\s*\$([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.+?)\s*$`)
var explicitRegRe = regexp.MustCompile(`^r(\d+)$`)

// Compile runs all four passes over source and returns the resulting
// program, or the first CompileError encountered.
func (c *Compiler) Compile(source string) (vm.Program, error) {
	lines := splitLines(source)

	lines, err := c.substituteNamedVariables(lines)
	if err != nil {
		return nil, err
	}

	lines = sanitize(lines)

	labels := collectLabels(lines)

	program, err := c.encode(lines, labels)
	if err != nil {
		return nil, err
	}

	c.logDebugf("compiled %d instructions, %d labels", len(program), len(labels))
	return program, nil
}

// substituteNamedVariables implements pass 0: collect $name declarations
// (register_token, recording the declaration order so that "auto" can
// assign the next unused index over both explicit and prior auto
// assignments), strip the declaration lines, then substitute every $name
// occurrence in the remaining lines with its register token, longest name
// first so that "$foo" never matches as a prefix of "$foobar".
func (c *Compiler) substituteNamedVariables(lines []sourceLine) ([]sourceLine, error) {
	type decl struct {
		name   string
		target string
	}
	var decls []decl
	kept := make([]sourceLine, 0, len(lines))

	for _, ln := range lines {
		m := declRe.FindStringSubmatch(ln.text)
		if m == nil {
			kept = append(kept, ln)
			continue
		}
		name, target := m[1], m[2]
		if target != "auto" && !explicitRegRe.MatchString(target) {
			return nil, errors.Wrapf(vm.ErrCompile, "line %d: malformed named-variable declaration %q (target must be \"auto\" or \"r<index>\")", ln.lineNo, ln.text)
		}
		decls = append(decls, decl{name: name, target: target})
	}

	used := make(map[int64]bool)
	substitution := make(map[string]string, len(decls))
	for _, d := range decls {
		if d.target == "auto" {
			idx := int64(0)
			for used[idx] {
				idx++
			}
			used[idx] = true
			substitution[d.name] = "r" + strconv.FormatInt(idx, 10)
		} else {
			m := explicitRegRe.FindStringSubmatch(d.target)
			idx, _ := strconv.ParseInt(m[1], 10, 64)
			used[idx] = true
			substitution[d.name] = d.target
		}
	}

	names := make([]string, 0, len(substitution))
	for name := range substitution {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	for i, ln := range kept {
		text := ln.text
		for _, name := range names {
			text = strings.ReplaceAll(text, "$"+name, substitution[name])
		}
		kept[i].text = text
	}

	c.logDebugf("pass 0: %d named-variable declarations resolved", len(decls))
	return kept, nil
}

// sanitize implements pass 1: strip blank lines and whole-line comments
// (lines whose first non-whitespace characters are "//").
func sanitize(lines []sourceLine) []sourceLine {
	out := make([]sourceLine, 0, len(lines))
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln.text)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		out = append(out, ln)
	}
	return out
}

// collectLabels implements pass 2: record label_name -> instruction index
// for each POINT line. A name declared twice keeps its last declaration.
func collectLabels(lines []sourceLine) map[string]int {
	labels := make(map[string]int)
	for idx, ln := range lines {
		tokens, err := Tokenize(ln.text)
		if err != nil || len(tokens) < 2 {
			continue
		}
		if tokens[0] == "POINT" {
			labels[tokens[1]] = idx
		}
	}
	return labels
}

// encode implements pass 3: tokenize, classify, and build an Instruction
// per sanitized line, resolving control-flow label operands.
func (c *Compiler) encode(lines []sourceLine, labels map[string]int) (vm.Program, error) {
	program := make(vm.Program, 0, len(lines))
	for idx, ln := range lines {
		tokens, err := Tokenize(ln.text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", ln.lineNo)
		}
		if len(tokens) == 0 {
			continue
		}
		mnemonic := tokens[0]
		ins, err := c.encodeLine(mnemonic, tokens, idx, ln.lineNo, labels)
		if err != nil {
			return nil, err
		}
		program = append(program, ins)
	}
	return program, nil
}

func (c *Compiler) encodeLine(mnemonic string, tokens []string, ownIndex, lineNo int, labels map[string]int) (vm.Instruction, error) {
	resolve := func(name string) (vm.Operand, error) {
		idx, ok := labels[name]
		if !ok {
			return vm.Operand{}, errors.Wrapf(vm.ErrCompile, "line %d: undefined label %q", lineNo, name)
		}
		return vm.LabelOperand(int64(idx)), nil
	}

	switch mnemonic {
	case "JUMP", "CALL":
		if len(tokens) < 2 {
			return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: %s requires a label operand", lineNo, mnemonic)
		}
		lbl, err := resolve(tokens[1])
		if err != nil {
			return vm.Instruction{}, err
		}
		op, _ := vm.MnemonicOpcode(mnemonic)
		return vm.Instruction{Opcode: op, Operands: []vm.Operand{lbl}, SourceLine: lineNo}, nil

	case "POINT":
		if len(tokens) < 2 {
			return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: POINT requires a label name", lineNo)
		}
		return vm.Instruction{Opcode: vm.OpPoint, Operands: []vm.Operand{vm.LabelOperand(int64(ownIndex))}, SourceLine: lineNo}, nil

	case "IF":
		return c.encodeIf(tokens, lineNo, resolve)

	case "UNTIL":
		if len(tokens) != 4 {
			return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: UNTIL requires exactly 3 operands", lineNo)
		}
		operands, err := parseOperands(tokens[1:], lineNo)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Opcode: vm.OpUntil, Operands: operands, SourceLine: lineNo}, nil
	}

	if op, ok := vm.MnemonicOpcode(mnemonic); ok {
		operands, err := parseOperands(tokens[1:], lineNo)
		if err != nil {
			return vm.Instruction{}, err
		}
		if want, ok := vm.OperandArity[op]; ok && len(operands) != want {
			return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: %s expects %d operand(s), got %d", lineNo, mnemonic, want, len(operands))
		}
		return vm.Instruction{Opcode: op, Operands: operands, SourceLine: lineNo}, nil
	}

	if c.peripherals != nil && c.peripherals.Has(mnemonic) {
		operands, err := parseOperands(tokens[1:], lineNo)
		if err != nil {
			return vm.Instruction{}, err
		}
		c.logDebugf("line %d: dispatching to peripheral %q", lineNo, mnemonic)
		return vm.Instruction{Opcode: vm.OpPeripheral, Operands: operands, SourceLine: lineNo, Peripheral: mnemonic}, nil
	}

	return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: unknown opcode %q", lineNo, mnemonic)
}

// encodeIf handles "IF v1 op v2 >> label_true [ELSE label_false]".
func (c *Compiler) encodeIf(tokens []string, lineNo int, resolve func(string) (vm.Operand, error)) (vm.Instruction, error) {
	if len(tokens) < 6 || tokens[4] != ">>" {
		return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: malformed IF, expected \"IF v1 op v2 >> label\"", lineNo)
	}
	v1, err := ParseOperand(tokens[1])
	if err != nil {
		return vm.Instruction{}, errors.Wrapf(err, "line %d", lineNo)
	}
	opTok, err := ParseOperand(tokens[2])
	if err != nil || !opTok.IsComparison() {
		return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: expected comparison operator, got %q", lineNo, tokens[2])
	}
	v2, err := ParseOperand(tokens[3])
	if err != nil {
		return vm.Instruction{}, errors.Wrapf(err, "line %d", lineNo)
	}
	labelTrue, err := resolve(tokens[5])
	if err != nil {
		return vm.Instruction{}, err
	}
	operands := []vm.Operand{v1, opTok, v2, labelTrue}

	if len(tokens) > 6 {
		if tokens[6] != "ELSE" || len(tokens) < 8 {
			return vm.Instruction{}, errors.Wrapf(vm.ErrCompile, "line %d: malformed ELSE clause", lineNo)
		}
		labelFalse, err := resolve(tokens[7])
		if err != nil {
			return vm.Instruction{}, err
		}
		operands = append(operands, labelFalse)
	}
	return vm.Instruction{Opcode: vm.OpIf, Operands: operands, SourceLine: lineNo}, nil
}

// parseOperands classifies the operand tokens of a non-control-flow
// instruction, discarding ">>" destination markers.
func parseOperands(tokens []string, lineNo int) ([]vm.Operand, error) {
	operands := make([]vm.Operand, 0, len(tokens))
	for _, tok := range tokens {
		if tok == ">>" {
			continue
		}
		op, err := ParseOperand(tok)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		operands = append(operands, op)
	}
	return operands, nil
}

func (c *Compiler) logDebugf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}
