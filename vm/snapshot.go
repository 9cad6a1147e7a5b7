package vm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// snapshotMagic identifies the leading field of a snapshot string; bumped
// whenever the tail's JSON layout changes in an incompatible way.
const snapshotMagic = "PANSPARK1"

// MaxSnapshotLength is the largest snapshot string Restore will accept.
// Anything longer is rejected with ErrSnapshotMalformed rather than risking
// unbounded memory use while decoding a corrupt or hostile blob.
const MaxSnapshotLength = 1 << 20

// snapshotCell is the JSON-tail encoding of one register cell.
type snapshotCell struct {
	Kind Kind    `json:"kind"`
	I    int64   `json:"i,omitempty"`
	S    string  `json:"s,omitempty"`
	A    []int64 `json:"a,omitempty"`
}

// snapshotInstruction is the JSON-tail encoding of one compiled
// instruction, including the peripheral name so a PERIPHERAL instruction
// can re-bind to a freshly registered handler after restore.
type snapshotInstruction struct {
	Opcode     Opcode     `json:"opcode"`
	Operands   []Operand  `json:"operands"`
	SourceLine int        `json:"line"`
	Peripheral string     `json:"peripheral,omitempty"`
}

// snapshotTail is the JSON-encoded remainder of a snapshot, following the
// pipe-separated leading fields (magic, pc, register count, heap limit,
// call-stack limit).
type snapshotTail struct {
	Registers []snapshotCell        `json:"registers"`
	CallStack []int                 `json:"call_stack"`
	Output    []snapshotCell        `json:"output"`
	Program   []snapshotInstruction `json:"program"`
	Halted    bool                  `json:"halted"`
	Wait      int                   `json:"wait"`
}

func valueToCell(v Value) snapshotCell {
	return snapshotCell{Kind: v.Kind, I: v.I, S: v.S, A: v.A}
}

func cellToValue(c snapshotCell) Value {
	return Value{Kind: c.Kind, I: c.I, S: c.S, A: c.A}
}

// Snapshot serializes the full machine state (program counter, register
// file, active call-stack entries, output buffer, and instruction program,
// including each PERIPHERAL instruction's peripheral name) into a single
// self-delimiting string. Peripheral handlers themselves are not part of
// the snapshot.
func (i *Instance) Snapshot() (string, error) {
	regs := make([]snapshotCell, i.regs.Len())
	for idx := range regs {
		v, err := i.regs.Cell(idx)
		if err != nil {
			return "", err
		}
		regs[idx] = valueToCell(v)
	}

	output := make([]snapshotCell, len(i.output))
	for idx, v := range i.output {
		output[idx] = valueToCell(v)
	}

	program := make([]snapshotInstruction, len(i.program))
	for idx, ins := range i.program {
		program[idx] = snapshotInstruction{
			Opcode:     ins.Opcode,
			Operands:   ins.Operands,
			SourceLine: ins.SourceLine,
			Peripheral: ins.Peripheral,
		}
	}

	tail := snapshotTail{
		Registers: regs,
		CallStack: i.calls.Entries(),
		Output:    output,
		Program:   program,
		Halted:    i.halted,
		Wait:      i.wait,
	}
	tailJSON, err := json.Marshal(tail)
	if err != nil {
		return "", errors.Wrap(err, "encoding snapshot tail")
	}

	snap := strings.Join([]string{
		snapshotMagic,
		strconv.Itoa(i.pc),
		strconv.Itoa(i.regs.Len()),
		strconv.Itoa(i.regs.HeapLimit()),
		strconv.Itoa(i.calls.Limit()),
	}, "|") + "|" + string(tailJSON)

	if len(snap) > MaxSnapshotLength {
		return "", errors.Wrapf(ErrSnapshotMalformed, "snapshot length %d exceeds maximum %d", len(snap), MaxSnapshotLength)
	}
	return snap, nil
}

// Restore populates i, which must have been constructed with New using
// limits matching the snapshot's register count, heap limit, and
// call-stack limit, from a string produced by Snapshot. Peripheral
// handlers are not restored; the caller must re-register them before the
// first Step call after Restore. If a restored PERIPHERAL instruction's
// name has no registered handler at dispatch time, that step fails with
// ErrPeripheralUnresolved, exactly as it would at normal compile-then-run
// time.
func (i *Instance) Restore(snapshot string) error {
	if len(snapshot) > MaxSnapshotLength {
		return errors.Wrapf(ErrSnapshotMalformed, "snapshot length %d exceeds maximum %d", len(snapshot), MaxSnapshotLength)
	}

	fields := strings.SplitN(snapshot, "|", 6)
	if len(fields) != 6 {
		return errors.Wrapf(ErrSnapshotMalformed, "expected 6 pipe-separated fields, got %d", len(fields))
	}
	if fields[0] != snapshotMagic {
		return errors.Wrapf(ErrSnapshotMalformed, "unrecognized snapshot magic %q", fields[0])
	}

	pc, err := strconv.Atoi(fields[1])
	if err != nil {
		return errors.Wrap(ErrSnapshotMalformed, "malformed program counter")
	}
	regCount, err := strconv.Atoi(fields[2])
	if err != nil {
		return errors.Wrap(ErrSnapshotMalformed, "malformed register count")
	}
	heapLimit, err := strconv.Atoi(fields[3])
	if err != nil {
		return errors.Wrap(ErrSnapshotMalformed, "malformed heap limit")
	}
	callLimit, err := strconv.Atoi(fields[4])
	if err != nil {
		return errors.Wrap(ErrSnapshotMalformed, "malformed call stack limit")
	}

	if regCount != i.regs.Len() || heapLimit != i.regs.HeapLimit() {
		return errors.Wrapf(ErrSnapshotMalformed, "snapshot register file (%d cells, %d byte heap) does not match target VM (%d cells, %d byte heap)",
			regCount, heapLimit, i.regs.Len(), i.regs.HeapLimit())
	}
	if callLimit != i.calls.Limit() {
		return errors.Wrapf(ErrSnapshotMalformed, "snapshot call stack limit %d does not match target VM limit %d", callLimit, i.calls.Limit())
	}

	var tail snapshotTail
	if err := json.Unmarshal([]byte(fields[5]), &tail); err != nil {
		return errors.Wrap(ErrSnapshotMalformed, fmt.Sprintf("decoding snapshot tail: %v", err))
	}
	if len(tail.Registers) != regCount {
		return errors.Wrapf(ErrSnapshotMalformed, "snapshot has %d registers, expected %d", len(tail.Registers), regCount)
	}

	regs := NewRegisters(regCount, heapLimit)
	for idx, c := range tail.Registers {
		v := cellToValue(c)
		delta := v.heapBytes() - IntValue(0).heapBytes()
		regs.used += delta
		regs.cells[idx] = v
	}
	if regs.used > regs.limit {
		return errors.Wrapf(ErrSnapshotMalformed, "snapshot heap usage %d exceeds limit %d", regs.used, regs.limit)
	}

	calls := NewCallStack(callLimit)
	if err := calls.Restore(tail.CallStack); err != nil {
		return errors.Wrap(ErrSnapshotMalformed, err.Error())
	}

	program := make(Program, len(tail.Program))
	for idx, ins := range tail.Program {
		program[idx] = Instruction{
			Opcode:     ins.Opcode,
			Operands:   ins.Operands,
			SourceLine: ins.SourceLine,
			Peripheral: ins.Peripheral,
		}
	}

	output := make([]Value, len(tail.Output))
	for idx, c := range tail.Output {
		output[idx] = cellToValue(c)
	}

	i.regs = regs
	i.calls = calls
	i.program = program
	i.output = output
	i.pc = pc
	i.wait = tail.Wait
	i.halted = tail.Halted
	i.logDebugf("restored snapshot: pc=%d halted=%v program=%d instructions", pc, tail.Halted, len(program))
	return nil
}
