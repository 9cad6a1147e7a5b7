package vm

import (
	"github.com/sirupsen/logrus"
)

// Option configures an Instance at construction time.
type Option func(*Instance)

// WithRegisters sets the register count and heap byte budget. If not
// supplied, New uses DefaultRegisterCount and DefaultHeapLimit.
func WithRegisters(count, heapLimit int) Option {
	return func(i *Instance) { i.regs = NewRegisters(count, heapLimit) }
}

// WithCallStackLimit sets the call-stack depth. If not supplied, New uses
// DefaultCallStackLimit.
func WithCallStackLimit(limit int) Option {
	return func(i *Instance) { i.calls = NewCallStack(limit) }
}

// WithLogger attaches a logrus logger used for Debug-level diagnostics
// (step-loop wait and halt reasons, snapshot restores). A nil logger (the
// default) keeps the VM silent.
func WithLogger(log *logrus.Logger) Option {
	return func(i *Instance) { i.log = log }
}

// Default limits used when the corresponding Option is not supplied.
const (
	DefaultRegisterCount  = 32
	DefaultHeapLimit      = 4096
	DefaultCallStackLimit = 64
)

// Instance is a single PanSpark VM. It owns its register file, call stack,
// peripheral registry, output buffer and compiled program exclusively; it
// is not safe for concurrent use.
type Instance struct {
	regs  *Registers
	calls *CallStack
	pers  *PeripheralRegistry
	log   *logrus.Logger

	program Program
	pc      int
	wait    int
	halted  bool

	output []Value

	fatalHook func(error)
}

// New constructs a VM with the given options applied over the defaults.
func New(opts ...Option) *Instance {
	i := &Instance{
		pers: NewPeripheralRegistry(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.regs == nil {
		i.regs = NewRegisters(DefaultRegisterCount, DefaultHeapLimit)
	}
	if i.calls == nil {
		i.calls = NewCallStack(DefaultCallStackLimit)
	}
	return i
}

// Registers exposes the register file for inspection (tests, host UI).
func (i *Instance) Registers() *Registers { return i.regs }

// CallStack exposes the call stack for inspection.
func (i *Instance) CallStack() *CallStack { return i.calls }

// Peripherals exposes the peripheral registry so a host can
// register/unregister handlers.
func (i *Instance) Peripherals() *PeripheralRegistry { return i.pers }

// RegisterPeripheral registers a peripheral handler by name.
func (i *Instance) RegisterPeripheral(name string, handler Handler) {
	i.pers.Register(name, handler)
}

// UnregisterPeripheral removes a peripheral handler by name.
func (i *Instance) UnregisterPeripheral(name string) {
	i.pers.Unregister(name)
}

// Output returns the append-only output buffer produced by PRINT-class
// operations.
func (i *Instance) Output() []Value { return i.output }

// ReadAny exposes Registers.ReadAny to peripheral handlers.
func (i *Instance) ReadAny(op Operand) (Value, error) { return i.regs.ReadAny(op) }

// ReadInt exposes Registers.ReadInt to peripheral handlers.
func (i *Instance) ReadInt(op Operand) (int64, error) { return i.regs.ReadInt(op) }

// Write exposes Registers.Write to peripheral handlers.
func (i *Instance) Write(dest Operand, val Value) error { return i.regs.Write(dest, val) }

// AppendOutput exposes the output buffer to peripheral handlers that need
// to emit a value (e.g. a PRINT-like peripheral).
func (i *Instance) AppendOutput(v Value) { i.output = append(i.output, v) }

// SetWait sets the per-step wait counter; a host-provided peripheral (e.g.
// SLEEP) calls this to gate instruction advancement for a number of
// subsequent steps without consuming an instruction.
func (i *Instance) SetWait(ticks int) { i.wait = ticks }

// HeapAvailable reports the remaining heap byte budget.
func (i *Instance) HeapAvailable() int { return i.regs.HeapAvailable() }

// PC returns the current program counter.
func (i *Instance) PC() int { return i.pc }

// Halted reports whether the program has terminated (HALT executed, or the
// program counter ran past the last instruction).
func (i *Instance) Halted() bool { return i.halted }

// Program returns the currently loaded instruction program.
func (i *Instance) Program() Program { return i.program }

// Load installs a freshly compiled program and resets execution state
// (program counter, wait counter, halted flag) without touching registers,
// call stack or output. A host that wants a clean run should build a new
// Instance instead.
func (i *Instance) Load(p Program) {
	i.program = p
	i.pc = 0
	i.wait = 0
	i.halted = false
}

// SetFatalHook installs a callback invoked whenever Step returns a non-nil,
// non-ErrHalted error, letting a host short-circuit further stepping.
func (i *Instance) SetFatalHook(hook func(error)) { i.fatalHook = hook }

func (i *Instance) logDebug(args ...interface{}) {
	if i.log != nil {
		i.log.Debug(args...)
	}
}

func (i *Instance) logDebugf(format string, args ...interface{}) {
	if i.log != nil {
		i.log.Debugf(format, args...)
	}
}
