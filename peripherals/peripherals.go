// Package peripherals provides a couple of illustrative, non-core
// peripheral handlers used by cmd/panspark to exercise the peripheral
// registry end to end. A real peripheral library
// (array operations, machine control, I/O) is an external concern that a
// deployment supplies on its own; these two are kept intentionally small.
package peripherals

import (
	"time"

	"github.com/verpitek/panspark/vm"
)

// Clock writes the current Unix timestamp into its single destination
// register operand: "CLOCK >> r0".
func Clock(i *vm.Instance, operands []vm.Operand) error {
	if len(operands) != 1 {
		return vm.ErrCompile
	}
	return i.Write(operands[0], vm.IntValue(time.Now().Unix()))
}

// Sleep reads a tick count from its single operand and sets the VM's wait
// counter, gating instruction advancement for that many subsequent steps
// without consuming an instruction: "SLEEP r0".
func Sleep(i *vm.Instance, operands []vm.Operand) error {
	if len(operands) != 1 {
		return vm.ErrCompile
	}
	ticks, err := i.ReadInt(operands[0])
	if err != nil {
		return err
	}
	if ticks > 0 {
		i.SetWait(int(ticks))
	}
	return nil
}

// Register binds Clock to "CLOCK" and Sleep to "SLEEP" on the given VM.
func Register(i *vm.Instance) {
	i.RegisterPeripheral("CLOCK", Clock)
	i.RegisterPeripheral("SLEEP", Sleep)
}
