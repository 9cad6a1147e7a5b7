package vm

import "github.com/pkg/errors"

// Step executes at most one instruction and returns. Each call:
//
//  1. If the program counter is past the last instruction, the program is
//     complete and Step returns ErrHalted.
//  2. If a non-zero wait counter is set, it is decremented and Step returns
//     without executing anything.
//  3. The current instruction is fetched and dispatched.
//  4. If the handler did not move the program counter, it is advanced by
//     one.
//
// Any error other than ErrHalted means the current step faulted; the
// Instance's state is left exactly as of the faulting instruction so a
// host can snapshot it, inspect it, or discard it.
func (i *Instance) Step() error {
	if i.halted {
		return ErrHalted
	}
	if i.pc >= len(i.program) {
		i.halted = true
		i.logDebug("program counter past end of program, halting")
		return ErrHalted
	}
	if i.wait > 0 {
		i.wait--
		i.logDebugf("waiting, %d ticks remaining", i.wait)
		return nil
	}

	ins := i.program[i.pc]
	ipModified, err := i.dispatch(ins)
	if err != nil {
		err = errors.Wrapf(err, "line %d: %s", ins.SourceLine, ins.Opcode)
		if i.fatalHook != nil {
			i.fatalHook(err)
		}
		return err
	}
	if !ipModified {
		i.pc++
	}
	return nil
}

// RunFast chains steps without external suspension, stopping after the
// program halts, faults, or maxSteps instructions have executed, whichever
// comes first. maxSteps bounds runaway programs (e.g. a tight JUMP loop);
// pass a non-positive value only when the caller has its own quota
// mechanism, since a non-positive maxSteps here means "unbounded".
func (i *Instance) RunFast(maxSteps int) error {
	steps := 0
	for {
		if maxSteps > 0 && steps >= maxSteps {
			return errors.Errorf("exceeded step quota of %d instructions", maxSteps)
		}
		err := i.Step()
		if err != nil {
			if errors.Cause(err) == ErrHalted {
				return nil
			}
			return err
		}
		steps++
	}
}

// dispatch executes a single instruction's behavior and reports whether it
// modified the program counter itself (branch/call/return/halt), in which
// case Step must not additionally advance it.
func (i *Instance) dispatch(ins Instruction) (ipModified bool, err error) {
	switch ins.Opcode {
	case OpSet:
		return false, i.execSet(ins)
	case OpPrint:
		return false, i.execPrint(ins)
	case OpAdd, OpSub, OpMul:
		return false, i.execArith(ins)
	case OpDiv, OpMod:
		return false, i.execDivMod(ins)
	case OpPow:
		return false, i.execPow(ins)
	case OpSqrt, OpAbs:
		return false, i.execUnary(ins)
	case OpMin, OpMax:
		return false, i.execMinMax(ins)
	case OpInc, OpDec:
		return false, i.execIncDec(ins)
	case OpRng:
		return false, i.execRng(ins)
	case OpJump:
		return i.execJump(ins)
	case OpPoint:
		return false, nil
	case OpIf:
		return i.execIf(ins)
	case OpUntil:
		return i.execUntil(ins)
	case OpCall:
		return i.execCall(ins)
	case OpRet:
		return i.execRet(ins)
	case OpHalt:
		i.halted = true
		i.logDebug("HALT")
		return true, nil
	case OpNop:
		return false, nil
	case OpPeripheral:
		return false, i.pers.dispatch(i, ins.Peripheral, ins.Operands)
	default:
		return false, errors.Errorf("unknown opcode %v", ins.Opcode)
	}
}
