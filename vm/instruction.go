package vm

// Opcode identifies a built-in instruction or a peripheral dispatch.
type Opcode uint8

// Built-in opcode vocabulary. Any other uppercase mnemonic is a
// peripheral call if registered at compile time, otherwise a CompileError.
const (
	OpSet Opcode = iota
	OpPrint
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpSqrt
	OpAbs
	OpMin
	OpMax
	OpInc
	OpDec
	OpRng
	OpJump
	OpPoint
	OpIf
	OpUntil
	OpCall
	OpRet
	OpHalt
	OpNop
	OpPeripheral
)

var opcodeNames = map[Opcode]string{
	OpSet:        "SET",
	OpPrint:      "PRINT",
	OpAdd:        "ADD",
	OpSub:        "SUB",
	OpMul:        "MUL",
	OpDiv:        "DIV",
	OpMod:        "MOD",
	OpPow:        "POW",
	OpSqrt:       "SQRT",
	OpAbs:        "ABS",
	OpMin:        "MIN",
	OpMax:        "MAX",
	OpInc:        "INC",
	OpDec:        "DEC",
	OpRng:        "RNG",
	OpJump:       "JUMP",
	OpPoint:      "POINT",
	OpIf:         "IF",
	OpUntil:      "UNTIL",
	OpCall:       "CALL",
	OpRet:        "RET",
	OpHalt:       "HALT",
	OpNop:        "NOP",
	OpPeripheral: "PERIPHERAL",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "UNKNOWN"
}

// mnemonicOpcode maps the built-in opcode vocabulary (uppercase mnemonics)
// to their Opcode value. Anything absent from this map is either a
// peripheral name or a CompileError, never OpPeripheral directly: the
// compiler decides which based on the peripheral registry it was given.
var mnemonicOpcode = map[string]Opcode{
	"SET":   OpSet,
	"PRINT": OpPrint,
	"ADD":   OpAdd,
	"SUB":   OpSub,
	"MUL":   OpMul,
	"DIV":   OpDiv,
	"MOD":   OpMod,
	"POW":   OpPow,
	"SQRT":  OpSqrt,
	"ABS":   OpAbs,
	"MIN":   OpMin,
	"MAX":   OpMax,
	"INC":   OpInc,
	"DEC":   OpDec,
	"RNG":   OpRng,
	"JUMP":  OpJump,
	"POINT": OpPoint,
	"IF":    OpIf,
	"UNTIL": OpUntil,
	"CALL":  OpCall,
	"RET":   OpRet,
	"HALT":  OpHalt,
	"NOP":   OpNop,
}

// MnemonicOpcode looks up a built-in opcode by its source mnemonic. ok is
// false for anything that is not a built-in (i.e. a candidate peripheral
// name).
func MnemonicOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonicOpcode[mnemonic]
	return
}

// OperandArity gives the exact operand count the compiler must see for each
// built-in opcode handled by the generic encode path. JUMP, POINT, CALL, IF
// and UNTIL have their own shape-specific checks in the compiler (IF's
// optional ELSE clause means it has no single fixed arity) and are not
// listed here. A mismatch is a CompileError, not a runtime fault: a handler
// indexing a missing operand must never be reachable from source text.
var OperandArity = map[Opcode]int{
	OpSet:   2,
	OpPrint: 1,
	OpAdd:   3,
	OpSub:   3,
	OpMul:   3,
	OpDiv:   3,
	OpMod:   3,
	OpPow:   3,
	OpSqrt:  2,
	OpAbs:   2,
	OpMin:   3,
	OpMax:   3,
	OpInc:   1,
	OpDec:   1,
	OpRng:   3,
	OpRet:   0,
	OpHalt:  0,
	OpNop:   0,
}

// Instruction is one compiled program step: an opcode, its operands, the
// originating source line (for error messages), and, only when Opcode is
// OpPeripheral, the peripheral name, stored so a snapshot can re-bind to a
// re-registered handler after restore.
type Instruction struct {
	Opcode       Opcode
	Operands     []Operand
	SourceLine   int
	Peripheral   string
}

// Program is an ordered, immutable-after-compilation sequence of
// instructions.
type Program []Instruction
