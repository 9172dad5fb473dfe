package compiler

// MaxRegisters is the split point between register operands and
// constant-pool operands in the shared 8-bit operand space: indices
// below it address registers, indices at or above it address the
// constants pool at offset MaxRegisters. It is deliberately small (half
// the 8-bit operand space) so the VM never needs a second addressing
// mode — see spec §9 Design Notes.
const MaxRegisters = 128

// MaxConstants is the largest a single chunk's constant pool may grow:
// the remaining half of the 8-bit operand space above MaxRegisters.
const MaxConstants = 256 - MaxRegisters

// MaxChunks is the largest a Program's chunk vector may grow: chunk
// indices are 8-bit operands to the Func instruction.
const MaxChunks = 256

// MaxUpvalues is the largest a single chunk's upvalue list may grow:
// upvalue slots are 8-bit operands to GetUp/SetUp.
const MaxUpvalues = 256

// MaxCallArgs is the largest argument list a single Call may compile.
const MaxCallArgs = 255

// MaxJumpDisplacement bounds the signed 8-bit relative displacement a
// Jmp/Jif operand can encode.
const (
	MinJumpDisplacement = -128
	MaxJumpDisplacement = 127
)

// MaxSourceLine bounds the line numbers recorded in debug info.
const MaxSourceLine = 65535
