package compiler

import (
	"math"

	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// ConstantKind discriminates the variants a ChunkConstant may hold.
type ConstantKind int

const (
	ConstNil ConstantKind = iota
	ConstBool
	ConstInt
	ConstReal
	ConstString
	ConstFunction
)

// ChunkConstant is one entry of a chunk's constant pool. Function holds
// the chunk index of a compiled closure literal; every other field is
// meaningful only for its matching Kind.
type ChunkConstant struct {
	Kind     ConstantKind
	Bool     bool
	Int      int32
	Real     float64
	String   string
	Function uint8
}

// equalConstant implements the pool's dedup-by-structural-equality
// rule. Real comparison uses raw bit identity (spec §4.2): two textually
// distinct literals with the same semantic value share a slot, and that
// is the only place Value-style "==" deviates from IEEE-754 — it applies
// only inside this pool's hashing, never to runtime equality.
func equalConstant(a, b ChunkConstant) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ConstNil:
		return true
	case ConstBool:
		return a.Bool == b.Bool
	case ConstInt:
		return a.Int == b.Int
	case ConstReal:
		return math.Float64bits(a.Real) == math.Float64bits(b.Real)
	case ConstString:
		return a.String == b.String
	case ConstFunction:
		return a.Function == b.Function
	default:
		return false
	}
}

// DebugInfo carries optional per-chunk debugging metadata: the
// function's name, its upvalues' names (parallel to Chunk.Upvalues),
// and an ordered (instruction offset, source line) table. Populated
// only when the Compiler is constructed with debug info enabled.
type DebugInfo struct {
	Name         string
	UpvalueNames []string
	LineEntries  []LineEntry
}

// LineEntry associates a bytecode offset with the source line the
// statement starting there came from.
type LineEntry struct {
	Offset uint16
	Line   uint16
}

// Chunk is a compiled function body: a byte-encoded instruction stream,
// a deduplicated constants pool, an upvalue capture vector, a
// register-count watermark, and optional debug info. Once a Chunk
// leaves its ChunkBuilder it is immutable (see spec §5).
type Chunk struct {
	Code []byte

	Constants []ChunkConstant

	// Upvalues holds, for each upvalue slot of this chunk, the encoded
	// operand from the parent chunk supplying its initial value: a
	// local register index (< MaxRegisters) or a parent upvalue slot
	// offset by MaxRegisters. This is the *capture* interpretation of
	// the shared 8-bit space, distinct from — and never mixed with —
	// the register/constant *operand* interpretation used elsewhere.
	Upvalues []uint8

	// NumRegisters is the register watermark: the maximum number of
	// registers live at any point during this chunk's execution.
	NumRegisters uint8

	// NumParams is the number of leading registers a caller must supply
	// as arguments; it is part of this chunk's call contract alongside
	// its single return value (spec §4.5 Call).
	NumParams uint8

	Debug *DebugInfo
}

func newChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]ChunkConstant, 0, 8),
	}
}

// EmitInstr appends an opcode byte.
func (c *Chunk) EmitInstr(op Opcode) {
	c.Code = append(c.Code, byte(op))
}

// EmitByte appends a raw operand byte.
func (c *Chunk) EmitByte(b uint8) {
	c.Code = append(c.Code, b)
}

// CodeLen reports the current instruction-stream length.
func (c *Chunk) CodeLen() int {
	return len(c.Code)
}

// CompileConstant interns value in the constants pool by structural
// equality and returns its operand encoding (MaxRegisters + index).
// Fails once the pool would exceed MaxConstants entries.
func (c *Chunk) CompileConstant(value ChunkConstant) (uint8, error) {
	for i, existing := range c.Constants {
		if equalConstant(existing, value) {
			return uint8(MaxRegisters + i), nil
		}
	}
	if len(c.Constants) >= MaxConstants {
		return 0, lexerr.New(lexerr.Compilation, "too many constants in chunk")
	}
	idx := len(c.Constants)
	c.Constants = append(c.Constants, value)
	return uint8(MaxRegisters + idx), nil
}
