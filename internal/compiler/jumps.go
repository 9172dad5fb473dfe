package compiler

import "github.com/lacewing-lang/lacewing/internal/lexerr"

// Jump offsets are signed 8-bit relative displacements measured from
// the offset of the displacement byte itself to the target (spec §4.6).

// emitJumpPlaceholder emits a single placeholder displacement byte
// after the jump opcode and returns its offset, to be filled in later
// by patchJumpTo or patchJumpHere.
func emitJumpPlaceholder(chunk *Chunk) int {
	offset := chunk.CodeLen()
	chunk.EmitByte(0xff)
	return offset
}

// patchJumpHere backpatches the placeholder at offset to jump to the
// chunk's current end.
func patchJumpHere(chunk *Chunk, offset int) error {
	return patchJumpTo(chunk, offset, chunk.CodeLen())
}

// patchJumpTo backpatches the placeholder at offset to jump to target.
func patchJumpTo(chunk *Chunk, offset, target int) error {
	disp := target - offset
	if disp < MinJumpDisplacement || disp > MaxJumpDisplacement {
		return lexerr.New(lexerr.Compilation, "jump too large")
	}
	chunk.Code[offset] = byte(int8(disp))
	return nil
}

// emitJumpTo emits a displacement byte that jumps directly to target
// (used by While's backward jump, which needs no later backpatch).
func emitJumpTo(chunk *Chunk, target int) error {
	from := chunk.CodeLen()
	disp := target - from
	if disp < MinJumpDisplacement || disp > MaxJumpDisplacement {
		return lexerr.New(lexerr.Compilation, "jump too large")
	}
	chunk.EmitByte(byte(int8(disp)))
	return nil
}
