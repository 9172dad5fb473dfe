package compiler

import (
	"github.com/lacewing-lang/lacewing/internal/assert"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// registerAllocator tracks one chunk's register usage: the LIFO
// discipline removes the need for a free list entirely — register
// reuse is implicit in the decrementing watermark. Ported from the
// original Rust ChunkRegisters (original_source/src/compiler/mod.rs).
type registerAllocator struct {
	// used is the next free register; registers [0, used) are live.
	used uint16
	// required is the high-water mark of used ever observed, and
	// becomes the chunk's NumRegisters once compilation finishes.
	required uint16
	// localCnt partitions [0, used) into locals [0, localCnt) and
	// temporaries [localCnt, used).
	localCnt uint16
}

// newReg allocates the next free register, bumping the watermark.
func (r *registerAllocator) newReg() (uint8, error) {
	if r.used >= MaxRegisters {
		return 0, lexerr.New(lexerr.Compilation, "too many registers required")
	}
	reg := uint8(r.used)
	r.used++
	if r.used > r.required {
		r.required = r.used
	}
	return reg, nil
}

// newRegRange allocates n consecutive registers (used for call-argument
// windows, which must be contiguous) and returns the first.
func (r *registerAllocator) newRegRange(n uint16) (uint8, error) {
	if r.used+n > MaxRegisters {
		return 0, lexerr.New(lexerr.Compilation, "too many registers required")
	}
	start := uint8(r.used)
	r.used += n
	if r.used > r.required {
		r.required = r.used
	}
	return start, nil
}

// makeLocal converts the register at the bottom of the temporary region
// into a local. Statement compilation guarantees a new local is always
// introduced on top of zero temporaries (see spec §4.3, §9 LIFO
// register discipline).
func (r *registerAllocator) makeLocal(reg uint8) {
	assert.Debug(uint16(reg) == r.localCnt, "register allocator: local allocated above temporaries")
	r.localCnt++
}

// freeReg releases the topmost live register, asserting LIFO order.
func (r *registerAllocator) freeReg(reg uint8) {
	assert.Debug(uint16(reg) == r.used-1, "register allocator: registers must be freed in LIFO order")
	r.used--
	if r.localCnt > r.used {
		r.localCnt = r.used
	}
}

// freeRegRange releases a contiguous range, asserting it is the
// topmost live range.
func (r *registerAllocator) freeRegRange(start uint8, n uint16) {
	assert.Debug(uint16(start)+n == r.used, "register allocator: registers must be freed in LIFO order")
	r.used -= n
	if r.localCnt > r.used {
		r.localCnt = r.used
	}
}

// freeTempReg frees reg only if it is a temporary register operand
// (index >= localCnt and < MaxRegisters, i.e. not a constant-pool
// operand in [MaxRegisters, 256)).
func (r *registerAllocator) freeTempReg(reg uint8) {
	if reg < MaxRegisters && uint16(reg) >= r.localCnt {
		r.freeReg(reg)
	}
}

// freeTempRange frees a range only if it starts at or above localCnt.
func (r *registerAllocator) freeTempRange(start uint8, n uint16) {
	if uint16(start) >= r.localCnt {
		r.freeRegRange(start, n)
	}
}
