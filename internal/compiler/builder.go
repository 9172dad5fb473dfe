package compiler

import (
	"sort"

	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// binding is what get_binding resolves an identifier to within one
// chunk: a local register, or an already-materialized upvalue slot.
type binding struct {
	isLocal bool
	reg     uint8 // valid when isLocal
	slot    uint8 // valid when !isLocal
}

// encoded returns the 8-bit *capture* encoding for this binding: the
// register index for a local, or MaxRegisters+slot for an upvalue.
// getBinding uses it as the capture source of the upvalue it
// materializes in the next inner chunk; instruction emission does not
// use it (GetUp/SetUp callers branch on isLocal directly).
func (b binding) encoded() uint8 {
	if b.isLocal {
		return b.reg
	}
	return b.slot + MaxRegisters
}

// blockBindings maps identifier to local register within one lexical
// block. Blocks are stacked inside a chunk; lookup walks inside-out.
type blockBindings map[string]uint8

// upvalueBinding is one entry of a chunk's UpvalueList: an identifier
// plus the encoded operand (in the *parent* chunk) describing where its
// initial value comes from.
type upvalueBinding struct {
	name   string
	source uint8 // parent-chunk encoded operand: local reg, or upvalue-slot+MaxRegisters
}

// chunkBuilder is the per-function compilation state: the chunk under
// construction, its register allocator, its stacked block scopes, and
// its upvalue list. Corresponds to the original's ChunkContext plus the
// Chunk it is building.
type chunkBuilder struct {
	chunk  *Chunk
	regs   registerAllocator
	blocks []blockBindings
	upvals []upvalueBinding
	name   string
}

func newChunkBuilder(name string) *chunkBuilder {
	return &chunkBuilder{chunk: newChunk(), name: name}
}

func (cb *chunkBuilder) enterBlock() {
	cb.blocks = append(cb.blocks, blockBindings{})
}

// leaveBlock frees every local declared in the current block, in
// descending register order so the LIFO invariant holds (spec §3).
func (cb *chunkBuilder) leaveBlock() {
	top := cb.blocks[len(cb.blocks)-1]
	regs := make([]uint8, 0, len(top))
	for _, r := range top {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] > regs[j] })
	for _, r := range regs {
		cb.regs.freeReg(r)
	}
	cb.blocks = cb.blocks[:len(cb.blocks)-1]
}

// findBlockLocal looks up id in only the innermost block, used by Let
// to detect in-block rebinding (spec §4.6).
func (cb *chunkBuilder) findBlockLocal(id string) (uint8, bool) {
	reg, ok := cb.blocks[len(cb.blocks)-1][id]
	return reg, ok
}

// findChunkBinding walks this chunk's block stack inside-out, then
// falls back to the chunk's existing upvalue list. It never looks
// outside this chunk — that is getBinding's job.
func (cb *chunkBuilder) findChunkBinding(id string) (binding, bool) {
	for i := len(cb.blocks) - 1; i >= 0; i-- {
		if reg, ok := cb.blocks[i][id]; ok {
			return binding{isLocal: true, reg: reg}, true
		}
	}
	for i, u := range cb.upvals {
		if u.name == id {
			return binding{isLocal: false, slot: uint8(i)}, true
		}
	}
	return binding{}, false
}

// makeLocal registers reg as id's binding in the current block.
func (cb *chunkBuilder) makeLocal(id string, reg uint8) {
	cb.blocks[len(cb.blocks)-1][id] = reg
	cb.regs.makeLocal(reg)
}

// makeUpvalue appends a new upvalue slot whose capture source (encoded
// against the *parent* chunk) is source, returning the new slot index.
func (cb *chunkBuilder) makeUpvalue(id string, source uint8) (uint8, error) {
	if len(cb.upvals) >= MaxUpvalues {
		return 0, lexerr.New(lexerr.Compilation, "too many upvalues in chunk")
	}
	slot := uint8(len(cb.upvals))
	cb.upvals = append(cb.upvals, upvalueBinding{name: id, source: source})
	return slot, nil
}
