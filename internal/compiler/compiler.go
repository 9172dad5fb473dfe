// Package compiler lowers a parsed lacewing program (internal/ast) into
// a register-based bytecode Program: a vector of Chunks whose
// instructions address registers and constants uniformly through an
// 8-bit operand split at MaxRegisters.
//
// Ported from the original Hissy compiler (original_source/src/compiler/mod.rs)
// in the idiom of its Go teacher, funxy's internal/vm compiler: a single
// pass over the AST, explicit error returns instead of exceptions, and
// one exported entry point, CompileProgram.
package compiler

import (
	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/assert"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// Compiler holds the state necessary to compile one program: a stack of
// chunkBuilders (innermost last) and the finished chunks accumulated so
// far.
type Compiler struct {
	debugInfo bool
	stack     []*chunkBuilder
	chunks    []*Chunk
}

// New returns a Compiler. debugInfo enables per-statement line tables
// and function/upvalue names in each compiled Chunk.
func New(debugInfo bool) *Compiler {
	return &Compiler{debugInfo: debugInfo}
}

// CompileProgram compiles a parsed top-level block into a Program whose
// chunk 0 is <main>, using a fresh Compiler for the whole program.
func CompileProgram(debugInfo bool, program ast.Block) (*Program, error) {
	c := New(debugInfo)
	if _, err := c.compileFunction("<main>", program, nil); err != nil {
		return nil, err
	}
	return &Program{Chunks: c.chunks}, nil
}

func (c *Compiler) top() *chunkBuilder {
	return c.stack[len(c.stack)-1]
}

// getBinding implements spec §4.4's identifier lookup: innermost-chunk
// first, then descend outward, materializing upvalues in every
// intermediate chunk on the first outer hit. Returns ok=false if id is
// unresolved anywhere in the lexical chain.
func (c *Compiler) getBinding(id string) (binding, bool, error) {
	if b, ok := c.top().findChunkBinding(id); ok {
		return b, true, nil
	}

	// Search enclosing chunks outward, skipping the innermost (already
	// checked above).
	found := -1
	var outer binding
	for i := len(c.stack) - 2; i >= 0; i-- {
		if b, ok := c.stack[i].findChunkBinding(id); ok {
			found = i
			outer = b
			break
		}
	}
	if found == -1 {
		return binding{}, false, nil
	}

	// Materialize an upvalue in every chunk from found+1 to the
	// innermost, each one capturing from its immediate parent — never
	// short-circuiting to the origin chunk's local (spec §9).
	current := outer
	for i := found + 1; i < len(c.stack); i++ {
		slot, err := c.stack[i].makeUpvalue(id, current.encoded())
		if err != nil {
			return binding{}, false, err
		}
		current = binding{isLocal: false, slot: slot}
	}
	return current, true, nil
}

// compileFunction compiles params+body into a new chunk, pushing it
// onto both the builder stack and the finished-chunks vector (chunk
// indices are assigned in the order compilation *starts*, matching the
// original so recursive/self-referencing Function literals see their
// own index already reserved).
func (c *Compiler) compileFunction(name string, body ast.Block, params []string) (uint8, error) {
	if len(c.chunks) >= MaxChunks {
		return 0, lexerr.New(lexerr.Compilation, "too many chunks")
	}
	chunkIdx := uint8(len(c.chunks))
	cb := newChunkBuilder(name)
	if c.debugInfo {
		cb.chunk.Debug = &DebugInfo{Name: name}
	}
	c.chunks = append(c.chunks, cb.chunk)
	c.stack = append(c.stack, cb)

	cb.chunk.NumParams = uint8(len(params))
	cb.enterBlock()
	for _, p := range params {
		reg, err := cb.regs.newReg()
		if err != nil {
			return 0, err
		}
		cb.makeLocal(p, reg)
	}
	if err := c.compileBlock(body); err != nil {
		return 0, err
	}
	cb.leaveBlock()

	cb.chunk.NumRegisters = uint8(cb.regs.required)
	cb.chunk.Upvalues = make([]uint8, len(cb.upvals))
	for i, u := range cb.upvals {
		cb.chunk.Upvalues[i] = u.source
	}
	if c.debugInfo {
		names := make([]string, len(cb.upvals))
		for i, u := range cb.upvals {
			names[i] = u.name
		}
		cb.chunk.Debug.UpvalueNames = names
	}

	c.stack = c.stack[:len(c.stack)-1]
	assert.Debug(c.chunks[chunkIdx] == cb.chunk, "compiler: chunk index drifted")
	return chunkIdx, nil
}

// compileBlock compiles an ast.Block in a fresh lexical scope, checking
// on exit that no register was leaked (spec §3: exiting a block
// restores `used` to its pre-entry value).
func (c *Compiler) compileBlock(block ast.Block) error {
	cb := c.top()
	usedBefore := cb.regs.used

	cb.enterBlock()
	for _, stat := range block {
		if stat.Line() > MaxSourceLine {
			return lexerr.New(lexerr.Compilation, "line number too large")
		}
		line := uint16(stat.Line())
		if c.debugInfo {
			cb.chunk.Debug.LineEntries = append(cb.chunk.Debug.LineEntries,
				LineEntry{Offset: uint16(cb.chunk.CodeLen()), Line: line})
		}
		if err := c.compileStat(stat); err != nil {
			return lexerr.WithLine(err, line)
		}
	}
	cb.leaveBlock()

	assert.Debug(usedBefore == cb.regs.used, "compiler: leaked register")
	return nil
}
