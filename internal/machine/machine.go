// Package machine is a thin bytecode interpreter whose only job is to
// prove a compiled Program's Chunks are a coherent, executable contract:
// it is not the language's VM (spec §1 names the tracing-GC value
// representation and the compiler as the scope of this repo, not a
// dispatch loop), so it takes the simplest correct semantics for each
// instruction rather than an optimized one, and it does not implement
// anything the compiler itself does not emit.
//
// Grounded on funxy's internal/vm evaluator loop shape (a switch over
// Opcode inside a per-call Frame) and on original_source/src/vm/value.rs
// for the register-cell/upvalue-cell split: every register is boxed
// behind a pointer so a Function literal's Func instruction can capture
// a live cell by reference, exactly as an upvalue must.
package machine

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/gc"
	"github.com/lacewing-lang/lacewing/internal/value"
)

// Machine runs one Program against one heap. Each Interpret call starts
// a fresh top-level frame over chunk 0 (<main>); the heap and Logs
// accumulate across calls, matching a single process's lifetime.
type Machine struct {
	Program *compiler.Program
	Heap    *gc.Heap
	Out     io.Writer

	// Logs mirrors every Log instruction's rendered text, in order, so
	// tests can assert on output without capturing Out.
	Logs []string
}

// New returns a Machine over program with a fresh heap, writing Log
// output to os.Stdout.
func New(program *compiler.Program) *Machine {
	return &Machine{Program: program, Heap: gc.NewHeap(), Out: os.Stdout}
}

// Interpret runs the program's <main> chunk to completion and returns
// its Ret value (Nil if main falls off the end without one).
func (m *Machine) Interpret() (value.Value, error) {
	return m.call(0, nil)
}

// closure is the one heap object kind this stub introduces: a chunk
// index plus the upvalue cells captured when the Function literal that
// produced it was evaluated.
type closure struct {
	chunkIndex uint8
	upvalues   []*value.Value
}

// Trace lets the collector follow a closure to the heap values its
// captured cells hold, implementing gc.Traceable.
func (c *closure) Trace(mark func(any)) {
	for _, cell := range c.upvalues {
		if p, ok := value.TryAsPointer(*cell); ok {
			mark(p)
		}
	}
}

// str is the heap object backing string constants. Leaf object: no
// Values inside it, so it needs no Trace method.
type str struct{ s string }

func (s *str) String() string { return s.s }

type frame struct {
	chunk  *compiler.Chunk
	regs   []*value.Value
	upvals []*value.Value
}

// newFrame allocates a frame's register file at the full MaxRegisters
// width rather than chunk.NumRegisters: a zero-argument Call's
// range-start operand is a valid register index (the compiler's
// contract, spec §4.5) even when it happens to sit above every
// register this chunk's watermark ever counted as live, so the
// interpreter cannot size the array to the watermark alone without
// risking an out-of-bounds access on that edge case.
func newFrame(chunk *compiler.Chunk) *frame {
	regs := make([]*value.Value, compiler.MaxRegisters)
	for i := range regs {
		v := value.Nil
		regs[i] = &v
	}
	return &frame{chunk: chunk, regs: regs}
}

func (m *Machine) call(chunkIdx uint8, args []*value.Value) (value.Value, error) {
	if int(chunkIdx) >= len(m.Program.Chunks) {
		return value.Nil, fmt.Errorf("machine: chunk index %d out of range", chunkIdx)
	}
	chunk := m.Program.Chunks[chunkIdx]
	f := newFrame(chunk)
	for i := 0; i < len(args) && i < int(chunk.NumParams); i++ {
		*f.regs[i] = value.Copy(*args[i])
	}
	return m.run(f)
}

// operand resolves an 8-bit operand byte against a frame: a register
// below MaxRegisters, or a constant-pool entry at or above it (spec
// §3's shared operand space).
func (m *Machine) operand(f *frame, b uint8) value.Value {
	if b < compiler.MaxRegisters {
		return *f.regs[b]
	}
	return m.materialize(f.chunk.Constants[int(b)-compiler.MaxRegisters])
}

func (m *Machine) materialize(c compiler.ChunkConstant) value.Value {
	switch c.Kind {
	case compiler.ConstNil:
		return value.Nil
	case compiler.ConstBool:
		return value.FromBool(c.Bool)
	case compiler.ConstInt:
		return value.FromInt(c.Int)
	case compiler.ConstReal:
		return value.FromReal(c.Real)
	case compiler.ConstString:
		w := m.Heap.Alloc(&str{s: c.String})
		return value.FromPointer(w, true)
	default:
		return value.Nil
	}
}

func truthy(v value.Value) bool {
	if v.VariantType() == value.TypeNil {
		return false
	}
	if b, ok := value.TryAsBool(v); ok {
		return b
	}
	return true
}

func (m *Machine) run(f *frame) (value.Value, error) {
	code := f.chunk.Code
	pc := 0

	for pc < len(code) {
		op := compiler.Opcode(code[pc])
		pc++

		switch op {
		case compiler.Cpy:
			src, dest := code[pc], code[pc+1]
			pc += 2
			m.store(f, dest, value.Copy(m.operand(f, src)))

		case compiler.GetUp:
			slot, dest := code[pc], code[pc+1]
			pc += 2
			m.store(f, dest, value.Copy(*f.upvals[slot]))

		case compiler.SetUp:
			slot, src := code[pc], code[pc+1]
			pc += 2
			value.Drop(*f.upvals[slot])
			*f.upvals[slot] = value.Copy(m.operand(f, src))

		case compiler.Add, compiler.Sub, compiler.Mul, compiler.Div, compiler.Mod, compiler.Pow:
			r1, r2, dest := code[pc], code[pc+1], code[pc+2]
			pc += 3
			v, err := arith(op, m.operand(f, r1), m.operand(f, r2))
			if err != nil {
				return value.Nil, err
			}
			m.store(f, dest, v)

		case compiler.Leq, compiler.Geq, compiler.Lth, compiler.Gth, compiler.Eq, compiler.Neq:
			r1, r2, dest := code[pc], code[pc+1], code[pc+2]
			pc += 3
			v, err := compare(op, m.operand(f, r1), m.operand(f, r2))
			if err != nil {
				return value.Nil, err
			}
			m.store(f, dest, v)

		case compiler.And:
			r1, r2, dest := code[pc], code[pc+1], code[pc+2]
			pc += 3
			m.store(f, dest, value.FromBool(truthy(m.operand(f, r1)) && truthy(m.operand(f, r2))))

		case compiler.Or:
			r1, r2, dest := code[pc], code[pc+1], code[pc+2]
			pc += 3
			m.store(f, dest, value.FromBool(truthy(m.operand(f, r1)) || truthy(m.operand(f, r2))))

		case compiler.Not:
			r, dest := code[pc], code[pc+1]
			pc += 2
			m.store(f, dest, value.FromBool(!truthy(m.operand(f, r))))

		case compiler.Neg:
			r, dest := code[pc], code[pc+1]
			pc += 2
			v, err := negate(m.operand(f, r))
			if err != nil {
				return value.Nil, err
			}
			m.store(f, dest, v)

		case compiler.Call:
			fnReg, argStart := code[pc], code[pc+1]
			pc += 2
			fnVal := m.operand(f, fnReg)
			p, ok := value.TryAsPointer(fnVal)
			if !ok {
				return value.Nil, fmt.Errorf("machine: Call operand is not callable")
			}
			cl, ok := p.Object.(*closure)
			if !ok {
				return value.Nil, fmt.Errorf("machine: Call operand is not a function")
			}
			callee := m.Program.Chunks[cl.chunkIndex]
			args := make([]*value.Value, callee.NumParams)
			for i := range args {
				v := *f.regs[int(argStart)+i]
				args[i] = &v
			}
			ret, err := m.callClosure(cl, args)
			if err != nil {
				return value.Nil, err
			}
			m.store(f, argStart, ret)

		case compiler.Func:
			chunkIdx, dest := code[pc], code[pc+1]
			pc += 2
			target := m.Program.Chunks[chunkIdx]
			upvals := make([]*value.Value, len(target.Upvalues))
			for i, src := range target.Upvalues {
				if src < compiler.MaxRegisters {
					upvals[i] = f.regs[src]
				} else {
					upvals[i] = f.upvals[src-compiler.MaxRegisters]
				}
			}
			w := m.Heap.Alloc(&closure{chunkIndex: chunkIdx, upvalues: upvals})
			m.store(f, dest, value.FromPointer(w, true))

		case compiler.Jmp:
			dispOff := pc
			disp := int8(code[pc])
			pc++
			pc = dispOff + int(disp)

		case compiler.Jif:
			dispOff := pc
			disp := int8(code[pc])
			pc++
			condReg := code[pc]
			pc++
			if !truthy(m.operand(f, condReg)) {
				pc = dispOff + int(disp)
			}

		case compiler.Log:
			r := code[pc]
			pc++
			text := value.Repr(m.operand(f, r))
			m.Logs = append(m.Logs, text)
			fmt.Fprintln(m.Out, text)

		case compiler.Ret:
			r := code[pc]
			return m.operand(f, r), nil

		default:
			return value.Nil, fmt.Errorf("machine: unknown opcode %d", op)
		}
	}
	return value.Nil, nil
}

func (m *Machine) callClosure(cl *closure, args []*value.Value) (value.Value, error) {
	chunk := m.Program.Chunks[cl.chunkIndex]
	f := newFrame(chunk)
	f.upvals = cl.upvalues
	for i := 0; i < len(args) && i < int(chunk.NumParams); i++ {
		*f.regs[i] = value.Copy(*args[i])
	}
	return m.run(f)
}

func (m *Machine) store(f *frame, reg uint8, v value.Value) {
	value.Drop(*f.regs[reg])
	*f.regs[reg] = v
}

func arith(op compiler.Opcode, a, b value.Value) (value.Value, error) {
	ai, aIsInt := value.TryAsInt(a)
	bi, bIsInt := value.TryAsInt(b)
	if aIsInt && bIsInt && op != compiler.Div && op != compiler.Pow {
		switch op {
		case compiler.Add:
			return value.FromInt(ai + bi), nil
		case compiler.Sub:
			return value.FromInt(ai - bi), nil
		case compiler.Mul:
			return value.FromInt(ai * bi), nil
		case compiler.Mod:
			if bi == 0 {
				return value.Nil, fmt.Errorf("machine: modulo by zero")
			}
			return value.FromInt(ai % bi), nil
		}
	}
	af, ok1 := numeric(a)
	bf, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return value.Nil, fmt.Errorf("machine: arithmetic on non-numeric operand")
	}
	switch op {
	case compiler.Add:
		return value.FromReal(af + bf), nil
	case compiler.Sub:
		return value.FromReal(af - bf), nil
	case compiler.Mul:
		return value.FromReal(af * bf), nil
	case compiler.Div:
		return value.FromReal(af / bf), nil
	case compiler.Mod:
		return value.FromReal(math.Mod(af, bf)), nil
	case compiler.Pow:
		return value.FromReal(math.Pow(af, bf)), nil
	default:
		return value.Nil, fmt.Errorf("machine: unimplemented arithmetic opcode")
	}
}

func numeric(v value.Value) (float64, bool) {
	if i, ok := value.TryAsInt(v); ok {
		return float64(i), true
	}
	if r, ok := value.TryAsReal(v); ok {
		return r, true
	}
	return 0, false
}

func compare(op compiler.Opcode, a, b value.Value) (value.Value, error) {
	if op == compiler.Eq {
		return value.FromBool(runtimeEqual(a, b)), nil
	}
	if op == compiler.Neq {
		return value.FromBool(!runtimeEqual(a, b)), nil
	}
	af, ok1 := numeric(a)
	bf, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return value.Nil, fmt.Errorf("machine: comparison on non-numeric operand")
	}
	switch op {
	case compiler.Leq:
		return value.FromBool(af <= bf), nil
	case compiler.Geq:
		return value.FromBool(af >= bf), nil
	case compiler.Lth:
		return value.FromBool(af < bf), nil
	case compiler.Gth:
		return value.FromBool(af > bf), nil
	default:
		return value.Nil, fmt.Errorf("machine: unimplemented comparison opcode")
	}
}

func runtimeEqual(a, b value.Value) bool {
	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			return af == bf
		}
		return false
	}
	if ab, ok := value.TryAsBool(a); ok {
		if bb, ok := value.TryAsBool(b); ok {
			return ab == bb
		}
		return false
	}
	if a.VariantType() == value.TypeNil || b.VariantType() == value.TypeNil {
		return a.VariantType() == b.VariantType()
	}
	pa, aok := value.TryAsPointer(a)
	pb, bok := value.TryAsPointer(b)
	if aok && bok {
		if sa, ok := pa.Object.(*str); ok {
			if sb, ok := pb.Object.(*str); ok {
				return sa.s == sb.s
			}
		}
		return pa == pb
	}
	return false
}

func negate(v value.Value) (value.Value, error) {
	if i, ok := value.TryAsInt(v); ok {
		return value.FromInt(-i), nil
	}
	if r, ok := value.TryAsReal(v); ok {
		return value.FromReal(-r), nil
	}
	return value.Nil, fmt.Errorf("machine: Neg on non-numeric operand")
}
