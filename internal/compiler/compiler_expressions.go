package compiler

import (
	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// binInstr maps ast.BinOperator to its instruction, 1:1 as spec.md
// requires. And/Or are eager (non-short-circuit) operators in this
// design (spec §9) — implementers wanting short-circuit semantics would
// emit conditional jumps here instead.
var binInstr = map[ast.BinOperator]Opcode{
	ast.OpPlus:    Add,
	ast.OpMinus:   Sub,
	ast.OpTimes:   Mul,
	ast.OpDivides: Div,
	ast.OpModulo:  Mod,
	ast.OpPower:   Pow,
	ast.OpLEq:     Leq,
	ast.OpGEq:     Geq,
	ast.OpLess:    Lth,
	ast.OpGreater: Gth,
	ast.OpEqual:   Eq,
	ast.OpNEq:     Neq,
	ast.OpAnd:     And,
	ast.OpOr:      Or,
}

var unaryInstr = map[ast.UnaryOperator]Opcode{
	ast.OpNot: Not,
	ast.OpNeg: Neg,
}

// emitDestReg writes dest's register operand: the caller-supplied
// register if any, otherwise a freshly allocated one. This is always
// the last operand byte written for an instruction that produces a
// value, so the caller's expr compilation can treat its return value
// uniformly.
func (c *Compiler) emitDestReg(dest *uint8) (uint8, error) {
	cb := c.top()
	if dest != nil {
		cb.chunk.EmitByte(*dest)
		return *dest, nil
	}
	reg, err := cb.regs.newReg()
	if err != nil {
		return 0, err
	}
	cb.chunk.EmitByte(reg)
	return reg, nil
}

// compileExpr compiles expr into dest if supplied, otherwise into a
// register of the compiler's choosing, and returns the register holding
// the result. IMPORTANT (spec §4.5): when dest is nil the returned
// register may be a temporary, a local, or a constant-pool operand
// (>= MaxRegisters); callers needing exclusive ownership must supply
// dest or conservatively refrain from freeing the result.
//
// nameHint propagates a Let binding's name into an anonymous Function
// literal for debug naming; it is ignored by every other form.
func (c *Compiler) compileExpr(expr ast.Expr, dest *uint8, nameHint string) (uint8, error) {
	cb := c.top()
	needsCopy := true
	var reg uint8
	var err error

	switch e := expr.(type) {
	case *ast.Literal:
		reg, err = cb.chunk.CompileConstant(literalConstant(e))
		if err != nil {
			return 0, err
		}

	case *ast.Identifier:
		b, ok, gerr := c.getBinding(e.Name)
		if gerr != nil {
			return 0, gerr
		}
		if !ok {
			return 0, lexerr.New(lexerr.Compilation, "undefined binding '%s'", e.Name)
		}
		if b.isLocal {
			reg = b.reg
		} else {
			cb.chunk.EmitInstr(GetUp)
			cb.chunk.EmitByte(b.slot)
			needsCopy = false
			reg, err = c.emitDestReg(dest)
			if err != nil {
				return 0, err
			}
		}

	case *ast.BinOp:
		r1, err1 := c.compileExpr(e.Lhs, nil, "")
		if err1 != nil {
			return 0, err1
		}
		r2, err2 := c.compileExpr(e.Rhs, nil, "")
		if err2 != nil {
			return 0, err2
		}
		cb.regs.freeTempReg(r2)
		cb.regs.freeTempReg(r1)
		instr, ok := binInstr[e.Op]
		if !ok {
			return 0, lexerr.New(lexerr.Compilation, "unimplemented binary operator")
		}
		cb.chunk.EmitInstr(instr)
		cb.chunk.EmitByte(r1)
		cb.chunk.EmitByte(r2)
		needsCopy = false
		reg, err = c.emitDestReg(dest)
		if err != nil {
			return 0, err
		}

	case *ast.UnaryOp:
		r, uerr := c.compileExpr(e.Arg, dest, "")
		if uerr != nil {
			return 0, uerr
		}
		cb.regs.freeTempReg(r)
		instr, ok := unaryInstr[e.Op]
		if !ok {
			return 0, lexerr.New(lexerr.Compilation, "unimplemented unary operator")
		}
		cb.chunk.EmitInstr(instr)
		cb.chunk.EmitByte(r)
		needsCopy = false
		reg, err = c.emitDestReg(dest)
		if err != nil {
			return 0, err
		}

	case *ast.Call:
		fn, ferr := c.compileExpr(e.Fn, nil, "")
		if ferr != nil {
			return 0, ferr
		}
		if len(e.Args) > MaxCallArgs {
			return 0, lexerr.New(lexerr.Compilation, "too many function arguments")
		}
		n := uint16(len(e.Args))
		argStart, rerr := cb.regs.newRegRange(n)
		if rerr != nil {
			return 0, rerr
		}
		for i, arg := range e.Args {
			out := argStart + uint8(i)
			if _, aerr := c.compileExpr(arg, &out, ""); aerr != nil {
				return 0, aerr
			}
		}
		cb.regs.freeTempRange(argStart, n)
		cb.regs.freeTempReg(fn)
		cb.chunk.EmitInstr(Call)
		cb.chunk.EmitByte(fn)
		cb.chunk.EmitByte(argStart)
		// Unlike every other form, Call has no explicit dest operand:
		// the called chunk's contract places its one return value at
		// range-start (spec §4.5), so that is this form's natural
		// register; the generic needsCopy step below emits a Cpy if
		// the caller supplied a different dest. Range-start has already
		// been freed, so without a dest the result is moved into a
		// freshly allocated temporary the caller owns and may free.
		reg = argStart
		if dest == nil {
			out, nerr := cb.regs.newReg()
			if nerr != nil {
				return 0, nerr
			}
			if out != argStart {
				cb.chunk.EmitInstr(Cpy)
				cb.chunk.EmitByte(argStart)
				cb.chunk.EmitByte(out)
			}
			reg = out
		}

	case *ast.Function:
		fname := nameHint
		if fname == "" {
			fname = "<func>"
		}
		chunkIdx, cerr := c.compileFunction(fname, e.Body, e.Params)
		if cerr != nil {
			return 0, cerr
		}
		cb.chunk.EmitInstr(Func)
		cb.chunk.EmitByte(chunkIdx)
		needsCopy = false
		reg, err = c.emitDestReg(dest)
		if err != nil {
			return 0, err
		}

	default:
		return 0, lexerr.New(lexerr.Compilation, "unimplemented expression form")
	}

	if needsCopy && dest != nil {
		cb.chunk.EmitInstr(Cpy)
		cb.chunk.EmitByte(reg)
		cb.chunk.EmitByte(*dest)
		reg = *dest
	}
	return reg, nil
}

func literalConstant(lit *ast.Literal) ChunkConstant {
	switch lit.Kind {
	case ast.LitNil:
		return ChunkConstant{Kind: ConstNil}
	case ast.LitBool:
		return ChunkConstant{Kind: ConstBool, Bool: lit.Bool}
	case ast.LitInt:
		return ChunkConstant{Kind: ConstInt, Int: lit.Int}
	case ast.LitReal:
		return ChunkConstant{Kind: ConstReal, Real: lit.Real}
	default:
		return ChunkConstant{Kind: ConstString, String: lit.Str}
	}
}
