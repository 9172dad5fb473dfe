package compiler

import (
	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// compileStat dispatches one statement form to its emission rule
// (spec §4.6). Any statement kind not listed here is a compile error
// rather than an inferred behavior (spec §9 Open Question).
func (c *Compiler) compileStat(stat ast.Stat) error {
	cb := c.top()

	switch s := stat.(type) {
	case *ast.ExprStat:
		reg, err := c.compileExpr(s.Expr, nil, "")
		if err != nil {
			return err
		}
		cb.regs.freeTempReg(reg)
		return nil

	case *ast.Let:
		if existing, ok := cb.findBlockLocal(s.Name); ok {
			// Rebinding within a block reuses the existing local's
			// register in place, so a self-referencing RHS (e.g.
			// "let a = a + 10") still reads the old value before it is
			// overwritten. Freeing and reallocating here would hand
			// out the same register as a temporary mid-expression,
			// corrupting the allocator's local/temporary accounting.
			if _, err := c.compileExpr(s.Expr, &existing, s.Name); err != nil {
				return err
			}
			return nil
		}
		reg, err := cb.regs.newReg()
		if err != nil {
			return err
		}
		if _, err := c.compileExpr(s.Expr, &reg, s.Name); err != nil {
			return err
		}
		cb.makeLocal(s.Name, reg)
		return nil

	case *ast.Set:
		b, ok, err := c.getBinding(s.Name)
		if err != nil {
			return err
		}
		if !ok {
			return lexerr.New(lexerr.Compilation, "undefined binding '%s'", s.Name)
		}
		if b.isLocal {
			if _, err := c.compileExpr(s.Expr, &b.reg, ""); err != nil {
				return err
			}
			return nil
		}
		reg, err := c.compileExpr(s.Expr, nil, "")
		if err != nil {
			return err
		}
		cb.regs.freeTempReg(reg)
		cb.chunk.EmitInstr(SetUp)
		cb.chunk.EmitByte(b.slot)
		cb.chunk.EmitByte(reg)
		return nil

	case *ast.Cond:
		return c.compileCond(s)

	case *ast.While:
		return c.compileWhile(s)

	case *ast.Log:
		reg, err := c.compileExpr(s.Expr, nil, "")
		if err != nil {
			return err
		}
		cb.regs.freeTempReg(reg)
		cb.chunk.EmitInstr(Log)
		cb.chunk.EmitByte(reg)
		return nil

	case *ast.Return:
		reg, err := c.compileExpr(s.Expr, nil, "")
		if err != nil {
			return err
		}
		cb.regs.freeTempReg(reg)
		cb.chunk.EmitInstr(Ret)
		cb.chunk.EmitByte(reg)
		return nil

	default:
		return lexerr.New(lexerr.Compilation, "unimplemented statement form")
	}
}

func (c *Compiler) compileCond(s *ast.Cond) error {
	cb := c.top()
	var endJumps []int
	last := len(s.Branches) - 1

	for i, branch := range s.Branches {
		if branch.Cond == nil {
			// Else arm.
			if err := c.compileBlock(branch.Body); err != nil {
				return err
			}
			continue
		}

		condReg, err := c.compileExpr(branch.Cond, nil, "")
		if err != nil {
			return err
		}
		cb.regs.freeTempReg(condReg)
		cb.chunk.EmitInstr(Jif)
		placeholder := emitJumpPlaceholder(cb.chunk)
		cb.chunk.EmitByte(condReg)

		if err := c.compileBlock(branch.Body); err != nil {
			return err
		}

		if i != last {
			cb.chunk.EmitInstr(Jmp)
			endJumps = append(endJumps, emitJumpPlaceholder(cb.chunk))
		}

		if err := patchJumpHere(cb.chunk, placeholder); err != nil {
			return err
		}
	}

	for _, from := range endJumps {
		if err := patchJumpHere(cb.chunk, from); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileWhile(s *ast.While) error {
	cb := c.top()
	begin := cb.chunk.CodeLen()

	condReg, err := c.compileExpr(s.Cond, nil, "")
	if err != nil {
		return err
	}
	cb.regs.freeTempReg(condReg)
	cb.chunk.EmitInstr(Jif)
	placeholder := emitJumpPlaceholder(cb.chunk)
	cb.chunk.EmitByte(condReg)

	if err := c.compileBlock(s.Body); err != nil {
		return err
	}

	cb.chunk.EmitInstr(Jmp)
	if err := emitJumpTo(cb.chunk, begin); err != nil {
		return err
	}
	return patchJumpHere(cb.chunk, placeholder)
}
