package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/machine"
)

// These mirror spec.md §8's end-to-end scenarios. No parser exists in
// this repo (an external collaborator, per spec §1), so each program is
// hand-assembled as an ast.Block rather than parsed from source text.

func intLit(i int32) *ast.Literal   { return &ast.Literal{Kind: ast.LitInt, Int: i} }
func realLit(r float64) *ast.Literal { return &ast.Literal{Kind: ast.LitReal, Real: r} }
func strLit(s string) *ast.Literal  { return &ast.Literal{Kind: ast.LitString, Str: s} }
func id(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func bin(op ast.BinOperator, l, r ast.Expr) *ast.BinOp {
	return &ast.BinOp{Op: op, Lhs: l, Rhs: r}
}

func run(t *testing.T, program ast.Block) *machine.Machine {
	t.Helper()
	prog, err := compiler.CompileProgram(false, program)
	require.NoError(t, err)
	m := machine.New(prog)
	_, err = m.Interpret()
	require.NoError(t, err)
	return m
}

func TestScenario1_ArithmeticAndLog(t *testing.T) {
	// let x = 1 + 2 log x
	program := ast.Block{
		&ast.Let{Name: "x", Expr: bin(ast.OpPlus, intLit(1), intLit(2))},
		&ast.Log{Expr: id("x")},
	}
	m := run(t, program)
	require.Equal(t, []string{"3"}, m.Logs)
}

func TestScenario2_IfElse(t *testing.T) {
	// let x = 2 if x > 1 { log "big" } else { log "small" }
	program := ast.Block{
		&ast.Let{Name: "x", Expr: intLit(2)},
		&ast.Cond{Branches: []ast.CondBranch{
			{Cond: bin(ast.OpGreater, id("x"), intLit(1)), Body: ast.Block{&ast.Log{Expr: strLit("big")}}},
			{Cond: nil, Body: ast.Block{&ast.Log{Expr: strLit("small")}}},
		}},
	}
	m := run(t, program)
	require.Equal(t, []string{"big"}, m.Logs)
}

func TestScenario3_WhileLoop(t *testing.T) {
	// let i = 0 while i < 3 { log i set i = i + 1 }
	program := ast.Block{
		&ast.Let{Name: "i", Expr: intLit(0)},
		&ast.While{
			Cond: bin(ast.OpLess, id("i"), intLit(3)),
			Body: ast.Block{
				&ast.Log{Expr: id("i")},
				&ast.Set{Name: "i", Expr: bin(ast.OpPlus, id("i"), intLit(1))},
			},
		},
	}
	m := run(t, program)
	require.Equal(t, []string{"0", "1", "2"}, m.Logs)
}

func TestScenario4_UpvalueThroughIntermediateChunk(t *testing.T) {
	// let mk = fn(x) { return fn() { return x } }
	// let f = mk(42)
	// log f()
	inner := &ast.Function{Params: nil, Body: ast.Block{
		&ast.Return{Expr: id("x")},
	}}
	outer := &ast.Function{Params: []string{"x"}, Body: ast.Block{
		&ast.Return{Expr: inner},
	}}
	program := ast.Block{
		&ast.Let{Name: "mk", Expr: outer},
		&ast.Let{Name: "f", Expr: &ast.Call{Fn: id("mk"), Args: []ast.Expr{intLit(42)}}},
		&ast.Log{Expr: &ast.Call{Fn: id("f")}},
	}
	m := run(t, program)
	require.Equal(t, []string{"42"}, m.Logs)
}

func TestScenario5_InBlockRebinding(t *testing.T) {
	// let a = 1 let a = a + 10 log a
	program := ast.Block{
		&ast.Let{Name: "a", Expr: intLit(1)},
		&ast.Let{Name: "a", Expr: bin(ast.OpPlus, id("a"), intLit(10))},
		&ast.Log{Expr: id("a")},
	}
	m := run(t, program)
	require.Equal(t, []string{"11"}, m.Logs)
}

func TestScenario6_RealReprRoundTrip(t *testing.T) {
	program := ast.Block{
		&ast.Log{Expr: realLit(3.141592653589793)},
	}
	m := run(t, program)
	require.Equal(t, []string{"3.141592653589793"}, m.Logs)
}

func TestScenario6_StringRoundTrip(t *testing.T) {
	program := ast.Block{
		&ast.Let{Name: "s", Expr: strLit("π = ")},
		&ast.Log{Expr: id("s")},
	}
	m := run(t, program)
	require.Equal(t, []string{"π = "}, m.Logs)
}
