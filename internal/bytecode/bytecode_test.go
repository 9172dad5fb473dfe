package bytecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/bytecode"
	"github.com/lacewing-lang/lacewing/internal/compiler"
)

func sampleProgram(t *testing.T) *compiler.Program {
	t.Helper()
	program := ast.Block{
		&ast.Let{Name: "x", Expr: &ast.BinOp{
			Op:  ast.OpPlus,
			Lhs: &ast.Literal{Kind: ast.LitInt, Int: 1},
			Rhs: &ast.Literal{Kind: ast.LitInt, Int: 2},
		}},
		&ast.Log{Expr: &ast.Identifier{Name: "x"}},
	}
	prog, err := compiler.CompileProgram(true, program)
	require.NoError(t, err)
	return prog
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := sampleProgram(t)
	data, err := bytecode.Encode(prog)
	require.NoError(t, err)

	decoded, err := bytecode.Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Chunks, len(prog.Chunks))
	require.Equal(t, prog.Chunks[0].Code, decoded.Chunks[0].Code)
	require.Equal(t, prog.Chunks[0].Constants, decoded.Chunks[0].Constants)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := bytecode.Decode([]byte("not-a-bytecode-file"))
	require.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	prog := sampleProgram(t)
	path := t.TempDir() + "/program.lcwb"
	require.NoError(t, bytecode.ToFile(path, prog))

	decoded, err := bytecode.FromFile(path)
	require.NoError(t, err)
	require.Len(t, decoded.Chunks, len(prog.Chunks))
}

func TestDisassembleMentionsEveryChunk(t *testing.T) {
	prog := sampleProgram(t)
	out := bytecode.Disassemble(prog)
	require.True(t, strings.Contains(out, "<main>"))
	require.True(t, strings.Contains(out, "Add"))
	require.True(t, strings.Contains(out, "Log"))
}
