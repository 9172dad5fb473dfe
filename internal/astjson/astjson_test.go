package astjson_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/astjson"
	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/machine"
)

func TestDecodeBlockCompilesAndRuns(t *testing.T) {
	src := `[
		{"kind": "let", "name": "x", "expr": {"kind": "bin", "op": "+",
			"lhs": {"kind": "int", "int": 1}, "rhs": {"kind": "int", "int": 2}}},
		{"kind": "log", "expr": {"kind": "id", "name": "x"}}
	]`
	block, err := astjson.DecodeBlock([]byte(src))
	require.NoError(t, err)

	prog, err := compiler.CompileProgram(false, block)
	require.NoError(t, err)

	m := machine.New(prog)
	_, err = m.Interpret()
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, m.Logs)
}

func TestDecodeBlockRejectsUnknownKind(t *testing.T) {
	_, err := astjson.DecodeBlock([]byte(`[{"kind": "nonsense"}]`))
	require.Error(t, err)
}
