package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/ast"
	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBlock() ast.Block {
	return ast.Block{
		&ast.Log{Expr: &ast.Literal{Kind: ast.LitInt, Int: 42}},
	}
}

func TestLookupMissesOnEmptyStore(t *testing.T) {
	db := openTestStore(t)
	_, ok, err := db.Lookup("let x = 1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutThenLookupRoundTrips(t *testing.T) {
	db := openTestStore(t)
	program, err := compiler.CompileProgram(true, sampleBlock())
	require.NoError(t, err)

	require.NoError(t, db.Put("source-a", program))

	cached, ok, err := db.Lookup("source-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, len(program.Chunks), len(cached.Chunks))
}

func TestCompileCachedOnlyCompilesOnMiss(t *testing.T) {
	db := openTestStore(t)
	calls := 0
	compile := func(source string) (*compiler.Program, error) {
		calls++
		return compiler.CompileProgram(true, sampleBlock())
	}

	_, err := db.CompileCached("source-b", compile)
	require.NoError(t, err)
	_, err = db.CompileCached("source-b", compile)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
}

func TestHashIsStableAndContentAddressed(t *testing.T) {
	require.Equal(t, store.Hash("abc"), store.Hash("abc"))
	require.NotEqual(t, store.Hash("abc"), store.Hash("abd"))
}
