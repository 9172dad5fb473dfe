package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/gc"
)

func TestIntRoundTrip(t *testing.T) {
	for _, i := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
		got, ok := TryAsInt(FromInt(i))
		require.True(t, ok)
		require.Equal(t, i, got)
	}
}

func TestRealRoundTrip(t *testing.T) {
	for _, d := range []float64{0, 3.1415926535897934, math.Inf(1), math.Inf(-1), -0.0} {
		got, ok := TryAsReal(FromReal(d))
		require.True(t, ok)
		require.Equal(t, math.Float64bits(d), math.Float64bits(got))
	}
}

func TestQuietNaNRoundTrips(t *testing.T) {
	nan := math.Float64frombits(0x7ff8000000000001)
	require.Less(t, math.Float64bits(nan), uint64(tagMin))
	got, ok := TryAsReal(FromReal(nan))
	require.True(t, ok)
	require.True(t, math.IsNaN(got))
}

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		got, ok := TryAsBool(FromBool(b))
		require.True(t, ok)
		require.Equal(t, b, got)
	}
}

func TestNilIsItsOwnVariant(t *testing.T) {
	require.Equal(t, TypeNil, Nil.VariantType())
	_, ok := TryAsInt(Nil)
	require.False(t, ok)
}

type stubObject struct{ s string }

func (s *stubObject) String() string { return s.s }

func TestRootingAndCopyDrop(t *testing.T) {
	heap := gc.NewHeap()
	w := heap.Alloc(&stubObject{"hi"})

	root := FromPointer(w, true)
	require.Equal(t, TypeRoot, root.VariantType())
	require.True(t, w.IsRoot())

	cp := Copy(root)
	require.Equal(t, TypeRoot, cp.VariantType())
	require.True(t, w.IsRoot())

	Drop(cp)
	require.True(t, w.IsRoot(), "original root still live")
	Drop(root)
	require.False(t, w.IsRoot())
}

func TestUnrootDemotesInPlace(t *testing.T) {
	heap := gc.NewHeap()
	w := heap.Alloc(&stubObject{"x"})
	v := FromPointer(w, true)
	require.True(t, w.IsRoot())

	Unroot(&v)
	require.Equal(t, TypeRef, v.VariantType())
	require.False(t, w.IsRoot())

	// Idempotent on a non-Root value.
	Unroot(&v)
	require.Equal(t, TypeRef, v.VariantType())
}

func TestReprMatchesCanonicalForms(t *testing.T) {
	require.Equal(t, "nil", Repr(Nil))
	require.Equal(t, "true", Repr(True))
	require.Equal(t, "false", Repr(False))
	require.Equal(t, "42", Repr(FromInt(42)))
	require.Equal(t, "3.141592653589793", Repr(FromReal(3.141592653589793)))
}
