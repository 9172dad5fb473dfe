package gc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/gc"
)

type leaf struct{ n int }

type branch struct {
	kids []*gc.Wrapper
}

func (b *branch) Trace(mark func(any)) {
	for _, k := range b.kids {
		mark(k)
	}
}

func TestCollectSweepsUnrootedWrappers(t *testing.T) {
	h := gc.NewHeap()
	rooted := h.Alloc(&leaf{1})
	unrooted := h.Alloc(&leaf{2})
	_ = unrooted

	rooted.SignalRoot()
	h.Collect()

	require.Equal(t, 1, h.Len())
}

func TestCollectRetainsTransitivelyReachableWrappers(t *testing.T) {
	h := gc.NewHeap()
	child := h.Alloc(&leaf{1})
	parent := h.Alloc(&branch{kids: []*gc.Wrapper{child}})

	parent.SignalRoot()
	h.Collect()

	require.Equal(t, 2, h.Len())
}

func TestSignalUnrootBelowZeroPanics(t *testing.T) {
	h := gc.NewHeap()
	w := h.Alloc(&leaf{1})
	require.Panics(t, func() { w.SignalUnroot() })
}

func TestIsTypeDistinguishesDynamicType(t *testing.T) {
	h := gc.NewHeap()
	w := h.Alloc(&leaf{1})
	require.True(t, gc.IsType[*leaf](w))
	require.False(t, gc.IsType[*branch](w))
}
