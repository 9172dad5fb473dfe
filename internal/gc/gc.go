// Package gc implements the tracing garbage collector that owns every
// heap-allocated object a Value can point to. It is consumed by
// internal/value, which packs pointers to Wrapper into its NaN-boxed
// representation, and is exercised at runtime by the VM (out of scope
// here) rather than by the compiler.
//
// This is a deliberately small mark-and-sweep collector: reserving the
// Root/Ref distinction in the Value tag (see internal/value) means the
// root set is "every Wrapper with a positive root count", not "every
// live stack slot across every call frame", so the collector itself
// never needs to walk VM frames.
package gc

import (
	"reflect"
	"sync/atomic"
)

// Traceable is implemented by any Go value stored inside a Wrapper that
// itself holds further Values reachable by the collector (e.g. a list
// or record object). Leaf objects (strings, numbers already unpacked by
// Value) need not implement it.
type Traceable interface {
	// Trace calls mark on every heap Wrapper this object directly
	// references. mark acts only on arguments with a Mark() method (such
	// as *Wrapper); anything else, including a value.Value, is ignored.
	Trace(mark func(any))
}

// Wrapper is the heap cell referenced by Value's Root and Ref variants.
// It corresponds to the Rust original's GCWrapper: a root counter plus
// a mark bit plus the payload object.
type Wrapper struct {
	heap *Heap

	// roots is the number of live Value Roots pointing at this wrapper.
	// copy() on a Root bumps this; drop() on a Root decrements it. It is
	// accessed with atomic ops because a multi-threaded VM (out of scope
	// here, see spec §5) would otherwise need a lock per wrapper.
	roots int32

	marked bool
	typ    reflect.Type
	Object any
}

// SignalRoot increments the wrapper's root count. Called whenever a
// Value is constructed as a Root, including by Value.Copy.
func (w *Wrapper) SignalRoot() {
	atomic.AddInt32(&w.roots, 1)
}

// SignalUnroot decrements the wrapper's root count. Called whenever a
// Root Value is dropped or demoted to a Ref.
func (w *Wrapper) SignalUnroot() {
	if atomic.AddInt32(&w.roots, -1) < 0 {
		panic("gc: wrapper unrooted more times than rooted")
	}
}

// IsRoot reports whether this wrapper currently has at least one Root
// pointing to it; this is exactly the collector's root-set membership
// test.
func (w *Wrapper) IsRoot() bool {
	return atomic.LoadInt32(&w.roots) > 0
}

// Mark marks the wrapper live and, if its object is Traceable, recurses
// into whatever Values it holds.
func (w *Wrapper) Mark() {
	if w.marked {
		return
	}
	w.marked = true
	if t, ok := w.Object.(Traceable); ok {
		t.Trace(func(v any) {
			if marker, ok := v.(interface{ Mark() }); ok {
				marker.Mark()
			}
		})
	}
}

// IsType reports whether the wrapped object is of dynamic type T. Go
// has no const-generic vtable to reuse from the teacher's stack, so
// this is the one place in this repo that reaches for reflect instead
// of an ecosystem library (see DESIGN.md).
func IsType[T any](w *Wrapper) bool {
	var zero T
	return w.typ == reflect.TypeOf(zero)
}

// Debug returns a human-readable form of the wrapped object, used by
// Value.Repr for heap variants.
func (w *Wrapper) Debug() string {
	if s, ok := w.Object.(interface{ String() string }); ok {
		return s.String()
	}
	return "<object>"
}

// Heap owns every Wrapper allocated during a VM run and drives
// mark-and-sweep collection.
type Heap struct {
	wrappers []*Wrapper
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc wraps obj in a new Wrapper owned by this heap.
func (h *Heap) Alloc(obj any) *Wrapper {
	w := &Wrapper{heap: h, typ: reflect.TypeOf(obj), Object: obj}
	h.wrappers = append(h.wrappers, w)
	return w
}

// Collect performs one mark-and-sweep pass: every wrapper with a
// positive root count is marked (and, transitively, whatever it
// references), then every unmarked wrapper is dropped from the heap.
func (h *Heap) Collect() {
	for _, w := range h.wrappers {
		w.marked = false
	}
	for _, w := range h.wrappers {
		if w.IsRoot() {
			w.Mark()
		}
	}
	live := h.wrappers[:0]
	for _, w := range h.wrappers {
		if w.marked {
			live = append(live, w)
		}
	}
	h.wrappers = live
}

// Len reports the number of wrappers currently owned by the heap.
// Exposed for tests that assert on collection behavior.
func (h *Heap) Len() int {
	return len(h.wrappers)
}
