// Package value implements lacewing's runtime Value: a NaN-boxed 64-bit
// tagged union over six variants (Real, Nil, Bool, Int, Root, Ref), the
// representation the compiler's constant pool and the VM's registers
// share uniformly.
//
// Adapted from funxy's internal/vm.Value (a tagged {Type, Data, Obj}
// struct) toward the NaN-boxing scheme of the original Rust
// implementation this spec distills (original_source/src/vm/value.rs):
// instead of a side-band Type byte, the tag lives in the high bits of
// the same 64-bit word a float occupies, so a Value is one machine word
// with no padding.
package value

import (
	"math"
	"strconv"

	"github.com/lacewing-lang/lacewing/internal/assert"
	"github.com/lacewing-lang/lacewing/internal/gc"
)

// Type identifies a Value's variant.
type Type uint64

const (
	TypeReal Type = iota
	TypeNil
	TypeBool
	TypeInt
	TypeRoot
	TypeRef
)

func (t Type) String() string {
	switch t {
	case TypeReal:
		return "real"
	case TypeNil:
		return "nil"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeRoot:
		return "root"
	case TypeRef:
		return "ref"
	default:
		return "invalid"
	}
}

// Tag layout: the top 16 bits select a variant once the raw bits are at
// or above tagMin; a bit pattern below tagMin is always a Real (a
// finite double or a quiet NaN that doesn't collide with the tag
// space). This mirrors the Rust original's TAG_SIZE/TAG_POS/TAG_MIN.
const (
	tagSize = 16
	tagPos  = 64 - tagSize
	tagMin  uint64 = 0xfff8 << tagPos
	dataMask uint64 = math.MaxUint64 >> tagSize
)

func baseValue(t Type) uint64 {
	return tagMin + (uint64(t) << tagPos)
}

// Value is an 8-byte tagged union. The zero Value is not meaningful;
// use Nil for the nil value.
type Value struct {
	bits uint64
}

var (
	// Nil is the canonical nil value.
	Nil = Value{baseValue(TypeNil)}
	// True is the canonical boolean true.
	True = Value{baseValue(TypeBool) | 1}
	// False is the canonical boolean false.
	False = Value{baseValue(TypeBool) | 0}
)

// VariantType returns v's variant.
func (v Value) VariantType() Type {
	if v.bits < tagMin {
		return TypeReal
	}
	return Type((v.bits - tagMin) >> tagPos)
}

// FromInt packs a signed 32-bit integer into a Value.
func FromInt(i int32) Value {
	return Value{baseValue(TypeInt) | uint64(uint32(i))}
}

// FromReal packs a float64 into a Value. A "fat" NaN — one whose bit
// pattern lands at or above tagMin and would therefore collide with the
// tag space — is forbidden as input; assert.Debug traps on it in debug
// builds (internal/assert, the same helper internal/compiler uses for
// its register-allocator invariants).
func FromReal(d float64) Value {
	bits := math.Float64bits(d)
	assert.Debug(bits < tagMin, "value: fat NaN does not fit in Value")
	return Value{bits}
}

// FromBool packs a bool into a Value.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromPointer builds a Root or Ref Value over a heap Wrapper. If root
// is true the wrapper is signaled as rooted before the Value is
// returned, so construction and rooting are atomic from the caller's
// perspective.
func FromPointer(p *gc.Wrapper, root bool) Value {
	t := TypeRef
	if root {
		t = TypeRoot
	}
	v := Value{baseValue(t) | packPointer(p)}
	if root {
		p.SignalRoot()
	}
	return v
}

// TryAsInt returns the int32 payload and true if v is an Int.
func TryAsInt(v Value) (int32, bool) {
	if v.VariantType() != TypeInt {
		return 0, false
	}
	return int32(uint32(v.bits & dataMask)), true
}

// TryAsReal returns the float64 payload and true if v is a Real.
func TryAsReal(v Value) (float64, bool) {
	if v.VariantType() != TypeReal {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// TryAsBool returns the bool payload and true if v is a Bool.
func TryAsBool(v Value) (bool, bool) {
	if v.VariantType() != TypeBool {
		return false, false
	}
	return v.bits&1 == 1, true
}

// TryAsPointer returns the heap Wrapper and true if v is a Root or Ref.
func TryAsPointer(v Value) (*gc.Wrapper, bool) {
	switch v.VariantType() {
	case TypeRoot, TypeRef:
		return unpackPointer(v.bits & dataMask), true
	default:
		return nil, false
	}
}

// Copy produces a value safe to store in a second location: a bitwise
// copy for primitives, but a freshly-rooted Root (never a bare Ref) for
// heap values, so every copy participates in rooting.
func Copy(v Value) Value {
	if p, ok := TryAsPointer(v); ok {
		return FromPointer(p, true)
	}
	return v
}

// Drop releases v's claim on the heap, if any: a Root un-signals its
// wrapper. Refs and primitives are no-ops.
func Drop(v Value) {
	if v.VariantType() == TypeRoot {
		p, _ := TryAsPointer(v)
		p.SignalUnroot()
	}
}

// Unroot demotes a Root Value to a Ref in place, un-signaling the
// wrapper. Idempotent on non-Root values. Bare Refs are only valid in
// VM-owned registers and structurally-owned positions (slots inside
// other heap objects) where the collector discovers them by tracing,
// never as a value a Go caller independently owns.
func Unroot(v *Value) {
	if v.VariantType() != TypeRoot {
		return
	}
	ptr := v.bits & dataMask
	p := unpackPointer(ptr)
	v.bits = baseValue(TypeRef) | ptr
	p.SignalUnroot()
}

// Mark marks v's referent live, for use by the tracing collector. A
// no-op for primitives.
func Mark(v Value) {
	if p, ok := TryAsPointer(v); ok {
		p.Mark()
	}
}

// Repr renders v in human form: shortest round-trip decimal for Real,
// canonical text for Int/Bool/Nil, and the wrapper's debug text for
// heap variants.
func Repr(v Value) string {
	switch v.VariantType() {
	case TypeBool:
		b, _ := TryAsBool(v)
		return strconv.FormatBool(b)
	case TypeInt:
		i, _ := TryAsInt(v)
		return strconv.FormatInt(int64(i), 10)
	case TypeReal:
		r, _ := TryAsReal(v)
		if math.IsInf(r, 1) {
			return "inf"
		}
		if math.IsInf(r, -1) {
			return "-inf"
		}
		return strconv.FormatFloat(r, 'g', -1, 64)
	case TypeNil:
		return "nil"
	default:
		p, _ := TryAsPointer(v)
		return p.Debug()
	}
}

// Equal implements the NaN bit-identity comparison policy used nowhere
// in value semantics except the compiler's constant pool dedup (see
// internal/compiler.ChunkConstant): two real constants compare equal
// here only if their raw bits match, so distinct NaN payloads are kept
// distinct while a repeated literal NaN shares a slot.
func Equal(a, b Value) bool {
	return a.bits == b.bits
}
