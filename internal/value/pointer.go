package value

import (
	"unsafe"

	"github.com/lacewing-lang/lacewing/internal/assert"
	"github.com/lacewing-lang/lacewing/internal/gc"
)

// packPointer and unpackPointer convert between a *gc.Wrapper and the
// 48-bit payload a Root/Ref Value carries in its low bits. 48 bits is
// enough to address all current 64-bit architectures of interest, per
// spec; debugAssert catches the (currently theoretical) case where a
// pointer doesn't fit.
func packPointer(p *gc.Wrapper) uint64 {
	addr := uint64(uintptr(unsafe.Pointer(p)))
	assert.Debug(addr&dataMask == addr, "value: object pointer has too many bits to fit in Value")
	return addr
}

func unpackPointer(bits uint64) *gc.Wrapper {
	return (*gc.Wrapper)(unsafe.Pointer(uintptr(bits)))
}
