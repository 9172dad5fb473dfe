package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAllocatorLocalsAndTemporaries(t *testing.T) {
	var r registerAllocator

	l0, err := r.newReg()
	require.NoError(t, err)
	require.Equal(t, uint8(0), l0)
	r.makeLocal(l0)

	l1, err := r.newReg()
	require.NoError(t, err)
	require.Equal(t, uint8(1), l1)
	r.makeLocal(l1)

	t0, err := r.newReg()
	require.NoError(t, err)
	require.Equal(t, uint8(2), t0)

	require.Equal(t, uint16(2), r.localCnt)
	require.Equal(t, uint16(3), r.used)
	require.Equal(t, uint16(3), r.required)

	r.freeReg(t0)
	require.Equal(t, uint16(2), r.used)
}

func TestRegisterAllocatorRequiredTracksHighWaterMark(t *testing.T) {
	var r registerAllocator

	a, err := r.newReg()
	require.NoError(t, err)
	b, err := r.newReg()
	require.NoError(t, err)
	require.Equal(t, uint16(2), r.required)

	r.freeReg(b)
	r.freeReg(a)
	require.Equal(t, uint16(0), r.used)
	require.Equal(t, uint16(2), r.required, "required must retain the high-water mark after temporaries are freed")
}

func TestRegisterAllocatorLIFOViolationTraps(t *testing.T) {
	var r registerAllocator
	_, err := r.newReg()
	require.NoError(t, err)
	second, err := r.newReg()
	require.NoError(t, err)

	require.Panics(t, func() { r.freeReg(second - 1) })
}

func TestNewRegRangeIsContiguous(t *testing.T) {
	var r registerAllocator
	start, err := r.newRegRange(4)
	require.NoError(t, err)
	require.Equal(t, uint8(0), start)
	require.Equal(t, uint16(4), r.used)

	r.freeRegRange(start, 4)
	require.Equal(t, uint16(0), r.used)
}

func TestNewRegRejectsOverflowPastMaxRegisters(t *testing.T) {
	var r registerAllocator
	r.used = MaxRegisters
	r.required = MaxRegisters
	_, err := r.newReg()
	require.Error(t, err)
}

func TestFreeTempRegIgnoresLocals(t *testing.T) {
	var r registerAllocator
	local, err := r.newReg()
	require.NoError(t, err)
	r.makeLocal(local)

	r.freeTempReg(local)
	require.Equal(t, uint16(1), r.used, "freeTempReg must not release a local register")
}
