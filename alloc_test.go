package sectorfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAllocatorReservesSuperblockAndInodeBlocks(t *testing.T) {
	a := newAllocator(100, 3)

	for b := uint32(0); b <= 3; b++ {
		require.True(t, a.test(b), "block %d should be reserved", b)
	}
	require.False(t, a.test(4))
	require.EqualValues(t, 4, a.dataStart)
}

func TestFindFreeReturnsFirstAvailable(t *testing.T) {
	a := newAllocator(10, 1)

	b1, err := a.findFree()
	require.NoError(t, err)
	require.EqualValues(t, 2, b1)

	b2, err := a.findFree()
	require.NoError(t, err)
	require.EqualValues(t, 3, b2)

	a.free(b1)

	b3, err := a.findFree()
	require.NoError(t, err)
	require.EqualValues(t, 2, b3, "freed block should be reused before advancing")
}

func TestFindFreeReturnsOutOfSpace(t *testing.T) {
	a := newAllocator(3, 1) // blocks 0,1 reserved, block 2 available

	_, err := a.findFree()
	require.NoError(t, err)

	_, err = a.findFree()
	require.ErrorIs(t, err, ErrOutOfSpace)
}

func TestFreeIgnoresReservedBlocks(t *testing.T) {
	a := newAllocator(10, 1)
	a.free(0) // superblock, must be a no-op
	require.True(t, a.test(0))
}

func TestMarkReachableSkipsBlockZero(t *testing.T) {
	a := &allocator{bitmap: make([]byte, 2), numBlocks: 10, dataStart: 1}
	a.markReachable(0)
	require.False(t, a.test(0), "block 0 (the superblock) is never touched by markReachable")
	a.markReachable(5)
	require.True(t, a.test(5))
}
