package sectorfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kesheh/sectorfs/blockdev"
)

func TestInodeEncodeDecodeRoundTrip(t *testing.T) {
	in := inode{
		Valid:          true,
		Size:           4096,
		Direct:         [DirectPointers]uint32{10, 11, 12, 13},
		Indirect:       20,
		DoubleIndirect: 30,
	}

	buf := make([]byte, InodeSize)
	in.encode(buf)
	require.Equal(t, in, decodeInode(buf))
}

func TestZeroInodeIsInvalid(t *testing.T) {
	buf := make([]byte, InodeSize)
	require.False(t, decodeInode(buf).Valid)
}

func TestInodeLocation(t *testing.T) {
	block, offset := inodeLocation(0)
	require.EqualValues(t, 1, block)
	require.Equal(t, 0, offset)

	block, offset = inodeLocation(InodesPerBlock)
	require.EqualValues(t, 2, block)
	require.Equal(t, 0, offset)

	block, offset = inodeLocation(InodesPerBlock + 1)
	require.EqualValues(t, 2, block)
	require.Equal(t, InodeSize, offset)
}

func TestWriteInodeDoesNotDisturbSiblings(t *testing.T) {
	dev := blockdev.NewMemDevice(4)

	first := inode{Valid: true, Size: 111}
	second := inode{Valid: true, Size: 222, Direct: [DirectPointers]uint32{1, 2, 3, 4}}

	require.NoError(t, writeInode(dev, 0, first))
	require.NoError(t, writeInode(dev, 1, second))

	got0, err := readInode(dev, 0)
	require.NoError(t, err)
	require.Equal(t, first, got0)

	got1, err := readInode(dev, 1)
	require.NoError(t, err)
	require.Equal(t, second, got1)
}
