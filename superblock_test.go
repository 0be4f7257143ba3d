package sectorfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuperblockEncodeDecodeRoundTrip(t *testing.T) {
	sb := superblock{NumBlocks: 65536, NumInodeBlocks: 32, BlockSize: BlockSize}

	decoded, err := decodeSuperblock(sb.encode())
	require.NoError(t, err)
	require.Equal(t, sb, decoded)
}

func TestDecodeSuperblockRejectsBadMagic(t *testing.T) {
	buf := (superblock{NumBlocks: 10, NumInodeBlocks: 1, BlockSize: BlockSize}).encode()
	buf[0] ^= 0xFF

	_, err := decodeSuperblock(buf)
	require.ErrorIs(t, err, ErrCorruptDisk)
}

func TestDecodeSuperblockRejectsWrongLength(t *testing.T) {
	_, err := decodeSuperblock(make([]byte, BlockSize-1))
	require.ErrorIs(t, err, ErrCorruptDisk)
}
