package sectorfs

import (
	"encoding/binary"

	"github.com/kesheh/sectorfs/blockdev"
)

// BlockSize is the fixed size of every block/sector in a sectorfs volume.
const BlockSize = blockdev.SectorSize

// MagicSize is the length, in bytes, of the superblock's magic tag.
const MagicSize = 16

// Magic is the exact literal a valid superblock's magic field must equal
// (spec §3). Copied byte for byte from the original C implementation's
// MAGIC_NUMBER.
var Magic = [MagicSize]byte{
	0xF0, 0x55, 0x4C, 0x49, 0x45, 0x47, 0x45, 0x49,
	0x4E, 0x46, 0x4F, 0x30, 0x39, 0x34, 0x30, 0x0F,
}

// superblock is the decoded form of block 0. Field layout, order, and
// widths follow spec §3's table; encode/decode style follows
// _examples/weberc2-mono/ext2/pkg/ext2/superblock.go's manual byte-offset
// codec.
type superblock struct {
	NumBlocks      uint32
	NumInodeBlocks uint32
	BlockSize      uint32
}

// decodeSuperblock parses a raw block-0 buffer, verifying the magic tag.
func decodeSuperblock(b []byte) (superblock, error) {
	if len(b) != BlockSize {
		return superblock{}, opErr("decodeSuperblock", ErrCorruptDisk, nil)
	}

	for i := 0; i < MagicSize; i++ {
		if b[i] != Magic[i] {
			return superblock{}, opErr("decodeSuperblock", ErrCorruptDisk, nil)
		}
	}

	return superblock{
		NumBlocks:      binary.LittleEndian.Uint32(b[16:20]),
		NumInodeBlocks: binary.LittleEndian.Uint32(b[20:24]),
		BlockSize:      binary.LittleEndian.Uint32(b[24:28]),
	}, nil
}

// encode serializes sb into a fresh, zeroed BlockSize buffer.
func (sb superblock) encode() []byte {
	buf := make([]byte, BlockSize)
	copy(buf[0:MagicSize], Magic[:])
	binary.LittleEndian.PutUint32(buf[16:20], sb.NumBlocks)
	binary.LittleEndian.PutUint32(buf[20:24], sb.NumInodeBlocks)
	binary.LittleEndian.PutUint32(buf[24:28], sb.BlockSize)
	return buf
}
