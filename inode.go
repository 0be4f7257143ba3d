package sectorfs

import (
	"encoding/binary"

	"github.com/kesheh/sectorfs/blockdev"
)

const (
	// InodeSize is the on-disk size, in bytes, of a single inode record.
	InodeSize = 32

	// InodesPerBlock is the number of inode records packed into one block.
	InodesPerBlock = BlockSize / InodeSize

	// DirectPointers is the number of direct block pointers in an inode.
	DirectPointers = 4

	// PointersPerBlock is the number of 32-bit block numbers packed into
	// one indirect or double-indirect block.
	PointersPerBlock = BlockSize / 4
)

// inode is the in-memory form of the 32-byte on-disk record described in
// spec §3. Field layout mirrors _examples/weberc2-mono/ext2/pkg/ext2's
// Inode, generalized from ext2's 15-pointer/mode/size128 record down to
// this format's valid+size+4 direct+indirect+double-indirect shape.
type inode struct {
	Valid          bool
	Size           uint32
	Direct         [DirectPointers]uint32
	Indirect       uint32
	DoubleIndirect uint32
}

// decodeInode parses a 32-byte window into an inode. b must be exactly
// InodeSize bytes.
func decodeInode(b []byte) inode {
	var in inode
	in.Valid = b[0] != 0
	in.Size = binary.LittleEndian.Uint32(b[4:8])
	for i := 0; i < DirectPointers; i++ {
		off := 8 + 4*i
		in.Direct[i] = binary.LittleEndian.Uint32(b[off : off+4])
	}
	in.Indirect = binary.LittleEndian.Uint32(b[24:28])
	in.DoubleIndirect = binary.LittleEndian.Uint32(b[28:32])
	return in
}

// encode serializes in into a 32-byte window. b must be exactly InodeSize
// bytes; only that window is touched, so callers doing a read-modify-write
// of the containing block never disturb neighboring inodes (spec §4.2).
func (in inode) encode(b []byte) {
	for i := range b {
		b[i] = 0
	}
	if in.Valid {
		b[0] = 1
	}
	binary.LittleEndian.PutUint32(b[4:8], in.Size)
	for i := 0; i < DirectPointers; i++ {
		off := 8 + 4*i
		binary.LittleEndian.PutUint32(b[off:off+4], in.Direct[i])
	}
	binary.LittleEndian.PutUint32(b[24:28], in.Indirect)
	binary.LittleEndian.PutUint32(b[28:32], in.DoubleIndirect)
}

// inodeLocation computes the block number and in-block byte offset for
// inode index i, per spec §3: block = 1 + i/InodesPerBlock, offset =
// (i mod InodesPerBlock) * InodeSize.
func inodeLocation(i uint32) (block uint32, offset int) {
	return 1 + i/InodesPerBlock, int(i%InodesPerBlock) * InodeSize
}

// readInode performs the read half of the inode-table read-modify-write
// cycle described in spec §4.2.
func readInode(dev blockdev.Device, i uint32) (inode, error) {
	block, offset := inodeLocation(i)
	buf := make([]byte, BlockSize)
	if err := dev.ReadSector(block, buf); err != nil {
		return inode{}, err
	}
	return decodeInode(buf[offset : offset+InodeSize]), nil
}

// writeInode reads the containing inode block, patches only in's 32-byte
// window, and writes the block back — never disturbing the other 31
// inodes sharing the block.
func writeInode(dev blockdev.Device, i uint32, in inode) error {
	block, offset := inodeLocation(i)
	buf := make([]byte, BlockSize)
	if err := dev.ReadSector(block, buf); err != nil {
		return err
	}
	in.encode(buf[offset : offset+InodeSize])
	return dev.WriteSector(block, buf)
}
