package sectorfs

import "encoding/binary"

// Logical-block-index range boundaries from spec §4.3.
const (
	directRangeEnd         = DirectPointers                                    // 4
	singleIndirectRangeEnd = directRangeEnd + PointersPerBlock                  // 260
	doubleIndirectRangeEnd = singleIndirectRangeEnd + PointersPerBlock*PointersPerBlock // 65796

	// MaxFileSize is the largest file size representable by the
	// indirection tree: doubleIndirectRangeEnd blocks of BlockSize bytes.
	// Valid byte offsets are strictly below it.
	MaxFileSize = int64(doubleIndirectRangeEnd) * BlockSize
)

// readPointers loads the 256 little-endian block numbers packed into an
// indirect or double-indirect block (spec §3).
func readPointers(v *Volume, block uint32) ([PointersPerBlock]uint32, error) {
	var ptrs [PointersPerBlock]uint32
	buf := make([]byte, BlockSize)
	if err := v.dev.ReadSector(block, buf); err != nil {
		return ptrs, deviceErr("readPointers", err)
	}
	for i := 0; i < PointersPerBlock; i++ {
		ptrs[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return ptrs, nil
}

// writePointers persists a full pointer block back to disk.
func writePointers(v *Volume, block uint32, ptrs [PointersPerBlock]uint32) error {
	buf := make([]byte, BlockSize)
	for i := 0; i < PointersPerBlock; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], ptrs[i])
	}
	if err := v.dev.WriteSector(block, buf); err != nil {
		return deviceErr("writePointers", err)
	}
	return nil
}

// zeroFillBlock overwrites block with BlockSize zero bytes. Every block
// this package hands out via the allocator is zero-filled before any
// pointer to it is published (spec §4.3, invariant I5's "looks zeroed"
// guarantee for newly attached blocks).
func zeroFillBlock(v *Volume, block uint32) error {
	buf := make([]byte, BlockSize)
	if err := v.dev.WriteSector(block, buf); err != nil {
		return deviceErr("zeroFillBlock", err)
	}
	return nil
}

// allocZeroed obtains a fresh data block from the allocator and
// zero-fills it, rolling the allocation back if the zero-fill fails
// (spec §4.3: "If zero-fill of a freshly allocated block fails, the block
// must be returned to the allocator before returning the error.").
func (v *Volume) allocZeroed() (uint32, error) {
	block, err := v.alloc.findFree()
	if err != nil {
		v.Log.WithField("session", v.sessionID).Warn("sectorfs: allocator out of space")
		return 0, err
	}
	if err := zeroFillBlock(v, block); err != nil {
		v.alloc.free(block)
		return 0, err
	}
	return block, nil
}

// getBlockForOffset translates a byte offset within a file to a physical
// block number, per spec §4.3. When allocate is false, an unallocated
// (hole) slot yields (0, nil). When allocate is true, missing
// intermediate and leaf blocks are created top-down, each zero-filled
// before any pointer to it is written. On failure, a block whose
// zero-fill fails is returned to the allocator, and so is a fresh block
// whose parent pointer block cannot be written back; an index block
// created earlier in the same call stays allocated and referenced from in.
//
// Ported from the branch-per-level shape of
// _examples/weberc2-mono/ext2/pkg/ext2/filesystem.go's GetInodeBlock, and
// from the original C get_block_for_offset in
// _examples/original_source/src/fs.c.
func (v *Volume) getBlockForOffset(in *inode, offset int64, allocate bool) (uint32, error) {
	if offset < 0 {
		return 0, opErr("getBlockForOffset", ErrInvalidOffset, nil)
	}

	lbi := uint32(offset / BlockSize)

	switch {
	case lbi < directRangeEnd:
		return v.directBlock(in, lbi, allocate)
	case lbi < singleIndirectRangeEnd:
		return v.singleIndirectBlock(in, lbi-directRangeEnd, allocate)
	case lbi < doubleIndirectRangeEnd:
		idx := lbi - singleIndirectRangeEnd
		return v.doubleIndirectBlock(in, idx/PointersPerBlock, idx%PointersPerBlock, allocate)
	default:
		return 0, opErr("getBlockForOffset", ErrInvalidOffset, nil)
	}
}

func (v *Volume) directBlock(in *inode, idx uint32, allocate bool) (uint32, error) {
	if in.Direct[idx] != 0 {
		return in.Direct[idx], nil
	}
	if !allocate {
		return 0, nil
	}
	block, err := v.allocZeroed()
	if err != nil {
		return 0, err
	}
	in.Direct[idx] = block
	return block, nil
}

func (v *Volume) singleIndirectBlock(in *inode, entry uint32, allocate bool) (uint32, error) {
	indirectBlock := in.Indirect
	if indirectBlock == 0 {
		if !allocate {
			return 0, nil
		}
		block, err := v.allocZeroed()
		if err != nil {
			return 0, err
		}
		indirectBlock = block
		in.Indirect = block
	}

	ptrs, err := readPointers(v, indirectBlock)
	if err != nil {
		return 0, err
	}
	if ptrs[entry] != 0 {
		return ptrs[entry], nil
	}
	if !allocate {
		return 0, nil
	}

	leaf, err := v.allocZeroed()
	if err != nil {
		return 0, err
	}
	ptrs[entry] = leaf
	if err := writePointers(v, indirectBlock, ptrs); err != nil {
		v.alloc.free(leaf)
		return 0, err
	}
	return leaf, nil
}

func (v *Volume) doubleIndirectBlock(in *inode, level1, level0 uint32, allocate bool) (uint32, error) {
	doubleBlock := in.DoubleIndirect
	if doubleBlock == 0 {
		if !allocate {
			return 0, nil
		}
		block, err := v.allocZeroed()
		if err != nil {
			return 0, err
		}
		doubleBlock = block
		in.DoubleIndirect = block
	}

	doublePtrs, err := readPointers(v, doubleBlock)
	if err != nil {
		return 0, err
	}

	indirectBlock := doublePtrs[level1]
	if indirectBlock == 0 {
		if !allocate {
			return 0, nil
		}
		block, err := v.allocZeroed()
		if err != nil {
			return 0, err
		}
		indirectBlock = block
		doublePtrs[level1] = block
		if err := writePointers(v, doubleBlock, doublePtrs); err != nil {
			v.alloc.free(block)
			return 0, err
		}
	}

	ptrs, err := readPointers(v, indirectBlock)
	if err != nil {
		return 0, err
	}
	if ptrs[level0] != 0 {
		return ptrs[level0], nil
	}
	if !allocate {
		return 0, nil
	}

	leaf, err := v.allocZeroed()
	if err != nil {
		return 0, err
	}
	ptrs[level0] = leaf
	if err := writePointers(v, indirectBlock, ptrs); err != nil {
		v.alloc.free(leaf)
		return 0, err
	}
	return leaf, nil
}

// walkReachable marks every block transitively referenced by in as used
// in v.alloc, for the mount-time reachability scan (spec §4.5).
func (v *Volume) walkReachable(in inode) error {
	for _, b := range in.Direct {
		v.alloc.markReachable(b)
	}

	if in.Indirect != 0 {
		v.alloc.markReachable(in.Indirect)
		ptrs, err := readPointers(v, in.Indirect)
		if err != nil {
			return err
		}
		for _, b := range ptrs {
			v.alloc.markReachable(b)
		}
	}

	if in.DoubleIndirect != 0 {
		v.alloc.markReachable(in.DoubleIndirect)
		doublePtrs, err := readPointers(v, in.DoubleIndirect)
		if err != nil {
			return err
		}
		for _, ib := range doublePtrs {
			if ib == 0 {
				continue
			}
			v.alloc.markReachable(ib)
			ptrs, err := readPointers(v, ib)
			if err != nil {
				return err
			}
			for _, b := range ptrs {
				v.alloc.markReachable(b)
			}
		}
	}

	return nil
}
