package sectorfs

// checkInodeIndex validates that i is a representable inode index for the
// mounted volume, without touching disk.
func (v *Volume) checkInodeIndex(op string, i int) (uint32, error) {
	if i < 0 || uint32(i) >= v.sb.NumInodeBlocks*InodesPerBlock {
		return 0, opErr(op, ErrInvalidInode, nil)
	}
	return uint32(i), nil
}

// Create scans inodes in ascending order and allocates the first free one
// (spec §4.6, first-available policy — the same discipline the block
// allocator uses).
func (v *Volume) Create() (int, error) {
	if err := v.checkMounted("Create"); err != nil {
		return 0, err
	}

	total := v.sb.NumInodeBlocks * InodesPerBlock
	for i := uint32(0); i < total; i++ {
		in, err := readInode(v.dev, i)
		if err != nil {
			return 0, deviceErr("Create", err)
		}
		if !in.Valid {
			if err := writeInode(v.dev, i, inode{Valid: true}); err != nil {
				return 0, deviceErr("Create", err)
			}
			return int(i), nil
		}
	}

	return 0, opErr("Create", ErrOutOfInodes, nil)
}

// Delete frees every block reachable from inode i's direct, indirect, and
// double-indirect pointers, then restores the inode to its free state
// (spec §4.6, invariant I3).
func (v *Volume) Delete(i int) error {
	if err := v.checkMounted("Delete"); err != nil {
		return err
	}
	idx, err := v.checkInodeIndex("Delete", i)
	if err != nil {
		return err
	}

	in, err := readInode(v.dev, idx)
	if err != nil {
		return deviceErr("Delete", err)
	}
	if !in.Valid {
		return opErr("Delete", ErrInvalidInode, nil)
	}

	for _, b := range in.Direct {
		if b != 0 {
			v.alloc.free(b)
		}
	}

	if in.Indirect != 0 {
		ptrs, err := readPointers(v, in.Indirect)
		if err != nil {
			return err
		}
		for _, b := range ptrs {
			if b != 0 {
				v.alloc.free(b)
			}
		}
		v.alloc.free(in.Indirect)
	}

	if in.DoubleIndirect != 0 {
		doublePtrs, err := readPointers(v, in.DoubleIndirect)
		if err != nil {
			return err
		}
		for _, ib := range doublePtrs {
			if ib == 0 {
				continue
			}
			ptrs, err := readPointers(v, ib)
			if err != nil {
				return err
			}
			for _, b := range ptrs {
				if b != 0 {
					v.alloc.free(b)
				}
			}
			v.alloc.free(ib)
		}
		v.alloc.free(in.DoubleIndirect)
	}

	if err := writeInode(v.dev, idx, inode{}); err != nil {
		return deviceErr("Delete", err)
	}
	return nil
}

// Stat returns the size, in bytes, of a valid inode.
func (v *Volume) Stat(i int) (int, error) {
	if err := v.checkMounted("Stat"); err != nil {
		return 0, err
	}
	idx, err := v.checkInodeIndex("Stat", i)
	if err != nil {
		return 0, err
	}

	in, err := readInode(v.dev, idx)
	if err != nil {
		return 0, deviceErr("Stat", err)
	}
	if !in.Valid {
		return 0, opErr("Stat", ErrInvalidInode, nil)
	}
	return int(in.Size), nil
}

// Read copies up to len(buf) bytes starting at offset into buf, walking
// the indirection tree read-only (spec §4.6). A hole stops the walk and
// returns whatever was delivered so far (zero if nothing yet), the same
// way the original read loop treats block_num <= 0 — a hole is a valid
// sparse region, not corruption. Once at least one byte has been
// delivered, a subsequent device error is likewise downgraded to the
// partial count already copied.
func (v *Volume) Read(i int, offset int64, buf []byte) (int, error) {
	if err := v.checkMounted("Read"); err != nil {
		return 0, err
	}
	idx, err := v.checkInodeIndex("Read", i)
	if err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, opErr("Read", ErrInvalidOffset, nil)
	}

	in, err := readInode(v.dev, idx)
	if err != nil {
		return 0, deviceErr("Read", err)
	}
	if !in.Valid {
		return 0, opErr("Read", ErrInvalidInode, nil)
	}

	size := int64(in.Size)
	if offset >= size {
		return 0, nil
	}

	want := int64(len(buf))
	if remaining := size - offset; want > remaining {
		want = remaining
	}

	var delivered int64
	for delivered < want {
		cur := offset + delivered
		block, err := v.getBlockForOffset(&in, cur, false)
		if err != nil {
			if delivered > 0 {
				return int(delivered), nil
			}
			return 0, err
		}

		blockOff := cur % BlockSize
		span := BlockSize - blockOff
		if remain := want - delivered; span > remain {
			span = remain
		}

		if block == 0 {
			return int(delivered), nil
		}

		tmp := make([]byte, BlockSize)
		if err := v.dev.ReadSector(block, tmp); err != nil {
			if delivered > 0 {
				return int(delivered), nil
			}
			return 0, deviceErr("Read", err)
		}
		copy(buf[delivered:delivered+span], tmp[blockOff:blockOff+span])
		delivered += span
	}

	return int(delivered), nil
}

// zeroFillGap extends inode in with zero bytes from `from` up to (but not
// including) `to`, allocating blocks as needed. It updates in.Size
// monotonically to the furthest offset actually reached, whether it
// succeeds or fails partway (spec §4.6, Open Question #1).
func (v *Volume) zeroFillGap(in *inode, from, to int64) error {
	cur := from
	for cur < to {
		block, err := v.getBlockForOffset(in, cur, true)
		if err != nil {
			in.Size = uint32(cur)
			return err
		}

		blockOff := cur % BlockSize
		span := BlockSize - blockOff
		if remain := to - cur; span > remain {
			span = remain
		}

		var ioErr error
		if blockOff == 0 && span == BlockSize {
			ioErr = v.dev.WriteSector(block, make([]byte, BlockSize))
		} else {
			tmp := make([]byte, BlockSize)
			if err := v.dev.ReadSector(block, tmp); err != nil {
				ioErr = err
			} else {
				for k := blockOff; k < blockOff+span; k++ {
					tmp[k] = 0
				}
				ioErr = v.dev.WriteSector(block, tmp)
			}
		}

		if ioErr != nil {
			in.Size = uint32(cur)
			return deviceErr("Write", ioErr)
		}
		cur += span
	}
	in.Size = uint32(to)
	return nil
}

// Write copies len(buf) bytes from buf into inode i starting at offset,
// allocating blocks as needed and zero-filling any gap between the
// current size and offset first (spec §4.6). Once at least one byte has
// been written, a subsequent block or device failure is downgraded to the
// partial count already delivered. If every byte was written but the
// final inode write fails, the full count is returned together with that
// error.
func (v *Volume) Write(i int, offset int64, buf []byte) (int, error) {
	if err := v.checkMounted("Write"); err != nil {
		return 0, err
	}
	idx, err := v.checkInodeIndex("Write", i)
	if err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, opErr("Write", ErrInvalidOffset, nil)
	}

	in, err := readInode(v.dev, idx)
	if err != nil {
		return 0, deviceErr("Write", err)
	}
	if !in.Valid {
		return 0, opErr("Write", ErrInvalidInode, nil)
	}

	size := int64(in.Size)

	if offset > size {
		if err := v.zeroFillGap(&in, size, offset); err != nil {
			if werr := writeInode(v.dev, idx, in); werr != nil {
				return 0, deviceErr("Write", werr)
			}
			return 0, err
		}
		size = offset
	}

	var written int64
	for written < int64(len(buf)) {
		cur := offset + written
		block, err := v.getBlockForOffset(&in, cur, true)
		if err != nil {
			return v.writePartial(idx, &in, offset, written, size, err)
		}

		blockOff := cur % BlockSize
		span := BlockSize - blockOff
		if remain := int64(len(buf)) - written; span > remain {
			span = remain
		}

		var ioErr error
		if blockOff == 0 && span == BlockSize {
			ioErr = v.dev.WriteSector(block, buf[written:written+span])
		} else {
			tmp := make([]byte, BlockSize)
			if err := v.dev.ReadSector(block, tmp); err != nil {
				ioErr = err
			} else {
				copy(tmp[blockOff:blockOff+span], buf[written:written+span])
				ioErr = v.dev.WriteSector(block, tmp)
			}
		}
		if ioErr != nil {
			return v.writePartial(idx, &in, offset, written, size, deviceErr("Write", ioErr))
		}

		written += span
	}

	finalSize := offset + written
	if finalSize < size {
		finalSize = size
	}
	in.Size = uint32(finalSize)
	if err := writeInode(v.dev, idx, in); err != nil {
		return int(written), deviceErr("Write", err)
	}
	return int(written), nil
}

// writePartial implements the "downgrade to partial count" half of the
// write failure contract: if any bytes were already written, persist the
// furthest size reached and return that count with no error; otherwise
// return the error untouched.
func (v *Volume) writePartial(
	idx uint32,
	in *inode,
	offset, written, size int64,
	err error,
) (int, error) {
	if written == 0 {
		return 0, err
	}

	finalSize := offset + written
	if finalSize < size {
		finalSize = size
	}
	in.Size = uint32(finalSize)
	writeInode(v.dev, idx, *in) // best effort; partial byte count still stands
	return int(written), nil
}
