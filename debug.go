package sectorfs

import (
	"fmt"
	"io"
)

// Debug writes a human-readable dump of every valid inode's size and
// resolved block chain to w. It is read-only: it never allocates, never
// mutates the inode table, and is never called from Create, Delete, Read,
// or Write. Modeled on the inspection dumps in
// _examples/weberc2-mono/ext2/cmd/mkext2/main.go and
// _examples/keks-dumbfs/blkfile's block-walking test helpers.
func (v *Volume) Debug(w io.Writer) error {
	if err := v.checkMounted("Debug"); err != nil {
		return err
	}

	total := v.sb.NumInodeBlocks * InodesPerBlock
	for i := uint32(0); i < total; i++ {
		in, err := readInode(v.dev, i)
		if err != nil {
			return deviceErr("Debug", err)
		}
		if !in.Valid {
			continue
		}

		fmt.Fprintf(w, "inode %d: size=%d\n", i, in.Size)
		blocks, err := v.debugBlockChain(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  blocks: %v\n", blocks)
	}
	return nil
}

// debugBlockChain resolves every logical block covered by in's recorded
// size into a physical block number, in order, skipping holes.
func (v *Volume) debugBlockChain(in inode) ([]uint32, error) {
	var chain []uint32
	if in.Size == 0 {
		return chain, nil
	}

	last := int64(in.Size) - 1
	for offset := int64(0); offset <= last; offset += BlockSize {
		block, err := v.getBlockForOffset(&in, offset, false)
		if err != nil {
			return chain, err
		}
		if block != 0 {
			chain = append(chain, block)
		}
	}
	return chain, nil
}
