package sectorfs

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kesheh/sectorfs/blockdev"
)

// Volume owns the mount state, the cached superblock, the allocator, and
// the remembered disk name (spec §2 item 7, §5 "Shared resources"). It is
// the single owning value the design notes describe: created fresh, handed
// to Mount, and returned to the unmounted state by Unmount (which clears
// the device, allocator, disk name and session id). Nothing else in
// this package mutates its fields.
//
// A Volume must not be used from more than one goroutine at a time — the
// spec's concurrency model (§5) is single-threaded and synchronous by
// design, and Volume carries no locking of its own.
type Volume struct {
	dev       blockdev.Device
	sb        superblock
	alloc     *allocator
	diskName  string
	mounted   bool
	sessionID string

	// Log receives structured lifecycle events (format, mount, unmount,
	// allocator exhaustion). It defaults to logrus.StandardLogger(). Reads
	// and writes log nothing unless the allocator runs out of space.
	Log *logrus.Logger
}

// New returns an unmounted Volume. A nil logger falls back to
// logrus.StandardLogger(), mirroring the logging setup in
// _examples/weberc2-mono/mod/gobuilder/cmd/gobuilder/main.go.
func New(log *logrus.Logger) *Volume {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Volume{Log: log}
}

// Mounted reports the remembered disk name and whether a volume is
// currently mounted through this handle.
func (v *Volume) Mounted() (name string, ok bool) {
	return v.diskName, v.mounted
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Format writes a fresh superblock and zero-fills the inode region of
// dev, per spec §4.5. It never leaves the Volume mounted, and unless it
// rejects the call with ErrAlreadyMounted (which leaves dev untouched) it
// closes dev before it returns — callers reopen the device before Mount, exactly
// as _examples/original_source/src/fs.c's format opens its own handle
// separate from the one mount later uses.
func (v *Volume) Format(dev blockdev.Device, inodeCount int) error {
	if v.mounted {
		return opErr("Format", ErrAlreadyMounted, nil)
	}

	if inodeCount <= 0 {
		inodeCount = 1
	}

	numInodeBlocks := ceilDiv(inodeCount, InodesPerBlock)
	if numInodeBlocks < 1 {
		numInodeBlocks = 1
	}

	numBlocks := dev.SectorCount()
	if uint32(numInodeBlocks)+1 >= numBlocks {
		dev.Close()
		return opErr("Format", ErrOutOfSpace, nil)
	}

	sb := superblock{
		NumBlocks:      numBlocks,
		NumInodeBlocks: uint32(numInodeBlocks),
		BlockSize:      BlockSize,
	}

	if err := dev.WriteSector(0, sb.encode()); err != nil {
		dev.Close()
		return deviceErr("Format", err)
	}

	zero := make([]byte, BlockSize)
	for b := uint32(1); b <= sb.NumInodeBlocks; b++ {
		if err := dev.WriteSector(b, zero); err != nil {
			dev.Close()
			return deviceErr("Format", err)
		}
	}

	if err := dev.Sync(); err != nil {
		dev.Close()
		return deviceErr("Format", err)
	}

	v.Log.WithFields(logrus.Fields{
		"blocks":       numBlocks,
		"inode_blocks": sb.NumInodeBlocks,
	}).Info("sectorfs: formatted volume")

	if err := dev.Close(); err != nil {
		return deviceErr("Format", err)
	}
	return nil
}

// Mount opens a previously formatted volume, verifies its superblock, and
// rebuilds the in-memory allocator by scanning every valid inode's
// reachable blocks (spec §4.5). If the Volume is already mounted it
// returns ErrAlreadyMounted and leaves dev and the Volume untouched; on
// any other failure dev is closed and the Volume is left unmounted.
func (v *Volume) Mount(dev blockdev.Device, diskName string) error {
	if v.mounted {
		return opErr("Mount", ErrAlreadyMounted, nil)
	}

	var raw [BlockSize]byte
	if err := dev.ReadSector(0, raw[:]); err != nil {
		dev.Close()
		return deviceErr("Mount", err)
	}

	sb, err := decodeSuperblock(raw[:])
	if err != nil {
		dev.Close()
		return err
	}

	alloc := newAllocator(sb.NumBlocks, sb.NumInodeBlocks)

	tmp := &Volume{dev: dev, sb: sb, alloc: alloc, Log: v.Log}

	total := sb.NumInodeBlocks * InodesPerBlock
	for i := uint32(0); i < total; i++ {
		in, err := readInode(dev, i)
		if err != nil {
			dev.Close()
			return deviceErr("Mount", err)
		}
		if in.Valid {
			if err := tmp.walkReachable(in); err != nil {
				dev.Close()
				return err
			}
		}
	}

	v.dev = dev
	v.sb = sb
	v.alloc = alloc
	v.diskName = diskName
	v.mounted = true
	v.sessionID = uuid.NewString()

	v.Log.WithFields(logrus.Fields{
		"disk":    diskName,
		"session": v.sessionID,
		"blocks":  sb.NumBlocks,
	}).Info("sectorfs: mounted volume")

	return nil
}

// Unmount syncs the device, then unconditionally releases the in-memory
// allocator and remembered name and closes the device, per spec §4.5. The
// returned error reflects only the sync outcome.
func (v *Volume) Unmount() error {
	if !v.mounted {
		return opErr("Unmount", ErrNotMounted, nil)
	}

	syncErr := v.dev.Sync()
	if closeErr := v.dev.Close(); closeErr != nil {
		v.Log.WithError(closeErr).Warn("sectorfs: error closing device on unmount")
	}

	v.Log.WithFields(logrus.Fields{
		"disk":    v.diskName,
		"session": v.sessionID,
	}).Info("sectorfs: unmounted volume")

	v.dev = nil
	v.alloc = nil
	v.diskName = ""
	v.sessionID = ""
	v.mounted = false

	if syncErr != nil {
		return deviceErr("Unmount", syncErr)
	}
	return nil
}

func (v *Volume) checkMounted(op string) error {
	if !v.mounted {
		return opErr(op, ErrNotMounted, nil)
	}
	return nil
}
