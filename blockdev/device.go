// Package blockdev defines the sector-addressable device contract that the
// sectorfs core consumes (spec §6.2) and ships two reference
// implementations of it: a host-file-backed device and an in-memory one.
//
// The core never talks to a disk directly — it only ever holds a Device.
// Swapping FileDevice for MemDevice, or for a driver this package knows
// nothing about, changes nothing above this layer.
package blockdev

import "fmt"

// SectorSize is the fixed size, in bytes, of every sector a Device
// exchanges with its caller.
const SectorSize = 1024

// Device is the abstract block device contract: fixed-size sector
// reads/writes, an explicit sync, and close. It carries no notion of
// files, inodes, or a superblock — those live entirely in the layers
// built on top of it.
type Device interface {
	// SectorCount reports the total number of addressable sectors.
	SectorCount() uint32

	// ReadSector reads exactly SectorSize bytes into buf from the given
	// sector. buf must be SectorSize bytes long.
	ReadSector(sector uint32, buf []byte) error

	// WriteSector writes exactly SectorSize bytes from buf to the given
	// sector. buf must be SectorSize bytes long. On failure no guarantee
	// is made about what, if anything, reached the underlying medium.
	WriteSector(sector uint32, buf []byte) error

	// Sync flushes any buffering down to the underlying medium.
	Sync() error

	// Close releases the device's resources. After Close, no other method
	// may be called.
	Close() error
}

// ErrSectorRange reports an access to a sector outside [0, SectorCount).
type ErrSectorRange struct {
	Sector uint32
	Count  uint32
}

func (err ErrSectorRange) Error() string {
	return fmt.Sprintf(
		"sector %d out of range [0, %d)",
		err.Sector,
		err.Count,
	)
}

// ErrBufferSize reports a caller-supplied buffer that isn't exactly
// SectorSize bytes.
type ErrBufferSize struct {
	Got int
}

func (err ErrBufferSize) Error() string {
	return fmt.Sprintf("buffer size %d, want %d", err.Got, SectorSize)
}

func checkSector(sector, count uint32) error {
	if sector >= count {
		return ErrSectorRange{Sector: sector, Count: count}
	}
	return nil
}

func checkBuffer(buf []byte) error {
	if len(buf) != SectorSize {
		return ErrBufferSize{Got: len(buf)}
	}
	return nil
}
