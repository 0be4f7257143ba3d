package blockdev

import (
	"fmt"
	"os"
)

// FileDevice is a Device backed by a single host file acting as a virtual
// disk, opened for random-access reads and writes at sector granularity.
// The adaptation is grounded on the read/write clipping technique in
// _examples/keks-dumbfs/blkfile/block.go, generalized from a variable
// length-prefixed block to a fixed SectorSize sector.
type FileDevice struct {
	file    *os.File
	sectors uint32
}

// CreateFile pre-extends (or creates) a host file to hold exactly the
// given number of sectors, matching the `dd if=/dev/zero ...` step the
// original C implementation's README describes as an external
// precondition to Format.
func CreateFile(name string, sectors uint32) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("blockdev: creating %q: %w", name, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(sectors) * SectorSize); err != nil {
		return fmt.Errorf("blockdev: sizing %q: %w", name, err)
	}
	return nil
}

// OpenFile opens name as a FileDevice. name must already exist and its
// size must be an exact multiple of SectorSize.
func OpenFile(name string) (*FileDevice, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockdev: opening %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockdev: stat %q: %w", name, err)
	}

	size := info.Size()
	if size%SectorSize != 0 {
		f.Close()
		return nil, fmt.Errorf(
			"blockdev: %q size %d is not a multiple of %d",
			name,
			size,
			SectorSize,
		)
	}

	return &FileDevice{file: f, sectors: uint32(size / SectorSize)}, nil
}

func (d *FileDevice) SectorCount() uint32 { return d.sectors }

func (d *FileDevice) ReadSector(sector uint32, buf []byte) error {
	if err := checkSector(sector, d.sectors); err != nil {
		return err
	}
	if err := checkBuffer(buf); err != nil {
		return err
	}

	if _, err := d.file.ReadAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("blockdev: reading sector %d: %w", sector, err)
	}
	return nil
}

func (d *FileDevice) WriteSector(sector uint32, buf []byte) error {
	if err := checkSector(sector, d.sectors); err != nil {
		return err
	}
	if err := checkBuffer(buf); err != nil {
		return err
	}

	if _, err := d.file.WriteAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("blockdev: writing sector %d: %w", sector, err)
	}
	return nil
}

func (d *FileDevice) Sync() error {
	if err := d.file.Sync(); err != nil {
		return fmt.Errorf("blockdev: sync: %w", err)
	}
	return nil
}

func (d *FileDevice) Close() error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("blockdev: close: %w", err)
	}
	return nil
}
