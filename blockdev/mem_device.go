package blockdev

// MemDevice is an in-memory Device, useful for tests and for short-lived
// volumes that never need to survive a process restart. It is the sector-
// granular analog of _examples/weberc2-mono/ext2/pkg/ext2/volume.go's
// MemoryVolume, which offers the same trade against FileVolume there.
type MemDevice struct {
	sectors uint32
	buf     []byte
}

// NewMemDevice allocates a zero-filled in-memory device of the given
// sector count.
func NewMemDevice(sectors uint32) *MemDevice {
	return &MemDevice{
		sectors: sectors,
		buf:     make([]byte, uint64(sectors)*SectorSize),
	}
}

func (d *MemDevice) SectorCount() uint32 { return d.sectors }

func (d *MemDevice) ReadSector(sector uint32, buf []byte) error {
	if err := checkSector(sector, d.sectors); err != nil {
		return err
	}
	if err := checkBuffer(buf); err != nil {
		return err
	}
	off := uint64(sector) * SectorSize
	copy(buf, d.buf[off:off+SectorSize])
	return nil
}

func (d *MemDevice) WriteSector(sector uint32, buf []byte) error {
	if err := checkSector(sector, d.sectors); err != nil {
		return err
	}
	if err := checkBuffer(buf); err != nil {
		return err
	}
	off := uint64(sector) * SectorSize
	copy(d.buf[off:off+SectorSize], buf)
	return nil
}

func (d *MemDevice) Sync() error  { return nil }
func (d *MemDevice) Close() error { return nil }
