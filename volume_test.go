package sectorfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kesheh/sectorfs/blockdev"
)

func TestFormatRejectsAlreadyMounted(t *testing.T) {
	v := newTestVolume(t, 64, 8)
	err := v.Format(blockdev.NewMemDevice(64), 8)
	require.ErrorIs(t, err, ErrAlreadyMounted)
}

func TestFormatRejectsUndersizedDevice(t *testing.T) {
	v := New(nil)
	err := v.Format(blockdev.NewMemDevice(1), 32)
	require.ErrorIs(t, err, ErrOutOfSpace)
}

func TestMountRejectsAlreadyMounted(t *testing.T) {
	v := newTestVolume(t, 64, 8)
	err := v.Mount(blockdev.NewMemDevice(64), "other")
	require.ErrorIs(t, err, ErrAlreadyMounted)
}

func TestMountRejectsUnformattedDevice(t *testing.T) {
	v := New(nil)
	err := v.Mount(blockdev.NewMemDevice(64), "garbage")
	require.ErrorIs(t, err, ErrCorruptDisk)
}

func TestUnmountRejectsWhenNotMounted(t *testing.T) {
	v := New(nil)
	err := v.Unmount()
	require.ErrorIs(t, err, ErrNotMounted)
}

func TestOperationsRejectWhenNotMounted(t *testing.T) {
	v := New(nil)

	_, err := v.Create()
	require.ErrorIs(t, err, ErrNotMounted)

	err = v.Delete(0)
	require.ErrorIs(t, err, ErrNotMounted)

	_, err = v.Stat(0)
	require.ErrorIs(t, err, ErrNotMounted)

	_, err = v.Read(0, 0, make([]byte, 1))
	require.ErrorIs(t, err, ErrNotMounted)

	_, err = v.Write(0, 0, make([]byte, 1))
	require.ErrorIs(t, err, ErrNotMounted)
}

// TestPersistenceAcrossUnmountMount is the "persistence across unmount and
// remount" scenario: data written before an unmount must read back
// identically after a fresh mount rebuilds the allocator from scratch.
func TestPersistenceAcrossUnmountMount(t *testing.T) {
	dev := blockdev.NewMemDevice(64)
	v := New(nil)
	require.NoError(t, v.Format(dev, 8))
	require.NoError(t, v.Mount(dev, "disk"))

	idx, err := v.Create()
	require.NoError(t, err)

	payload := []byte("persisted across mounts")
	n, err := v.Write(idx, 0, payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	require.NoError(t, v.Unmount())
	require.NoError(t, v.Mount(dev, "disk"))

	size, err := v.Stat(idx)
	require.NoError(t, err)
	require.Equal(t, len(payload), size)

	buf := make([]byte, len(payload))
	n, err = v.Read(idx, 0, buf)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, buf)
}

// TestMountReclaimsOrphanedBlocks exercises the mount-time reachability
// scan: a block allocated but never attached to any inode (simulating a
// crash between allocation and the pointer write-back that publishes it)
// must be reusable after a remount, not permanently leaked.
func TestMountReclaimsOrphanedBlocks(t *testing.T) {
	dev := blockdev.NewMemDevice(3) // superblock + 1 inode block + 1 data block
	v := New(nil)
	require.NoError(t, v.Format(dev, 8))
	require.NoError(t, v.Mount(dev, "disk"))

	orphan, err := v.allocZeroed()
	require.NoError(t, err)
	require.NotZero(t, orphan)

	// out of space until we remount and the orphan is reclaimed
	_, err = v.allocZeroed()
	require.ErrorIs(t, err, ErrOutOfSpace)

	require.NoError(t, v.Unmount())
	require.NoError(t, v.Mount(dev, "disk"))

	reclaimed, err := v.allocZeroed()
	require.NoError(t, err)
	require.Equal(t, orphan, reclaimed)
}
