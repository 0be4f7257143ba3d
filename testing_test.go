package sectorfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kesheh/sectorfs/blockdev"
)

// newTestVolume formats and mounts an in-memory volume for use by a test.
// MemDevice.Close is a no-op, so the same device survives the Format call
// (which takes ownership and closes it) and can be handed straight to
// Mount.
func newTestVolume(t *testing.T, sectors uint32, inodeCount int) *Volume {
	t.Helper()

	dev := blockdev.NewMemDevice(sectors)
	v := New(nil)
	require.NoError(t, v.Format(dev, inodeCount))
	require.NoError(t, v.Mount(dev, "test"))
	t.Cleanup(func() { v.Unmount() })
	return v
}
