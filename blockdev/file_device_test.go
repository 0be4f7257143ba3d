package blockdev

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileDeviceCreateOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	require.NoError(t, CreateFile(path, 8))

	d, err := OpenFile(path)
	require.NoError(t, err)
	defer d.Close()

	require.EqualValues(t, 8, d.SectorCount())

	want := make([]byte, SectorSize)
	for i := range want {
		want[i] = byte(i % 251)
	}
	require.NoError(t, d.WriteSector(3, want))
	require.NoError(t, d.Sync())

	got := make([]byte, SectorSize)
	require.NoError(t, d.ReadSector(3, got))
	require.Equal(t, want, got)
}

func TestFileDeviceReopenPersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, CreateFile(path, 4))

	d1, err := OpenFile(path)
	require.NoError(t, err)
	payload := []byte("hello, sectorfs")
	buf := make([]byte, SectorSize)
	copy(buf, payload)
	require.NoError(t, d1.WriteSector(1, buf))
	require.NoError(t, d1.Close())

	d2, err := OpenFile(path)
	require.NoError(t, err)
	defer d2.Close()

	got := make([]byte, SectorSize)
	require.NoError(t, d2.ReadSector(1, got))
	require.Equal(t, payload, got[:len(payload)])
}

func TestOpenFileRejectsMisalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, CreateFile(path, 2))

	// truncate to a size that isn't a multiple of SectorSize
	d, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, d.file.Truncate(SectorSize+1))
	require.NoError(t, d.Close())

	_, err = OpenFile(path)
	require.Error(t, err)
}
