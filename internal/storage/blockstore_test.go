package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavarin/recordstore/internal/rmerror"
)

func TestOpenPageFile_CreatesSinglePageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	bs, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	require.EqualValues(t, 1, bs.TotalNumPages())
}

func TestReadWriteBlock_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	buf := make([]byte, PageSize)
	buf[0] = 42
	require.NoError(t, bs.WriteBlock(0, buf))

	out := make([]byte, PageSize)
	require.NoError(t, bs.ReadBlock(0, out))
	require.Equal(t, byte(42), out[0])
}

func TestReadBlock_OutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	out := make([]byte, PageSize)
	err = bs.ReadBlock(5, out)
	require.Error(t, err)
	require.ErrorIs(t, err, rmerror.ErrReadNonExistingPage)
}

func TestEnsureCapacity_GrowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	require.NoError(t, bs.EnsureCapacity(4))
	require.EqualValues(t, 4, bs.TotalNumPages())

	// Idempotent: already at/above capacity does nothing.
	require.NoError(t, bs.EnsureCapacity(2))
	require.EqualValues(t, 4, bs.TotalNumPages())
}

func TestAppendEmptyBlock_GrowsByOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	require.NoError(t, bs.AppendEmptyBlock())
	require.EqualValues(t, 2, bs.TotalNumPages())
}
