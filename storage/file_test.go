package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mstgnz/filesql/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f := New(path)

	require.NoError(t, f.Open(os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644))
	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, f.Flush())
	require.NoError(t, f.Seek(0))

	buf := make([]byte, 5)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
	require.NoError(t, f.Close())
}

func TestOpenAlreadyOpenFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f := New(path)
	require.NoError(t, f.Open(os.O_CREATE|os.O_RDWR, 0o644))
	defer f.Close()

	err := f.Open(os.O_CREATE|os.O_RDWR, 0o644)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.FileAlreadyOpened))
}

func TestOperationsOnClosedFileFail(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "data.bin"))

	_, err := f.Write([]byte("x"))
	assert.True(t, fault.Is(err, fault.FileClosed))

	_, err = f.Read(make([]byte, 1))
	assert.True(t, fault.Is(err, fault.FileClosed))

	err = f.Seek(0)
	assert.True(t, fault.Is(err, fault.FileClosed))
}

func TestShortReadIsIoError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f := New(path)
	require.NoError(t, f.Open(os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644))
	_, err := f.Write([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, f.Seek(0))

	buf := make([]byte, 10)
	_, err = f.Read(buf)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Io))
}

func TestWriteByteN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f := New(path)
	require.NoError(t, f.Open(os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644))
	require.NoError(t, f.WriteByteN(0, 4))
	require.NoError(t, f.Seek(0))

	buf := make([]byte, 4)
	_, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}

func TestRemoveDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f := New(path)
	require.NoError(t, f.Open(os.O_CREATE|os.O_RDWR, 0o644))
	require.NoError(t, f.Remove())
	assert.False(t, f.Exists())
}
