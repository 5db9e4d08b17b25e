package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mstgnz/filesql/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db-index")

	idx, err := Open(path, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), idx.NumTables())
	require.NoError(t, idx.Insert("t"))
	require.NoError(t, idx.Close())

	reopened, err := Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), reopened.NumTables())

	name, err := reopened.GetTableName(0)
	require.NoError(t, err)
	assert.Equal(t, "t", name)
}

func TestOpenExistingRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db-index")
	require.NoError(t, os.WriteFile(path, []byte("not-a-db-"), 0o644))

	_, err := Open(path, false)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.InvalidFile))
}

func TestIndexOfMissingReportsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db-index")
	idx, err := Open(path, true)
	require.NoError(t, err)

	_, err = idx.IndexOf("nope")
	assert.True(t, fault.Is(err, fault.Missing))
}

func TestInsertRefusesPastMaxTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db-index")
	idx, err := Open(path, true)
	require.NoError(t, err)

	for i := 0; i < MaxTables; i++ {
		require.NoError(t, idx.Insert(tableName(i)))
	}

	err = idx.Insert("overflow")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.LimitReached))
}

func TestRemoveSwapsWithLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db-index")
	idx, err := Open(path, true)
	require.NoError(t, err)

	require.NoError(t, idx.Insert("a"))
	require.NoError(t, idx.Insert("b"))
	require.NoError(t, idx.Insert("c"))

	first, err := idx.IndexOf("a")
	require.NoError(t, err)
	require.NoError(t, idx.Remove(first))

	assert.Equal(t, uint8(2), idx.NumTables())
	_, err = idx.IndexOf("a")
	assert.True(t, fault.Is(err, fault.Missing))

	name, err := idx.GetTableName(first)
	require.NoError(t, err)
	assert.Equal(t, "c", name)
}

func tableName(i int) string {
	return string(rune('a' + i))
}
