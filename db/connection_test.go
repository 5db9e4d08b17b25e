package db

import (
	"testing"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name string) coltype.Column {
	return coltype.Column{Name: name, Type: coltype.NewFixed(coltype.Int)}
}

func TestCreateUseAndDropDatabase(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.CreateDatabase("d1"))
	require.NoError(t, m.UseDatabase("d1"))
	assert.Equal(t, "d1", m.CurrentDatabaseName())

	require.NoError(t, m.DropDatabase("d1"))
	assert.Equal(t, "", m.CurrentDatabaseName())
}

func TestCreateDatabaseDuplicateFails(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.CreateDatabase("d1"))
	err := m.CreateDatabase("d1")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.AlreadyExists))
}

func TestStatementsFailWithoutSelectedDatabase(t *testing.T) {
	m := NewManager(t.TempDir())
	err := m.CreateTable("t", []coltype.Column{col("a")})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Missing))
}

func TestCreateTableInsertSelectRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.CreateDatabase("d1"))
	require.NoError(t, m.UseDatabase("d1"))
	require.NoError(t, m.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, m.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(1)}}))

	result, err := m.Select(&parser.Select{Table: "t"})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestUseDatabaseReopensFromDisk(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)
	require.NoError(t, m.CreateDatabase("d1"))
	require.NoError(t, m.UseDatabase("d1"))
	require.NoError(t, m.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, m.Close())

	m2 := NewManager(root)
	require.NoError(t, m2.UseDatabase("d1"))
	require.NoError(t, m2.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(9)}}))
}

func TestDropDatabaseClearsCurrentSelection(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.CreateDatabase("d1"))
	require.NoError(t, m.UseDatabase("d1"))
	require.NoError(t, m.DropDatabase("d1"))

	err := m.CreateTable("t", []coltype.Column{col("a")})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Missing))
}
