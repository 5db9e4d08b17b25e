package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/token"
	"github.com/mstgnz/filesql/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *Database {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db1")
	d, err := Open("db1", dir, true)
	require.NoError(t, err)
	return d
}

func col(name string) coltype.Column {
	return coltype.Column{Name: name, Type: coltype.NewFixed(coltype.Int)}
}

func TestOpenCreateRejectsExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db1")
	_, err := Open("db1", dir, true)
	require.NoError(t, err)

	_, err = Open("db1", dir, true)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.AlreadyExists))
}

func TestCreateTableAndReopenLoadsHandles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db1")
	d, err := Open("db1", dir, true)
	require.NoError(t, err)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.Close())

	reopened, err := Open("db1", dir, false)
	require.NoError(t, err)
	require.NoError(t, reopened.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(5)}}))
}

func TestCreateTableDuplicateFails(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	err := d.CreateTable("t", []coltype.Column{col("a")})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.AlreadyExists))
}

func TestInsertSelectDeleteRoundTrip(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(1)}}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(2)}}))

	result, err := d.Select(&parser.Select{Table: "t"})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)

	n, err := d.Delete(&parser.Delete{Table: "t", HasWhere: true, Where: parser.WhereClause{Column: "a", Op: token.Equals, Value: value.NewInteger(1)}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAlterRecordsMigration(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))

	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, d.Alter(&parser.AlterAddColumn{Table: "t", Column: col("b")}, when))

	migs := d.Migrations("t")
	require.Len(t, migs, 1)
	assert.True(t, migs[0].AppliedAt.Equal(when))
}

func TestSelectInnerJoin(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("left", []coltype.Column{col("id")}))
	require.NoError(t, d.CreateTable("right", []coltype.Column{col("id")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "left", Values: []value.Value{value.NewInteger(1)}}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "left", Values: []value.Value{value.NewInteger(2)}}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "right", Values: []value.Value{value.NewInteger(1)}}))

	result, err := d.Select(&parser.Select{
		Table: "left", Join: parser.InnerJoin, JoinedTable: "right",
		PrimaryJoinColumn: "id", SecondaryJoinColumn: "id",
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestSelectLeftOuterJoinPadsUnmatched(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("left", []coltype.Column{col("id")}))
	require.NoError(t, d.CreateTable("right", []coltype.Column{col("id")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "left", Values: []value.Value{value.NewInteger(1)}}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "left", Values: []value.Value{value.NewInteger(2)}}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "right", Values: []value.Value{value.NewInteger(1)}}))

	result, err := d.Select(&parser.Select{
		Table: "left", Join: parser.LeftOuterJoin, JoinedTable: "right",
		PrimaryJoinColumn: "id", SecondaryJoinColumn: "id",
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.True(t, result.Rows[1][1].Equal(value.NewNull()))
}

func TestTransactionCommitAppliesBufferedUpdate(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(1)}}))

	d.BeginTransaction()
	_, err := d.Update(&parser.Update{Table: "t", Column: "a", Value: value.NewInteger(9), HasWhere: true, Where: parser.WhereClause{Column: "a", Op: token.Equals, Value: value.NewInteger(1)}})
	require.NoError(t, err)

	lp := lockPath(d.dir, "t")
	_, statErr := os.Stat(lp)
	require.NoError(t, statErr, "lock file should be held during the transaction")

	err = d.CommitTransaction()
	require.NoError(t, err)

	row, err := d.tables["t"].GetRow(0)
	require.NoError(t, err)
	assert.True(t, row[0].Equal(value.NewInteger(9)))
}

func TestUpdateOutsideTransactionWritesImmediately(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(1)}}))

	n, err := d.Update(&parser.Update{Table: "t", Column: "a", Value: value.NewInteger(9), HasWhere: true, Where: parser.WhereClause{Column: "a", Op: token.Equals, Value: value.NewInteger(1)}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	row, err := d.tables["t"].GetRow(0)
	require.NoError(t, err)
	assert.True(t, row[0].Equal(value.NewInteger(9)))
}

func TestDumpTableReturnsSchemaAndRows(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.Insert(&parser.Insert{Table: "t", Values: []value.Value{value.NewInteger(7)}}))

	assert.Equal(t, []string{"t"}, d.TableNames())

	cols, rows, err := d.DumpTable("t")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "a", cols[0].Name)
	require.Len(t, rows, 1)
	assert.True(t, rows[0][0].Equal(value.NewInteger(7)))
}

func TestRemoveTableDeletesFromCatalogAndDisk(t *testing.T) {
	d := openDB(t)
	require.NoError(t, d.CreateTable("t", []coltype.Column{col("a")}))
	require.NoError(t, d.RemoveTable("t"))

	_, err := d.Select(&parser.Select{Table: "t"})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Missing))
}
