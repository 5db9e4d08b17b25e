// Package table implements the table file: a schema header followed by
// a fixed-slot row array, grounded on basic-sql's
// SqlTableFile.h/SqlTableFile.cpp.
package table

import (
	"os"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/serde"
	"github.com/mstgnz/filesql/storage"
	"github.com/mstgnz/filesql/value"
)

// Magic is the 5-byte signature at the start of every table file.
const Magic = "table"

// ColumnMax is the fixed number of column-descriptor slots in the
// header, matching basic-sql's COLUMN_MAX.
const ColumnMax = 16

const columnDataElementSize = 1 + serde.ColumnNameMaxLength + 1 + 1 // 19
const columnOffset = len(Magic) + 1
const valuesOffset = columnOffset + ColumnMax*columnDataElementSize

// RowSize is the fixed width of one row slot on disk: one MaxTypeSize
// sub-slot per declared column capacity.
const RowSize = ColumnMax * serde.MaxTypeSize

// BufferedRow is a pending write captured during a transaction, keyed
// by the row index it will be written back to on commit.
type BufferedRow struct {
	RowIndex int
	Row      []value.Value
}

// File is an open table file: schema plus row storage.
type File struct {
	f            *storage.File
	numColumns   uint8
	numRows      uint8
	columns      []coltype.Column
	bufferedRows []BufferedRow
}

// Open opens the table file at path, creating it (with a zeroed header)
// when create is true, or loading its schema and row count when false.
func Open(path string, create bool) (*File, error) {
	sf := storage.New(path)
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	if err := sf.Open(flag, 0o644); err != nil {
		return nil, err
	}

	t := &File{f: sf}
	if create {
		if _, err := sf.Write([]byte(Magic)); err != nil {
			return nil, err
		}
		if _, err := sf.Write([]byte{0}); err != nil {
			return nil, err
		}
		if err := sf.WriteByteN(0, ColumnMax*columnDataElementSize); err != nil {
			return nil, err
		}
		if _, err := sf.Write([]byte{0}); err != nil {
			return nil, err
		}
		return t, nil
	}

	buf := make([]byte, len(Magic))
	if _, err := sf.Read(buf); err != nil {
		return nil, err
	}
	if string(buf) != Magic {
		return nil, fault.New(fault.InvalidFile, "bad table file magic").WithContext("path", path)
	}
	var n [1]byte
	if _, err := sf.Read(n[:]); err != nil {
		return nil, err
	}
	t.numColumns = n[0]
	for i := 0; i < int(t.numColumns); i++ {
		col, err := serde.ReadColumn(sf)
		if err != nil {
			return nil, err
		}
		t.columns = append(t.columns, col)
	}
	if err := sf.Seek(int64(valuesOffset)); err != nil {
		return nil, err
	}
	var rn [1]byte
	if _, err := sf.Read(rn[:]); err != nil {
		return nil, err
	}
	t.numRows = rn[0]
	return t, nil
}

// Columns returns the table's current schema, in declaration order.
func (t *File) Columns() []coltype.Column { return append([]coltype.Column(nil), t.columns...) }

// NumRows returns the number of occupied row slots.
func (t *File) NumRows() int { return int(t.numRows) }

// ColumnIndex returns the index of the column named name, or -1 if absent.
func (t *File) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *File) seekToColumnIndex(i int) error {
	return t.f.Seek(int64(columnOffset + i*columnDataElementSize))
}

func (t *File) seekToRowIndex(i int) error {
	return t.f.Seek(int64(valuesOffset + 1 + i*RowSize))
}

func (t *File) updateNumColumns(n uint8) error {
	if err := t.f.Seek(int64(len(Magic))); err != nil {
		return err
	}
	if _, err := t.f.Write([]byte{n}); err != nil {
		return err
	}
	t.numColumns = n
	return nil
}

// UpdateNumRows persists a new num_rows count to the header.
func (t *File) UpdateNumRows(n uint8) error {
	if err := t.f.Seek(int64(valuesOffset)); err != nil {
		return err
	}
	if _, err := t.f.Write([]byte{n}); err != nil {
		return err
	}
	t.numRows = n
	return nil
}

// AddColumn appends col to the schema, refusing when the table is
// already at ColumnMax columns. Existing row storage needs no
// migration: every row slot is pre-allocated at full ColumnMax width.
func (t *File) AddColumn(col coltype.Column) error {
	if int(t.numColumns) >= ColumnMax {
		return fault.New(fault.LimitReached, "table already has the maximum number of columns").
			WithContext("max", ColumnMax)
	}
	if err := t.seekToColumnIndex(int(t.numColumns)); err != nil {
		return err
	}
	if err := serde.WriteColumn(t.f, col); err != nil {
		return err
	}
	t.columns = append(t.columns, col)
	return t.updateNumColumns(t.numColumns + 1)
}

// Insert writes row at the given slot index, padding any undeclared
// trailing columns with zero bytes so the slot occupies exactly
// RowSize bytes.
func (t *File) Insert(index int, row []value.Value) error {
	if err := t.seekToRowIndex(index); err != nil {
		return err
	}
	for _, v := range row {
		if err := serde.WriteValue(t.f, v); err != nil {
			return err
		}
	}
	pad := RowSize - len(row)*serde.MaxTypeSize
	return t.f.WriteByteN(0, pad)
}

// GetRow reads the row stored at index using the current schema's
// column types.
func (t *File) GetRow(index int) ([]value.Value, error) {
	if err := t.seekToRowIndex(index); err != nil {
		return nil, err
	}
	row := make([]value.Value, len(t.columns))
	for i, c := range t.columns {
		v, err := serde.ReadValue(t.f, c.Type.Kind)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// RemoveRow deletes the row at index via swap-with-last: when index is
// not the last occupied slot, the last row is copied onto it; then
// num_rows is decremented.
func (t *File) RemoveRow(index int) error {
	if t.numRows != 0 {
		last, err := t.GetRow(int(t.numRows) - 1)
		if err != nil {
			return err
		}
		if err := t.Insert(index, last); err != nil {
			return err
		}
	}
	return t.UpdateNumRows(t.numRows - 1)
}

// Row is a scan result row paired with its slot index.
type Row struct {
	Index  int
	Values []value.Value
}

// Scan reads every occupied row, optionally filtering by where and
// projecting to columns (nil/empty projection means all columns, in
// schema order).
func (t *File) Scan(columns []string, where *parser.WhereClause) ([]Row, error) {
	var out []Row
	for i := 0; i < int(t.numRows); i++ {
		row, err := t.GetRow(i)
		if err != nil {
			return nil, err
		}
		if where != nil {
			idx := t.ColumnIndex(where.Column)
			if idx < 0 || !where.Matches(row[idx]) {
				continue
			}
		}
		out = append(out, Row{Index: i, Values: t.project(columns, row)})
	}
	return out, nil
}

func (t *File) project(columns []string, row []value.Value) []value.Value {
	if len(columns) == 0 {
		return row
	}
	out := make([]value.Value, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx >= 0 {
			out[i] = row[idx]
		}
	}
	return out
}

// UpdateRows applies stmt to every matching row: when inTransaction,
// matches are queued into the buffered-row list instead of being
// written to disk; otherwise they are written back in place
// immediately.
func (t *File) UpdateRows(stmt *parser.Update, inTransaction bool) (int, error) {
	whereIdx := -1
	if stmt.HasWhere {
		whereIdx = t.ColumnIndex(stmt.Where.Column)
	}
	updateIdx := t.ColumnIndex(stmt.Column)

	numModified := 0
	for i := 0; i < int(t.numRows); i++ {
		row, err := t.GetRow(i)
		if err != nil {
			return numModified, err
		}
		if stmt.HasWhere {
			if whereIdx < 0 || !stmt.Where.Matches(row[whereIdx]) {
				continue
			}
		}
		if updateIdx < 0 {
			continue
		}
		row[updateIdx] = stmt.Value

		if inTransaction {
			t.bufferedRows = append(t.bufferedRows, BufferedRow{RowIndex: i, Row: row})
		} else if err := t.Insert(i, row); err != nil {
			return numModified, err
		}
		numModified++
	}
	return numModified, nil
}

// DeleteRows removes every row matching stmt's WHERE clause. Because
// removal uses swap-with-last, the scan index is stepped back by one
// after a delete so the swapped-in row is also considered.
func (t *File) DeleteRows(stmt *parser.Delete) (int, error) {
	whereIdx := -1
	if stmt.HasWhere {
		whereIdx = t.ColumnIndex(stmt.Where.Column)
	}

	numDeleted := 0
	for i := 0; i < int(t.numRows); i++ {
		row, err := t.GetRow(i)
		if err != nil {
			return numDeleted, err
		}
		if stmt.HasWhere {
			if whereIdx < 0 || !stmt.Where.Matches(row[whereIdx]) {
				continue
			}
		}
		if err := t.RemoveRow(i); err != nil {
			return numDeleted, err
		}
		numDeleted++
		i--
	}
	return numDeleted, nil
}

// Commit writes every buffered row to its slot in place, clears the
// buffer, and flushes the file to disk.
func (t *File) Commit() error {
	for _, br := range t.bufferedRows {
		if err := t.Insert(br.RowIndex, br.Row); err != nil {
			return err
		}
	}
	t.ClearBufferedRows()
	return t.f.Flush()
}

// ClearBufferedRows discards any pending buffered updates, used on
// transaction abort.
func (t *File) ClearBufferedRows() { t.bufferedRows = nil }

// Close closes the underlying file.
func (t *File) Close() error { return t.f.Close() }

// RemoveFile closes and deletes the table file.
func (t *File) RemoveFile() error { return t.f.Remove() }
