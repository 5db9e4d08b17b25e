// Package database implements a single database: its table catalog,
// open table handles, join evaluation, and single-table transaction
// state, grounded on basic-sql's SqlDatabase.h.
package database

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mstgnz/filesql/catalog"
	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/migration"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/table"
	"github.com/mstgnz/filesql/value"
)

// QueryResult is the result of a SELECT: the projected column list and
// the matching rows.
type QueryResult struct {
	Columns []coltype.Column
	Rows    [][]value.Value
}

// Database is one open database directory: its catalog, its open table
// handles, and its transaction state.
type Database struct {
	name   string
	dir    string
	index  *catalog.File
	tables map[string]*table.File
	ledger *migration.Ledger

	inTransaction    bool
	abortTransaction bool
	locks            []string
}

func indexPath(dir string) string { return filepath.Join(dir, "index.db-index") }
func tablePath(dir, name string) string { return filepath.Join(dir, name+".table") }
func lockPath(dir, name string) string { return filepath.Join(dir, name+".lock") }

// Open opens (or, when create is true, creates) the database directory
// at dir. Opening an existing database loads every cataloged table's
// handle; it never resets existing state.
func Open(name, dir string, create bool) (*Database, error) {
	if create {
		if _, err := os.Stat(dir); err == nil {
			return nil, fault.New(fault.AlreadyExists, "database already exists").WithContext("name", name)
		}
		if err := os.Mkdir(dir, 0o700); err != nil {
			return nil, fault.Wrap(fault.BadMkDir, "create database directory", err).WithContext("name", name)
		}
	} else {
		if _, err := os.Stat(dir); err != nil {
			return nil, fault.New(fault.Missing, "database does not exist").WithContext("name", name)
		}
	}

	idx, err := catalog.Open(indexPath(dir), create)
	if err != nil {
		return nil, err
	}

	db := &Database{name: name, dir: dir, index: idx, tables: map[string]*table.File{}, ledger: migration.NewLedger()}
	if !create {
		for i := 0; i < int(idx.NumTables()); i++ {
			tn, err := idx.GetTableName(i)
			if err != nil {
				return nil, err
			}
			tf, err := table.Open(tablePath(dir, tn), false)
			if err != nil {
				return nil, err
			}
			db.tables[tn] = tf
		}
	}
	return db, nil
}

// Name returns the database's name.
func (db *Database) Name() string { return db.name }

// TableNames returns every table currently cataloged, in no particular
// order (the catalog itself is insertion-ordered but swap-with-last
// deletes scramble that order, so callers needing stability should
// sort the result).
func (db *Database) TableNames() []string {
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	return names
}

// DumpTable returns table's full schema and every row it currently
// holds, used by the mirror/* packages to replay a database into a
// live external RDBMS.
func (db *Database) DumpTable(name string) ([]coltype.Column, [][]value.Value, error) {
	tf, err := db.lookupTable(name)
	if err != nil {
		return nil, nil, err
	}
	rows, err := tf.Scan(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	out := make([][]value.Value, len(rows))
	for i, r := range rows {
		out[i] = r.Values
	}
	return tf.Columns(), out, nil
}

func (db *Database) lookupTable(name string) (*table.File, error) {
	if _, err := db.index.IndexOf(name); err != nil {
		return nil, err
	}
	tf, ok := db.tables[name]
	if !ok {
		panic("filesql: table present in catalog but missing from handle map: " + name)
	}
	return tf, nil
}

// CreateTable creates a new table named name with the given columns.
func (db *Database) CreateTable(name string, columns []coltype.Column) error {
	if _, err := db.index.IndexOf(name); err == nil {
		return fault.New(fault.AlreadyExists, "table already exists").WithContext("name", name)
	}

	tf, err := table.Open(tablePath(db.dir, name), true)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if err := tf.AddColumn(c); err != nil {
			return err
		}
	}

	db.tables[name] = tf
	if err := db.index.Insert(name); err != nil {
		return err
	}
	return nil
}

// RemoveTable drops table name: catalog entry first, then the table
// file and in-memory handle.
func (db *Database) RemoveTable(name string) error {
	idx, err := db.index.IndexOf(name)
	if err != nil {
		return err
	}
	tf, ok := db.tables[name]
	if !ok {
		panic("filesql: table present in catalog but missing from handle map: " + name)
	}

	if err := db.index.Remove(idx); err != nil {
		return err
	}
	if err := tf.RemoveFile(); err != nil {
		return err
	}
	delete(db.tables, name)
	return nil
}

// Select runs a SELECT statement, dispatching to a plain scan or the
// two-table join per stmt.Join.
func (db *Database) Select(stmt *parser.Select) (*QueryResult, error) {
	left, err := db.lookupTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	if stmt.Join == parser.NoJoin {
		var where *parser.WhereClause
		if stmt.HasWhere {
			w := stmt.Where
			where = &w
		}
		rows, err := left.Scan(stmt.Columns, where)
		if err != nil {
			return nil, err
		}
		cols := projectedColumns(left.Columns(), stmt.Columns)
		out := make([][]value.Value, len(rows))
		for i, r := range rows {
			out[i] = r.Values
		}
		return &QueryResult{Columns: cols, Rows: out}, nil
	}

	right, err := db.lookupTable(stmt.JoinedTable)
	if err != nil {
		return nil, err
	}

	leftRows, err := left.Scan(nil, nil)
	if err != nil {
		return nil, err
	}
	rightRows, err := right.Scan(nil, nil)
	if err != nil {
		return nil, err
	}

	leftColIdx := left.ColumnIndex(stmt.PrimaryJoinColumn)
	rightColIdx := right.ColumnIndex(stmt.SecondaryJoinColumn)
	if leftColIdx < 0 || rightColIdx < 0 {
		return nil, fault.New(fault.Missing, "join column not found").
			WithContext("left", stmt.PrimaryJoinColumn).WithContext("right", stmt.SecondaryJoinColumn)
	}

	cols := append(append([]coltype.Column(nil), left.Columns()...), right.Columns()...)
	var out [][]value.Value
	for _, lr := range leftRows {
		matched := false
		for _, rr := range rightRows {
			if lr.Values[leftColIdx].Equal(rr.Values[rightColIdx]) {
				matched = true
				row := append(append([]value.Value(nil), lr.Values...), rr.Values...)
				out = append(out, row)
			}
		}
		if stmt.Join == parser.LeftOuterJoin && !matched {
			row := append([]value.Value(nil), lr.Values...)
			for len(row) < len(cols) {
				row = append(row, value.NewNull())
			}
			out = append(out, row)
		}
	}
	return &QueryResult{Columns: cols, Rows: out}, nil
}

func projectedColumns(all []coltype.Column, names []string) []coltype.Column {
	if len(names) == 0 {
		return all
	}
	out := make([]coltype.Column, 0, len(names))
	for _, n := range names {
		for _, c := range all {
			if c.Name == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Alter appends a column to an existing table and records the change
// in the table's migration ledger, timestamped with appliedAt (the
// caller supplies the clock so the ledger stays deterministic in
// tests).
func (db *Database) Alter(stmt *parser.AlterAddColumn, appliedAt time.Time) error {
	tf, err := db.lookupTable(stmt.Table)
	if err != nil {
		return err
	}
	before := tf.Columns()
	if err := tf.AddColumn(stmt.Column); err != nil {
		return err
	}
	db.ledger.Record(stmt.Table, before, tf.Columns(), appliedAt)
	return nil
}

// Migrations returns every ALTER TABLE ADD COLUMN recorded for table,
// oldest first.
func (db *Database) Migrations(table string) []migration.Migration {
	return db.ledger.For(table)
}

// Insert appends a new row to the given table.
func (db *Database) Insert(stmt *parser.Insert) error {
	tf, err := db.lookupTable(stmt.Table)
	if err != nil {
		return err
	}
	n := tf.NumRows()
	if err := tf.Insert(n, stmt.Values); err != nil {
		return err
	}
	return tf.UpdateNumRows(uint8(n + 1))
}

// Update runs an UPDATE statement. Inside a transaction, it first
// acquires the per-table lock file (failing the whole transaction if
// already held) before queuing the change into the table's buffer;
// outside a transaction, matching rows are written immediately.
func (db *Database) Update(stmt *parser.Update) (int, error) {
	tf, err := db.lookupTable(stmt.Table)
	if err != nil {
		return 0, err
	}

	if db.inTransaction {
		lp := lockPath(db.dir, stmt.Table)
		if _, statErr := os.Stat(lp); statErr == nil {
			db.abortTransaction = true
			return 0, fault.New(fault.FileAlreadyOpened, "table lock already held").WithContext("table", stmt.Table)
		}
		f, err := os.OpenFile(lp, os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			db.abortTransaction = true
			return 0, fault.New(fault.FileAlreadyOpened, "table lock already held").WithContext("table", stmt.Table)
		}
		f.Close()
		db.locks = append(db.locks, stmt.Table)
	}

	n, err := tf.UpdateRows(stmt, db.inTransaction)
	if err != nil {
		if db.inTransaction {
			db.abortTransaction = true
		}
		return n, err
	}
	return n, nil
}

// Delete runs a DELETE statement. Deletes are never transactional.
func (db *Database) Delete(stmt *parser.Delete) (int, error) {
	tf, err := db.lookupTable(stmt.Table)
	if err != nil {
		return 0, err
	}
	return tf.DeleteRows(stmt)
}

// BeginTransaction marks the database as being inside a transaction.
func (db *Database) BeginTransaction() {
	db.inTransaction = true
}

// CommitTransaction flushes (or, on abort, discards) every locked
// table's buffered writes, removes all held lock files, and clears the
// transaction state.
func (db *Database) CommitTransaction() error {
	db.inTransaction = false

	var commitErr error
	if db.abortTransaction {
		commitErr = fault.New(fault.FileAlreadyOpened, "transaction aborted")
	}

	for _, name := range db.locks {
		tf := db.tables[name]
		if !db.abortTransaction {
			if err := tf.Commit(); err != nil && commitErr == nil {
				commitErr = err
			}
		} else {
			tf.ClearBufferedRows()
		}
		_ = os.Remove(lockPath(db.dir, name))
	}

	db.locks = nil
	db.abortTransaction = false
	return commitErr
}

// Close closes the catalog and every open table handle.
func (db *Database) Close() error {
	var firstErr error
	for _, tf := range db.tables {
		if err := tf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := db.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Remove closes the database, deletes every table file and the index
// file, then removes the (now empty) directory.
func (db *Database) Remove() error {
	if err := db.Close(); err != nil {
		return err
	}
	if err := db.index.RemoveFile(); err != nil {
		return err
	}
	for _, tf := range db.tables {
		if err := tf.RemoveFile(); err != nil {
			return err
		}
	}
	return os.Remove(db.dir)
}
