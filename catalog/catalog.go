// Package catalog implements the index file: a bounded array of table
// names backing a database's catalog, grounded on basic-sql's
// SqlIndexFile.h/SqlIndexFile.cpp.
package catalog

import (
	"os"

	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/serde"
	"github.com/mstgnz/filesql/storage"
)

// Magic is the 8-byte signature written at the start of every index file.
const Magic = "index-db"

// MaxTables is the number of fixed table-name slots in the index file,
// matching basic-sql's ColumnMax reuse for the table slot count.
const MaxTables = 16

const headerSize = len(Magic) + 1
const slotSize = 1 + serde.TableNameMaxLength

// File is an open index file: the catalog of table names for one database.
type File struct {
	f         *storage.File
	numTables uint8
}

// Open opens the index file at path, creating it (with a zeroed header)
// when create is true, or validating its magic and loading num_tables
// when false.
func Open(path string, create bool) (*File, error) {
	sf := storage.New(path)
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	if err := sf.Open(flag, 0o644); err != nil {
		return nil, err
	}

	idx := &File{f: sf}
	if create {
		if _, err := sf.Write([]byte(Magic)); err != nil {
			return nil, err
		}
		if _, err := sf.Write([]byte{0}); err != nil {
			return nil, err
		}
		return idx, nil
	}

	buf := make([]byte, len(Magic))
	if _, err := sf.Read(buf); err != nil {
		return nil, err
	}
	if string(buf) != Magic {
		return nil, fault.New(fault.InvalidFile, "bad index file magic").WithContext("path", path)
	}
	var n [1]byte
	if _, err := sf.Read(n[:]); err != nil {
		return nil, err
	}
	idx.numTables = n[0]
	return idx, nil
}

// NumTables returns the number of table-name slots currently in use.
func (idx *File) NumTables() uint8 { return idx.numTables }

func (idx *File) seekToSlot(index int) error {
	return idx.f.Seek(int64(headerSize + slotSize*index))
}

// GetTableName reads the table name stored at slot index.
func (idx *File) GetTableName(index int) (string, error) {
	if err := idx.seekToSlot(index); err != nil {
		return "", err
	}
	return serde.ReadBoundedString(idx.f, serde.TableNameMaxLength)
}

// InsertTableName overwrites slot index with name. The caller is
// responsible for having reserved the slot via UpdateNumTables.
func (idx *File) InsertTableName(index int, name string) error {
	if err := idx.seekToSlot(index); err != nil {
		return err
	}
	return serde.WriteBoundedString(idx.f, name, serde.TableNameMaxLength)
}

// IndexOf returns the slot index of name, or fault.Missing if absent.
func (idx *File) IndexOf(name string) (int, error) {
	for i := 0; i < int(idx.numTables); i++ {
		got, err := idx.GetTableName(i)
		if err != nil {
			return -1, err
		}
		if got == name {
			return i, nil
		}
	}
	return -1, fault.New(fault.Missing, "table not found in catalog").WithContext("name", name)
}

// Remove deletes slot i by overwriting it with the last slot, then
// shrinking num_tables, matching SqlIndexFile::remove's swap-with-last.
func (idx *File) Remove(i int) error {
	last, err := idx.GetTableName(int(idx.numTables) - 1)
	if err != nil {
		return err
	}
	if err := idx.InsertTableName(i, last); err != nil {
		return err
	}
	return idx.UpdateNumTables(idx.numTables - 1)
}

// UpdateNumTables persists a new num_tables count to the header,
// updating the in-memory count only after the write succeeds.
func (idx *File) UpdateNumTables(n uint8) error {
	if err := idx.f.Seek(int64(len(Magic))); err != nil {
		return err
	}
	if _, err := idx.f.Write([]byte{n}); err != nil {
		return err
	}
	idx.numTables = n
	return nil
}

// Insert appends name as a new slot, growing num_tables by one. It
// refuses when the catalog is already at MaxTables. The slot is written
// before the header count is bumped, matching the rule that header
// updates persist only after their payload write succeeds.
func (idx *File) Insert(name string) error {
	if idx.numTables >= MaxTables {
		return fault.New(fault.LimitReached, "catalog is full").WithContext("max", MaxTables)
	}
	slot := int(idx.numTables)
	if err := idx.InsertTableName(slot, name); err != nil {
		return err
	}
	return idx.UpdateNumTables(idx.numTables + 1)
}

// Close closes the underlying file.
func (idx *File) Close() error { return idx.f.Close() }

// RemoveFile closes and deletes the index file.
func (idx *File) RemoveFile() error { return idx.f.Remove() }
