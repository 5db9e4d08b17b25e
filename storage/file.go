// Package storage wraps raw file handles for filesql's on-disk
// structures, grounded on basic-sql's SqlFile.h/SqlFile.cpp. Every
// short read/write or already-open/already-closed condition the
// original reported via an out-parameter SqlError becomes a returned
// *fault.Error here.
package storage

import (
	"io"
	"os"

	"github.com/mstgnz/filesql/fault"
)

// File is a named handle to an on-disk file. The zero value is closed
// and unopened; construct with New.
type File struct {
	name string
	f    *os.File
}

// New returns a File bound to name. It does not open the file, matching
// SqlFile's constructor.
func New(name string) *File {
	return &File{name: name}
}

// Name returns the file's path.
func (f *File) Name() string {
	return f.name
}

// IsClosed reports whether the file has no open handle.
func (f *File) IsClosed() bool {
	return f.f == nil
}

// Open opens the file with the given os.OpenFile flags and permission.
func (f *File) Open(flag int, perm os.FileMode) error {
	if f.f != nil {
		return fault.New(fault.FileAlreadyOpened, "file already opened").WithContext("name", f.name)
	}
	handle, err := os.OpenFile(f.name, flag, perm)
	if err != nil {
		return fault.Wrap(fault.BadFileOpen, "open file", err).WithContext("name", f.name)
	}
	f.f = handle
	return nil
}

// Close closes the file if open. Closing an already-closed file is a no-op.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	if err != nil {
		return fault.Wrap(fault.BadFileClose, "close file", err).WithContext("name", f.name)
	}
	return nil
}

// Write writes p in full.
func (f *File) Write(p []byte) (int, error) {
	if f.f == nil {
		return 0, fault.New(fault.FileClosed, "write to closed file").WithContext("name", f.name)
	}
	n, err := f.f.Write(p)
	if err != nil || n != len(p) {
		return n, fault.Wrap(fault.Io, "short write", err).WithContext("name", f.name)
	}
	return n, nil
}

// Read fills p in full.
func (f *File) Read(p []byte) (int, error) {
	if f.f == nil {
		return 0, fault.New(fault.FileClosed, "read from closed file").WithContext("name", f.name)
	}
	n, err := io.ReadFull(f.f, p)
	if err != nil {
		return n, fault.Wrap(fault.Io, "short read", err).WithContext("name", f.name)
	}
	return n, nil
}

// Seek seeks to an absolute offset from the start of the file.
func (f *File) Seek(offset int64) error {
	if f.f == nil {
		return fault.New(fault.FileClosed, "seek on closed file").WithContext("name", f.name)
	}
	if _, err := f.f.Seek(offset, io.SeekStart); err != nil {
		return fault.Wrap(fault.Io, "seek", err).WithContext("name", f.name)
	}
	return nil
}

// Position returns the current absolute offset.
func (f *File) Position() (int64, error) {
	if f.f == nil {
		return 0, fault.New(fault.FileClosed, "position on closed file").WithContext("name", f.name)
	}
	pos, err := f.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fault.Wrap(fault.Io, "position", err).WithContext("name", f.name)
	}
	return pos, nil
}

// Flush flushes buffered writes to the underlying device.
func (f *File) Flush() error {
	if f.f == nil {
		return fault.New(fault.FileClosed, "flush closed file").WithContext("name", f.name)
	}
	if err := f.f.Sync(); err != nil {
		return fault.Wrap(fault.Io, "flush", err).WithContext("name", f.name)
	}
	return nil
}

// WriteByteN writes b repeated n times, matching write_byte_n's padding idiom.
func (f *File) WriteByteN(b byte, n int) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	_, err := f.Write(buf)
	return err
}

// Remove closes and deletes the file.
func (f *File) Remove() error {
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Remove(f.name); err != nil {
		return fault.Wrap(fault.Io, "remove file", err).WithContext("name", f.name)
	}
	return nil
}

// Exists reports whether a file at this path currently exists.
func (f *File) Exists() bool {
	_, err := os.Stat(f.name)
	return err == nil
}
