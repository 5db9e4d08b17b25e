// Package serde implements the fixed-width binary encoding filesql uses
// for every on-disk structure, grounded on basic-sql's SerDe.h/SerDe.cpp.
//
// Every bounded string is stored as a 1-byte length prefix followed by
// a zero-padded body of a fixed maximum width; every value slot is a
// fixed MaxTypeSize-byte region regardless of its logical type. Both
// properties let ADD COLUMN and row updates avoid ever rewriting
// neighboring slots.
package serde

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/value"
)

// Wire-format limits. These mirror basic-sql's Limits.h; they are a
// format concern, not a grammar concern, so they are declared here
// rather than borrowed from the parser package.
const (
	DatabaseNameMaxSize = 16
	TableNameMaxLength  = 16
	ColumnNameMaxLength = 16
	// MaxTypeSize is the fixed width of every stored value slot.
	MaxTypeSize = 64
)

func badLen(ctx string, n int, max int) error {
	return fault.New(fault.InvalidFile, "bounded string longer than its slot").
		WithContext("where", ctx).
		WithContext("len", n).
		WithContext("max", max)
}

// WriteBoundedString writes a 1-byte length prefix followed by a
// zero-padded body of exactly maxLen bytes, matching
// write_small_string_to_file.
func WriteBoundedString(w io.Writer, s string, maxLen int) error {
	if len(s) > maxLen {
		return badLen("WriteBoundedString", len(s), maxLen)
	}
	if _, err := w.Write([]byte{byte(len(s))}); err != nil {
		return fault.Wrap(fault.Io, "write bounded string length", err)
	}
	body := make([]byte, maxLen)
	copy(body, s)
	if _, err := w.Write(body); err != nil {
		return fault.Wrap(fault.Io, "write bounded string body", err)
	}
	return nil
}

// ReadBoundedString reads a bounded string written by WriteBoundedString.
// It always consumes the full maxLen-byte body, matching
// read_small_string_from_file's "always read N to update the position
// pointer correctly" comment.
func ReadBoundedString(r io.Reader, maxLen int) (string, error) {
	var lenBuf [1]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", fault.Wrap(fault.Io, "read bounded string length", err)
	}
	n := int(lenBuf[0])
	if n > maxLen {
		return "", fault.New(fault.InvalidFile, "corrupt bounded string length").
			WithContext("len", n).WithContext("max", maxLen)
	}
	body := make([]byte, maxLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", fault.Wrap(fault.Io, "read bounded string body", err)
	}
	return string(body[:n]), nil
}

// WriteColumnType writes a declared size byte followed by a kind
// discriminator byte, matching write_sql_type.
func WriteColumnType(w io.Writer, t coltype.Type) error {
	if _, err := w.Write([]byte{t.Size, byte(t.Kind)}); err != nil {
		return fault.Wrap(fault.Io, "write column type", err)
	}
	return nil
}

// ReadColumnType reads a Type written by WriteColumnType.
func ReadColumnType(r io.Reader) (coltype.Type, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return coltype.Type{}, fault.Wrap(fault.Io, "read column type", err)
	}
	kind := coltype.Kind(buf[1])
	switch kind {
	case coltype.Int, coltype.Varchar, coltype.Float, coltype.Char:
	default:
		return coltype.Type{}, fault.New(fault.InvalidFile, "unknown column type discriminator").
			WithContext("kind", int(kind))
	}
	return coltype.Type{Size: buf[0], Kind: kind}, nil
}

// WriteColumn writes a column descriptor: a bounded name followed by
// its type. 17 (1 + ColumnNameMaxLength) + 2 = 19 bytes total.
func WriteColumn(w io.Writer, c coltype.Column) error {
	if err := WriteBoundedString(w, c.Name, ColumnNameMaxLength); err != nil {
		return err
	}
	return WriteColumnType(w, c.Type)
}

// ReadColumn reads a column descriptor written by WriteColumn.
func ReadColumn(r io.Reader) (coltype.Column, error) {
	name, err := ReadBoundedString(r, ColumnNameMaxLength)
	if err != nil {
		return coltype.Column{}, err
	}
	typ, err := ReadColumnType(r)
	if err != nil {
		return coltype.Column{}, err
	}
	return coltype.Column{Name: name, Type: typ}, nil
}

// WriteValue writes a value into a fixed MaxTypeSize-byte slot,
// zero-padding whatever is left over, matching write_sql_value.
// Null is written as a string value of size 0: the slot is never
// written at all when the row is marked empty, so Null only ever
// round-trips through WriteValue when a caller chooses to store it
// explicitly.
func WriteValue(w io.Writer, v value.Value) error {
	written := 0
	switch v.Kind() {
	case value.Float:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v.Float()))
		if _, err := w.Write(buf[:]); err != nil {
			return fault.Wrap(fault.Io, "write float value", err)
		}
		written = 4
	case value.String:
		s := v.String()
		if len(s) > MaxTypeSize-1 {
			return badLen("WriteValue/string", len(s), MaxTypeSize-1)
		}
		if _, err := w.Write([]byte{byte(len(s))}); err != nil {
			return fault.Wrap(fault.Io, "write string value length", err)
		}
		if _, err := w.Write([]byte(s)); err != nil {
			return fault.Wrap(fault.Io, "write string value body", err)
		}
		written = 1 + len(s)
	case value.Integer:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(v.Integer()))
		if _, err := w.Write(buf[:]); err != nil {
			return fault.Wrap(fault.Io, "write integer value", err)
		}
		written = 4
	case value.Null:
		// Nothing meaningful to write; fall through to padding.
	default:
		return fault.New(fault.InvalidFile, "unknown value kind").WithContext("kind", int(v.Kind()))
	}

	pad := make([]byte, MaxTypeSize-written)
	if _, err := w.Write(pad); err != nil {
		return fault.Wrap(fault.Io, "pad value slot", err)
	}
	return nil
}

// ReadValue reads a value slot written by WriteValue, given the
// declared column type it holds, matching read_sql_value.
func ReadValue(r io.Reader, expected coltype.Kind) (value.Value, error) {
	slot := make([]byte, MaxTypeSize)
	if _, err := io.ReadFull(r, slot); err != nil {
		return value.Value{}, fault.Wrap(fault.Io, "read value slot", err)
	}

	switch expected {
	case coltype.Float:
		bits := binary.LittleEndian.Uint32(slot[:4])
		return value.NewFloat(math.Float32frombits(bits)), nil
	case coltype.Varchar, coltype.Char:
		n := int(slot[0])
		if n > MaxTypeSize-1 {
			return value.Value{}, fault.New(fault.InvalidFile, "corrupt string value length").
				WithContext("len", n)
		}
		return value.NewString(string(slot[1 : 1+n])), nil
	case coltype.Int:
		bits := binary.LittleEndian.Uint32(slot[:4])
		return value.NewInteger(int32(bits)), nil
	default:
		return value.Value{}, fault.New(fault.InvalidFile, "unknown expected column kind").
			WithContext("kind", int(expected))
	}
}
