// Package parser turns a token stream into SQL statements, grounded on
// basic-sql's parser::SqlStatement and parser::SqlParser.
package parser

import (
	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/token"
	"github.com/mstgnz/filesql/value"
)

const (
	DatabaseNameMaxSize = 16
	TableNameMaxLength  = 16
	ColumnNameMaxLength = 16
	ColumnMax           = 16
)

// JoinType identifies how a SELECT's two table references are joined.
type JoinType int

const (
	NoJoin JoinType = iota
	InnerJoin
	LeftOuterJoin
)

// WhereClause is a single column/operator/value predicate, grounded on
// basic-sql's SqlWhereClause.
type WhereClause struct {
	Column string
	Op     token.Operator
	Value  value.Value
}

// Matches reports whether v satisfies this clause's operator and value.
func (w WhereClause) Matches(v value.Value) bool {
	switch w.Op {
	case token.Equals:
		return v.Equal(w.Value)
	case token.GreaterThan:
		return v.GreaterThan(w.Value)
	case token.NotEqual:
		return v.NotEqual(w.Value)
	default:
		return false
	}
}

// CreateDatabase is "CREATE DATABASE <name>;".
type CreateDatabase struct {
	Name string
}

// DropDatabase is "DROP DATABASE <name>;".
type DropDatabase struct {
	Name string
}

// UseDatabase is "USE <name>;".
type UseDatabase struct {
	Name string
}

// CreateTable is "CREATE TABLE <name> (col type, ...);".
type CreateTable struct {
	Table   string
	Columns []coltype.Column
}

// DropTable is "DROP TABLE <name>;".
type DropTable struct {
	Table string
}

// AlterAddColumn is "ALTER TABLE <name> ADD <col> <type>;".
type AlterAddColumn struct {
	Table  string
	Column coltype.Column
}

// Insert is "INSERT INTO <name> VALUES (v, ...);".
type Insert struct {
	Table  string
	Values []value.Value
}

// Update is "UPDATE <name> SET <col> = <value> WHERE ...;". HasWhere is
// false when no WHERE clause was present, in which case every row is
// updated.
type Update struct {
	Table    string
	Column   string
	Value    value.Value
	HasWhere bool
	Where    WhereClause
}

// Delete is "DELETE FROM <name> WHERE ...;". Deletes are never part of
// a transaction (see database package).
type Delete struct {
	Table    string
	HasWhere bool
	Where    WhereClause
}

// Select is "SELECT <cols|*> FROM <name> [alias] [join] [WHERE ...];".
//
// Columns is nil when "*" was requested. When Join is not NoJoin, the
// query instead carries a join predicate in PrimaryJoinColumn /
// SecondaryJoinColumn and HasWhere is always false: basic-sql's grammar
// does not allow a WHERE clause alongside a join.
type Select struct {
	Table   string
	Alias   string
	Columns []string

	HasWhere bool
	Where    WhereClause

	Join                JoinType
	JoinedTable         string
	JoinedAlias         string
	PrimaryJoinColumn   string
	SecondaryJoinColumn string
}

// BeginTransaction is "BEGIN TRANSACTION;".
type BeginTransaction struct{}

// CommitTransaction is "COMMIT;".
type CommitTransaction struct{}

// Statement is the sum type of every parseable SQL statement. Exactly
// one field is non-nil.
type Statement struct {
	CreateDatabase   *CreateDatabase
	DropDatabase     *DropDatabase
	UseDatabase      *UseDatabase
	CreateTable      *CreateTable
	DropTable        *DropTable
	AlterAddColumn   *AlterAddColumn
	Insert           *Insert
	Update           *Update
	Delete           *Delete
	Select           *Select
	BeginTransaction *BeginTransaction
	CommitTransaction *CommitTransaction
}
