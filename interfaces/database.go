// Package interfaces decouples cmd/filesql (and anything else driving
// a session) from the concrete db.Manager, grounded on sqldef-sqldef's
// database/file pseudo-adapter pattern: a narrow interface standing in
// for a concrete storage engine.
package interfaces

import (
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/database"
	"github.com/mstgnz/filesql/migration"
	"github.com/mstgnz/filesql/parser"
)

// Engine is everything a session driver (the repl package, a future
// embedding API) needs from the top-level database manager. db.Manager
// satisfies it.
type Engine interface {
	CreateDatabase(name string) error
	DropDatabase(name string) error
	UseDatabase(name string) error
	CurrentDatabaseName() string

	CreateTable(name string, columns []coltype.Column) error
	DropTable(name string) error

	Select(stmt *parser.Select) (*database.QueryResult, error)
	Alter(stmt *parser.AlterAddColumn, appliedAt time.Time) error
	Migrations(table string) ([]migration.Migration, error)
	Insert(stmt *parser.Insert) error
	Update(stmt *parser.Update) (int, error)
	Delete(stmt *parser.Delete) (int, error)

	BeginTransaction() error
	CommitTransaction() error

	Close() error
}
