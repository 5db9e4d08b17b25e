// Package mysql replays a filesql database onto a live MySQL instance,
// grounded on sqldef-sqldef's driver.Database (database/sql over a
// dialect-specific DSN) for the connection shape and on basic-sql's own
// table/row model for what gets replayed. It is a maintenance operation
// invoked programmatically (MIRROR TO is not part of the SQL grammar),
// not a member of the parsed statement set.
package mysql

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/database"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/value"
)

// Mirror holds a connection to a target MySQL instance.
type Mirror struct {
	db *sql.DB
}

// Open connects to MySQL using dsn (a go-sql-driver/mysql DSN, e.g.
// "user:pass@tcp(127.0.0.1:3306)/dbname").
func Open(dsn string) (*Mirror, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fault.Wrap(fault.Io, "open mysql connection", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fault.Wrap(fault.Io, "ping mysql", err)
	}
	return &Mirror{db: db}, nil
}

// Close closes the underlying connection.
func (m *Mirror) Close() error { return m.db.Close() }

// Sync walks every table in src and replays its schema and rows against
// the target, dropping and recreating each table so the mirror always
// reflects src's current state. A failure partway through leaves the
// target partially populated; this is not attempted as a transaction
// because schema changes are frequently non-transactional on the target
// dialect (see SPEC_FULL.md's non-goals for mirror/*).
func (m *Mirror) Sync(src *database.Database) error {
	names := src.TableNames()
	sort.Strings(names)

	for _, name := range names {
		columns, rows, err := src.DumpTable(name)
		if err != nil {
			return err
		}
		if err := m.recreateTable(name, columns); err != nil {
			return err
		}
		if err := m.insertRows(name, columns, rows); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mirror) recreateTable(name string, columns []coltype.Column) error {
	if _, err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", name)); err != nil {
		return fault.Wrap(fault.Io, "drop mirrored table", err).WithContext("table", name)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("`%s` %s", c.Name, ddlType(c.Type))
	}
	ddl := fmt.Sprintf("CREATE TABLE `%s` (%s)", name, strings.Join(defs, ", "))
	if _, err := m.db.Exec(ddl); err != nil {
		return fault.Wrap(fault.Io, "create mirrored table", err).WithContext("table", name)
	}
	return nil
}

func (m *Mirror) insertRows(name string, columns []coltype.Column, rows [][]value.Value) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	stmt := fmt.Sprintf("INSERT INTO `%s` VALUES (%s)", name, placeholders)

	for _, row := range rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = toArg(v)
		}
		if _, err := m.db.Exec(stmt, args...); err != nil {
			return fault.Wrap(fault.Io, "insert mirrored row", err).WithContext("table", name)
		}
	}
	return nil
}

func ddlType(t coltype.Type) string {
	switch t.Kind {
	case coltype.Int:
		return "INT"
	case coltype.Float:
		return "FLOAT"
	case coltype.Varchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Size)
	case coltype.Char:
		return fmt.Sprintf("CHAR(%d)", t.Size)
	default:
		return "VARCHAR(64)"
	}
}

func toArg(v value.Value) interface{} {
	switch v.Kind() {
	case value.Null:
		return nil
	case value.Integer:
		return v.Integer()
	case value.Float:
		return v.Float()
	case value.String:
		return v.String()
	default:
		return nil
	}
}
