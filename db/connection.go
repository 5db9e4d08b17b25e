// Package db implements the top-level Manager: the named-database
// directory and the "current database" selection that every statement
// except USE/CREATE DATABASE/DROP DATABASE dispatches through, grounded
// on basic-sql's SqlDatabaseManager and, for its named-resource-map
// shape, the teacher's db.ConnectionManager.
package db

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/database"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/migration"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/serde"
)

// Manager holds every opened database behind a name, plus which one is
// currently selected. It is safe for concurrent use, mirroring the
// RWMutex-guarded named-resource map idiom of the teacher's
// ConnectionManager, even though the embedded engine itself is
// single-threaded per statement.
type Manager struct {
	mu        sync.RWMutex
	root      string
	databases map[string]*database.Database
	current   string
}

// NewManager returns a Manager whose database directories live under root.
func NewManager(root string) *Manager {
	return &Manager{root: root, databases: make(map[string]*database.Database)}
}

func (m *Manager) dirFor(name string) string { return filepath.Join(m.root, name) }

// CreateDatabase creates a new database directory named name. It
// refuses duplicates and names longer than DatabaseNameMaxSize.
func (m *Manager) CreateDatabase(name string) error {
	if len(name) > serde.DatabaseNameMaxSize {
		return fault.New(fault.LimitReached, "database name too long").WithContext("name", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.databases[name]; ok {
		return fault.New(fault.AlreadyExists, "database already exists").WithContext("name", name)
	}

	d, err := database.Open(name, m.dirFor(name), true)
	if err != nil {
		return err
	}
	m.databases[name] = d
	return nil
}

// DropDatabase removes database name, closing it first. If it was the
// current selection, the selection is cleared.
func (m *Manager) DropDatabase(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.databases[name]
	if !ok {
		var err error
		d, err = database.Open(name, m.dirFor(name), false)
		if err != nil {
			return err
		}
	}

	if err := d.Remove(); err != nil {
		return err
	}
	delete(m.databases, name)
	if m.current == name {
		m.current = ""
	}
	return nil
}

// UseDatabase selects database name as current, opening it from disk
// if it is not already open. Opening an existing database never resets
// its state.
func (m *Manager) UseDatabase(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.databases[name]; !ok {
		d, err := database.Open(name, m.dirFor(name), false)
		if err != nil {
			return err
		}
		m.databases[name] = d
	}
	m.current = name
	return nil
}

// currentDB returns the selected database, or fault.Missing if none is selected.
func (m *Manager) currentDB() (*database.Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == "" {
		return nil, fault.New(fault.Missing, "no database selected")
	}
	d, ok := m.databases[m.current]
	if !ok {
		panic("filesql: current database name set but not open: " + m.current)
	}
	return d, nil
}

// CurrentDatabaseName returns the name of the selected database, or ""
// if none is selected.
func (m *Manager) CurrentDatabaseName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CreateTable dispatches to the current database.
func (m *Manager) CreateTable(name string, columns []coltype.Column) error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	return d.CreateTable(name, columns)
}

// DropTable dispatches to the current database.
func (m *Manager) DropTable(name string) error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	return d.RemoveTable(name)
}

// Select dispatches to the current database.
func (m *Manager) Select(stmt *parser.Select) (*database.QueryResult, error) {
	d, err := m.currentDB()
	if err != nil {
		return nil, err
	}
	return d.Select(stmt)
}

// Alter dispatches to the current database, timestamping the
// migration-ledger entry with appliedAt.
func (m *Manager) Alter(stmt *parser.AlterAddColumn, appliedAt time.Time) error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	return d.Alter(stmt, appliedAt)
}

// Migrations dispatches to the current database.
func (m *Manager) Migrations(table string) ([]migration.Migration, error) {
	d, err := m.currentDB()
	if err != nil {
		return nil, err
	}
	return d.Migrations(table), nil
}

// Insert dispatches to the current database.
func (m *Manager) Insert(stmt *parser.Insert) error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	return d.Insert(stmt)
}

// Update dispatches to the current database.
func (m *Manager) Update(stmt *parser.Update) (int, error) {
	d, err := m.currentDB()
	if err != nil {
		return 0, err
	}
	return d.Update(stmt)
}

// Delete dispatches to the current database.
func (m *Manager) Delete(stmt *parser.Delete) (int, error) {
	d, err := m.currentDB()
	if err != nil {
		return 0, err
	}
	return d.Delete(stmt)
}

// BeginTransaction dispatches to the current database.
func (m *Manager) BeginTransaction() error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	d.BeginTransaction()
	return nil
}

// CommitTransaction dispatches to the current database.
func (m *Manager) CommitTransaction() error {
	d, err := m.currentDB()
	if err != nil {
		return err
	}
	return d.CommitTransaction()
}

// Close closes every open database.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, d := range m.databases {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
