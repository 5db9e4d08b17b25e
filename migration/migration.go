// Package migration keeps an append-only ledger of ALTER TABLE ADD
// COLUMN events applied to a table, adapted from the teacher's
// migration.MigrationManager. The embedded engine has no concept of
// replaying or rolling back a schema change (spec.md's Non-goals
// exclude crash recovery entirely), so this package only ever grows:
// there is no Apply/Rollback driver, just a recorder and a reader.
package migration

import (
	"fmt"
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/schema"
)

// Migration is one recorded ALTER TABLE ADD COLUMN event. AppliedAt is
// supplied by the caller rather than read from the wall clock here, so
// that ledgers stay deterministic in tests.
type Migration struct {
	Table     string
	Column    coltype.Column
	Version   string
	AppliedAt time.Time
}

// Ledger accumulates Migration records for one database, keyed by table.
type Ledger struct {
	entries map[string][]Migration
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string][]Migration)}
}

// Record appends a migration for table. Its Column is the last column
// schema.Added finds in the before/after diff, and its Version is the
// table name joined with the new column count (e.g. "t.2").
func (l *Ledger) Record(table string, before, after []coltype.Column, appliedAt time.Time) Migration {
	added := schema.Added(before, after)
	var col coltype.Column
	if len(added) > 0 {
		col = added[len(added)-1]
	}

	m := Migration{
		Table:     table,
		Column:    col,
		Version:   fmt.Sprintf("%s.%d", table, len(after)),
		AppliedAt: appliedAt,
	}
	l.entries[table] = append(l.entries[table], m)
	return m
}

// For returns every migration recorded for table, oldest first.
func (l *Ledger) For(table string) []Migration {
	return append([]Migration(nil), l.entries[table]...)
}
