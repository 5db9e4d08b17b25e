package migration

import (
	"testing"
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/stretchr/testify/assert"
)

func TestLedgerRecord(t *testing.T) {
	l := NewLedger()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	before := []coltype.Column{{Name: "a", Type: coltype.NewFixed(coltype.Int)}}
	after := append(before, coltype.Column{Name: "b", Type: coltype.NewFixed(coltype.Float)})

	m := l.Record("t", before, after, at)

	assert.Equal(t, "t", m.Table)
	assert.Equal(t, "b", m.Column.Name)
	assert.Equal(t, "t.2", m.Version)
	assert.True(t, m.AppliedAt.Equal(at))
}

func TestLedgerFor(t *testing.T) {
	l := NewLedger()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	before := []coltype.Column{{Name: "a", Type: coltype.NewFixed(coltype.Int)}}
	after1 := append(before, coltype.Column{Name: "b", Type: coltype.NewFixed(coltype.Int)})
	after2 := append(after1, coltype.Column{Name: "c", Type: coltype.NewFixed(coltype.Int)})

	l.Record("t", before, after1, at)
	l.Record("t", after1, after2, at.Add(time.Hour))

	entries := l.For("t")
	assert.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Column.Name)
	assert.Equal(t, "c", entries[1].Column.Name)
	assert.Empty(t, l.For("missing"))
}
