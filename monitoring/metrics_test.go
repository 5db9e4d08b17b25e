package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCollectorStatementCount(t *testing.T) {
	m := NewMetricsCollector()
	m.IncrementStatement("Select")
	m.IncrementStatement("Select")
	m.IncrementStatement("Insert")

	assert.Equal(t, int64(2), m.StatementCount("Select"))
	assert.Equal(t, int64(1), m.StatementCount("Insert"))
	assert.Equal(t, int64(0), m.StatementCount("Delete"))
	assert.Equal(t, int64(3), m.TotalStatements())
}

func TestMetricsCollectorJoinOutput(t *testing.T) {
	m := NewMetricsCollector()
	assert.Equal(t, float64(0), m.AverageJoinOutput())

	m.RecordJoinOutput(4)
	m.RecordJoinOutput(2)

	assert.Equal(t, float64(3), m.AverageJoinOutput())
}

func TestMetricsCollectorLockContentions(t *testing.T) {
	m := NewMetricsCollector()
	assert.Equal(t, int64(0), m.LockContentions())

	m.IncrementLockContention()
	m.IncrementLockContention()

	assert.Equal(t, int64(2), m.LockContentions())
}

func TestMetricsCollectorErrorRate(t *testing.T) {
	m := NewMetricsCollector()
	assert.Equal(t, float64(0), m.ErrorRate())

	m.IncrementStatement("Update")
	m.IncrementStatement("Update")
	m.IncrementError("FileAlreadyOpened")

	assert.InDelta(t, 50.0, m.ErrorRate(), 0.001)
}

func TestMetricsCollectorSnapshot(t *testing.T) {
	m := NewMetricsCollector()
	m.IncrementStatement("Select")
	m.IncrementLockContention()

	snap := m.Snapshot()
	assert.Contains(t, snap, "statements")
	assert.Contains(t, snap, "lock_contentions")
	assert.Equal(t, int64(1), snap["lock_contentions"])
}
