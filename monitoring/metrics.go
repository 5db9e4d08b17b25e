// Package monitoring tracks engine-level counters (statements dispatched,
// join output cardinality, lock contention, errors by kind) and raises
// alerts on the conditions spec.md calls out as noteworthy, adapted
// from the teacher's monitoring.MetricsCollector/AlertManager.
package monitoring

import (
	"sync"
	"sync/atomic"
)

// MetricsCollector collects counters for one running engine instance.
type MetricsCollector struct {
	statementMu    sync.RWMutex
	statementCount map[string]int64

	errorMu    sync.RWMutex
	errorCount map[string]int64

	joinInvocations int64
	joinRowsEmitted int64
	lockContentions int64
}

// NewMetricsCollector returns an empty MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		statementCount: make(map[string]int64),
		errorCount:     make(map[string]int64),
	}
}

// IncrementStatement records one dispatched statement of the given kind
// (e.g. "Select", "Insert", "Update").
func (m *MetricsCollector) IncrementStatement(kind string) {
	m.statementMu.Lock()
	m.statementCount[kind]++
	m.statementMu.Unlock()
}

// StatementCount returns how many statements of kind have been dispatched.
func (m *MetricsCollector) StatementCount(kind string) int64 {
	m.statementMu.RLock()
	defer m.statementMu.RUnlock()
	return m.statementCount[kind]
}

// RecordJoinOutput records the number of rows a single join evaluation
// emitted, for tracking average join output cardinality.
func (m *MetricsCollector) RecordJoinOutput(rows int) {
	atomic.AddInt64(&m.joinInvocations, 1)
	atomic.AddInt64(&m.joinRowsEmitted, int64(rows))
}

// AverageJoinOutput returns the mean number of rows emitted per join
// evaluation recorded so far.
func (m *MetricsCollector) AverageJoinOutput() float64 {
	invocations := atomic.LoadInt64(&m.joinInvocations)
	if invocations == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.joinRowsEmitted)) / float64(invocations)
}

// IncrementLockContention records one UPDATE that found a pre-existing
// lock file and aborted its transaction.
func (m *MetricsCollector) IncrementLockContention() {
	atomic.AddInt64(&m.lockContentions, 1)
}

// LockContentions returns the total number of lock-contention aborts recorded.
func (m *MetricsCollector) LockContentions() int64 {
	return atomic.LoadInt64(&m.lockContentions)
}

// IncrementError records one error of the given fault.Kind name.
func (m *MetricsCollector) IncrementError(kind string) {
	m.errorMu.Lock()
	m.errorCount[kind]++
	m.errorMu.Unlock()
}

// TotalStatements returns the sum of every statement kind's count.
func (m *MetricsCollector) TotalStatements() int64 {
	m.statementMu.RLock()
	defer m.statementMu.RUnlock()
	var total int64
	for _, n := range m.statementCount {
		total += n
	}
	return total
}

// ErrorRate returns the fraction of dispatched statements that recorded
// an error, as a percentage.
func (m *MetricsCollector) ErrorRate() float64 {
	total := m.TotalStatements()
	if total == 0 {
		return 0
	}
	m.errorMu.RLock()
	var errs int64
	for _, n := range m.errorCount {
		errs += n
	}
	m.errorMu.RUnlock()
	return float64(errs) / float64(total) * 100
}

// Snapshot returns every current metric value, suitable for logging or
// exposing over a status endpoint.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.statementMu.RLock()
	statements := make(map[string]int64, len(m.statementCount))
	for k, v := range m.statementCount {
		statements[k] = v
	}
	m.statementMu.RUnlock()

	m.errorMu.RLock()
	errors := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errors[k] = v
	}
	m.errorMu.RUnlock()

	return map[string]interface{}{
		"statements":         statements,
		"errors":             errors,
		"lock_contentions":   m.LockContentions(),
		"average_join_output": m.AverageJoinOutput(),
	}
}
