package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertManagerLockContention(t *testing.T) {
	m := NewMetricsCollector()
	cfg := AlertConfig{Threshold: DefaultAlertThreshold()}
	a := NewAlertManager(cfg, m)

	assert.NoError(t, a.CheckThresholds())

	m.IncrementLockContention()
	assert.NoError(t, a.CheckThresholds())
}

func TestAlertManagerErrorRate(t *testing.T) {
	m := NewMetricsCollector()
	cfg := AlertConfig{Threshold: AlertThreshold{ErrorRate: 10, LockContentions: 1000}}
	a := NewAlertManager(cfg, m)

	m.IncrementStatement("Update")
	m.IncrementError("FileAlreadyOpened")

	assert.NoError(t, a.CheckThresholds())
}

func TestAlertManagerGetMetrics(t *testing.T) {
	m := NewMetricsCollector()
	a := NewAlertManager(AlertConfig{Threshold: DefaultAlertThreshold()}, m)

	m.IncrementStatement("Select")
	snap := a.GetMetrics()
	assert.Contains(t, snap, "statements")
}
