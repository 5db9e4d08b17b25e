package monitoring

import (
	"fmt"
	"time"
)

// AlertThreshold defines thresholds for the conditions filesql alerts on.
type AlertThreshold struct {
	ErrorRate       float64
	LockContentions int64
}

// NotificationType represents the type of notification channel
type NotificationType string

const (
	EmailNotification NotificationType = "email"
	SlackNotification NotificationType = "slack"
)

// NotificationChannel represents a channel for sending alerts
type NotificationChannel struct {
	Type   NotificationType
	Target string
}

// AlertConfig holds configuration for the alert manager
type AlertConfig struct {
	Threshold     AlertThreshold
	Notifications []NotificationChannel
}

// DefaultAlertThreshold mirrors the conservative defaults config.Default uses.
func DefaultAlertThreshold() AlertThreshold {
	return AlertThreshold{ErrorRate: 50, LockContentions: 1}
}

// AlertManager handles monitoring and alerting over a MetricsCollector.
type AlertManager struct {
	config             AlertConfig
	metrics            *MetricsCollector
	lastAlert          time.Time
	lastLockAlertCount int64
}

// NewAlertManager creates a new alert manager watching metrics.
func NewAlertManager(config AlertConfig, metrics *MetricsCollector) *AlertManager {
	return &AlertManager{
		config:  config,
		metrics: metrics,
	}
}

// CheckThresholds checks whether the error rate or lock-contention
// counters have crossed their configured thresholds, alerting if so.
// Call it after every dispatched statement; CheckThresholds itself rate
// limits outgoing notifications.
func (a *AlertManager) CheckThresholds() error {
	if a.metrics.ErrorRate() > a.config.Threshold.ErrorRate {
		if err := a.sendAlert("error rate threshold exceeded", map[string]interface{}{
			"current_rate": a.metrics.ErrorRate(),
			"threshold":    a.config.Threshold.ErrorRate,
		}); err != nil {
			return fmt.Errorf("failed to send error rate alert: %v", err)
		}
	}

	if contentions := a.metrics.LockContentions(); contentions >= a.config.Threshold.LockContentions &&
		contentions > a.lastLockAlertCount {
		a.lastLockAlertCount = contentions
		if err := a.sendAlert("transaction abort: table lock contended", map[string]interface{}{
			"lock_contentions": contentions,
			"threshold":        a.config.Threshold.LockContentions,
		}); err != nil {
			return fmt.Errorf("failed to send lock contention alert: %v", err)
		}
	}

	return nil
}

// sendAlert sends an alert through configured notification channels,
// skipping if the last alert of any kind went out less than a minute ago.
func (a *AlertManager) sendAlert(message string, data map[string]interface{}) error {
	if time.Since(a.lastAlert) < time.Minute {
		return nil
	}
	a.lastAlert = time.Now()

	for _, channel := range a.config.Notifications {
		if err := a.sendNotification(channel, message, data); err != nil {
			return fmt.Errorf("failed to send notification via %s: %v", channel.Type, err)
		}
	}

	return nil
}

// sendNotification sends a notification through a specific channel
func (a *AlertManager) sendNotification(channel NotificationChannel, message string, data map[string]interface{}) error {
	switch channel.Type {
	case EmailNotification:
		return a.sendEmailNotification(channel.Target, message, data)
	case SlackNotification:
		return a.sendSlackNotification(channel.Target, message, data)
	default:
		return fmt.Errorf("unsupported notification type: %s", channel.Type)
	}
}

// sendEmailNotification sends an email notification
func (a *AlertManager) sendEmailNotification(target, message string, data map[string]interface{}) error {
	// TODO: Implement email sending logic
	return nil
}

// sendSlackNotification sends a Slack notification
func (a *AlertManager) sendSlackNotification(target, message string, data map[string]interface{}) error {
	// TODO: Implement Slack notification logic
	return nil
}

// GetMetrics returns the current metrics
func (a *AlertManager) GetMetrics() map[string]interface{} {
	return a.metrics.Snapshot()
}
