// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueDepth is the current number of pending coming events.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of pending coming events in the event queue",
		},
	)

	// QueueFireLatency tracks how late an event fired relative to its
	// scheduled due time.
	QueueFireLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "queue_fire_latency_seconds",
			Help:    "Delta between an event's scheduled due time and when it fired",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
	)

	// QueueAdjustAllDropped counts coming events dropped by a negative
	// adjust_all that pushed their due time to or before now.
	QueueAdjustAllDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_adjust_all_dropped_total",
			Help: "Total number of coming events dropped by adjust_all",
		},
	)

	// ActionExecutions counts Event Handler action executions by kind
	// and outcome.
	ActionExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_executions_total",
			Help: "Total number of event action executions",
		},
		[]string{"kind", "outcome"},
	)

	// SceneChanges counts scene change requests.
	SceneChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scene_changes_total",
			Help: "Total number of scene change requests",
		},
		[]string{"result"},
	)

	// StatusChanges counts status change requests.
	StatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_changes_total",
			Help: "Total number of status change requests",
		},
		[]string{"result"},
	)

	// BreakerState mirrors a gobreaker circuit's current state.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// BreakerRequests counts requests through a circuit breaker by
	// outcome.
	BreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"},
	)

	// SupervisorRestarts counts child process restarts by component.
	SupervisorRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_restarts_total",
			Help: "Total number of external controller process restarts",
		},
		[]string{"component"},
	)

	// BackupWrites counts backup key writes by kind and result.
	BackupWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_writes_total",
			Help: "Total number of backup store writes",
		},
		[]string{"kind", "result"},
	)

	// BackupReloadDuration tracks how long the boot-time reload from
	// the embedded store took.
	BackupReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_reload_duration_seconds",
			Help:    "Duration of the boot-time backup reload",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// breakerStateValue maps gobreaker's state names to the gauge's numeric
// encoding.
func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordBreakerStateChange records a circuit breaker transitioning to
// the named state ("closed", "half-open", "open").
func RecordBreakerStateChange(name, state string) {
	BreakerState.WithLabelValues(name).Set(breakerStateValue(state))
}

// RecordBreakerRequest records a request outcome through a named
// breaker ("success", "failure", "rejected").
func RecordBreakerRequest(name, result string) {
	BreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordActionExecution records an action execution outcome.
func RecordActionExecution(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ActionExecutions.WithLabelValues(kind, outcome).Inc()
}

// RecordQueueFire records the delay between an event's due time and
// its actual fire time.
func RecordQueueFire(due time.Time, fired time.Time) {
	if fired.After(due) {
		QueueFireLatency.Observe(fired.Sub(due).Seconds())
	} else {
		QueueFireLatency.Observe(0)
	}
}

// RecordSupervisorRestart records a restart of the named external
// controller's supervised process.
func RecordSupervisorRestart(component string) {
	SupervisorRestarts.WithLabelValues(component).Inc()
}

// RecordBackupWrite records the outcome of a backup store write.
func RecordBackupWrite(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackupWrites.WithLabelValues(kind, result).Inc()
}

// RecordBackupReloadDuration records how long the boot-time reload from
// the embedded store took.
func RecordBackupReloadDuration(d time.Duration) {
	BackupReloadDuration.Observe(d.Seconds())
}

// SetQueueDepth records the current number of pending coming events.
func SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}

// RecordQueueAdjustAllDropped records coming events dropped by a
// negative adjust_all.
func RecordQueueAdjustAllDropped(n int) {
	QueueAdjustAllDropped.Add(float64(n))
}

// RecordSceneChange records the outcome of a scene change request.
func RecordSceneChange(result string) {
	SceneChanges.WithLabelValues(result).Inc()
}

// RecordStatusChange records the outcome of a status change request.
func RecordStatusChange(result string) {
	StatusChanges.WithLabelValues(result).Inc()
}
