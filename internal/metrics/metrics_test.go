// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package metrics

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBreakerStateChange(t *testing.T) {
	RecordBreakerStateChange("dmx", "closed")
	assert.Equal(t, float64(0), testutil.ToFloat64(BreakerState.WithLabelValues("dmx")))

	RecordBreakerStateChange("dmx", "half-open")
	assert.Equal(t, float64(1), testutil.ToFloat64(BreakerState.WithLabelValues("dmx")))

	RecordBreakerStateChange("dmx", "open")
	assert.Equal(t, float64(2), testutil.ToFloat64(BreakerState.WithLabelValues("dmx")))
}

func TestRecordBreakerRequest(t *testing.T) {
	before := testutil.ToFloat64(BreakerRequests.WithLabelValues("media", "success"))
	RecordBreakerRequest("media", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(BreakerRequests.WithLabelValues("media", "success")))
}

func TestRecordActionExecutionOutcome(t *testing.T) {
	beforeOK := testutil.ToFloat64(ActionExecutions.WithLabelValues("cue_dmx", "ok"))
	RecordActionExecution("cue_dmx", nil)
	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ActionExecutions.WithLabelValues("cue_dmx", "ok")))

	beforeErr := testutil.ToFloat64(ActionExecutions.WithLabelValues("cue_dmx", "error"))
	RecordActionExecution("cue_dmx", errors.New("breaker open"))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(ActionExecutions.WithLabelValues("cue_dmx", "error")))
}

func TestRecordQueueFireObservesLatency(t *testing.T) {
	due := time.Unix(1000, 0)

	var before dto.Metric
	require.NoError(t, QueueFireLatency.Write(&before))
	beforeCount := before.GetHistogram().GetSampleCount()

	RecordQueueFire(due, due)
	RecordQueueFire(due, due.Add(50*time.Millisecond))
	RecordQueueFire(due, due.Add(-10*time.Millisecond))

	var after dto.Metric
	require.NoError(t, QueueFireLatency.Write(&after))
	assert.Equal(t, beforeCount+3, after.GetHistogram().GetSampleCount())
}

func TestRecordSupervisorRestart(t *testing.T) {
	before := testutil.ToFloat64(SupervisorRestarts.WithLabelValues("dmx"))
	RecordSupervisorRestart("dmx")
	assert.Equal(t, before+1, testutil.ToFloat64(SupervisorRestarts.WithLabelValues("dmx")))
}

func TestRecordBackupWrite(t *testing.T) {
	beforeOK := testutil.ToFloat64(BackupWrites.WithLabelValues("dmx", "ok"))
	RecordBackupWrite("dmx", nil)
	assert.Equal(t, beforeOK+1, testutil.ToFloat64(BackupWrites.WithLabelValues("dmx", "ok")))

	beforeErr := testutil.ToFloat64(BackupWrites.WithLabelValues("dmx", "error"))
	RecordBackupWrite("dmx", errors.New("store closed"))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(BackupWrites.WithLabelValues("dmx", "error")))
}
