// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package metrics provides Prometheus metrics collection and export for
observability of the show-control runtime.

# Overview

The package instruments:
  - Event Queue depth and scheduling latency
  - Event Handler action outcomes, by action kind
  - DMX/Media circuit breaker state and request outcomes
  - DMX/Media supervisor process restarts
  - Backup Handler write/reload outcomes

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format by the façade.

# Available Metrics

Queue:
  - queue_depth: Current number of pending coming events (gauge)
  - queue_fire_latency_seconds: Delta between an event's scheduled due
    time and when it actually fired (histogram)
  - queue_adjust_all_dropped_total: Entries dropped by a negative
    adjust_all that pushed their due time to or before now (counter)

Event Handler:
  - action_executions_total: Action executions by kind and outcome
    (counter), labels: kind, outcome ("ok", "error")
  - scene_changes_total: Scene change requests, labels: result
    ("ok", "refused")
  - status_changes_total: Status change requests, labels: result
    ("ok", "refused")

External controllers (DMX, Media):
  - breaker_state: Circuit breaker state (0=closed, 1=half-open,
    2=open), labels: name
  - breaker_requests_total: Requests through a breaker, labels: name,
    result ("success", "failure", "rejected")
  - supervisor_restarts_total: Child process restarts, labels:
    component ("dmx", "media")

Backup Handler:
  - backup_writes_total: Backup key writes, labels: kind, result
  - backup_reload_duration_seconds: Duration of the boot-time reload
    from the embedded store (histogram)
*/
package metrics
