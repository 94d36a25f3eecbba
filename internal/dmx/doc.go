// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package dmx is a thin RPC client over the external lighting controller
// process ("Vulcan"). Every call is wrapped in a circuit breaker so a
// stalled controller degrades calls quickly instead of piling up timeouts,
// the same gobreaker.CircuitBreaker[interface{}] shape internal/media and
// internal/audit's Publisher use for their own external calls.
//
// Supervisor optionally owns the controller's process lifecycle: spawn,
// restart on unexpected exit, and a clean POST /close on shutdown.
package dmx
