// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package showconfig is the in-memory configuration graph: scenes,
// events, statuses and groups (item descriptions live in
// internal/itemindex), keyed throughout by model.ItemID in plain
// maps rather than pointers, so the graph cannot form a reference cycle a
// traversal would need to guard against.
//
// Config owns scene scoping and selection, status transitions, and the
// edit operations that mutate the graph at runtime. It does not itself
// talk to the queue, backup store, or outputs; it hands the Event Handler
// the ids it needs to act on (a reset event to cue, a new status state to
// back up and enqueue) and lets the caller sequence those side effects.
package showconfig
