// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package queue implements the timed event queue: an ordered, delay-indexed
// set of pending event triggers with adjust/cancel/drain operations and a
// single background delivery loop.
//
// The queue is single-owner: a mutex-guarded slice plus a wake channel let
// the delivery goroutine and the producer methods coexist inside one
// logical actor, matching the mailbox-plus-lock shape the rest of this
// codebase uses for its supervised components (see internal/facade.Hub).
// Add, Adjust (when it finds its entry), Cancel, CancelAll, AdjustAll,
// Clear and each delivery pass hand a fresh snapshot to an optional
// publish callback, which cmd/server wires to the backup store. Restore
// publishes nothing.
package queue
