// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package systeminterface is the thin demultiplexer of spec component G:
// it owns the single Event Handler instance, accepts UserRequest values
// from the façade over a mailbox, and fans the Handler's notification,
// broadcast, and queue-snapshot callbacks back out to subscribers (the
// façade's websocket hub, an audit log publisher, ...).
//
// It contains no state-machine or queue logic of its own; every
// Handler-bound request is a one-line dispatch into
// internal/eventhandler (queries read Config and the Item Index
// directly, and lifecycle requests are acknowledged without a Handler
// call), matching the "actor
// model" of spec.md §9: a single mailbox, FIFO processing, and one-shot
// reply channels bundled with each request so callers never touch the
// Handler directly.
package systeminterface
