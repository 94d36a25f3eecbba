// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package facade is the deliberately thin HTTP/WebSocket control surface
// spec.md §1 names as an external collaborator rather than core scope:
// "a thin façade over the core." It contains no state-machine or queue
// logic of its own — every route is a handful of lines translating a
// JSON request body into a systeminterface.Submit call and every
// websocket connection is a read-only subscriber on the
// systeminterface.SystemInterface update bus.
//
// Non-goals carried over unchanged from spec.md: no wire protocol design
// beyond the minimal JSON envelope needed to exercise this package, and
// no authentication enforcement — this package trusts its callers, same
// as the core trusts it.
package facade
