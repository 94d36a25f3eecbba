// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package backup mirrors enough runtime state to an embedded key-value
// store to resume a show after a crash: the current scene, every status's
// state, the pending queue, the DMX universe and the media playlist.
//
// Keys are namespaced by a per-instance identifier so multiple runtimes
// can share one store, with one badger.Txn per operation. Every
// operation here is best-effort: a store error is logged and swallowed,
// never returned to the caller, because a missed backup write must never
// block the show.
package backup
