// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package model holds the arena-free configuration graph for a show: items,
// scenes, statuses, events, actions, and the output types (DMX, media) those
// actions target. Everything is keyed by ItemId and stored in plain maps —
// there are no pointers between nodes, so the graph cannot cycle in a way
// that traps a traversal.
//
// Tagged unions (EventAction, DisplayKind, DataType) are modeled as structs
// with a Kind discriminant plus the union of payload fields, matching the
// exhaustive-switch style the rest of this codebase uses for sum types.
package model
