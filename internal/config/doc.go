// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package config loads the runtime's own bootstrap configuration: the
// persisted document's default path, the backup store directory, the
// external controller connection set, the façade listen address, the
// audit log settings and the RPC timeout. It has no logging or metrics
// settings. It does
// not model the show itself (scenes, events, statuses live in
// internal/showconfig); this is the layer that tells the process where to
// find and how to reach everything else.
//
// Layering follows the defaults -> file -> environment precedence this
// codebase uses throughout: struct defaults loaded first via koanf's
// structs provider, an optional YAML file next, environment variables
// last and highest priority.
package config
