// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package media is a thin RPC client over the external media player
// process ("Apollo"), mirroring internal/dmx's breaker-wrapped HTTP shape.
// On (re)connect it re-posts window and channel definitions before
// accepting cues, and validates every cue against its configured channel
// set rather than a fixed numeric range.
package media
