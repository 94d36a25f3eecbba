// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package model

import "time"

// MediaCue directs a media channel to begin playing a clip, with an optional
// loop target for when it finishes.
type MediaCue struct {
	Channel    uint32
	URI        string
	LoopMedia  *string
}

// MediaAdjustment nudges a channel already playing, e.g. a seek/align
// correction (AdjustMedia action). Position is the target offset.
type MediaAdjustment struct {
	Channel  uint32
	Position time.Duration
}

// MediaPlayback is the resumable form of an in-flight cue, used by the
// Backup Handler to restore mid-clip playback after a crash.
type MediaPlayback struct {
	Cue       MediaCue
	TimeSince time.Duration
}

// MediaPlaylist is the full per-channel playback snapshot mirrored to and
// restored from the backup store.
type MediaPlaylist map[uint32]MediaPlayback
