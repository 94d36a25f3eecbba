// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package audit is a durable, replayable log of every processed trigger
// and its action outcomes: a ProcessedAction record per action executed
// by internal/eventhandler, published through an embedded NATS
// JetStream instance via Watermill so an operator can replay a show's
// history after the fact. This is the event-sourcing angle the teacher
// codebase already applies to its own MediaEvent stream, repurposed here
// for action outcomes instead of playback telemetry.
//
// It is entirely optional: the engine runs identically with this
// package compiled out, matching the teacher's own build-tag split
// between "nats" and stub builds. Build with -tags=nats to enable it.
package audit
