// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package eventhandler is the orchestrator: the single front door that
// accepts triggers from the façade, consults the configuration graph,
// drives the event queue, talks to the DMX and media outputs, and mirrors
// state-mutating side effects to the backup store.
//
// Handler owns no state of its own beyond its collaborators; every method
// is a request/response dispatch that reads or mutates those collaborators
// in the order the design calls for, so that two status changes submitted
// in sequence by one caller are observed by backup and the queue in that
// same sequence.
package eventhandler
