// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package audit

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/model"
)

// ProcessedAction is one entry in the audit log: the outcome of a single
// action within a processed event's action list. These compose into the
// full history of a show run the same way the teacher's MediaEvent
// stream composes into a playback history.
type ProcessedAction struct {
	EventID   model.ItemID `json:"event_id"`
	Action    string       `json:"action"`
	Succeeded bool         `json:"succeeded"`
	Detail    string       `json:"detail,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Topic returns the JetStream subject this record publishes to,
// partitioned by action name the same way the teacher partitions
// MediaEvent by media type.
func (p ProcessedAction) Topic() string {
	return "vigil.actions." + p.Action
}

// Serialize encodes p as JSON, mirroring eventprocessor.SerializeEvent's
// role in the teacher codebase.
func Serialize(p ProcessedAction) ([]byte, error) {
	return json.Marshal(p)
}

// Deserialize decodes a ProcessedAction previously produced by Serialize.
func Deserialize(data []byte) (ProcessedAction, error) {
	var p ProcessedAction
	err := json.Unmarshal(data, &p)
	return p, err
}
