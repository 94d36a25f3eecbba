// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/vigil/internal/model"
)

func TestProcessedActionRoundTrips(t *testing.T) {
	want := ProcessedAction{
		EventID:   7,
		Action:    "cue_dmx",
		Succeeded: true,
		Detail:    "",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := Serialize(want)
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, want.EventID, got.EventID)
	assert.Equal(t, want.Action, got.Action)
	assert.Equal(t, want.Succeeded, got.Succeeded)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
}

func TestProcessedActionTopicPartitionsByAction(t *testing.T) {
	a := ProcessedAction{EventID: 1, Action: "cue_dmx"}
	b := ProcessedAction{EventID: 1, Action: "cue_media"}
	assert.Equal(t, "vigil.actions.cue_dmx", a.Topic())
	assert.NotEqual(t, a.Topic(), b.Topic())
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	_, err := Deserialize([]byte("not json"))
	assert.Error(t, err)
}

func TestEventIDTypeMatchesModel(t *testing.T) {
	var id model.ItemID = 99
	p := ProcessedAction{EventID: id}
	assert.EqualValues(t, 99, p.EventID)
}
