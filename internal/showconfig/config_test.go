package showconfig

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/vigil/internal/model"
)

func newTestConfig() *Config {
	return New(zerolog.Nop())
}

func TestSceneScoping(t *testing.T) {
	c := newTestConfig()
	c.UpsertScene(model.Scene{ID: 100, Events: map[model.ItemID]struct{}{101: {}}})
	c.UpsertEvent(model.Event{ID: 101})
	c.UpsertEvent(model.Event{ID: 999})
	_, ok := c.ChooseScene(100)
	require.True(t, ok)

	_, ok = c.TryEvent(101, true)
	assert.True(t, ok)

	_, ok = c.TryEvent(999, true)
	assert.False(t, ok, "999 is not a member of the current scene")

	_, ok = c.TryEvent(999, false)
	assert.True(t, ok, "unscoped lookup ignores scene membership")
}

func TestChooseSceneReturnsResetEvent(t *testing.T) {
	c := newTestConfig()
	c.UpsertScene(model.Scene{ID: 7, Events: map[model.ItemID]struct{}{7: {}}})
	reset, ok := c.ChooseScene(7)
	require.True(t, ok)
	assert.EqualValues(t, 7, reset)
}

func TestChooseSceneUnknownFails(t *testing.T) {
	c := newTestConfig()
	_, ok := c.ChooseScene(5)
	assert.False(t, ok)
}

func TestMultiStateStatusClosure(t *testing.T) {
	c := newTestConfig()
	c.UpsertStatus(model.Status{
		ID:      200,
		Kind:    model.StatusMultiState,
		Allowed: map[model.ItemID]struct{}{201: {}, 202: {}},
		Current: 201,
	})

	res, ok := c.ModifyStatus(200, 202)
	require.True(t, ok)
	assert.EqualValues(t, 202, res.NewState)

	_, ok = c.ModifyStatus(200, 999)
	assert.False(t, ok, "999 is not in the allowed set")

	state, _ := c.StatusState(200)
	assert.EqualValues(t, 202, state, "refused transition leaves state unchanged")
}

func TestMultiStateSilentTransition(t *testing.T) {
	c := newTestConfig()
	c.UpsertStatus(model.Status{
		ID:             200,
		Kind:           model.StatusMultiState,
		Allowed:        map[model.ItemID]struct{}{1: {}},
		Current:        1,
		NoChangeSilent: true,
	})

	res, ok := c.ModifyStatus(200, 1)
	require.True(t, ok)
	assert.True(t, res.Silent)
}

// TestCountedStateBounds walks the S5 scenario from the queue/status
// testable properties: trigger=T, anti_trigger=AT, reset=R.
func TestCountedStateBounds(t *testing.T) {
	c := newTestConfig()
	c.UpsertStatus(model.Status{
		ID:             300,
		Kind:           model.StatusCountedState,
		CountedCurrent: model.CountAntiTrigger,
		Count:          2,
		DefaultCount:   2,
	})

	res, ok := c.ModifyStatus(300, model.CountTrigger)
	require.True(t, ok)
	assert.EqualValues(t, model.CountAntiTrigger, res.NewState)
	st, _ := c.GetStatus(300)
	assert.EqualValues(t, 1, st.Count)

	res, ok = c.ModifyStatus(300, model.CountTrigger)
	require.True(t, ok)
	assert.EqualValues(t, model.CountTrigger, res.NewState)
	st, _ = c.GetStatus(300)
	assert.EqualValues(t, 0, st.Count)

	res, ok = c.ModifyStatus(300, model.CountAntiTrigger)
	require.True(t, ok)
	assert.EqualValues(t, model.CountAntiTrigger, res.NewState)
	st, _ = c.GetStatus(300)
	assert.EqualValues(t, 1, st.Count)

	res, ok = c.ModifyStatus(300, model.CountReset)
	require.True(t, ok)
	assert.EqualValues(t, model.CountAntiTrigger, res.NewState)
	st, _ = c.GetStatus(300)
	assert.EqualValues(t, 2, st.Count)
	assert.LessOrEqual(t, st.Count, st.DefaultCount)
}

// TestCountedStateTriggerFromZeroSetsUnconditionally resolves the open
// question: trigger received while count is already 0 still sets current
// to trigger unconditionally (and is silent-suppressed when configured).
func TestCountedStateTriggerFromZeroSetsUnconditionally(t *testing.T) {
	c := newTestConfig()
	c.UpsertStatus(model.Status{
		ID:             300,
		Kind:           model.StatusCountedState,
		CountedCurrent: model.CountTrigger,
		Count:          0,
		DefaultCount:   2,
		NoChangeSilent: true,
	})

	res, ok := c.ModifyStatus(300, model.CountTrigger)
	require.True(t, ok)
	assert.EqualValues(t, model.CountTrigger, res.NewState)
	assert.True(t, res.Silent)
}

func TestSelectEvent(t *testing.T) {
	c := newTestConfig()
	c.UpsertStatus(model.Status{ID: 400, Kind: model.StatusMultiState, Current: 1})
	target, ok := c.SelectEvent(400, map[model.ItemID]model.ItemID{1: 501, 2: 502})
	require.True(t, ok)
	assert.EqualValues(t, 501, target)

	_, ok = c.SelectEvent(400, map[model.ItemID]model.ItemID{2: 502})
	assert.False(t, ok, "current state 1 is not in the map")
}

func TestVerifyFlagsDanglingReferences(t *testing.T) {
	c := newTestConfig()
	c.UpsertEvent(model.Event{ID: 1, Actions: []model.EventAction{
		{Kind: model.ActionNewScene, SceneID: 999},
	}})

	warnings := c.Verify(func(model.ItemID) bool { return true })
	require.NotEmpty(t, warnings)
}

func TestDeleteEventLeavesDanglingReferencesTolerated(t *testing.T) {
	c := newTestConfig()
	c.UpsertScene(model.Scene{ID: 1, Events: map[model.ItemID]struct{}{2: {}}})
	c.UpsertEvent(model.Event{ID: 2})

	assert.True(t, c.DeleteEvent(2))
	assert.False(t, c.DeleteEvent(2))

	warnings := c.Verify(func(model.ItemID) bool { return true })
	assert.NotEmpty(t, warnings)
}
