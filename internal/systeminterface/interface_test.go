package systeminterface

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/vigil/internal/eventhandler"
	"github.com/tomtom215/vigil/internal/itemindex"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
	"github.com/tomtom215/vigil/internal/showconfig"
)

func newHarness(t *testing.T) (*SystemInterface, context.Context) {
	t.Helper()
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())

	var h *eventhandler.Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) { h.FireDelayedEvent(id) }, nil)
	h = eventhandler.New(zerolog.Nop(), cfg, idx, q)

	si := New(zerolog.Nop(), h, cfg, idx)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = si.Serve(ctx) }()
	go func() { _ = q.Serve(ctx) }()

	return si, ctx
}

func submit(t *testing.T, si *SystemInterface, req model.UserRequest) Reply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := si.Submit(ctx, req)
	require.NoError(t, err)
	return reply
}

// TestProcessEventScenario mirrors S1: selecting a scene then processing
// an event whose action cues a second event should succeed end to end
// through the mailbox.
func TestProcessEventScenario(t *testing.T) {
	si, _ := newHarness(t)

	si.cfg.UpsertScene(model.Scene{ID: 100, Events: map[model.ItemID]struct{}{101: {}, 102: {}}})
	delay := 20 * time.Millisecond
	si.cfg.UpsertEvent(model.Event{ID: 101, Actions: []model.EventAction{
		{Kind: model.ActionCueEvent, CueDelay: model.EventDelay{Delay: &delay, EventID: 102}},
	}})
	si.cfg.UpsertEvent(model.Event{ID: 102})

	reply := submit(t, si, model.UserRequest{Kind: model.RequestSceneChange, SceneID: 100})
	assert.True(t, reply.OK)

	reply = submit(t, si, model.UserRequest{
		Kind: model.RequestProcessEvent, ProcessEventID: 101, CheckScene: true, Broadcast: false,
	})
	assert.True(t, reply.OK)
}

func TestProcessEventUnknownFails(t *testing.T) {
	si, _ := newHarness(t)
	reply := submit(t, si, model.UserRequest{Kind: model.RequestProcessEvent, ProcessEventID: 999, CheckScene: false})
	assert.False(t, reply.OK)
}

func TestQueryItemsReturnsIndex(t *testing.T) {
	si, _ := newHarness(t)
	si.index.Upsert(5, model.ItemDescription{Text: "lamp"})

	reply := submit(t, si, model.UserRequest{Kind: model.RequestQuery, Query: model.Query{Kind: model.QueryItems}})
	require.True(t, reply.OK)
	require.Len(t, reply.Query.Items, 1)
	assert.Equal(t, model.ItemID(5), reply.Query.Items[0].ID)
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	si, _ := newHarness(t)
	ch, unsubscribe := si.Subscribe()
	defer unsubscribe()

	si.bus.publish(Update{Kind: UpdateNotification, Notification: eventhandler.Notification{Message: "hello"}})

	select {
	case u := <-ch:
		assert.Equal(t, UpdateNotification, u.Kind)
		assert.Equal(t, "hello", u.Notification.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}

// TestSubmitContextDeadlineWithoutServer confirms Submit returns the
// context error when no Serve loop is draining the mailbox: the send
// succeeds into the buffered channel but the reply never arrives.
func TestSubmitContextDeadlineWithoutServer(t *testing.T) {
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())
	q := queue.New(zerolog.Nop(), func(model.ItemID) {}, nil)
	h := eventhandler.New(zerolog.Nop(), cfg, idx, q)
	si := New(zerolog.Nop(), h, cfg, idx)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := si.Submit(ctx, model.UserRequest{Kind: model.RequestAllStop})
	assert.Error(t, err)
}
