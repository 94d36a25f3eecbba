package eventhandler

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/vigil/internal/itemindex"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
	"github.com/tomtom215/vigil/internal/showconfig"
)

func newHarness(t *testing.T) (*Handler, *queue.Queue, *showconfig.Config) {
	t.Helper()
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())

	var h *Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) { h.FireDelayedEvent(id) }, nil)
	h = New(zerolog.Nop(), cfg, idx, q)
	return h, q, cfg
}

// TestProcessEventCuesDelayedEvent mirrors scenario S1: E1's action list
// cues E2 after a short delay.
func TestProcessEventCuesDelayedEvent(t *testing.T) {
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())

	cfg.UpsertScene(model.Scene{ID: 100, Events: map[model.ItemID]struct{}{101: {}, 102: {}}})
	d := 20 * time.Millisecond
	cfg.UpsertEvent(model.Event{ID: 101, Actions: []model.EventAction{
		{Kind: model.ActionCueEvent, CueDelay: model.EventDelay{Delay: &d, EventID: 102}},
	}})
	cfg.UpsertEvent(model.Event{ID: 102})
	_, ok := cfg.ChooseScene(100)
	require.True(t, ok)

	// Record each id the queue delivers. E2 has no SendData action, so
	// firing it produces no broadcast to observe.
	var mu sync.Mutex
	var fired []model.ItemID
	var h *Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
		h.FireDelayedEvent(id)
	}, nil)
	h = New(zerolog.Nop(), cfg, idx, q)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go q.Serve(ctx)

	_, ok = h.ProcessEvent(ProcessEventRequest{EventID: 101, CheckScene: true, Broadcast: false})
	require.True(t, ok)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, 100*time.Millisecond, 2*time.Millisecond)

	mu.Lock()
	assert.EqualValues(t, 102, fired[0])
	mu.Unlock()
}

// TestStatusChangeBacksUpAndEnqueues mirrors scenario S2.
func TestStatusChangeBacksUpAndEnqueues(t *testing.T) {
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())
	var fired []model.ItemID
	var h *Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) {
		fired = append(fired, id)
		h.FireDelayedEvent(id)
	}, nil)
	h = New(zerolog.Nop(), cfg, idx, q)
	cfg.UpsertStatus(model.Status{
		ID:      200,
		Kind:    model.StatusMultiState,
		Allowed: map[model.ItemID]struct{}{201: {}, 202: {}},
		Current: 201,
	})

	var backedUpStatus, backedUpState model.ItemID
	backup := &fakeBackup{onStatus: func(sid, ns model.ItemID) { backedUpStatus, backedUpState = sid, ns }}
	h.backup = backup

	ok := h.StatusChange(200, 202)
	require.True(t, ok)
	assert.EqualValues(t, 200, backedUpStatus)
	assert.EqualValues(t, 202, backedUpState)

	// The new state is cued with no delay, which the queue delivers
	// synchronously instead of storing it.
	require.Len(t, fired, 1)
	assert.EqualValues(t, 202, fired[0])
}

// TestAllEventChangeDropsPastDue mirrors scenario S3.
func TestAllEventChangeDropsPastDue(t *testing.T) {
	h, q, _ := newHarness(t)
	short := 500 * time.Millisecond
	long := 1500 * time.Millisecond
	q.Add(model.EventDelay{Delay: &short, EventID: 1})
	q.Add(model.EventDelay{Delay: &long, EventID: 2})

	dropped := h.AllEventChange(1*time.Second, true)
	assert.Equal(t, 1, dropped)

	_, foundShort := q.Remaining(1)
	assert.False(t, foundShort)
	remainingLong, foundLong := q.Remaining(2)
	require.True(t, foundLong)
	assert.InDelta(t, float64(500*time.Millisecond), float64(remainingLong), float64(50*time.Millisecond))
}

// TestAllStopEmptiesQueueAndBroadcastsOnce mirrors scenario/property #9.
func TestAllStopEmptiesQueueAndBroadcastsOnce(t *testing.T) {
	h, q, _ := newHarness(t)
	d := time.Second
	q.Add(model.EventDelay{Delay: &d, EventID: 5})

	var broadcasts []BroadcastData
	h.broadcast = func(b BroadcastData) { broadcasts = append(broadcasts, b) }

	h.AllStop()

	assert.Empty(t, q.Snapshot())
	require.Len(t, broadcasts, 1)
	assert.EqualValues(t, model.AllStopID, broadcasts[0].EventID)
}

func TestSelectEventEnqueuesOnlyMatchingTarget(t *testing.T) {
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())
	var fired []model.ItemID
	var h *Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) {
		fired = append(fired, id)
		h.FireDelayedEvent(id)
	}, nil)
	h = New(zerolog.Nop(), cfg, idx, q)
	cfg.UpsertStatus(model.Status{ID: 1, Kind: model.StatusMultiState, Current: 10})
	cfg.UpsertEvent(model.Event{ID: 2, Actions: []model.EventAction{
		{Kind: model.ActionSelectEvent, StatusID: 1, EventMap: map[model.ItemID]model.ItemID{10: 20, 11: 21}},
	}})

	_, ok := h.ProcessEvent(ProcessEventRequest{EventID: 2, CheckScene: false, Broadcast: false})
	require.True(t, ok)

	// The target is cued with no delay, so the queue delivers it
	// synchronously.
	assert.Contains(t, fired, model.ItemID(20))
	assert.NotContains(t, fired, model.ItemID(21))
}

func TestDataPackingRoundTrips(t *testing.T) {
	h, _, _ := newHarness(t)
	packed := h.resolveData(model.DataType{Kind: model.DataStaticString, Static: "hello"})

	length := binary.BigEndian.Uint32(packed[0:4])
	assert.EqualValues(t, 5, length)

	decoded := string(packed[4 : 4+length])
	assert.Equal(t, "hello", decoded)
}

// TestCueDMXRecordsAuditOnSuccessAndFailure exercises the AuditRecord
// hook on both the success and exhausted-clients paths of cueDMX.
func TestCueDMXRecordsAuditOnSuccessAndFailure(t *testing.T) {
	cfg := showconfig.New(zerolog.Nop())
	idx := itemindex.New(zerolog.Nop())
	var h *Handler
	q := queue.New(zerolog.Nop(), func(id model.ItemID) { h.FireDelayedEvent(id) }, nil)

	var mu sync.Mutex
	var records []AuditRecord
	h = New(zerolog.Nop(), cfg, idx, q,
		WithDMXClients(&fakeDMXClient{fail: false}),
		WithAudit(func(r AuditRecord) {
			mu.Lock()
			records = append(records, r)
			mu.Unlock()
		}),
	)

	fade := model.DMXFade{Channel: 1, Value: 255}
	h.cueDMX(42, fade)

	mu.Lock()
	require.Len(t, records, 1)
	assert.EqualValues(t, 42, records[0].EventID)
	assert.Equal(t, "cue_dmx", records[0].Action)
	assert.True(t, records[0].Succeeded)
	records = nil
	mu.Unlock()

	h.dmx = []DMXClient{&fakeDMXClient{fail: true}}
	h.cueDMX(43, fade)

	mu.Lock()
	require.Len(t, records, 1)
	assert.Equal(t, "cue_dmx", records[0].Action)
	assert.False(t, records[0].Succeeded)
	assert.NotEmpty(t, records[0].Detail)
	mu.Unlock()
}

type fakeDMXClient struct{ fail bool }

func (f *fakeDMXClient) PlayFade(context.Context, model.DMXFade) error {
	if f.fail {
		return assert.AnError
	}
	return nil
}

func (f *fakeDMXClient) RestoreUniverse(context.Context, model.DMXUniverse) error { return nil }

type fakeBackup struct {
	onStatus func(statusID, newState model.ItemID)
}

func (f *fakeBackup) BackupCurrentScene(model.ItemID)                {}
func (f *fakeBackup) BackupStatus(statusID, newState model.ItemID) {
	if f.onStatus != nil {
		f.onStatus(statusID, newState)
	}
}
func (f *fakeBackup) BackupEvents([]queue.QueuedEvent)  {}
func (f *fakeBackup) BackupDMX(model.DMXFade)           {}
func (f *fakeBackup) BackupMedia(model.MediaCue)        {}
