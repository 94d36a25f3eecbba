package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tomtom215/vigil/internal/model"
)

func delay(d time.Duration) model.EventDelay {
	return model.EventDelay{Delay: &d}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestOrderingInvariant checks that entries are always stored head-to-tail
// with non-increasing remaining time, regardless of insertion order.
func TestOrderingInvariant(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)

	q.Add(delay(10 * time.Second))
	q.Add(delay(2 * time.Second))
	q.Add(delay(20 * time.Second))
	q.Add(delay(7 * time.Second))

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.entries, 4)
	for i := 1; i < len(q.entries); i++ {
		assert.Falsef(t, q.entries[i].due().After(q.entries[i-1].due()),
			"entries must be non-increasing in due time head to tail")
	}
	// tail is soonest
	assert.Equal(t, 2*time.Second, q.entries[len(q.entries)-1].Delay)
	// head is furthest out
	assert.Equal(t, 20*time.Second, q.entries[0].Delay)
}

func TestAdjustPreservesOrdering(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)

	q.Add(delay(10 * time.Second))
	q.Add(delay(5 * time.Second))

	q.mu.Lock()
	target := q.entries[0] // the 10s entry, currently at head
	q.mu.Unlock()

	ok := q.Adjust(target.EventID, target.StartTime, 1*time.Second)
	require.True(t, ok)

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.entries, 2)
	// the adjusted entry (1s) should now be soonest, at the tail
	assert.Equal(t, target.EventID, q.entries[len(q.entries)-1].EventID)
}

func TestCancelIsIdempotent(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(5 * time.Second))

	q.mu.Lock()
	target := q.entries[0]
	q.mu.Unlock()

	assert.True(t, q.Cancel(target.EventID, target.StartTime))
	assert.False(t, q.Cancel(target.EventID, target.StartTime))
}

func TestCancelAll(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(5 * time.Second))
	q.Add(delay(6 * time.Second))
	q.Add(model.EventDelay{Delay: durPtr(7 * time.Second), EventID: 99})

	removed := q.CancelAll(0)
	assert.Equal(t, 2, removed)

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.entries, 1)
	assert.EqualValues(t, 99, q.entries[0].EventID)
}

func durPtr(d time.Duration) *time.Duration { return &d }

// TestAdjustAllDropsPastDueOnNegative mirrors the AllEventChange scenario:
// a negative shift drops any entry it would pull to or past zero remaining,
// while a positive shift only ever extends entries.
func TestAdjustAllDropsPastDueOnNegative(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(1 * time.Second))
	q.Add(delay(10 * time.Second))

	dropped := q.AdjustAll(-5 * time.Second)
	assert.Equal(t, 1, dropped)

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.entries, 1)
	assert.Equal(t, 5*time.Second, q.entries[0].Delay)
}

func TestAdjustAllPositiveKeepsEverything(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(1 * time.Second))
	q.Add(delay(2 * time.Second))

	dropped := q.AdjustAll(3 * time.Second)
	assert.Equal(t, 0, dropped)

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.entries, 2)
}

func TestImmediateBypassesQueue(t *testing.T) {
	var fired []model.ItemID
	q := New(zerolog.Nop(), func(id model.ItemID) { fired = append(fired, id) }, nil)

	q.Add(model.EventDelay{EventID: 7})

	assert.Equal(t, []model.ItemID{7}, fired)
	assert.Empty(t, q.Snapshot())
}

func TestDeliveryLoopFiresDueEntries(t *testing.T) {
	var mu sync.Mutex
	var fired []model.ItemID

	q := New(zerolog.Nop(), func(id model.ItemID) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	}, nil)

	q.Add(model.EventDelay{Delay: durPtr(20 * time.Millisecond), EventID: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- q.Serve(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, 400*time.Millisecond, 5*time.Millisecond)

	cancel()
	<-done
}

func TestClear(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(time.Second))
	q.Add(delay(2 * time.Second))
	q.Clear()
	assert.Empty(t, q.Snapshot())
}

func TestRestoreReanchors(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Restore([]QueuedEvent{
		{Remaining: 3 * time.Second, EventID: 1},
		{Remaining: 1 * time.Second, EventID: 2},
	})

	snap := q.Snapshot()
	require.Len(t, snap, 2)
	assert.EqualValues(t, 2, snap[len(snap)-1].EventID)
}

// TestBackupRoundTripPreservesTail exercises the queue side of spec's
// backup round-trip property: a queue restored from a backed-up snapshot
// must have the same tail (soonest-due) event id as the one that was
// backed up, modulo elapsed time.
func TestBackupRoundTripPreservesTail(t *testing.T) {
	q := New(zerolog.Nop(), nil, nil)
	q.Add(delay(10 * time.Second))
	q.Add(delay(2 * time.Second))
	q.Add(delay(30 * time.Second))

	backedUp := q.Snapshot()

	restored := New(zerolog.Nop(), nil, nil)
	restored.Restore(backedUp)

	got := restored.Snapshot()
	require.Len(t, got, len(backedUp))

	wantIDs := make([]model.ItemID, len(backedUp))
	for i, e := range backedUp {
		wantIDs[i] = e.EventID
	}
	gotIDs := make([]model.ItemID, len(got))
	for i, e := range got {
		gotIDs[i] = e.EventID
	}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Fatalf("restored queue order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, backedUp[len(backedUp)-1].EventID, got[len(got)-1].EventID, "tail event id must survive the round trip")
}
