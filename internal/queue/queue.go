package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/model"
)

// ComingEvent is one pending, delayed event trigger. Its due instant is
// StartTime.Add(Delay) and never recomputed in place: adjusting an entry
// removes and reinserts it instead of mutating its position.
type ComingEvent struct {
	StartTime time.Time
	Delay     time.Duration
	EventID   model.ItemID
}

func (c ComingEvent) due() time.Time {
	return c.StartTime.Add(c.Delay)
}

// Remaining reports how long until c fires, relative to now. A past-due
// entry reports a zero duration rather than a negative one.
func (c ComingEvent) Remaining(now time.Time) time.Duration {
	d := c.due().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// QueuedEvent is the persisted/broadcast snapshot form of a pending entry:
// a delay relative to the snapshot instant, stripped of wall-clock detail.
type QueuedEvent struct {
	Remaining time.Duration
	EventID   model.ItemID
}

// Fire is invoked by the delivery loop when an entry comes due. It runs on
// the queue's own goroutine, so it must not block or re-enter the Queue.
type Fire func(model.ItemID)

// Queue is the timed event queue (spec component D). Entries live in a
// single slice kept sorted head-to-tail by decreasing remaining time, so
// the tail is always the next entry due; no entry is ever re-sorted once
// inserted, because every entry's remaining time shrinks at the same rate.
//
// A mutex guards the slice and a buffered wake channel lets producer
// methods nudge the delivery loop without blocking on it, the same
// mailbox-plus-lock shape internal/facade.Hub uses for its registration
// traffic.
type Queue struct {
	log zerolog.Logger

	mu      sync.Mutex
	entries []ComingEvent

	wake    chan struct{}
	publish func([]QueuedEvent)
	fire    Fire
}

// New builds a Queue. fire is called (on the delivery goroutine) for every
// entry that comes due. publish, if non-nil, is called after every mutation
// except Restore with a snapshot of the pending entries in head-to-tail
// order; it must not block.
func New(log zerolog.Logger, fire Fire, publish func([]QueuedEvent)) *Queue {
	return &Queue{
		log:     log.With().Str("component", "queue").Logger(),
		wake:    make(chan struct{}, 1),
		fire:    fire,
		publish: publish,
	}
}

func (q *Queue) nudge() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) snapshotLocked(now time.Time) []QueuedEvent {
	metrics.SetQueueDepth(len(q.entries))
	if q.publish == nil {
		return nil
	}
	out := make([]QueuedEvent, len(q.entries))
	for i, e := range q.entries {
		out[i] = QueuedEvent{Remaining: e.Remaining(now), EventID: e.EventID}
	}
	return out
}

// insertLocked places e at the position that preserves the head-to-tail,
// decreasing-remaining invariant, scanning backward from the tail (the
// most common insertion point, since newly cued events are usually further
// out than what is already about to fire).
func insertLocked(entries []ComingEvent, e ComingEvent) []ComingEvent {
	d := e.due()
	i := len(entries) - 1
	for i >= 0 && entries[i].due().Before(d) {
		i--
	}
	insertAt := i + 1

	entries = append(entries, ComingEvent{})
	copy(entries[insertAt+1:], entries[insertAt:])
	entries[insertAt] = e
	return entries
}

// Add queues delay.EventID to fire after delay.Delay. If delay is immediate
// (nil Delay), it bypasses the queue and fires synchronously on the caller's
// goroutine.
func (q *Queue) Add(delay model.EventDelay) {
	if delay.Immediate() {
		if q.fire != nil {
			q.fire(delay.EventID)
		}
		return
	}

	now := time.Now()
	q.mu.Lock()
	q.entries = insertLocked(q.entries, ComingEvent{StartTime: now, Delay: *delay.Delay, EventID: delay.EventID})
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	q.nudge()
	if snap != nil {
		q.publish(snap)
	}
}

// Adjust replaces the pending entry that was queued at startTime for
// eventID with one due newDelay from now. It reports whether a matching
// entry was found.
func (q *Queue) Adjust(eventID model.ItemID, startTime time.Time, newDelay time.Duration) bool {
	now := time.Now()
	q.mu.Lock()
	found := false
	for i, e := range q.entries {
		if e.EventID == eventID && e.StartTime.Equal(startTime) {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.entries = insertLocked(q.entries, ComingEvent{StartTime: now, Delay: newDelay, EventID: eventID})
			found = true
			break
		}
	}
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	if found {
		q.nudge()
		if snap != nil {
			q.publish(snap)
		}
	}
	return found
}

// Cancel removes the single pending entry queued at startTime for eventID,
// reporting whether one was found.
func (q *Queue) Cancel(eventID model.ItemID, startTime time.Time) bool {
	now := time.Now()
	q.mu.Lock()
	found := false
	for i, e := range q.entries {
		if e.EventID == eventID && e.StartTime.Equal(startTime) {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			found = true
			break
		}
	}
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	if found {
		q.nudge()
	}
	if snap != nil {
		q.publish(snap)
	}
	return found
}

// CancelAll removes every pending entry for eventID, reporting how many
// were removed.
func (q *Queue) CancelAll(eventID model.ItemID) int {
	now := time.Now()
	q.mu.Lock()
	kept := q.entries[:0:0]
	removed := 0
	for _, e := range q.entries {
		if e.EventID == eventID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	if removed > 0 {
		q.nudge()
	}
	if snap != nil {
		q.publish(snap)
	}
	return removed
}

// AdjustAll shifts every pending entry's remaining time by delta. A
// positive delta extends every entry, including ones already due (they
// simply become due later). A negative delta pulls every entry closer and
// drops any entry that would fall to or below zero remaining, since a
// cancelled-by-time-travel trigger has no well-defined fire instant.
func (q *Queue) AdjustAll(delta time.Duration) (dropped int) {
	now := time.Now()
	q.mu.Lock()

	rebuilt := make([]ComingEvent, 0, len(q.entries))
	for _, e := range q.entries {
		newDue := e.due().Add(delta)
		if delta < 0 && !newDue.After(now) {
			dropped++
			continue
		}
		rebuilt = append(rebuilt, ComingEvent{StartTime: e.StartTime, Delay: e.Delay + delta, EventID: e.EventID})
	}

	// Shifting by a uniform delta preserves relative order, so a plain
	// re-sort by due time (stable, descending) restores the invariant
	// without re-running the per-entry insertion scan.
	for i := 1; i < len(rebuilt); i++ {
		e := rebuilt[i]
		j := i - 1
		for j >= 0 && rebuilt[j].due().Before(e.due()) {
			rebuilt[j+1] = rebuilt[j]
			j--
		}
		rebuilt[j+1] = e
	}
	q.entries = rebuilt

	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	if dropped > 0 {
		metrics.RecordQueueAdjustAllDropped(dropped)
	}
	q.nudge()
	if snap != nil {
		q.publish(snap)
	}
	return dropped
}

// Remaining reports the time left on the soonest pending entry for eventID.
func (q *Queue) Remaining(eventID model.ItemID) (time.Duration, bool) {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(q.entries) - 1; i >= 0; i-- {
		if q.entries[i].EventID == eventID {
			return q.entries[i].Remaining(now), true
		}
	}
	return 0, false
}

// Clear drops every pending entry.
func (q *Queue) Clear() {
	now := time.Now()
	q.mu.Lock()
	q.entries = nil
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	q.nudge()
	if snap != nil {
		q.publish(snap)
	}
}

// Snapshot returns the current pending entries, head-to-tail.
func (q *Queue) Snapshot() []QueuedEvent {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked(now)
}

// Restore replaces the queue contents from a backup snapshot, re-anchoring
// each entry's start time to now so Remaining is preserved across a crash.
func (q *Queue) Restore(entries []QueuedEvent) {
	now := time.Now()
	q.mu.Lock()
	rebuilt := make([]ComingEvent, 0, len(entries))
	for _, e := range entries {
		rebuilt = append(rebuilt, ComingEvent{StartTime: now, Delay: e.Remaining, EventID: e.EventID})
	}
	// entries are assumed already head-to-tail descending by remaining;
	// a linear insertion rebuild keeps Restore correct even if they are not.
	var ordered []ComingEvent
	for _, e := range rebuilt {
		ordered = insertLocked(ordered, e)
	}
	q.entries = ordered
	q.mu.Unlock()
	q.nudge()
}

// Serve runs the delivery loop until ctx is cancelled, satisfying
// suture.Service. It wakes on whichever comes first: the soonest pending
// entry coming due, or a producer nudge signalling the soonest entry
// changed.
func (q *Queue) Serve(ctx context.Context) error {
	q.log.Info().Msg("queue delivery loop starting")
	defer q.log.Info().Msg("queue delivery loop stopped")

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait, ok := q.nextWait()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if ok {
			timer.Reset(wait)
		} else {
			timer.Reset(time.Hour)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			continue
		case <-timer.C:
			q.deliverDue()
		}
	}
}

func (q *Queue) nextWait() (time.Duration, bool) {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return 0, false
	}
	return q.entries[len(q.entries)-1].Remaining(now), true
}

// deliverDue pops and fires every entry at the tail that is now due. It
// snapshots the entry list before releasing the lock so fire callbacks
// never run while holding it.
func (q *Queue) deliverDue() {
	now := time.Now()
	var due []ComingEvent

	q.mu.Lock()
	for len(q.entries) > 0 {
		last := q.entries[len(q.entries)-1]
		if last.due().After(now) {
			break
		}
		due = append(due, last)
		q.entries = q.entries[:len(q.entries)-1]
	}
	snap := q.snapshotLocked(now)
	q.mu.Unlock()

	if snap != nil {
		q.publish(snap)
	}

	for _, e := range due {
		metrics.RecordQueueFire(e.due(), now)
		if q.fire != nil {
			q.fire(e.EventID)
		}
	}
}
