// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package systeminterface

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/vigil/internal/eventhandler"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
)

// UpdateKind discriminates the outbound update vocabulary of spec.md §6:
// window snapshots, per-status updates, the notification stream,
// broadcast payloads, and timeline (queue) snapshots. There is no config
// snapshot kind.
type UpdateKind int

const (
	UpdateNotification UpdateKind = iota
	UpdateBroadcast
	UpdateTimeline
	UpdateStatus
	UpdateWindow
)

// StatusUpdate is one status's new state, emitted after every accepted
// transition.
type StatusUpdate struct {
	StatusID model.ItemID
	State    model.ItemID
}

// WindowSnapshot is the current scene plus its grouped events and key
// map, as described by spec.md §6's outbound vocabulary.
type WindowSnapshot struct {
	Scene   model.ItemID
	HasKeys bool
	KeyMap  map[uint32]model.ItemID
	Events  []model.ItemPair
}

// Update is one entry in the outbound stream a façade subscribes to.
// Exactly one field group is meaningful, selected by Kind.
type Update struct {
	Kind UpdateKind

	Notification eventhandler.Notification
	Broadcast    eventhandler.BroadcastData
	Timeline     []queue.QueuedEvent
	Status       StatusUpdate
	Window       WindowSnapshot
}

// subscriberBufferSize bounds how many pending updates an unread
// subscriber can accumulate before new updates are dropped; matches the
// façade hub's own broadcast channel depth.
const subscriberBufferSize = 256

// subscriberIDCounter assigns each subscription a monotonically
// increasing id so publish can fan out in a deterministic order, the
// same trick internal/facade.Client uses for websocket clients.
var subscriberIDCounter atomic.Uint64

type subscription struct {
	id int
	ch chan Update
}

// updateBus fans Update values out to every registered subscriber,
// non-blocking: a slow subscriber has updates dropped for it rather than
// stalling the Event Handler's own goroutine. This is the same
// register/unregister/broadcast shape internal/facade.Hub uses for
// websocket clients.
type updateBus struct {
	mu          sync.Mutex
	subscribers map[uint64]subscription
	onDrop      func(UpdateKind)
}

func newUpdateBus() *updateBus {
	return &updateBus{subscribers: make(map[uint64]subscription)}
}

// Subscribe registers a new outbound channel and returns it along with an
// unsubscribe function.
func (b *updateBus) Subscribe() (<-chan Update, func()) {
	id := subscriberIDCounter.Add(1)
	ch := make(chan Update, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[id] = subscription{id: int(id), ch: ch}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

// publish fans out u to every subscriber in ascending subscription-id
// order so tests observing multiple subscribers see stable behavior.
func (b *updateBus) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := make([]subscription, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	for _, s := range subs {
		select {
		case s.ch <- u:
		default:
			if b.onDrop != nil {
				b.onDrop(u.Kind)
			}
		}
	}
}
