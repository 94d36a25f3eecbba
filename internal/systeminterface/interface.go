// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package systeminterface

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/eventhandler"
	"github.com/tomtom215/vigil/internal/itemindex"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
	"github.com/tomtom215/vigil/internal/showconfig"
)

const mailboxSize = 64

// QueryReply carries the read-only lookup result for a RequestQuery.
// Exactly one field is populated, matching the Query's Kind.
type QueryReply struct {
	Description *model.ItemDescription
	Event       *model.Event
	Status      *model.Status
	Scene       *model.Scene
	Items       []model.ItemPair
}

// Reply is the one-shot response bundled with every Submit call.
type Reply struct {
	OK    bool
	Query QueryReply
}

type request struct {
	req   model.UserRequest
	reply chan Reply
}

// SystemInterface is spec component G: the thin demultiplexer that owns
// the Event Handler and turns façade requests into Handler calls over a
// single mailbox, matching the "single-owner task" actor model of
// spec.md §5.
type SystemInterface struct {
	log     zerolog.Logger
	handler *eventhandler.Handler
	cfg     *showconfig.Config
	index   *itemindex.Index

	mailbox chan request
	bus     *updateBus
}

// New builds a SystemInterface over an already-constructed Handler. cfg
// and index are the same instances the Handler was built with; they are
// read directly here to answer RequestQuery lookups without adding new
// Handler methods for read-only façade traffic.
func New(log zerolog.Logger, handler *eventhandler.Handler, cfg *showconfig.Config, index *itemindex.Index) *SystemInterface {
	return &SystemInterface{
		log:     log.With().Str("component", "systeminterface").Logger(),
		handler: handler,
		cfg:     cfg,
		index:   index,
		mailbox: make(chan request, mailboxSize),
		bus:     newUpdateBus(),
	}
}

// Subscribe registers a new outbound update listener, returning its
// channel and an unsubscribe function the caller must invoke when done.
func (s *SystemInterface) Subscribe() (<-chan Update, func()) {
	return s.bus.Subscribe()
}

// NotifyFunc returns a callback suitable for eventhandler.WithNotify,
// forwarding every notification onto the update bus.
func (s *SystemInterface) NotifyFunc() func(eventhandler.Notification) {
	return func(n eventhandler.Notification) {
		s.bus.publish(Update{Kind: UpdateNotification, Notification: n})
	}
}

// BroadcastFunc returns a callback suitable for eventhandler.WithBroadcast.
func (s *SystemInterface) BroadcastFunc() func(eventhandler.BroadcastData) {
	return func(b eventhandler.BroadcastData) {
		s.bus.publish(Update{Kind: UpdateBroadcast, Broadcast: b})
	}
}

// PublishQueue forwards a queue snapshot outward; wire this directly as
// the Queue's publish callback (queue.New's third argument) so every
// add/adjust/cancel/clear mutation reaches subscribers as a timeline
// update.
func (s *SystemInterface) PublishQueue(entries []queue.QueuedEvent) {
	s.bus.publish(Update{Kind: UpdateTimeline, Timeline: entries})
}

// PublishStatus forwards a status transition outward; call this from the
// same call site that invokes Handler.StatusChange.
func (s *SystemInterface) PublishStatus(statusID, state model.ItemID) {
	s.bus.publish(Update{Kind: UpdateStatus, Status: StatusUpdate{StatusID: statusID, State: state}})
}

// PublishWindow forwards the current scene's window snapshot outward;
// call this after any scene change.
func (s *SystemInterface) PublishWindow(w WindowSnapshot) {
	s.bus.publish(Update{Kind: UpdateWindow, Window: w})
}

// Window builds the current WindowSnapshot from Config and the Item
// Index: the current scene's events resolved to display pairs, plus its
// key map.
func (s *SystemInterface) Window() (WindowSnapshot, bool) {
	sceneID, ok := s.cfg.CurrentScene()
	if !ok {
		return WindowSnapshot{}, false
	}
	scene, ok := s.cfg.GetScene(sceneID)
	if !ok {
		return WindowSnapshot{}, false
	}

	w := WindowSnapshot{Scene: sceneID, HasKeys: scene.HasKeys, KeyMap: scene.KeyMap}
	for id := range scene.Events {
		w.Events = append(w.Events, s.index.GetPair(id))
	}
	return w, true
}

// Submit enqueues req on the mailbox and blocks for its reply, or until
// ctx is done. This is the one-shot-reply-channel RPC pattern of
// spec.md §9.
func (s *SystemInterface) Submit(ctx context.Context, req model.UserRequest) (Reply, error) {
	r := request{req: req, reply: make(chan Reply, 1)}
	select {
	case s.mailbox <- r:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case reply := <-r.reply:
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Serve processes the mailbox FIFO until ctx is canceled, satisfying
// suture.Service so the supervision tree can restart it on panic.
func (s *SystemInterface) Serve(ctx context.Context) error {
	s.log.Info().Msg("system interface starting")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-s.mailbox:
			r.reply <- s.dispatch(r.req)
		}
	}
}

// dispatch is the exhaustive switch over model.UserRequest's Kind. Each
// case is a one-line call into the Event Handler or a direct read of
// Config/Index for query traffic.
func (s *SystemInterface) dispatch(req model.UserRequest) Reply {
	switch req.Kind {
	case model.RequestProcessEvent:
		_, ok := s.handler.ProcessEvent(eventhandler.ProcessEventRequest{
			EventID:    req.ProcessEventID,
			CheckScene: req.CheckScene,
			Broadcast:  req.Broadcast,
		})
		return Reply{OK: ok}

	case model.RequestCueEvent:
		s.handler.CueEvent(req.CueDelay)
		return Reply{OK: true}

	case model.RequestSceneChange:
		return Reply{OK: s.handler.SceneChange(req.SceneID)}

	case model.RequestStatusChange:
		return Reply{OK: s.handler.StatusChange(req.StatusID, req.NewState)}

	case model.RequestAllEventChange:
		s.handler.AllEventChange(req.Adjustment, req.IsNegative)
		return Reply{OK: true}

	case model.RequestAllStop:
		s.handler.AllStop()
		return Reply{OK: true}

	case model.RequestClearQueue:
		s.handler.ClearQueue()
		return Reply{OK: true}

	case model.RequestEventChange:
		return Reply{OK: s.handler.EventChange(eventhandler.EventChangeRequest{
			EventID:   req.EventID,
			StartTime: req.StartTime,
			NewDelay:  req.NewDelay,
		})}

	case model.RequestBroadcastEvent:
		s.handler.Broadcast(req.BroadcastEventID, req.BroadcastData)
		return Reply{OK: true}

	case model.RequestEdit:
		s.handler.Edit(toEditModifications(req.Modifications))
		return Reply{OK: true}

	case model.RequestSaveConfig:
		return Reply{OK: s.handler.SaveConfig(req.Filepath) == nil}

	case model.RequestConfigFile:
		return Reply{OK: s.handler.ConfigFile(req.Filepath) == nil}

	case model.RequestQuery:
		return Reply{OK: true, Query: s.answerQuery(req.Query)}

	case model.RequestClose, model.RequestDebugMode, model.RequestErrorLog,
		model.RequestGameLog, model.RequestRedraw:
		// Process-lifecycle and logging-target requests have no Handler
		// counterpart; the façade/cmd layer owns them directly.
		return Reply{OK: true}

	default:
		s.log.Warn().Int("kind", int(req.Kind)).Msg("unrecognized request kind")
		return Reply{OK: false}
	}
}

func (s *SystemInterface) answerQuery(q model.Query) QueryReply {
	switch q.Kind {
	case model.QueryDescription:
		d := s.index.GetDescription(q.ID)
		return QueryReply{Description: &d}

	case model.QueryEvent:
		if ev, ok := s.cfg.GetEvent(q.ID); ok {
			return QueryReply{Event: &ev}
		}
		return QueryReply{}

	case model.QueryStatus:
		if st, ok := s.cfg.GetStatus(q.ID); ok {
			return QueryReply{Status: &st}
		}
		return QueryReply{}

	case model.QueryScene:
		if sc, ok := s.cfg.GetScene(q.ID); ok {
			return QueryReply{Scene: &sc}
		}
		return QueryReply{}

	case model.QueryItems:
		return QueryReply{Items: s.index.ListPairs()}

	default:
		return QueryReply{}
	}
}

func toEditModifications(mods []model.Modification) []eventhandler.EditModification {
	out := make([]eventhandler.EditModification, 0, len(mods))
	for _, m := range mods {
		em := eventhandler.EditModification{ID: m.ID}
		switch m.Kind {
		case model.ModifyItem:
			em.Kind = eventhandler.EditItem
			em.ItemPair = m.Pair
		case model.ModifyEvent:
			em.Kind = eventhandler.EditEvent
			em.Event = m.Event
		case model.ModifyStatusDoc:
			em.Kind = eventhandler.EditStatus
			em.Status = m.Status
		case model.ModifyScene:
			em.Kind = eventhandler.EditScene
			em.Scene = m.Scene
		}
		out = append(out, em)
	}
	return out
}
