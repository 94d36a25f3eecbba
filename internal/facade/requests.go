// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package facade

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/model"
)

func decodeJSON(r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

type processEventBody struct {
	EventID    uint32 `json:"event_id"`
	CheckScene bool   `json:"check_scene"`
	Broadcast  bool   `json:"broadcast"`
}

func decodeProcessEvent(r *http.Request) (model.UserRequest, error) {
	var b processEventBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	return model.UserRequest{
		Kind:           model.RequestProcessEvent,
		ProcessEventID: model.ItemID(b.EventID),
		CheckScene:     b.CheckScene,
		Broadcast:      b.Broadcast,
	}, nil
}

type cueEventBody struct {
	EventID  uint32 `json:"event_id"`
	DelayMS  *int64 `json:"delay_ms"`
}

func decodeCueEvent(r *http.Request) (model.UserRequest, error) {
	var b cueEventBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	delay := model.EventDelay{EventID: model.ItemID(b.EventID)}
	if b.DelayMS != nil {
		d := time.Duration(*b.DelayMS) * time.Millisecond
		delay.Delay = &d
	}
	return model.UserRequest{Kind: model.RequestCueEvent, CueDelay: delay}, nil
}

type sceneChangeBody struct {
	Scene uint32 `json:"scene"`
}

func decodeSceneChange(r *http.Request) (model.UserRequest, error) {
	var b sceneChangeBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	return model.UserRequest{Kind: model.RequestSceneChange, SceneID: model.ItemID(b.Scene)}, nil
}

type statusChangeBody struct {
	Status uint32 `json:"status"`
	State  uint32 `json:"state"`
}

func decodeStatusChange(r *http.Request) (model.UserRequest, error) {
	var b statusChangeBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	return model.UserRequest{Kind: model.RequestStatusChange, StatusID: model.ItemID(b.Status), NewState: model.ItemID(b.State)}, nil
}

func decodeAllStop(*http.Request) (model.UserRequest, error) {
	return model.UserRequest{Kind: model.RequestAllStop}, nil
}

func decodeClearQueue(*http.Request) (model.UserRequest, error) {
	return model.UserRequest{Kind: model.RequestClearQueue}, nil
}

type eventChangeBody struct {
	EventID   uint32     `json:"event_id"`
	StartTime time.Time  `json:"start_time"`
	NewDelayMS *int64    `json:"new_delay_ms"`
}

func decodeEventChange(r *http.Request) (model.UserRequest, error) {
	var b eventChangeBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	req := model.UserRequest{Kind: model.RequestEventChange, EventID: model.ItemID(b.EventID), StartTime: b.StartTime}
	if b.NewDelayMS != nil {
		d := time.Duration(*b.NewDelayMS) * time.Millisecond
		req.NewDelay = &d
	}
	return req, nil
}

type allEventChangeBody struct {
	AdjustmentMS int64 `json:"adjustment_ms"`
	IsNegative   bool  `json:"is_negative"`
}

func decodeAllEventChange(r *http.Request) (model.UserRequest, error) {
	var b allEventChangeBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	return model.UserRequest{
		Kind:       model.RequestAllEventChange,
		Adjustment: time.Duration(b.AdjustmentMS) * time.Millisecond,
		IsNegative: b.IsNegative,
	}, nil
}

type broadcastEventBody struct {
	EventID uint32  `json:"event_id"`
	Data    *uint32 `json:"data"`
}

func decodeBroadcastEvent(r *http.Request) (model.UserRequest, error) {
	var b broadcastEventBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	return model.UserRequest{Kind: model.RequestBroadcastEvent, BroadcastEventID: model.ItemID(b.EventID), BroadcastData: b.Data}, nil
}

type modificationBody struct {
	Kind  string        `json:"kind"`
	Pair  model.ItemPair `json:"pair,omitempty"`
	ID    uint32        `json:"id,omitempty"`
	Event *model.Event  `json:"event,omitempty"`
	Status *model.Status `json:"status,omitempty"`
	Scene  *model.Scene  `json:"scene,omitempty"`
}

type editBody struct {
	Modifications []modificationBody `json:"modifications"`
}

func decodeEdit(r *http.Request) (model.UserRequest, error) {
	var b editBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	mods := make([]model.Modification, 0, len(b.Modifications))
	for _, m := range b.Modifications {
		mod := model.Modification{ID: model.ItemID(m.ID), Pair: m.Pair, Event: m.Event, Status: m.Status, Scene: m.Scene}
		switch m.Kind {
		case "item":
			mod.Kind = model.ModifyItem
		case "event":
			mod.Kind = model.ModifyEvent
		case "status":
			mod.Kind = model.ModifyStatusDoc
		case "scene":
			mod.Kind = model.ModifyScene
		default:
			return model.UserRequest{}, fmt.Errorf("unknown modification kind %q", m.Kind)
		}
		mods = append(mods, mod)
	}
	return model.UserRequest{Kind: model.RequestEdit, Modifications: mods}, nil
}

type queryBody struct {
	Kind string `json:"kind"`
	ID   uint32 `json:"id"`
}

func decodeQuery(r *http.Request) (model.UserRequest, error) {
	var b queryBody
	if err := decodeJSON(r, &b); err != nil {
		return model.UserRequest{}, err
	}
	q := model.Query{ID: model.ItemID(b.ID)}
	switch b.Kind {
	case "description":
		q.Kind = model.QueryDescription
	case "event":
		q.Kind = model.QueryEvent
	case "status":
		q.Kind = model.QueryStatus
	case "scene":
		q.Kind = model.QueryScene
	case "items":
		q.Kind = model.QueryItems
	default:
		return model.UserRequest{}, fmt.Errorf("unknown query kind %q", b.Kind)
	}
	return model.UserRequest{Kind: model.RequestQuery, Query: q}, nil
}
