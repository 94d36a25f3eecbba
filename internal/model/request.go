// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package model

import "time"

// RequestKind discriminates the UserRequest tagged union: the inbound
// vocabulary the façade submits to the core, one-shot reply per request.
type RequestKind int

const (
	RequestAllEventChange RequestKind = iota
	RequestAllStop
	RequestBroadcastEvent
	RequestClearQueue
	RequestClose
	RequestConfigFile
	RequestCueEvent
	RequestDebugMode
	RequestEdit
	RequestErrorLog
	RequestEventChange
	RequestGameLog
	RequestProcessEvent
	RequestRedraw
	RequestQuery
	RequestSaveConfig
	RequestSceneChange
	RequestStatusChange
)

// ModificationKind discriminates the Modification tagged union used by
// RequestEdit.
type ModificationKind int

const (
	ModifyItem ModificationKind = iota
	ModifyEvent
	ModifyStatusDoc
	ModifyScene
)

// Modification is one edit applied by a RequestEdit. Exactly one field
// group is meaningful, selected by Kind.
type Modification struct {
	Kind ModificationKind

	// ModifyItem
	Pair ItemPair

	// ModifyEvent / ModifyStatusDoc / ModifyScene all key on ID; a nil
	// pointer in the corresponding field deletes the entry, a non-nil
	// pointer upserts it.
	ID     ItemID
	Event  *Event
	Status *Status
	Scene  *Scene
}

// QueryKind discriminates the RequestType tagged union used by
// RequestQuery.
type QueryKind int

const (
	QueryDescription QueryKind = iota
	QueryEvent
	QueryStatus
	QueryScene
	QueryItems
)

// Query is one read-only lookup request, replied to by correlation id
// rather than broadcast.
type Query struct {
	Kind QueryKind
	ID   ItemID // unused by QueryItems
}

// UserRequest is the inbound request vocabulary: everything the façade
// can submit to the core. Exactly one field group is meaningful,
// selected by Kind; dispatchers must switch exhaustively on Kind.
type UserRequest struct {
	Kind RequestKind

	// RequestAllEventChange
	Adjustment time.Duration
	IsNegative bool

	// RequestBroadcastEvent
	BroadcastEventID ItemID
	BroadcastData    *uint32

	// RequestConfigFile / RequestSaveConfig / RequestErrorLog / RequestGameLog
	Filepath string

	// RequestCueEvent
	CueDelay EventDelay

	// RequestDebugMode
	IsDebug bool

	// RequestEdit
	Modifications []Modification

	// RequestEventChange
	EventID   ItemID
	StartTime time.Time
	NewDelay  *time.Duration

	// RequestProcessEvent
	ProcessEventID ItemID
	CheckScene     bool
	Broadcast      bool

	// RequestQuery
	ReplyTo CorrelationID
	Query   Query

	// RequestSceneChange
	SceneID ItemID

	// RequestStatusChange
	StatusID ItemID
	NewState ItemID
}

// CorrelationID identifies the caller a RequestQuery reply is routed
// back to. The façade assigns and tracks these; the core treats it as
// an opaque token.
type CorrelationID string
