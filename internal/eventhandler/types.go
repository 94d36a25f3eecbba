package eventhandler

import (
	"context"
	"time"

	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
)

// Severity classifies a Notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Notification is one entry in the outbound notification stream.
type Notification struct {
	Severity Severity
	Message  string
	EventID  *model.ItemID
}

// BroadcastData is one resolved SendData payload, emitted outward for a
// ProcessEvent call made with broadcast=true.
type BroadcastData struct {
	EventID model.ItemID
	Payload []byte
}

// AuditRecord describes the outcome of one executed action, independent
// of any particular transport: internal/audit adapts these into its own
// ProcessedAction wire format.
type AuditRecord struct {
	EventID   model.ItemID
	Action    string
	Succeeded bool
	Detail    string
}

// DMXClient is the thin RPC surface the DMX Interface exposes.
type DMXClient interface {
	PlayFade(ctx context.Context, fade model.DMXFade) error
	RestoreUniverse(ctx context.Context, universe model.DMXUniverse) error
}

// MediaClient is the thin RPC surface each Media Interface exposes.
// CueMedia fans out across every configured client until one accepts.
type MediaClient interface {
	PlayCue(ctx context.Context, cue model.MediaCue) error
	AdjustMedia(ctx context.Context, adj model.MediaAdjustment) error
	RestorePlaylist(ctx context.Context, playlist model.MediaPlaylist) error
}

// BackupStore is the subset of the Backup Handler's contract the Event
// Handler drives directly; every call is best-effort from the caller's
// point of view; errors are logged by the implementation, never returned.
type BackupStore interface {
	BackupCurrentScene(id model.ItemID)
	BackupStatus(statusID, newState model.ItemID)
	BackupEvents(entries []queue.QueuedEvent)
	BackupDMX(fade model.DMXFade)
	BackupMedia(cue model.MediaCue)
}

// Persister saves and loads the persisted configuration document. Its
// concrete format is not this package's concern.
type Persister interface {
	Save(path string, snap ConfigSnapshot) error
	Load(path string) (ConfigSnapshot, error)
}

// ConfigSnapshot is the serializable form of the full configuration graph
// plus the item index, as written to / read from a configuration file.
type ConfigSnapshot struct {
	Version      string
	Items        []model.ItemPair
	Events       []model.Event
	Scenes       []model.Scene
	Statuses     []model.Status
	Groups       []model.Group
	DefaultScene model.ItemID
}

// EventChangeRequest adjusts or cancels a previously queued entry. A nil
// NewDelay means cancel.
type EventChangeRequest struct {
	EventID   model.ItemID
	StartTime time.Time
	NewDelay  *time.Duration
}

// ProcessEventRequest is the primary trigger-processing request.
type ProcessEventRequest struct {
	EventID    model.ItemID
	CheckScene bool
	Broadcast  bool
}

// ProcessEventResult carries everything a caller might want to mirror
// outward after a ProcessEvent call.
type ProcessEventResult struct {
	Broadcasts []BroadcastData
}

// EditModification is a tagged union mirroring the façade's Modification
// vocabulary: exactly one field group is meaningful, selected by Kind.
type EditKind int

const (
	EditItem EditKind = iota
	EditEvent
	EditStatus
	EditScene
	EditGroup
)

type EditModification struct {
	Kind EditKind

	ItemPair model.ItemPair

	// For Event/Status/Scene/Group: the id plus an optional new definition.
	// A nil definition means delete.
	ID     model.ItemID
	Event  *model.Event
	Status *model.Status
	Scene  *model.Scene
	Group  *model.Group
}
