package eventhandler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/itemindex"
	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
	"github.com/tomtom215/vigil/internal/showconfig"
)

// AllStopID is the reserved broadcast identity for AllStop.
const AllStopID = model.AllStopID

// Handler is the orchestrator described in the component design: the
// single front door through which every trigger and façade request flows.
type Handler struct {
	log zerolog.Logger

	cfg   *showconfig.Config
	index *itemindex.Index
	queue *queue.Queue

	dmx       []DMXClient
	media     []MediaClient
	backup    BackupStore
	persister Persister

	notify    func(Notification)
	broadcast func(BroadcastData)
	audit     func(AuditRecord)

	rpcTimeout time.Duration
}

// Option configures optional Handler collaborators.
type Option func(*Handler)

func WithDMXClients(clients ...DMXClient) Option {
	return func(h *Handler) { h.dmx = clients }
}

func WithMediaClients(clients ...MediaClient) Option {
	return func(h *Handler) { h.media = clients }
}

func WithBackup(b BackupStore) Option {
	return func(h *Handler) { h.backup = b }
}

func WithPersister(p Persister) Option {
	return func(h *Handler) { h.persister = p }
}

func WithNotify(f func(Notification)) Option {
	return func(h *Handler) { h.notify = f }
}

func WithBroadcast(f func(BroadcastData)) Option {
	return func(h *Handler) { h.broadcast = f }
}

func WithRPCTimeout(d time.Duration) Option {
	return func(h *Handler) { h.rpcTimeout = d }
}

// WithAudit registers a sink for AuditRecords, one per executed action.
// Wire internal/audit.Publisher.Publish (adapted to this signature) to
// give the show run a durable history.
func WithAudit(f func(AuditRecord)) Option {
	return func(h *Handler) { h.audit = f }
}

// New builds a Handler over the given collaborators.
func New(log zerolog.Logger, cfg *showconfig.Config, index *itemindex.Index, q *queue.Queue, opts ...Option) *Handler {
	h := &Handler{
		log:        log.With().Str("component", "eventhandler").Logger(),
		cfg:        cfg,
		index:      index,
		queue:      q,
		rpcTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) emit(sev Severity, eventID *model.ItemID, msg string) {
	if h.notify == nil {
		return
	}
	h.notify(Notification{Severity: sev, Message: msg, EventID: eventID})
}

// SetNotify wires the notification sink after construction, for callers
// (the System Interface) that need a live *Handler before they can build
// their own callback.
func (h *Handler) SetNotify(f func(Notification)) {
	h.notify = f
}

// SetBroadcast wires the broadcast sink after construction; see SetNotify.
func (h *Handler) SetBroadcast(f func(BroadcastData)) {
	h.broadcast = f
}

func (h *Handler) recordAudit(eventID model.ItemID, action string, succeeded bool, detail string) {
	if h.audit == nil {
		return
	}
	h.audit(AuditRecord{EventID: eventID, Action: action, Succeeded: succeeded, Detail: detail})
}

func (h *Handler) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.rpcTimeout)
}

// FireDelayedEvent is the queue's Fire callback: a cued event was already
// scope-checked when it was added, so delivery runs with scene scoping
// disabled. Pass this to queue.New when wiring the two components
// together.
func (h *Handler) FireDelayedEvent(id model.ItemID) {
	_, _ = h.ProcessEvent(ProcessEventRequest{EventID: id, CheckScene: false, Broadcast: true})
}

// ProcessEvent resolves event, executes its actions in order, and
// collects any SendData outputs for the caller to broadcast.
func (h *Handler) ProcessEvent(req ProcessEventRequest) (ProcessEventResult, bool) {
	ev, ok := h.cfg.TryEvent(req.EventID, req.CheckScene)
	if !ok {
		return ProcessEventResult{}, false
	}

	var result ProcessEventResult
	for _, action := range ev.Actions {
		h.execute(req.EventID, action, &result)
	}

	if req.Broadcast && h.broadcast != nil {
		for _, b := range result.Broadcasts {
			h.broadcast(b)
		}
	}
	return result, true
}

// CueEvent enqueues an event delay directly, as requested by the façade.
func (h *Handler) CueEvent(delay model.EventDelay) {
	h.queue.Add(delay)
}

// SceneChange selects a new scene, backs up the selection, and cues the
// scene's reset event.
func (h *Handler) SceneChange(sceneID model.ItemID) bool {
	reset, ok := h.cfg.ChooseScene(sceneID)
	if !ok {
		eid := sceneID
		h.emit(SeverityWarning, &eid, "scene change refused: no such scene")
		metrics.RecordSceneChange("refused")
		return false
	}
	if h.backup != nil {
		h.backup.BackupCurrentScene(sceneID)
	}
	h.queue.Add(model.EventDelay{EventID: reset})
	metrics.RecordSceneChange("ok")
	return true
}

// StatusChange applies a status transition, backing up and cueing the
// resulting state as an event on success.
func (h *Handler) StatusChange(statusID, state model.ItemID) bool {
	res, ok := h.cfg.ModifyStatus(statusID, state)
	if !ok {
		eid := statusID
		h.emit(SeverityWarning, &eid, "status change refused")
		metrics.RecordStatusChange("refused")
		return false
	}
	if h.backup != nil {
		h.backup.BackupStatus(statusID, res.NewState)
	}
	if !res.Silent {
		h.queue.Add(model.EventDelay{EventID: res.NewState})
	}
	metrics.RecordStatusChange("ok")
	return true
}

// AllEventChange shifts every queued entry by adjustment, dropping any
// that a negative shift would pull past due.
func (h *Handler) AllEventChange(adjustment time.Duration, isNegative bool) int {
	delta := adjustment
	if isNegative {
		delta = -adjustment
	}
	return h.queue.AdjustAll(delta)
}

// AllStop empties the queue and broadcasts the all-stop sentinel exactly
// once.
func (h *Handler) AllStop() {
	h.queue.Clear()
	if h.broadcast != nil {
		h.broadcast(BroadcastData{EventID: AllStopID})
	}
	h.emit(SeverityInfo, nil, "all stop")
}

// Broadcast emits a BroadcastData for eventID directly, without going
// through ProcessEvent's action list. data is folded into the low 32
// bits of the payload when present.
func (h *Handler) Broadcast(eventID model.ItemID, data *uint32) {
	if h.broadcast == nil {
		return
	}
	b := BroadcastData{EventID: eventID}
	if data != nil {
		b.Payload = packUint32(*data)
	}
	h.broadcast(b)
}

// ClearQueue drops every pending queue entry without broadcasting.
func (h *Handler) ClearQueue() {
	h.queue.Clear()
}

// EventChange adjusts or cancels a previously queued entry, selected by
// NewDelay being non-nil (adjust) or nil (cancel).
func (h *Handler) EventChange(req EventChangeRequest) bool {
	if req.NewDelay == nil {
		return h.queue.Cancel(req.EventID, req.StartTime)
	}
	return h.queue.Adjust(req.EventID, req.StartTime, *req.NewDelay)
}

// Edit applies a batch of modifications to the config graph and item
// index, in order.
func (h *Handler) Edit(mods []EditModification) {
	for _, m := range mods {
		h.applyModification(m)
	}
}

func (h *Handler) applyModification(m EditModification) {
	switch m.Kind {
	case EditItem:
		h.index.Upsert(m.ItemPair.ID, m.ItemPair.Description)

	case EditEvent:
		if m.Event == nil {
			h.cfg.DeleteEvent(m.ID)
			return
		}
		h.cfg.UpsertEvent(*m.Event)

	case EditStatus:
		if m.Status == nil {
			h.cfg.DeleteStatus(m.ID)
			return
		}
		h.cfg.UpsertStatus(*m.Status)

	case EditScene:
		if m.Scene == nil {
			h.cfg.DeleteScene(m.ID)
			return
		}
		h.cfg.UpsertScene(*m.Scene)

	case EditGroup:
		if m.Group == nil {
			h.cfg.DeleteGroup(m.ID)
			return
		}
		h.cfg.UpsertGroup(*m.Group)
	}
}

// SaveConfig serializes the current configuration graph to path.
func (h *Handler) SaveConfig(path string) error {
	if h.persister == nil {
		return nil
	}
	snap := ExportSnapshot(h.cfg, h.index)
	if err := h.persister.Save(path, snap); err != nil {
		h.emit(SeverityError, nil, "save config failed: "+err.Error())
		return err
	}
	return nil
}

// ExportSnapshot walks every item id and rebuilds a full ConfigSnapshot
// for persistence. Shared by SaveConfig and the server's shutdown save so
// the two never drift apart.
func ExportSnapshot(cfg *showconfig.Config, index *itemindex.Index) ConfigSnapshot {
	snap := ConfigSnapshot{Version: "1", Items: index.ListPairs()}
	for _, id := range index.ListIDs() {
		if ev, ok := cfg.GetEvent(id); ok {
			snap.Events = append(snap.Events, ev)
		}
		if sc, ok := cfg.GetScene(id); ok {
			snap.Scenes = append(snap.Scenes, sc)
		}
		if st, ok := cfg.GetStatus(id); ok {
			snap.Statuses = append(snap.Statuses, st)
		}
		if g, ok := cfg.GetGroup(id); ok {
			snap.Groups = append(snap.Groups, g)
		}
	}
	if sceneID, ok := cfg.CurrentScene(); ok {
		snap.DefaultScene = sceneID
	}
	return snap
}

// ConfigFile loads a configuration document from path and replaces the
// current graph and index.
func (h *Handler) ConfigFile(path string) error {
	if h.persister == nil {
		return nil
	}
	snap, err := h.persister.Load(path)
	if err != nil {
		h.emit(SeverityError, nil, "load config failed, falling through to empty configuration: "+err.Error())
		return err
	}

	h.index.SetAll(snap.Items)
	for _, ev := range snap.Events {
		h.cfg.UpsertEvent(ev)
	}
	for _, sc := range snap.Scenes {
		h.cfg.UpsertScene(sc)
	}
	for _, st := range snap.Statuses {
		h.cfg.UpsertStatus(st)
	}
	for _, g := range snap.Groups {
		h.cfg.UpsertGroup(g)
	}
	if snap.DefaultScene != 0 {
		h.cfg.ChooseScene(snap.DefaultScene)
	}

	warnings := h.cfg.Verify(h.index.Exists)
	for _, w := range warnings {
		id := w.ItemID
		h.emit(SeverityWarning, &id, w.Message)
	}
	return nil
}
