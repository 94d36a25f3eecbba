package showconfig

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/model"
)

// Config is the runtime configuration graph. It is owned by a single
// caller (the Event Handler) and is not safe for concurrent mutation from
// multiple goroutines without external synchronization beyond what Config
// itself provides; the internal mutex only protects against the Event
// Handler's own read-path (e.g. a façade snapshot request) racing an edit.
type Config struct {
	log zerolog.Logger

	mu sync.RWMutex

	events   map[model.ItemID]model.Event
	scenes   map[model.ItemID]model.Scene
	statuses map[model.ItemID]*model.Status
	groups   map[model.ItemID]model.Group

	currentScene model.ItemID
	hasScene     bool
}

// New returns an empty Config.
func New(log zerolog.Logger) *Config {
	return &Config{
		log:      log.With().Str("component", "config").Logger(),
		events:   make(map[model.ItemID]model.Event),
		scenes:   make(map[model.ItemID]model.Scene),
		statuses: make(map[model.ItemID]*model.Status),
		groups:   make(map[model.ItemID]model.Group),
	}
}

// CurrentScene returns the active scene id, or false if none is selected
// (or the selected one no longer exists).
func (c *Config) CurrentScene() (model.ItemID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasScene {
		return 0, false
	}
	_, ok := c.scenes[c.currentScene]
	return c.currentScene, ok
}

// TryEvent resolves id to its Event. When checkScene is true, the event
// must also be a member of the current scene.
func (c *Config) TryEvent(id model.ItemID, checkScene bool) (model.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ev, ok := c.events[id]
	if !ok {
		c.log.Warn().Uint32("event_id", uint32(id)).Msg("unknown event id")
		return model.Event{}, false
	}
	if checkScene {
		scene, ok := c.scenes[c.currentScene]
		if !ok || !scene.HasEvent(id) {
			c.log.Warn().Uint32("event_id", uint32(id)).Msg("event not in current scene")
			return model.Event{}, false
		}
	}
	return ev, true
}

// ChooseScene selects scene_id as current, if it exists. On success it
// returns the scene's reset event id (equal to scene_id itself) for the
// caller to cue through the queue.
func (c *Config) ChooseScene(sceneID model.ItemID) (resetEvent model.ItemID, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.scenes[sceneID]; !exists {
		c.log.Warn().Uint32("scene_id", uint32(sceneID)).Msg("choose_scene: no such scene")
		return 0, false
	}
	c.currentScene = sceneID
	c.hasScene = true
	return sceneID, true
}

// StatusResult reports the outcome of a ModifyStatus call.
type StatusResult struct {
	NewState model.ItemID
	Silent   bool
}

// ModifyStatus applies a transition to the named status and reports the
// resulting state. ok is false if the status does not exist or the
// transition is refused.
func (c *Config) ModifyStatus(statusID, newState model.ItemID) (StatusResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.statuses[statusID]
	if !ok {
		c.log.Warn().Uint32("status_id", uint32(statusID)).Msg("modify_status: no such status")
		return StatusResult{}, false
	}

	switch st.Kind {
	case model.StatusMultiState:
		return c.modifyMultiState(st, newState)
	case model.StatusCountedState:
		return c.modifyCountedState(st, newState)
	default:
		return StatusResult{}, false
	}
}

func (c *Config) modifyMultiState(st *model.Status, newState model.ItemID) (StatusResult, bool) {
	if !st.Allows(newState) {
		return StatusResult{}, false
	}
	prior := st.Current
	st.Current = newState
	silent := st.NoChangeSilent && prior == newState
	return StatusResult{NewState: newState, Silent: silent}, true
}

func (c *Config) modifyCountedState(st *model.Status, newState model.ItemID) (StatusResult, bool) {
	switch newState {
	case model.CountReset:
		priorWasAntiTrigger := st.CountedCurrent == model.CountAntiTrigger
		st.Count = st.DefaultCount
		st.CountedCurrent = model.CountAntiTrigger
		silent := st.NoChangeSilent && priorWasAntiTrigger
		return StatusResult{NewState: model.CountAntiTrigger, Silent: silent}, true

	case model.CountAntiTrigger:
		priorWasAntiTrigger := st.CountedCurrent == model.CountAntiTrigger
		st.Count++
		st.CountedCurrent = model.CountAntiTrigger
		silent := st.NoChangeSilent && priorWasAntiTrigger
		return StatusResult{NewState: model.CountAntiTrigger, Silent: silent}, true

	case model.CountTrigger:
		wasZero := st.Count == 0
		if st.Count > 0 {
			st.Count--
		}
		if st.Count == 0 {
			st.CountedCurrent = model.CountTrigger
		}
		silent := wasZero && st.NoChangeSilent
		return StatusResult{NewState: st.CountedCurrent, Silent: silent}, true

	default:
		return StatusResult{}, false
	}
}

// StatusState returns the current state of a status, for read-only
// snapshots (façade windows, backup restore comparisons).
func (c *Config) StatusState(statusID model.ItemID) (model.ItemID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.statuses[statusID]
	if !ok {
		return 0, false
	}
	if st.Kind == model.StatusCountedState {
		return st.CountedCurrent, true
	}
	return st.Current, true
}

// SelectEvent reads a status's current state and resolves the matching
// target event from a state→event map, as used by the ActionSelectEvent
// action.
func (c *Config) SelectEvent(statusID model.ItemID, eventMap map[model.ItemID]model.ItemID) (model.ItemID, bool) {
	state, ok := c.StatusState(statusID)
	if !ok {
		return 0, false
	}
	target, ok := eventMap[state]
	return target, ok
}
