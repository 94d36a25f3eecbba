package showconfig

import "github.com/tomtom215/vigil/internal/model"

// Warning is one verification finding. Verification never fails the load;
// every finding is logged and the caller decides whether to surface it.
type Warning struct {
	ItemID  model.ItemID
	Message string
}

// Verify walks scenes, events and statuses checking the cross-reference
// invariants. hasDescription reports whether an id has an entry in the
// item index; it is injected rather than imported directly so this package
// has no dependency on itemindex.
func (c *Config) Verify(hasDescription func(model.ItemID) bool) []Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var warnings []Warning
	warn := func(id model.ItemID, msg string) {
		warnings = append(warnings, Warning{ItemID: id, Message: msg})
	}

	for id, scene := range c.scenes {
		if hasDescription != nil && !hasDescription(id) {
			warn(id, "scene has no item description")
		}
		for evID := range scene.Events {
			_, isEvent := c.events[evID]
			_, isStatus := c.statuses[evID]
			if !isEvent && !isStatus {
				warn(evID, "scene member is neither a known event nor status")
			}
		}
		if scene.HasKeys {
			for _, evID := range scene.KeyMap {
				if !scene.HasEvent(evID) {
					warn(evID, "keymap entry does not name an event in its own scene")
				}
			}
		}
	}

	for id, ev := range c.events {
		if hasDescription != nil && !hasDescription(id) {
			warn(id, "event has no item description")
		}
		for _, action := range ev.Actions {
			c.verifyAction(id, action, warn)
		}
	}

	for id, st := range c.statuses {
		if hasDescription != nil && !hasDescription(id) {
			warn(id, "status has no item description")
		}
		if st.Kind == model.StatusMultiState && len(st.Allowed) > 0 {
			if _, ok := st.Allowed[st.Current]; !ok {
				warn(id, "status current state not in allowed set")
			}
		}
	}

	return warnings
}

func (c *Config) verifyAction(eventID model.ItemID, action model.EventAction, warn func(model.ItemID, string)) {
	switch action.Kind {
	case model.ActionNewScene:
		scene, ok := c.scenes[action.SceneID]
		if !ok {
			warn(eventID, "NewScene targets a nonexistent scene")
			return
		}
		if !scene.HasEvent(action.SceneID) {
			warn(eventID, "target scene has no reset event matching its own id")
		}

	case model.ActionModifyStatus:
		st, ok := c.statuses[action.StatusID]
		if !ok {
			warn(eventID, "ModifyStatus targets a nonexistent status")
			return
		}
		if st.Kind == model.StatusMultiState && !st.Allows(action.NewState) {
			warn(eventID, "ModifyStatus.new_state not allowed by the named status")
		}

	case model.ActionSelectEvent:
		st, ok := c.statuses[action.StatusID]
		if !ok {
			warn(eventID, "SelectEvent targets a nonexistent status")
			return
		}
		for state, target := range action.EventMap {
			if st.Kind == model.StatusMultiState && len(st.Allowed) > 0 {
				if _, ok := st.Allowed[state]; !ok {
					warn(eventID, "SelectEvent map key not in status's allowed set")
				}
			}
			if _, ok := c.events[target]; !ok {
				warn(eventID, "SelectEvent target does not name a real event")
			}
		}

	case model.ActionCueEvent:
		if _, ok := c.events[action.CueDelay.EventID]; !ok {
			warn(eventID, "CueEvent targets a nonexistent event")
		}

	case model.ActionCancelEvent:
		if _, ok := c.events[action.CancelEventID]; !ok {
			warn(eventID, "CancelEvent targets a nonexistent event")
		}
	}
}
