package showconfig

import "github.com/tomtom215/vigil/internal/model"

// UpsertEvent inserts or replaces an event definition.
func (c *Config) UpsertEvent(ev model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[ev.ID] = ev
}

// DeleteEvent removes an event definition. Other references to it (scene
// membership, action targets) are left dangling; Verify will surface them.
func (c *Config) DeleteEvent(id model.ItemID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[id]; !ok {
		return false
	}
	delete(c.events, id)
	return true
}

// GetEvent returns an event definition without scene scoping.
func (c *Config) GetEvent(id model.ItemID) (model.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.events[id]
	return ev, ok
}

// UpsertScene inserts or replaces a scene definition.
func (c *Config) UpsertScene(scene model.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes[scene.ID] = scene
}

// DeleteScene removes a scene definition.
func (c *Config) DeleteScene(id model.ItemID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scenes[id]; !ok {
		return false
	}
	delete(c.scenes, id)
	if c.hasScene && c.currentScene == id {
		c.hasScene = false
	}
	return true
}

// GetScene returns a scene definition.
func (c *Config) GetScene(id model.ItemID) (model.Scene, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenes[id]
	return s, ok
}

// UpsertStatus inserts or replaces a status definition.
func (c *Config) UpsertStatus(st model.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := st
	c.statuses[st.ID] = &cp
}

// DeleteStatus removes a status definition.
func (c *Config) DeleteStatus(id model.ItemID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.statuses[id]; !ok {
		return false
	}
	delete(c.statuses, id)
	return true
}

// GetStatus returns a copy of a status's current definition and state.
func (c *Config) GetStatus(id model.ItemID) (model.Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.statuses[id]
	if !ok {
		return model.Status{}, false
	}
	return *st, true
}

// UpsertGroup inserts or replaces a group definition.
func (c *Config) UpsertGroup(g model.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[g.ID] = g
}

// DeleteGroup removes a group definition.
func (c *Config) DeleteGroup(id model.ItemID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.groups[id]; !ok {
		return false
	}
	delete(c.groups, id)
	return true
}

// GetGroup returns a group definition.
func (c *Config) GetGroup(id model.ItemID) (model.Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[id]
	return g, ok
}

// RestoreCurrentScene sets the current scene directly, bypassing existence
// validation and reset-event cueing; used only by backup restore on boot.
func (c *Config) RestoreCurrentScene(id model.ItemID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentScene = id
	c.hasScene = true
}

// RestoreStatusState sets a status's current state directly, bypassing
// transition rules; used only by backup restore on boot.
func (c *Config) RestoreStatusState(statusID, state model.ItemID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.statuses[statusID]
	if !ok {
		return false
	}
	if st.Kind == model.StatusCountedState {
		st.CountedCurrent = state
	} else {
		st.Current = state
	}
	return true
}
