package itemindex

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/model"
)

// Index maps every known ItemID to its display description.
type Index struct {
	log zerolog.Logger

	mu      sync.RWMutex
	entries map[model.ItemID]model.ItemDescription
}

// New returns an empty Index.
func New(log zerolog.Logger) *Index {
	return &Index{
		log:     log.With().Str("component", "itemindex").Logger(),
		entries: make(map[model.ItemID]model.ItemDescription),
	}
}

// SetAll replaces the entire index, e.g. when a persisted configuration is
// loaded. A duplicate id within pairs is resolved last-wins, logged as a
// warning since it usually indicates a malformed configuration file.
func (idx *Index) SetAll(pairs []model.ItemPair) {
	fresh := make(map[model.ItemID]model.ItemDescription, len(pairs))
	for _, p := range pairs {
		if _, dup := fresh[p.ID]; dup {
			idx.log.Warn().Uint32("item_id", uint32(p.ID)).Msg("duplicate item id in configuration, last one wins")
		}
		fresh[p.ID] = p.Description
	}

	idx.mu.Lock()
	idx.entries = fresh
	idx.mu.Unlock()
}

// Upsert inserts or replaces the description for id.
func (idx *Index) Upsert(id model.ItemID, desc model.ItemDescription) {
	idx.mu.Lock()
	idx.entries[id] = desc
	idx.mu.Unlock()
}

// Remove deletes id from the index, reporting whether it was present.
func (idx *Index) Remove(id model.ItemID) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.entries[id]; !ok {
		return false
	}
	delete(idx.entries, id)
	return true
}

// Exists reports whether id has a description.
func (idx *Index) Exists(id model.ItemID) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.entries[id]
	return ok
}

// GetDescription returns id's description, or the hidden default if unset.
func (idx *Index) GetDescription(id model.ItemID) model.ItemDescription {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if d, ok := idx.entries[id]; ok {
		return d
	}
	return model.DefaultItemDescription()
}

// GetPair returns id paired with its description (or the hidden default).
func (idx *Index) GetPair(id model.ItemID) model.ItemPair {
	return model.ItemPair{ID: id, Description: idx.GetDescription(id)}
}

// ListIDs returns every known id, ascending.
func (idx *Index) ListIDs() []model.ItemID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]model.ItemID, 0, len(idx.entries))
	for id := range idx.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListPairs returns every known (id, description) pair, ascending by id.
func (idx *Index) ListPairs() []model.ItemPair {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]model.ItemPair, 0, len(idx.entries))
	for id, d := range idx.entries {
		out = append(out, model.ItemPair{ID: id, Description: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
