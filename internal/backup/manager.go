package backup

import (
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
)

// Manager mirrors runtime state to a badger store, namespaced by
// identifier. A nil db makes every operation a no-op, matching the "store
// unconfigured" failure policy.
type Manager struct {
	log        zerolog.Logger
	db         *badger.DB
	identifier string

	mu       sync.Mutex
	universe model.DMXUniverse
	playlist model.MediaPlaylist
	lastSeen time.Time
}

// New builds a Manager. db may be nil, in which case every operation is a
// silent no-op and Reload always returns (Snapshot{}, false).
func New(log zerolog.Logger, db *badger.DB, identifier string) *Manager {
	return &Manager{
		log:        log.With().Str("component", "backup").Str("identifier", identifier).Logger(),
		db:         db,
		identifier: identifier,
		playlist:   make(model.MediaPlaylist),
		lastSeen:   time.Now(),
	}
}

func (m *Manager) key(suffix string) []byte {
	return []byte(m.identifier + ":" + suffix)
}

func (m *Manager) statusKey(statusID model.ItemID) []byte {
	return m.key(strconv.FormatUint(uint64(statusID), 10))
}

func (m *Manager) set(kind string, key []byte, value []byte) {
	if m.db == nil {
		return
	}
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		m.log.Warn().Err(err).Str("key", string(key)).Msg("backup write failed")
	}
	metrics.RecordBackupWrite(kind, err)
}

// BackupCurrentScene mirrors the active scene id.
func (m *Manager) BackupCurrentScene(id model.ItemID) {
	m.set("current", m.key("current"), []byte(strconv.FormatUint(uint64(id), 10)))
}

// BackupStatus mirrors a single status's current state.
func (m *Manager) BackupStatus(statusID, newState model.ItemID) {
	m.set("status", m.statusKey(statusID), []byte(strconv.FormatUint(uint64(newState), 10)))
}

// BackupEvents mirrors the full pending-queue snapshot.
func (m *Manager) BackupEvents(entries []queue.QueuedEvent) {
	data, err := json.Marshal(entries)
	if err != nil {
		m.log.Warn().Err(err).Msg("marshal queue snapshot failed")
		return
	}
	m.set("queue", m.key("queue"), data)
}

// BackupDMX folds fade into the running universe and mirrors the full
// snapshot, since the store only ever holds the complete 512-channel
// array, not per-channel diffs.
func (m *Manager) BackupDMX(fade model.DMXFade) {
	m.mu.Lock()
	_ = m.universe.Set(fade.Channel, fade.Value)
	snap := m.universe
	m.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		m.log.Warn().Err(err).Msg("marshal dmx universe failed")
		return
	}
	m.set("dmx", m.key("dmx"), data)
}

// BackupMedia folds cue into the running playlist, updating time_since
// for the elapsed wall-clock time since the last backup_media call (not
// since any other call), and mirrors the full playlist snapshot.
func (m *Manager) BackupMedia(cue model.MediaCue) {
	m.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(m.lastSeen)
	m.lastSeen = now

	for ch, playback := range m.playlist {
		playback.TimeSince += elapsed
		m.playlist[ch] = playback
	}
	m.playlist[cue.Channel] = model.MediaPlayback{Cue: cue, TimeSince: 0}
	snap := make(model.MediaPlaylist, len(m.playlist))
	for k, v := range m.playlist {
		snap[k] = v
	}
	m.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		m.log.Warn().Err(err).Msg("marshal media playlist failed")
		return
	}
	m.set("media", m.key("media"), data)
}

// Snapshot is the reloaded crash-recovery state.
type Snapshot struct {
	CurrentScene model.ItemID
	Statuses     map[model.ItemID]model.ItemID
	Queue        []queue.QueuedEvent
	DMX          model.DMXUniverse
	Media        model.MediaPlaylist
}

// Reload reads back the last backed-up state, returning ok=false if the
// store is unconfigured or has never seen a backup_current_scene call.
func (m *Manager) Reload() (Snapshot, bool) {
	if m.db == nil {
		return Snapshot{}, false
	}
	start := time.Now()
	defer func() { metrics.RecordBackupReloadDuration(time.Since(start)) }()

	var snap Snapshot
	snap.Statuses = make(map[model.ItemID]model.ItemID)

	found := false
	err := m.db.View(func(txn *badger.Txn) error {
		currentItem, err := txn.Get(m.key("current"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return currentItem.Value(func(val []byte) error {
			found = true
			v, _ := strconv.ParseUint(string(val), 10, 32)
			snap.CurrentScene = model.ItemID(v)
			return nil
		})
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("reload: reading current scene failed")
		return Snapshot{}, false
	}
	if !found {
		return Snapshot{}, false
	}

	m.loadStatuses(&snap)
	m.loadQueue(&snap)
	m.loadDMX(&snap)
	m.loadMedia(&snap)

	return snap, true
}

func (m *Manager) loadStatuses(snap *Snapshot) {
	prefix := []byte(m.identifier + ":")
	reserved := map[string]struct{}{
		m.identifier + ":current": {},
		m.identifier + ":queue":   {},
		m.identifier + ":dmx":     {},
		m.identifier + ":media":   {},
	}

	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := string(item.Key())
			if _, skip := reserved[k]; skip {
				continue
			}
			statusID, _ := strconv.ParseUint(k[len(prefix):], 10, 32)
			err := item.Value(func(val []byte) error {
				v, _ := strconv.ParseUint(string(val), 10, 32)
				snap.Statuses[model.ItemID(statusID)] = model.ItemID(v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("reload: reading statuses failed")
	}
}

func (m *Manager) loadQueue(snap *Snapshot) {
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(m.key("queue"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap.Queue)
		})
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("reload: reading queue failed")
	}
}

func (m *Manager) loadDMX(snap *Snapshot) {
	universe := model.NewDMXUniverse()
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(m.key("dmx"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, universe)
		})
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("reload: reading dmx universe failed")
	}
	snap.DMX = *universe

	m.mu.Lock()
	m.universe = *universe
	m.mu.Unlock()
}

func (m *Manager) loadMedia(snap *Snapshot) {
	playlist := make(model.MediaPlaylist)
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(m.key("media"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &playlist)
		})
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("reload: reading media playlist failed")
	}
	snap.Media = playlist

	m.mu.Lock()
	m.playlist = playlist
	m.lastSeen = time.Now()
	m.mu.Unlock()
}

// Clear deletes every key this instance wrote, best-effort, on shutdown.
func (m *Manager) Clear() {
	if m.db == nil {
		return
	}
	prefix := []byte(m.identifier + ":")
	err := m.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			keys = append(keys, k)
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("shutdown cleanup failed")
	}
}
