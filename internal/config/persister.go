package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/eventhandler"
)

// FilePersister implements eventhandler.Persister over a plain JSON file
// on disk. The wire protocol for configuration file I/O is explicitly out
// of this engine's scope beyond what it needs semantically, so this is
// deliberately the simplest format that round-trips a ConfigSnapshot.
type FilePersister struct{}

// Save writes snap to path as JSON, failing (and leaving any prior file
// untouched) if serialization fails.
func (FilePersister) Save(path string, snap eventhandler.ConfigSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads and unmarshals a ConfigSnapshot from path. An unknown
// version string is tolerated with the caller expected to log a warning;
// this layer only fails on I/O or malformed JSON.
func (FilePersister) Load(path string) (eventhandler.ConfigSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return eventhandler.ConfigSnapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	var snap eventhandler.ConfigSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return eventhandler.ConfigSnapshot{}, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return snap, nil
}
