package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a bootstrap config file,
// in priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"vigil.yaml",
	"vigil.yml",
	"/etc/vigil/vigil.yaml",
	"/etc/vigil/vigil.yml",
}

// ConfigPathEnvVar overrides the search path entirely when set.
const ConfigPathEnvVar = "VIGIL_CONFIG_PATH"

// Config is the runtime's bootstrap configuration: where to find the show
// document and how to reach its external collaborators. This is distinct
// from the show document itself (internal/eventhandler.ConfigSnapshot),
// which this points at via ShowConfigPath.
type Config struct {
	Instance       string        `koanf:"instance"`
	ShowConfigPath string        `koanf:"show_config_path"`
	Backup         BackupConfig  `koanf:"backup"`
	DMX            DMXConfig     `koanf:"dmx"`
	Media          MediaConfig   `koanf:"media"`
	Facade         FacadeConfig  `koanf:"facade"`
	Audit          AuditConfig   `koanf:"audit"`
	RPCTimeout     time.Duration `koanf:"rpc_timeout"`
}

// BackupConfig points at the embedded badger store directory. An empty
// Dir disables backup entirely, matching the "store unconfigured" policy.
type BackupConfig struct {
	Dir string `koanf:"dir"`
}

// DMXConfig describes how to reach and optionally supervise the Vulcan
// controller.
type DMXConfig struct {
	URL       string   `koanf:"url"`
	SpawnCmd  string   `koanf:"spawn_cmd"`
	SpawnArgs []string `koanf:"spawn_args"`
	Supervise bool     `koanf:"supervise"`
}

// MediaConfig describes how to reach and optionally supervise the Apollo
// player, plus the fixed window/channel topology re-posted on connect.
type MediaConfig struct {
	URL       string               `koanf:"url"`
	SpawnCmd  string                `koanf:"spawn_cmd"`
	SpawnArgs []string              `koanf:"spawn_args"`
	Supervise bool                  `koanf:"supervise"`
	Windows   []MediaWindowConfig   `koanf:"windows"`
	Channels  []MediaChannelConfig  `koanf:"channels"`
}

// MediaWindowConfig mirrors media.WindowDefinition for config loading.
type MediaWindowConfig struct {
	ID     uint32 `koanf:"id"`
	Width  int    `koanf:"width"`
	Height int    `koanf:"height"`
}

// MediaChannelConfig mirrors media.ChannelDefinition for config loading.
type MediaChannelConfig struct {
	Channel uint32 `koanf:"channel"`
	Window  uint32 `koanf:"window"`
}

// FacadeConfig configures the thin HTTP/WebSocket control surface.
type FacadeConfig struct {
	ListenAddr string `koanf:"listen_addr"`
}

// AuditConfig configures the optional NATS JetStream event audit log
// (only effective when built with the "nats" build tag).
type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	Stream  string `koanf:"stream"`
}

func defaultConfig() *Config {
	return &Config{
		Instance:       "default",
		ShowConfigPath: "show.yaml",
		RPCTimeout:     2 * time.Second,
		Facade:         FacadeConfig{ListenAddr: ":8420"},
		Audit:          AuditConfig{Stream: "vigil-events"},
	}
}

// LoadWithKoanf loads configuration with defaults -> file -> env
// precedence, the same layering every component in this codebase uses.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("VIGIL_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc converts VIGIL_DMX_URL -> dmx.url.
func envTransformFunc(s string) string {
	s = strings.TrimPrefix(s, "VIGIL_")
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}
