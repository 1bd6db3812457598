package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/loykin/relaunch/internal/logger"
)

// FileConfig represents the top-level TOML structure of the toolkit config.
type FileConfig struct {
	// ConfigFile is the canonical path of the managed JSON config document.
	ConfigFile string `toml:"config_file" mapstructure:"config_file"`
	// HistoryDB is the optional SQLite migration ledger path. Empty disables
	// the ledger.
	HistoryDB string         `toml:"history_db" mapstructure:"history_db"`
	Log       *logger.Config `toml:"log" mapstructure:"log"`
	Respawn   RespawnConfig  `toml:"respawn" mapstructure:"respawn"`
}

// RespawnConfig carries the supervisor defaults. All durations are in
// milliseconds to match the CLI flags.
type RespawnConfig struct {
	DelayMS   int `toml:"delay_ms" mapstructure:"delay_ms"`
	MaxWaitMS int `toml:"max_wait_ms" mapstructure:"max_wait_ms"`
	PollMS    int `toml:"poll_ms" mapstructure:"poll_ms"`
}

// Defaults applied when the file omits values or no file is given.
const (
	DefaultDelayMS   = 700
	DefaultMaxWaitMS = 120000
	DefaultPollMS    = 100
)

// Default returns the built-in configuration.
func Default() FileConfig {
	return FileConfig{
		Respawn: RespawnConfig{
			DelayMS:   DefaultDelayMS,
			MaxWaitMS: DefaultMaxWaitMS,
			PollMS:    DefaultPollMS,
		},
	}
}

// Load reads the TOML config at path and fills unset respawn values with the
// defaults. An empty path yields Default() without touching the filesystem.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return Default(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return FileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	// Backfill only keys the file does not set: an explicit zero is a valid
	// value (delay_ms = 0 launches immediately, max_wait_ms = 0 gives the
	// parent no grace beyond the final check), same as the CLI flags.
	if !v.IsSet("respawn.delay_ms") {
		fc.Respawn.DelayMS = DefaultDelayMS
	}
	if !v.IsSet("respawn.max_wait_ms") {
		fc.Respawn.MaxWaitMS = DefaultMaxWaitMS
	}
	// The poll cadence cannot be zero; non-positive values fall back.
	if fc.Respawn.PollMS <= 0 {
		fc.Respawn.PollMS = DefaultPollMS
	}
	return fc, nil
}
