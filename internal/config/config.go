// Package config loads the driver tool's optional rpsched.toml, the way
// the teacher's manifest parsers (e.g. pkg/deps/rust.CargoToml) load a
// TOML file with github.com/BurntSushi/toml: read the whole file, then
// toml.Unmarshal into a plain struct. Nothing here is required - every
// field has a zero-value-safe default, and a missing file is not an
// error.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/schedcore/rpsched/pkg/transform"
)

// Config holds the driver tool's tunable knobs. CLI flags (internal/cli)
// override whichever of these a file sets.
type Config struct {
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Transforms TransformsConfig `toml:"transforms"`
	Memcache   MemcacheConfig   `toml:"memcache"`
	History    HistoryConfig    `toml:"history"`
}

// SchedulerConfig tunes the exact branch-and-bound search.
type SchedulerConfig struct {
	// TimeoutMS bounds the exact search per DAG, in milliseconds. Zero
	// takes exact.DefaultTimeoutBalanced.
	TimeoutMS int `toml:"timeout_ms"`
}

// Timeout returns the configured search timeout, or d if unset.
func (s SchedulerConfig) Timeout(d time.Duration) time.Duration {
	if s.TimeoutMS <= 0 {
		return d
	}
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// TransformsConfig selects which loop-stage transformations run, per
// pkg/transform.BuildPipelineNamed.
type TransformsConfig struct {
	// Enabled lists the loop-stage transformation names to run, in
	// order. Empty (the zero value) means every default stage runs -
	// TOML has no way to distinguish "absent" from "empty array", and
	// defaulting an explicit empty list to "run nothing" would silently
	// disable the whole rewrite pipeline for a config that merely
	// omitted the key.
	Enabled []string `toml:"enabled"`
}

// Names returns the configured stage list, or
// transform.DefaultTransformNames if the config left it empty.
func (t TransformsConfig) Names() []string {
	if len(t.Enabled) == 0 {
		return transform.DefaultTransformNames
	}
	return t.Enabled
}

// MemcacheConfig points the exact scheduler's optional shared
// memoization store (pkg/memo.RedisCache) at a Redis instance. Empty
// Addr leaves memoization process-local (pkg/memo.NullStore, no Redis
// dependency touched).
type MemcacheConfig struct {
	Addr string `toml:"addr"`
	DB   int    `toml:"db"`
}

// HistoryConfig points the optional run-history recorder at a MongoDB
// instance. Empty URI disables history recording entirely.
type HistoryConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the zero-configuration Config: every field takes its
// documented default.
func Default() Config {
	return Config{
		History: HistoryConfig{Database: "rpsched", Collection: "runs"},
	}
}

// Load reads and parses path. A missing file is not an error - it
// returns [Default] unchanged, since rpsched.toml is optional.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
