// Package config loads the runtime's tunables from an optional TOML file,
// grounded on the retrieved example pack's manifest-loading convention
// (chazu-maggie's manifest.Load): read the whole file, toml.Unmarshal into
// a struct pre-filled with defaults, so keys absent from the file keep
// their default and keys present in it (even an explicit 0) override it.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EngineConfig collects the handful of runtime-configurable tunables: the
// FCC stack depth cap, pool high-water marks, and whether a thrown
// exception carries a captured stack trace.
type EngineConfig struct {
	StackSizeLimit     int  `toml:"stack_size_limit"`
	PoolHighWaterMark  int  `toml:"pool_high_water_mark"`
	AttachStackOnThrow bool `toml:"attach_stack_on_throw"`
}

// DefaultEngineConfig mirrors runtime.DefaultStackSizeLimit and a modest
// default pool cap; AttachStackOnThrow defaults on since it costs nothing
// until an exception is actually thrown.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		StackSizeLimit:     100000,
		PoolHighWaterMark:  256,
		AttachStackOnThrow: true,
	}
}

// Load reads path as a TOML document, overlaying it onto
// DefaultEngineConfig so a partial file (or a missing one) is never an
// error by itself — only a malformed document is.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	return cfg, nil
}
