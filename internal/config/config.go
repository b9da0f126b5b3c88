// Package config loads the TOML embedding options for a Petra instance.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the host-tunable surface of an embedded interpreter.
type Config struct {
	// LogLevel selects the zerolog level: trace, debug, info, warn,
	// error or disabled.
	LogLevel string `toml:"log_level"`
	// MaxDepth bounds call recursion before the runtime aborts.
	MaxDepth int `toml:"max_depth"`
	// StorePath is the sqlite file backing the stdlib store builtins.
	// ":memory:" keeps the store process-local.
	StorePath string `toml:"store_path"`
	// Preload lists script files evaluated before the first host call.
	Preload []string `toml:"preload"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		MaxDepth:  256,
		StorePath: ":memory:",
	}
}

// Load reads path, fills in defaults for omitted fields and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the interpreter cannot honor.
func Validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("config: max_depth must be positive, got %d", cfg.MaxDepth)
	}
	if strings.TrimSpace(cfg.StorePath) == "" {
		return fmt.Errorf("config: store_path must not be empty")
	}
	return nil
}
