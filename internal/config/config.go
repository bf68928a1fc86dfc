// Package config loads the optional rdigest configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents $XDG_CONFIG_HOME/rdigest/config.toml.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	SSH      SSH      `toml:"ssh"`
	Theme    Theme    `toml:"theme"`
}

// Defaults holds flag defaults. A nil field leaves the built-in default
// in place; a flag given on the command line always wins.
type Defaults struct {
	Quick     *bool   `toml:"quick"`
	Baseless  *bool   `toml:"baseless"`
	Verbose   *bool   `toml:"verbose"`
	Strict    *bool   `toml:"strict"`
	Algorithm *string `toml:"algorithm"`
	BWLimit   *string `toml:"bwlimit"`
	ChunkSize *string `toml:"chunk_size"`
	Filter    *string `toml:"filter"`
}

// SSH holds defaults for remote sources.
type SSH struct {
	Port *int    `toml:"port"`
	Key  *string `toml:"key"`
}

// Theme holds optional colors for the verbose summary on terminals.
type Theme struct {
	Accent *string `toml:"accent"`
	Error  *string `toml:"error"`
	Muted  *string `toml:"muted"`
}

// Path returns the resolved path to the config file, or "" when no home
// directory can be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "rdigest", "config.toml")
}

// Load reads the config file from Path. A missing file yields a zero
// Config and no error.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the named config file. A missing file yields a zero
// Config and no error; unknown keys are an error so typos surface.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
