package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in each workspace folder.
const ConfigFileName = ".nrs-lsp.toml"

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics reported per document.
	MaxProblems int `toml:"max_problems" json:"maxProblems"`

	// Trace controls logging verbosity: off, messages or verbose.
	Trace string `toml:"trace" json:"trace"`

	Completion CompletionConfig `toml:"completion" json:"completion"`
}

// CompletionConfig tunes completion.
type CompletionConfig struct {
	// Permissive offers every symbol of the document regardless of scope.
	Permissive bool `toml:"permissive" json:"permissive"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		MaxProblems: 100,
		Trace:       "off",
	}
}

// Validate rejects values the server cannot honor.
func (c Config) Validate() error {
	if c.MaxProblems < 0 {
		return fmt.Errorf("max_problems must not be negative, got %d", c.MaxProblems)
	}
	switch c.Trace {
	case "off", "messages", "verbose":
	default:
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	return nil
}

// LoadConfig decodes a TOML file on top of the defaults. Keys absent from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config %s: %w", path, err)
	}
	cfg, err := MergeConfig(DefaultConfig(), data)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// MergeConfig decodes TOML data on top of base. Only keys present in data
// change; on error base is returned as is.
func MergeConfig(base Config, data []byte) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warningf("ignoring unknown config keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// FindConfig returns the path of the first config file found in folders.
func FindConfig(folders []string) (string, bool) {
	for _, dir := range folders {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warningf("cannot stat %s: %v", path, err)
		}
	}
	return "", false
}
