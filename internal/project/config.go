package project

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/desmoke/desmoke/internal/logparser"
)

// Config represents the project configuration stored in .desmoke/config.toml.
// Every field has a working default; a config file only needs the settings it
// overrides.
type Config struct {
	Parser  ParserConfig  `toml:"parser"`
	Output  OutputConfig  `toml:"output"`
	History HistoryConfig `toml:"history"`
}

// ParserConfig tunes the log grammars for repositories that diverge from the
// MongoDB layout.
type ParserConfig struct {
	// ChannelPrefix selects the embedded shell channel in resmoke logs.
	// Defaults to "js_test".
	ChannelPrefix string `toml:"channel_prefix"`

	// SourceRoot is the path prefix identifying the project's test-source
	// tree in tracebacks. Defaults to "jstests".
	SourceRoot string `toml:"source_root"`
}

// Options converts the parser section to logparser options, applying
// defaults for unset fields.
func (p *ParserConfig) Options() logparser.Options {
	return logparser.Options{
		ChannelPrefix: p.ChannelPrefix,
		SourceRoot:    p.SourceRoot,
	}
}

// OutputConfig controls diagnostic rendering.
type OutputConfig struct {
	// Color enables severity coloring on terminals. Defaults to true.
	Color *bool `toml:"color"`
}

// ShouldColor returns true unless color output was explicitly disabled.
func (o *OutputConfig) ShouldColor() bool {
	if o.Color == nil {
		return true
	}
	return *o.Color
}

// HistoryConfig controls the run-history database.
type HistoryConfig struct {
	// Enabled records runs and diagnostics to .desmoke/history.db.
	// Defaults to true inside a project; history is never written outside
	// one.
	Enabled *bool `toml:"enabled"`
}

// ShouldRecord returns true unless history recording was explicitly disabled.
func (h *HistoryConfig) ShouldRecord() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the config to the specified path.
func (c *Config) SaveConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
