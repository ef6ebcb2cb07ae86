// Package project locates and loads the optional .desmoke project directory.
// desmoke works without one; a project adds persistent configuration, the
// debug log, and the run-history database.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/desmoke/desmoke/internal/logging"
)

const (
	// ConfigDir is the directory name for project configuration.
	ConfigDir = ".desmoke"
	// ConfigFile is the name of the project config file.
	ConfigFile = "config.toml"
	// HistoryDB is the name of the run-history database file.
	HistoryDB = "history.db"
)

// ErrNotFound indicates no project directory exists above the start path.
var ErrNotFound = errors.New("no project found")

// Project is a located .desmoke directory with its parsed configuration.
type Project struct {
	Root   string
	Config *Config
}

// Find walks up from startDir (or the working directory when empty) looking
// for a .desmoke/config.toml. Callers treat ErrNotFound as "run with
// defaults", not as a failure.
func Find(startDir string) (*Project, error) {
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		startDir = cwd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		configPath := filepath.Join(dir, ConfigDir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotFound
		}
		dir = parent
	}
}

func load(root string) (*Project, error) {
	cfg, err := LoadConfig(filepath.Join(root, ConfigDir, ConfigFile))
	if err != nil {
		return nil, err
	}

	if err := logging.Init(root); err != nil {
		logging.Warn("failed to initialize logging", "error", err)
	}

	return &Project{Root: root, Config: cfg}, nil
}

// HistoryPath returns the path of the run-history database.
func (p *Project) HistoryPath() string {
	return filepath.Join(p.Root, ConfigDir, HistoryDB)
}
