// Package vscode installs test tasks into a VS Code tasks.json so editor
// problem matchers can pick the extracted diagnostics straight out of the
// prefixed pass-through output.
package vscode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTasksFile is the conventional location of VS Code task definitions.
const DefaultTasksFile = ".vscode/tasks.json"

// ErrDeclined is returned when the user declines to create a missing
// tasks.json.
var ErrDeclined = errors.New("tasks.json creation declined")

// ConfirmFunc asks the user a yes/no question and reports their answer.
type ConfirmFunc func(prompt string) bool

// jstestTask runs the current file through resmoke and matches shell-test
// diagnostics, which carry a column.
func jstestTask() map[string]any {
	return map[string]any{
		"label":   "Run file as jstest",
		"type":    "shell",
		"command": "bash",
		"args": []any{
			"-c",
			"source python3-venv/bin/activate && ./buildscripts/resmoke.py run ${relativeFile} | desmoke --filetype resmoke",
		},
		"group":        map[string]any{"kind": "test", "isDefault": true},
		"presentation": map[string]any{"focus": true, "clear": true},
		"problemMatcher": map[string]any{
			"owner":        "js",
			"fileLocation": []any{"relative", "${workspaceFolder}"},
			"pattern": map[string]any{
				"regexp":   `^\[desmoke\]\s+(.*):(\d+):(\d+):\s+(warning|error):\s+(.*)$`,
				"file":     1,
				"line":     2,
				"column":   3,
				"severity": 4,
				"message":  5,
			},
		},
	}
}

// cppunitTask builds and runs the current file's unit test binary and matches
// the shorter file:line diagnostics of unit test failures.
func cppunitTask() map[string]any {
	return map[string]any{
		"label":   "Run file as C++ unit test",
		"type":    "shell",
		"command": "bash",
		"args": []any{
			"-c",
			"source python3-venv/bin/activate && ninja -j400 +${fileBasenameNoExtension} | desmoke --filetype cppunit",
		},
		"group":        "test",
		"presentation": map[string]any{"focus": true, "clear": true},
		"problemMatcher": map[string]any{
			"owner":        "cpp",
			"fileLocation": []any{"relative", "${workspaceFolder}"},
			"pattern": map[string]any{
				"regexp":  `^\[desmoke\]\s+(.*):(\d+):\s+(.*)$`,
				"file":    1,
				"line":    2,
				"message": 3,
			},
		},
	}
}

// Install appends the jstest and cppunit tasks to filename, merging with any
// tasks already defined there. When the file does not exist, confirm is asked
// before creating it; a declined prompt returns ErrDeclined.
func Install(filename string, confirm ConfirmFunc) error {
	if filename == "" {
		filename = DefaultTasksFile
	}

	var tasks map[string]any
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &tasks); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	case os.IsNotExist(err):
		if !confirm(fmt.Sprintf("%s does not yet exist. Create it? (y/N) ", filename)) {
			return ErrDeclined
		}
		tasks = map[string]any{
			"version": "2.0.0",
			"cwd":     "${workspaceFolder}",
		}
	default:
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	existing, _ := tasks["tasks"].([]any)
	tasks["tasks"] = append(existing, jstestTask(), cppunitTask())

	out, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
