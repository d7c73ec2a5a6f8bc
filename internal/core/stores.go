package core

import (
	"context"

	"github.com/valter-silva-au/autospark/pkg/models"
)

// TaskListFile is the subset of storage.TaskListFileManager plus the text
// codec that the editing session needs. Defining it here keeps core
// independent of the storage package.
type TaskListFile interface {
	// Load reads and parses a task list file. A missing file yields an
	// error satisfying errors.Is(err, fs.ErrNotExist).
	Load(path string) ([]models.Task, error)
	// Save writes tasks and returns the final path (with .txt appended
	// when missing).
	Save(path string, tasks []models.Task) (string, error)
	// Parse deserializes task list text, dropping malformed lines.
	Parse(text string) []models.Task
	// WriteScript writes a compiled script to path.
	WriteScript(path, script string) error
}

// LaunchInfo describes a script started by a ScriptLauncher.
// This mirrors integration.LaunchResult but is defined here to avoid the import.
type LaunchInfo struct {
	PID     int
	Command []string
}

// ScriptLauncher starts a compiled script in its own console without waiting
// for it to finish.
type ScriptLauncher interface {
	Launch(ctx context.Context, scriptPath string) (*LaunchInfo, error)
}
