package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/storage"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// storageFile backs a real session with the storage package, as app.go does.
type storageFile struct {
	mgr storage.TaskListFileManager
}

func (f storageFile) Load(path string) ([]models.Task, error) { return f.mgr.Load(path) }
func (f storageFile) Save(path string, tasks []models.Task) (string, error) {
	return f.mgr.Save(path, tasks)
}
func (f storageFile) Parse(text string) []models.Task { return storage.Deserialize(text) }
func (f storageFile) WriteScript(path, script string) error {
	return storage.WriteFile(path, []byte(script))
}

type recordingLauncher struct {
	launched []string
	err      error
}

func (l *recordingLauncher) Launch(_ context.Context, scriptPath string) (*core.LaunchInfo, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.launched = append(l.launched, scriptPath)
	return &core.LaunchInfo{PID: 321, Command: []string{"cmd", "/c", scriptPath}}, nil
}

// withSession points the CLI at a fresh session in a temp base path and
// restores the package state afterwards.
func withSession(t *testing.T) (string, *recordingLauncher) {
	t.Helper()
	dir := t.TempDir()
	launcher := &recordingLauncher{}

	origLists, origBase, origConfig, origFile := TaskLists, BasePath, Config, taskFile
	t.Cleanup(func() {
		TaskLists, BasePath, Config, taskFile = origLists, origBase, origConfig, origFile
	})

	now := func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) }
	file := storageFile{mgr: storage.NewTaskListFileManager(storage.DefaultHeader, now)}
	TaskLists = core.NewTaskListManager(file, core.NewScriptCompiler(""), launcher, ".bat", nil)
	BasePath = dir
	Config = core.DefaultGlobalConfig()
	taskFile = ""
	return dir, launcher
}

// invoke runs a command's RunE with its output captured.
func invoke(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c.SetOut(&buf)
	t.Cleanup(func() { c.SetOut(nil) })
	err := c.RunE(c, args)
	return buf.String(), err
}

// writeTaskList writes a task list file into dir and returns its path.
func writeTaskList(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "tasks.txt")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
