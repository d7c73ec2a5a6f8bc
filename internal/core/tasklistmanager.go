package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/autospark/pkg/models"
)

var (
	// ErrEmptyTaskList is returned by Run when there is nothing to execute.
	ErrEmptyTaskList = errors.New("task list is empty")
	// ErrNoFilePath is returned by Save when the session has never been
	// bound to a file.
	ErrNoFilePath = errors.New("task list has no file path")
	// ErrNoLauncher is returned by Run when no ScriptLauncher was configured.
	ErrNoLauncher = errors.New("script launcher not configured")
	// ErrNoScript is returned by Launch for a save that wrote no script.
	ErrNoScript = errors.New("no compiled script to launch")
)

// SaveResult reports where a task list and its compiled script were written.
type SaveResult struct {
	TaskListPath string
	ScriptPath   string
	Tasks        int
	// ScriptWritten is false when compilation failed after the task list
	// itself was saved.
	ScriptWritten bool
}

// RunResult reports a saved and launched task list.
type RunResult struct {
	SaveResult
	PID int
}

// TaskListManager is an editing session: a task store bound to an optional
// task list file, with save, compile, and run operations.
type TaskListManager interface {
	// New discards the current session and starts an unsaved empty list.
	New()
	// Open loads path into a fresh store. A missing file gives an empty
	// list bound to path. On any other error the current session is kept.
	Open(path string) error
	Path() string
	// Exists reports whether the bound file was present when opened or has
	// been saved since.
	Exists() bool
	ScriptPath() string
	Store() TaskStore
	// Dirty reports whether the store changed since the last open or save.
	Dirty() bool
	Save() (*SaveResult, error)
	SaveAs(path string) (*SaveResult, error)
	// Compile returns the script for the current tasks without writing it.
	Compile() (string, error)
	// ImportText replaces all tasks with those parsed from text and
	// returns how many were recognized.
	ImportText(text string) int
	// Run saves the list, regenerates the script and launches it.
	Run(ctx context.Context) (*RunResult, error)
	// Launch starts the script of an earlier save. It never reads the
	// store, so it may run on another goroutine while editing continues.
	Launch(ctx context.Context, saved *SaveResult) (*RunResult, error)
}

type taskListManager struct {
	file      TaskListFile
	compiler  ScriptCompiler
	launcher  ScriptLauncher
	scriptExt string
	events    EventLogger

	store    TaskStore
	path     string
	exists   bool
	savedRev uint64
}

// NewTaskListManager creates a TaskListManager with an empty, unsaved list.
// launcher and events may be nil. An empty scriptExt defaults to ".bat".
func NewTaskListManager(file TaskListFile, compiler ScriptCompiler, launcher ScriptLauncher, scriptExt string, events EventLogger) TaskListManager {
	if scriptExt == "" {
		scriptExt = ".bat"
	}
	m := &taskListManager{
		file:      file,
		compiler:  compiler,
		launcher:  launcher,
		scriptExt: scriptExt,
		events:    events,
	}
	m.New()
	return m
}

func (m *taskListManager) New() {
	m.store = NewTaskStore()
	m.path = ""
	m.exists = false
	m.savedRev = m.store.Revision()
}

func (m *taskListManager) Open(path string) error {
	tasks, err := m.file.Load(path)
	exists := true
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("opening task list: %w", err)
		}
		exists = false
	}

	store := NewTaskStore()
	store.ReplaceAll(tasks)
	m.store = store
	m.path = path
	m.exists = exists
	m.savedRev = store.Revision()

	m.logEvent("tasklist.opened", map[string]any{
		"path":   path,
		"tasks":  len(tasks),
		"exists": exists,
	})
	return nil
}

func (m *taskListManager) Path() string     { return m.path }
func (m *taskListManager) Exists() bool     { return m.exists }
func (m *taskListManager) Store() TaskStore { return m.store }

func (m *taskListManager) Dirty() bool {
	return m.store.Revision() != m.savedRev
}

func (m *taskListManager) ScriptPath() string {
	if m.path == "" {
		return ""
	}
	return scriptPathFor(m.path, m.scriptExt)
}

// scriptPathFor swaps the extension of a task list path for ext.
func scriptPathFor(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func (m *taskListManager) Save() (*SaveResult, error) {
	if m.path == "" {
		return nil, ErrNoFilePath
	}
	return m.SaveAs(m.path)
}

// SaveAs writes the task list to path, binds the session to the final path,
// and regenerates the script beside it. The task list is kept even when
// compilation fails.
func (m *taskListManager) SaveAs(path string) (*SaveResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoFilePath
	}

	tasks := m.store.GetAll()
	rev := m.store.Revision()

	finalPath, err := m.file.Save(path, tasks)
	if err != nil {
		return nil, err
	}
	m.path = finalPath
	m.exists = true
	m.savedRev = rev

	result := &SaveResult{
		TaskListPath: finalPath,
		ScriptPath:   scriptPathFor(finalPath, m.scriptExt),
		Tasks:        len(tasks),
	}
	m.logEvent("tasklist.saved", map[string]any{
		"path":  finalPath,
		"tasks": len(tasks),
	})

	script, err := m.compile(tasks)
	if err != nil {
		return result, fmt.Errorf("saved %s but not its script: %w", finalPath, err)
	}
	if err := m.file.WriteScript(result.ScriptPath, script); err != nil {
		return result, fmt.Errorf("writing script %s: %w", result.ScriptPath, err)
	}
	result.ScriptWritten = true
	return result, nil
}

func (m *taskListManager) Compile() (string, error) {
	return m.compile(m.store.GetAll())
}

// compile runs the compiler and records the outcome in the event log.
func (m *taskListManager) compile(tasks []models.Task) (string, error) {
	source := ""
	if m.path != "" {
		source = filepath.Base(m.path)
	}

	script, err := m.compiler.Compile(tasks, source)
	if err != nil {
		m.logEvent("script.compile_failed", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
		return "", err
	}

	kinds := make(map[string]int)
	for _, t := range tasks {
		kinds[string(t.Kind)]++
	}
	m.logEvent("script.compiled", map[string]any{
		"source": source,
		"tasks":  len(tasks),
		"kinds":  kinds,
	})
	return script, nil
}

func (m *taskListManager) ImportText(text string) int {
	tasks := m.file.Parse(text)
	m.store.ReplaceAll(tasks)
	return len(tasks)
}

func (m *taskListManager) Run(ctx context.Context) (*RunResult, error) {
	if m.store.IsEmpty() {
		return nil, ErrEmptyTaskList
	}
	if m.launcher == nil {
		return nil, ErrNoLauncher
	}

	saved, err := m.Save()
	if err != nil {
		return nil, fmt.Errorf("saving before run: %w", err)
	}
	return m.Launch(ctx, saved)
}

func (m *taskListManager) Launch(ctx context.Context, saved *SaveResult) (*RunResult, error) {
	if m.launcher == nil {
		return nil, ErrNoLauncher
	}
	if saved == nil || !saved.ScriptWritten {
		return nil, ErrNoScript
	}

	info, err := m.launcher.Launch(ctx, saved.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("launching %s: %w", saved.ScriptPath, err)
	}

	m.logEvent("script.launched", map[string]any{
		"script": saved.ScriptPath,
		"pid":    info.PID,
	})
	return &RunResult{SaveResult: *saved, PID: info.PID}, nil
}

func (m *taskListManager) logEvent(eventType string, data map[string]any) {
	if m.events != nil {
		_ = m.events.LogEvent(eventType, data)
	}
}
