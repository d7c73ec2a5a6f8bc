// Package internal provides the App struct that wires all components of
// AutoSpark together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/autospark/internal/cli"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/integration"
	"github.com/valter-silva-au/autospark/internal/observability"
	"github.com/valter-silva-au/autospark/internal/storage"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// HomeEnv overrides the base path lookup.
const HomeEnv = "AUTOSPARK_HOME"

// App holds all service dependencies for AutoSpark.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	FileMgr storage.TaskListFileManager

	// Core services
	Compiler  core.ScriptCompiler
	TaskLists core.TaskListManager

	// Integration services
	Launcher integration.ScriptLauncher

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of AutoSpark. basePath is the
// directory holding .autospark.yaml, the event log, and relative task lists.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability (non-fatal) ---
	if cfg.Events.Enabled {
		logPath := cfg.Events.File
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(basePath, logPath)
		}
		if el, err := observability.NewJSONLEventLog(logPath); err == nil {
			app.EventLog = el
			app.MetricsCalc = observability.NewMetricsCalculator(el)
		}
	}

	// --- Storage, integration and core services ---
	app.FileMgr = storage.NewTaskListFileManager(cfg.TaskList.Header, nil)
	app.Launcher = integration.NewScriptLauncher(cfg.Launcher.Command, cfg.Launcher.Args)
	app.Compiler = core.NewScriptCompiler(cfg.Script.Title)

	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
	}
	app.TaskLists = core.NewTaskListManager(
		&taskListFileAdapter{mgr: app.FileMgr},
		app.Compiler,
		&launcherAdapter{launcher: app.Launcher},
		cfg.Script.Extension,
		events,
	)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.ConfigMgr = app.ConfigMgr
	cli.TaskLists = app.TaskLists
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the AutoSpark base path: AUTOSPARK_HOME when
// set, else the nearest directory upwards holding .autospark.yaml, else the
// current directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// taskListFileAdapter adapts storage.TaskListFileManager and the storage
// codec to core.TaskListFile.
type taskListFileAdapter struct {
	mgr storage.TaskListFileManager
}

func (a *taskListFileAdapter) Load(path string) ([]models.Task, error) {
	return a.mgr.Load(path)
}

func (a *taskListFileAdapter) Save(path string, tasks []models.Task) (string, error) {
	return a.mgr.Save(path, tasks)
}

func (a *taskListFileAdapter) Parse(text string) []models.Task {
	return storage.Deserialize(text)
}

func (a *taskListFileAdapter) WriteScript(path, script string) error {
	return storage.WriteFile(path, []byte(script))
}

// launcherAdapter adapts integration.ScriptLauncher to core.ScriptLauncher.
type launcherAdapter struct {
	launcher integration.ScriptLauncher
}

func (a *launcherAdapter) Launch(ctx context.Context, scriptPath string) (*core.LaunchInfo, error) {
	res, err := a.launcher.Launch(ctx, scriptPath)
	if err != nil {
		return nil, err
	}
	return &core.LaunchInfo{PID: res.PID, Command: res.Command}, nil
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.NewEvent(time.Now(), eventType, data))
}
