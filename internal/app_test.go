package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/autospark/internal/cli"
	"github.com/valter-silva-au/autospark/internal/observability"
	"github.com/valter-silva-au/autospark/pkg/models"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestResolveBasePath_HomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(HomeEnv, tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfig(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".autospark.yaml"), []byte("script:\n  extension: .cmd\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(HomeEnv, "")
	chdir(t, subDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find .autospark.yaml in a parent)", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(HomeEnv, "")
	chdir(t, tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should fall back to cwd)", got, tmpDir)
	}
}

func TestNewApp_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.Config.Script.Extension != ".bat" || app.Config.Launcher.Command != "cmd" {
		t.Errorf("unexpected default config %+v", app.Config)
	}
	if app.TaskLists == nil || app.Launcher == nil || app.Compiler == nil || app.FileMgr == nil {
		t.Error("core services should be wired")
	}
	if app.EventLog == nil || app.MetricsCalc == nil {
		t.Error("event log should be enabled by default")
	}
	if cli.TaskLists != app.TaskLists || cli.BasePath != tmpDir || cli.Config != app.Config {
		t.Error("CLI variables should point at the app services")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := "script:\n  extension: bat\nlauncher:\n  command: \"\"\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".autospark.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewApp(tmpDir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "script.extension") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewApp_EventsDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".autospark.yaml"), []byte("events:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if app.EventLog != nil || app.MetricsCalc != nil {
		t.Error("event log should be disabled")
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close() with no event log: %v", err)
	}
}

func TestNewApp_UnwritableEventLogIsNonFatal(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := "events:\n  file: missing/dir/events.jsonl\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".autospark.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if app.EventLog != nil {
		t.Error("event log should be disabled when its file cannot be opened")
	}
}

// The whole pipeline: edit, save, compile, and the events it records.
func TestApp_SaveRecordsEvents(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer func() { _ = app.Close() }()

	listPath := filepath.Join(tmpDir, "morning")
	if err := app.TaskLists.Open(listPath); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store := app.TaskLists.Store()
	store.Add(models.KindOpenURL, "example.com", "")
	store.Add(models.KindDelay, "3", "")
	store.Add(models.KindBackupFolder, `C:\src`, `D:\dst`)

	res, err := app.TaskLists.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if res.TaskListPath != listPath+".txt" || res.ScriptPath != listPath+".bat" || !res.ScriptWritten {
		t.Errorf("unexpected save result %+v", res)
	}

	script, err := os.ReadFile(res.ScriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(script), "timeout /t 3 /nobreak") {
		t.Errorf("script should contain the delay:\n%s", script)
	}

	// Reopen from disk and compare.
	if err := app.TaskLists.Open(res.TaskListPath); err != nil {
		t.Fatal(err)
	}
	if got := app.TaskLists.Store().GetAll(); len(got) != 3 || got[2].Secondary != `D:\dst` {
		t.Errorf("reloaded tasks = %+v", got)
	}

	m, err := app.MetricsCalc.Calculate(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if m.Saves != 1 || m.Compiles != 1 || m.CompiledTasks != 3 || m.Opens != 2 {
		t.Errorf("metrics = %+v", m)
	}
	if m.CompiledTasksByKind["open_url"] != 1 {
		t.Errorf("per-kind = %v", m.CompiledTasksByKind)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Type: "tasklist.saved"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || !strings.Contains(events[0].Message, "saved 3 tasks") {
		t.Errorf("saved events = %+v", events)
	}
}
