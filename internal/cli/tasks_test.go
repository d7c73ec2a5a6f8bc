package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/autospark/pkg/models"
	"gopkg.in/yaml.v3"
)

func TestCommands_Registered(t *testing.T) {
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range []string{
		"add", "list", "rm", "move", "clear", "import", "compile", "run",
		"kinds", "stats", "config", "mcp", "edit", "completion", "version",
	} {
		if !registered[name] {
			t.Errorf("expected %q command to be registered", name)
		}
	}
}

func TestTaskCommands_NilManager(t *testing.T) {
	withSession(t)
	TaskLists = nil

	for _, c := range []struct {
		name string
		args []string
	}{
		{"add", []string{"sleep"}},
		{"list", nil},
		{"rm", []string{"1"}},
		{"clear", nil},
		{"compile", nil},
		{"run", nil},
		{"edit", nil},
	} {
		cmd, _, err := rootCmd.Find([]string{c.name})
		if err != nil {
			t.Fatalf("finding %s: %v", c.name, err)
		}
		_, err = invoke(t, cmd, c.args...)
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Errorf("%s: expected not initialized error, got %v", c.name, err)
		}
	}
}

func TestResolveTaskFile(t *testing.T) {
	dir, _ := withSession(t)

	if got, want := resolveTaskFile(), filepath.Join(dir, "tasks.txt"); got != want {
		t.Errorf("default = %q, want %q", got, want)
	}

	Config.TaskList.DefaultFile = "morning"
	if got, want := resolveTaskFile(), filepath.Join(dir, "morning.txt"); got != want {
		t.Errorf("configured default = %q, want %q", got, want)
	}

	taskFile = filepath.Join("lists", "evening.TXT")
	if got := resolveTaskFile(); got != taskFile {
		t.Errorf("--file = %q, want %q unchanged", got, taskFile)
	}
}

func TestAddCmd_SavesListAndScript(t *testing.T) {
	dir, _ := withSession(t)

	out, err := invoke(t, addCmd, "open_url", "example.com")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(out, "Added task 1: [open_url] example.com") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := invoke(t, addCmd, "backup_folder", `C:\Projects`, `D:\Backups`); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	list := readFile(t, filepath.Join(dir, "tasks.txt"))
	if !strings.Contains(list, "[open_url] | example.com\n") || !strings.Contains(list, `[backup_folder] | C:\Projects | D:\Backups`) {
		t.Errorf("task list file:\n%s", list)
	}
	script := readFile(t, filepath.Join(dir, "tasks.bat"))
	if !strings.Contains(script, `start "" "https://example.com"`+"\r\n") {
		t.Errorf("script does not open the URL:\n%s", script)
	}
}

func TestAddCmd_UnknownKind(t *testing.T) {
	dir, _ := withSession(t)
	origForce := addForce
	defer func() { addForce = origForce }()

	addForce = false
	if _, err := invoke(t, addCmd, "launch_rocket", "now"); err == nil || !strings.Contains(err.Error(), "unknown task kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}

	addForce = true
	if _, err := invoke(t, addCmd, "launch_rocket", "now"); err != nil {
		t.Fatalf("add --force failed: %v", err)
	}
	if !strings.Contains(readFile(t, filepath.Join(dir, "tasks.txt")), "[launch_rocket] | now") {
		t.Error("forced unknown kind should be kept in the file")
	}
}

func TestAddCmd_BadDelayKeepsList(t *testing.T) {
	dir, _ := withSession(t)

	_, err := invoke(t, addCmd, "delay", "soon")
	if err == nil || !strings.Contains(err.Error(), "not its script") {
		t.Fatalf("expected script error, got %v", err)
	}
	if !strings.Contains(readFile(t, filepath.Join(dir, "tasks.txt")), "[delay] | soon") {
		t.Error("task list should be saved even when the script cannot be compiled")
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		count   int
		want    int
		wantErr string
	}{
		{"1", 3, 0, ""},
		{" 3 ", 3, 2, ""},
		{"0", 3, 0, "no task at position 0"},
		{"4", 3, 0, "no task at position 4"},
		{"first", 3, 0, "must be a number"},
		{"1", 0, 0, "the list has 0 tasks"},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in, tt.count)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("parsePosition(%q, %d) error = %v, want %q", tt.in, tt.count, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parsePosition(%q, %d) = %d, %v; want %d", tt.in, tt.count, got, err, tt.want)
		}
	}
}

func TestRmCmd(t *testing.T) {
	dir, _ := withSession(t)
	writeTaskList(t, dir, "[open_url] | a.com", "[delay] | 2", "[open_url] | b.com")

	out, err := invoke(t, rmCmd, "2")
	if err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if !strings.Contains(out, "Removed task 2: [delay] 2") {
		t.Errorf("unexpected output:\n%s", out)
	}
	list := readFile(t, filepath.Join(dir, "tasks.txt"))
	if strings.Contains(list, "[delay]") || !strings.Contains(list, "b.com") {
		t.Errorf("task list after rm:\n%s", list)
	}

	if _, err := invoke(t, rmCmd, "5"); err == nil {
		t.Error("expected error for a position past the end")
	}
}

func TestMoveCmd(t *testing.T) {
	dir, _ := withSession(t)
	writeTaskList(t, dir, "[open_url] | a.com", "[open_url] | b.com")

	if _, err := invoke(t, moveCmd, "2", "up"); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	tasks := TaskLists.Store().GetAll()
	if tasks[0].Primary != "b.com" || tasks[1].Primary != "a.com" {
		t.Errorf("order after move = %v", tasks)
	}

	if _, err := invoke(t, moveCmd, "1", "up"); err == nil || !strings.Contains(err.Error(), "already at the top") {
		t.Errorf("expected top edge error, got %v", err)
	}
	if _, err := invoke(t, moveCmd, "2", "down"); err == nil || !strings.Contains(err.Error(), "already at the bottom") {
		t.Errorf("expected bottom edge error, got %v", err)
	}
	if _, err := invoke(t, moveCmd, "1", "sideways"); err == nil || !strings.Contains(err.Error(), "invalid direction") {
		t.Errorf("expected invalid direction error, got %v", err)
	}
}

func TestClearCmd(t *testing.T) {
	dir, _ := withSession(t)
	writeTaskList(t, dir, "[sleep] | ", "[clean_temp] | ")

	out, err := invoke(t, clearCmd)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out, "Removed 2 tasks") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(readFile(t, filepath.Join(dir, "tasks.txt")), "[sleep]") {
		t.Error("file should have no tasks after clear")
	}
}

func TestListCmd_Formats(t *testing.T) {
	dir, _ := withSession(t)
	writeTaskList(t, dir, "[open_url] | a.com", "[backup_folder] | src | dst")
	origOutput := listOutput
	defer func() { listOutput = origOutput }()

	listOutput = "text"
	out, err := invoke(t, listCmd)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "(2 tasks)") || !strings.Contains(out, "a.com") || !strings.Contains(out, "| dst") {
		t.Errorf("text output:\n%s", out)
	}

	listOutput = "json"
	out, err = invoke(t, listCmd)
	if err != nil {
		t.Fatalf("list -o json failed: %v", err)
	}
	var fromJSON []listedTask
	if err := json.Unmarshal([]byte(out), &fromJSON); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(fromJSON) != 2 || fromJSON[1].Position != 2 || fromJSON[1].Secondary != "dst" {
		t.Errorf("json tasks = %+v", fromJSON)
	}

	listOutput = "yaml"
	out, err = invoke(t, listCmd)
	if err != nil {
		t.Fatalf("list -o yaml failed: %v", err)
	}
	var fromYAML []listedTask
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, out)
	}
	if len(fromYAML) != 2 || fromYAML[0].Kind != models.KindOpenURL {
		t.Errorf("yaml tasks = %+v", fromYAML)
	}

	listOutput = "xml"
	if _, err := invoke(t, listCmd); err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestListCmd_MissingFileIsEmpty(t *testing.T) {
	withSession(t)
	origOutput := listOutput
	defer func() { listOutput = origOutput }()
	listOutput = "text"

	out, err := invoke(t, listCmd)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No tasks in") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
