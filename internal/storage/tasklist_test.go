package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/autospark/pkg/models"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func TestSerialize_HeaderAndLines(t *testing.T) {
	tasks := []models.Task{
		{Kind: models.KindOpenURL, Primary: "https://example.com"},
		{Kind: models.KindBackupFolder, Primary: `C:\data`, Secondary: `D:\backup`},
	}

	got := Serialize(tasks, fixedTime, "")
	want := "# AutoSpark Application - Task List\n" +
		"# Generated on: 2026-03-14 09:26:53\n" +
		"# Format: [Task Type] | [Details] | [Additional Info (optional)]\n" +
		"\n" +
		"[open_url] | https://example.com\n" +
		"[backup_folder] | C:\\data | D:\\backup\n"

	if got != want {
		t.Errorf("Serialize mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestSerialize_CustomHeader(t *testing.T) {
	got := Serialize(nil, fixedTime, "Morning routine")
	if !strings.HasPrefix(got, "# Morning routine\n") {
		t.Errorf("expected custom marker line, got %q", got)
	}
}

func TestFormatLine_OmitsEmptySecondary(t *testing.T) {
	got := FormatLine(models.Task{Kind: models.KindSleep})
	if got != "[sleep] | " {
		t.Errorf("FormatLine = %q", got)
	}
	if strings.Count(got, "|") != 1 {
		t.Errorf("expected no trailing separator for empty secondary: %q", got)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   models.Task
		wantOK bool
	}{
		{
			name:   "written form",
			line:   "[open_url] | example.com",
			want:   models.Task{Kind: "open_url", Primary: "example.com"},
			wantOK: true,
		},
		{
			name:   "written form with secondary",
			line:   `[backup_folder] | C:\a | D:\b`,
			want:   models.Task{Kind: "backup_folder", Primary: `C:\a`, Secondary: `D:\b`},
			wantOK: true,
		},
		{
			name:   "hand-written form",
			line:   `[backup_folder] C:\a | D:\b`,
			want:   models.Task{Kind: "backup_folder", Primary: `C:\a`, Secondary: `D:\b`},
			wantOK: true,
		},
		{
			name:   "hand-written form without secondary",
			line:   "[delay] 5 |",
			want:   models.Task{Kind: "delay", Primary: "5"},
			wantOK: true,
		},
		{
			name:   "extra fields discarded",
			line:   "[delete_folder] | x | with contents | junk | more",
			want:   models.Task{Kind: "delete_folder", Primary: "x", Secondary: "with contents"},
			wantOK: true,
		},
		{
			name:   "whitespace trimmed",
			line:   "   [  delay  ]   |   3   ",
			want:   models.Task{Kind: "delay", Primary: "3"},
			wantOK: true,
		},
		{
			name:   "empty primary with secondary",
			line:   "[custom] |  | extra",
			want:   models.Task{Kind: "custom", Secondary: "extra"},
			wantOK: true,
		},
		{
			name:   "unknown kind preserved",
			line:   "[teleport] | mars",
			want:   models.Task{Kind: "teleport", Primary: "mars"},
			wantOK: true,
		},
		{name: "comment", line: "# [open_url] | x", wantOK: false},
		{name: "indented comment", line: "   # note", wantOK: false},
		{name: "blank", line: "   ", wantOK: false},
		{name: "no bracket", line: "open_url | x", wantOK: false},
		{name: "no closing bracket", line: "[open_url | x", wantOK: false},
		{name: "no separator", line: "[open_url] example.com", wantOK: false},
		{name: "separator only inside kind", line: "[a|b] example.com", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDeserialize_SkipsMalformedLines(t *testing.T) {
	text := "# AutoSpark Application - Task List\r\n" +
		"# Generated on: 2026-01-01 00:00:00\r\n" +
		"\r\n" +
		"[open_url] | example.com\r\n" +
		"this line is garbage\r\n" +
		"[delay] 3\r\n" +
		"[delay] | 3\r\n"

	got := Deserialize(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d: %+v", len(got), got)
	}
	if got[0].Kind != models.KindOpenURL || got[1].Kind != models.KindDelay {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestTaskListPath(t *testing.T) {
	tests := map[string]string{
		"tasks":          "tasks.txt",
		"tasks.txt":      "tasks.txt",
		"tasks.TXT":      "tasks.TXT",
		"routine.md":     "routine.md.txt",
		"dir/morning.v1": "dir/morning.v1.txt",
	}
	for in, want := range tests {
		if got := TaskListPath(in); got != want {
			t.Errorf("TaskListPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileManager_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	mgr := NewTaskListFileManager("", fixedNow)
	tasks := []models.Task{
		{Kind: models.KindDelay, Primary: "3"},
		{Kind: models.KindBackupFolder, Primary: `C:\src`, Secondary: `D:\dst`},
	}

	written, err := mgr.Save(filepath.Join(dir, "nested", "routine"), tasks)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(written) != "routine.txt" {
		t.Errorf("expected .txt to be appended, got %s", written)
	}

	loaded, err := mgr.Load(written)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != tasks[0] || loaded[1] != tasks[1] {
		t.Errorf("loaded %+v, want %+v", loaded, tasks)
	}

	entries, err := os.ReadDir(filepath.Dir(written))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestFileManager_LoadMissing(t *testing.T) {
	mgr := NewTaskListFileManager("", fixedNow)
	_, err := mgr.Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "loading task list") {
		t.Errorf("error should carry context: %v", err)
	}
}

func TestFileManager_SaveUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := NewTaskListFileManager("", fixedNow)
	_, err := mgr.Save(filepath.Join(blocker, "tasks.txt"), nil)
	if err == nil {
		t.Fatal("expected error when parent is a regular file")
	}
	if !strings.Contains(err.Error(), "saving task list") {
		t.Errorf("error should carry context: %v", err)
	}
}
