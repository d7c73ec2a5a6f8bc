package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valter-silva-au/autospark/pkg/models"
)

const (
	// DefaultHeader is the marker line written at the top of a task list file.
	DefaultHeader = "AutoSpark Application - Task List"

	commentPrefix   = "#"
	fieldSeparator  = "|"
	timestampLayout = "2006-01-02 15:04:05"
	formatLine      = "# Format: [Task Type] | [Details] | [Additional Info (optional)]"
	taskListExt     = ".txt"
)

// Serialize renders tasks in the line-oriented task list format. The header
// records generatedAt; header is the marker line text (DefaultHeader when empty).
func Serialize(tasks []models.Task, generatedAt time.Time, header string) string {
	if header == "" {
		header = DefaultHeader
	}

	var b strings.Builder
	b.WriteString(commentPrefix + " " + header + "\n")
	b.WriteString(commentPrefix + " Generated on: " + generatedAt.Format(timestampLayout) + "\n")
	b.WriteString(formatLine + "\n\n")

	for _, t := range tasks {
		b.WriteString(FormatLine(t))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatLine renders a single task as it appears in a task list file.
// Secondary is omitted together with its separator when empty.
func FormatLine(t models.Task) string {
	line := "[" + string(t.Kind) + "] " + fieldSeparator + " " + t.Primary
	if t.Secondary != "" {
		line += " " + fieldSeparator + " " + t.Secondary
	}
	return line
}

// Deserialize parses task list text. Blank lines, comments and lines that do
// not have the [kind] ... | ... shape are skipped.
func Deserialize(text string) []models.Task {
	var tasks []models.Task
	for _, line := range strings.Split(text, "\n") {
		if t, ok := ParseLine(line); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// ParseLine parses one task list line. It accepts both the written form
// "[kind] | primary | secondary" and the hand-written form
// "[kind] primary | secondary".
func ParseLine(line string) (models.Task, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commentPrefix) || !strings.HasPrefix(line, "[") {
		return models.Task{}, false
	}

	end := strings.Index(line, "]")
	if end < 0 {
		return models.Task{}, false
	}
	rest := line[end+1:]
	head, tail, found := strings.Cut(rest, fieldSeparator)
	if !found {
		return models.Task{}, false
	}

	task := models.Task{Kind: models.Kind(strings.TrimSpace(line[1:end]))}
	if strings.TrimSpace(head) == "" {
		primary, secondary, _ := strings.Cut(tail, fieldSeparator)
		task.Primary = strings.TrimSpace(primary)
		task.Secondary = firstField(secondary)
	} else {
		task.Primary = strings.TrimSpace(head)
		task.Secondary = firstField(tail)
	}
	return task, true
}

// firstField returns s up to its first separator, trimmed. Anything after a
// further separator cannot be represented and is dropped.
func firstField(s string) string {
	field, _, _ := strings.Cut(s, fieldSeparator)
	return strings.TrimSpace(field)
}

// TaskListFileManager reads and writes task list files.
type TaskListFileManager interface {
	// Save writes tasks to path, adding a .txt extension when missing, and
	// returns the path actually written.
	Save(path string, tasks []models.Task) (string, error)
	// Load reads and parses the file at path. A missing file is reported as
	// an error wrapping fs.ErrNotExist.
	Load(path string) ([]models.Task, error)
}

type fileTaskListManager struct {
	header string
	now    func() time.Time
}

// NewTaskListFileManager creates a TaskListFileManager that writes header as
// the marker line and stamps files with the time returned by now.
func NewTaskListFileManager(header string, now func() time.Time) TaskListFileManager {
	if now == nil {
		now = time.Now
	}
	return &fileTaskListManager{header: header, now: now}
}

// TaskListPath returns path with the task list extension appended when it
// does not already end in .txt (any case).
func TaskListPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), taskListExt) {
		return path
	}
	return path + taskListExt
}

func (m *fileTaskListManager) Save(path string, tasks []models.Task) (string, error) {
	path = TaskListPath(path)
	content := Serialize(tasks, m.now(), m.header)
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", fmt.Errorf("saving task list %s: %w", path, err)
	}
	return path, nil
}

func (m *fileTaskListManager) Load(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: task list path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("loading task list %s: %w", path, err)
	}
	return Deserialize(string(data)), nil
}

// WriteFile writes data to path atomically, creating parent directories.
func WriteFile(path string, data []byte) error {
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
