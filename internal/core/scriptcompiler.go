package core

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/autospark/pkg/models"
)

// DefaultScriptTitle is the banner echoed when a compiled script starts.
const DefaultScriptTitle = "AutoSpark Application - Task Execution"

// ErrInvalidDelay is returned when a delay task's seconds are not a whole
// number.
var ErrInvalidDelay = errors.New("delay must be a whole number of seconds")

// ScriptCompiler translates a task sequence into a cmd.exe batch script.
type ScriptCompiler interface {
	// Compile returns the script for tasks. sourceName is echoed in the
	// banner (usually the task list file name).
	Compile(tasks []models.Task, sourceName string) (string, error)
	// CompileTo writes the script for tasks to w.
	CompileTo(w io.Writer, tasks []models.Task, sourceName string) error
}

// emitFunc writes the kind-specific body of task number n (1-based).
type emitFunc func(w *scriptWriter, n int, t models.Task) error

// emitters maps every recognized kind to its code generator. Kinds missing
// from the table fall through to emitUnknown.
var emitters = map[models.Kind]emitFunc{
	models.KindOpenURL:             emitOpenURL,
	models.KindOpenApp:             emitStart,
	models.KindOpenFile:            emitStart,
	models.KindCloseApp:            emitCloseApp,
	models.KindRunCommand:          emitRunCommand,
	models.KindDelay:               emitDelay,
	models.KindShutdown:            emitPowerTransition("shutdown", "/s"),
	models.KindRestart:             emitPowerTransition("restart", "/r"),
	models.KindSleep:               emitSleep,
	models.KindScreenshot:          emitScreenshot,
	models.KindCleanTemp:           emitCleanTemp,
	models.KindSecurityScan:        emitSecurityScan,
	models.KindDeleteFile:          emitDeleteFile,
	models.KindDeleteFolder:        emitDeleteFolder,
	models.KindEmptyFolder:         emitEmptyFolder,
	models.KindDeleteFolderIfEmpty: emitDeleteFolderIfEmpty,
	models.KindBackupFolder:        emitBackupFolder,
}

type batchCompiler struct {
	title string
}

// NewScriptCompiler creates a ScriptCompiler whose scripts announce title in
// their banner. An empty title uses DefaultScriptTitle.
func NewScriptCompiler(title string) ScriptCompiler {
	if title == "" {
		title = DefaultScriptTitle
	}
	return &batchCompiler{title: title}
}

func (c *batchCompiler) Compile(tasks []models.Task, sourceName string) (string, error) {
	w := &scriptWriter{}
	c.writeHeader(w, sourceName)

	for i, t := range tasks {
		n := i + 1
		w.line("REM Task %d: %s", n, echoText(string(t.Kind)))
		w.line("echo Executing Task %d: %s", n, echoText(string(t.Kind)))

		emit, ok := emitters[t.Kind]
		if !ok {
			emit = emitUnknown
		}
		if err := emit(w, n, t); err != nil {
			return "", fmt.Errorf("compiling task %d (%s): %w", n, t.Kind, err)
		}

		w.line("echo.")
		w.blank()
	}

	w.line("echo All tasks completed.")
	w.line("pause")
	return w.String(), nil
}

func (c *batchCompiler) CompileTo(w io.Writer, tasks []models.Task, sourceName string) error {
	script, err := c.Compile(tasks, sourceName)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, script); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return nil
}

func (c *batchCompiler) writeHeader(w *scriptWriter, sourceName string) {
	if sourceName == "" {
		sourceName = "unsaved task list"
	}
	w.line("@echo off")
	w.line("setlocal EnableExtensions")
	w.line("echo %s", echoText(c.title))
	w.line("echo Generated from: %s", echoText(sourceName))
	w.line("echo Run time: %%DATE%% %%TIME%%")
	w.line("echo.")
	w.blank()
}

// scriptWriter accumulates CRLF-terminated batch lines.
type scriptWriter struct {
	b strings.Builder
}

// line writes one formatted line. A literal % in the batch output is written
// as %% in format, so %%DATE%% expands at run time.
func (w *scriptWriter) line(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

// raw writes s followed by a line break without any formatting. Line breaks
// embedded in s are normalized to CRLF.
func (w *scriptWriter) raw(s string) {
	w.b.WriteString(lineBreaks.Replace(s))
	w.b.WriteString("\r\n")
}

var lineBreaks = strings.NewReplacer("\r\n", "\r\n", "\r", "\r\n", "\n", "\r\n")

func (w *scriptWriter) blank() {
	w.b.WriteString("\r\n")
}

func (w *scriptWriter) String() string {
	return w.b.String()
}
