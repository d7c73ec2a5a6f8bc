package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/storage"
	"github.com/valter-silva-au/autospark/pkg/models"
)

type editMode int

const (
	modeBrowse editMode = iota
	modeAdd
	modeConfirmQuit
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// editorModel edits the session's task store in place. Every change goes
// through the store; saving and running go through the session.
type editorModel struct {
	session core.TaskListManager
	cursor  int
	mode    editMode
	input   textinput.Model
	status  string
	err     error
	width   int
	height  int
}

// runDoneMsg carries the outcome of a launch started from the editor.
type runDoneMsg struct {
	result *core.RunResult
	err    error
}

func newEditorModel(session core.TaskListManager) editorModel {
	ti := textinput.New()
	ti.Placeholder = "kind | primary | secondary"
	ti.CharLimit = 1024
	ti.Width = 60
	return editorModel{session: session, input: ti}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case runDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Launched %s (pid %d)", msg.result.ScriptPath, msg.result.PID))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.mode == modeAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.session.Store()
	switch msg.String() {
	case "q", "esc":
		if m.session.Dirty() {
			m.mode = modeConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < store.Count()-1 {
			m.cursor++
		}
	case "K", "shift+up":
		if store.Move(m.cursor, core.Up) {
			m.cursor--
		}
	case "J", "shift+down":
		if store.Move(m.cursor, core.Down) {
			m.cursor++
		}
	case "d", "delete":
		if store.Delete(m.cursor) && m.cursor >= store.Count() && m.cursor > 0 {
			m.cursor--
		}
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "s":
		m.save()
	case "r":
		if store.IsEmpty() {
			m.setError(core.ErrEmptyTaskList)
			return m, nil
		}
		saved, err := m.session.Save()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Launching...")
		return m, launchScript(m.session, saved)
	}
	return m, nil
}

func (m editorModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		task, err := parsePrompt(m.input.Value())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		store := m.session.Store()
		store.Add(task.Kind, task.Primary, task.Secondary)
		m.cursor = store.Count() - 1
		m.mode = modeBrowse
		m.input.Blur()
		m.setStatus("Added " + describeTask(task))
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.status, m.err = "", nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if m.save() {
			return m, tea.Quit
		}
		m.mode = modeBrowse
	case "n":
		return m, tea.Quit
	case "esc", "c":
		m.mode = modeBrowse
	}
	return m, nil
}

// save writes the task list and its script, reporting the outcome in the
// status line.
func (m *editorModel) save() bool {
	res, err := m.session.Save()
	if err != nil {
		m.setError(err)
		return false
	}
	m.setStatus(fmt.Sprintf("Saved %s and %s", res.TaskListPath, res.ScriptPath))
	return true
}

func (m *editorModel) setStatus(s string) {
	m.status, m.err = s, nil
}

func (m *editorModel) setError(err error) {
	m.status, m.err = "", err
}

// launchScript starts an already saved script off the UI goroutine. The
// store stays with Update.
func launchScript(session core.TaskListManager, saved *core.SaveResult) tea.Cmd {
	return func() tea.Msg {
		res, err := session.Launch(context.Background(), saved)
		return runDoneMsg{result: res, err: err}
	}
}

// parsePrompt reads a task typed into the add prompt. Besides the task list
// line forms it accepts the kind without brackets: "open_url | example.com".
func parsePrompt(s string) (models.Task, error) {
	line := strings.TrimSpace(s)
	if line != "" && !strings.HasPrefix(line, "[") {
		kind, rest, _ := strings.Cut(line, "|")
		line = "[" + strings.TrimSpace(kind) + "] |" + rest
	} else if !strings.Contains(line, "|") {
		line += " |"
	}

	task, ok := storage.ParseLine(line)
	if !ok || task.Kind == "" {
		return models.Task{}, fmt.Errorf("enter a kind first, e.g. open_url | example.com")
	}
	if !task.Kind.IsKnown() {
		return models.Task{}, fmt.Errorf("unknown task kind %q", task.Kind)
	}
	return task, nil
}

func (m editorModel) View() string {
	path := m.session.Path()
	if path == "" {
		path = "(unsaved)"
	}
	title := titleStyle.Render(" AutoSpark: " + path + " ")
	if m.session.Dirty() {
		title += " " + dirtyStyle.Render("[modified]")
	}

	var b strings.Builder
	tasks := m.session.Store().GetAll()
	if len(tasks) == 0 {
		b.WriteString("No tasks yet. Press a to add one.")
	}
	for i, t := range tasks {
		line := fmt.Sprintf("%3d. %s", i+1, describeTask(t))
		if i == m.cursor {
			line = cursorStyle.Render(line)
		} else if !t.Kind.IsKnown() {
			line = errorStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(tasks)-1 {
			b.WriteString("\n")
		}
	}

	style := panelStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	body := style.Render(b.String())

	var footer string
	switch m.mode {
	case modeAdd:
		footer = "Add task: " + m.input.View() + "\n" + helpStyle.Render("enter: add | esc: cancel | kinds: "+kindNames())
	case modeConfirmQuit:
		footer = dirtyStyle.Render("Unsaved changes. Save before quitting? (y: save and quit | n: discard | esc: cancel)")
	default:
		footer = helpStyle.Render("j/k: select | J/K: move | a: add | d: delete | s: save | r: run | q: quit")
	}

	status := ""
	if m.err != nil {
		status = errorStyle.Render("Error: "+m.err.Error()) + "\n"
	} else if m.status != "" {
		status = m.status + "\n"
	}

	return fmt.Sprintf("%s\n\n%s\n%s%s", title, body, status, footer)
}

func kindNames() string {
	kinds := models.KnownKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k.Kind)
	}
	return strings.Join(names, ", ")
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the task list in an interactive terminal editor",
	Long: `Open the task list in a full-screen editor.

Select tasks with j/k, move them with J/K, add with a, delete with d,
save with s (the script is regenerated on every save), run with r,
and quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		p := tea.NewProgram(newEditorModel(TaskLists), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
