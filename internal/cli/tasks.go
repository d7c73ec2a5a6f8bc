package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/pkg/models"
	"gopkg.in/yaml.v3"
)

var (
	addForce   bool
	listOutput string
)

var (
	indexStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	kindStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	unknownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

var addCmd = &cobra.Command{
	Use:   "add <kind> [primary] [secondary]",
	Short: "Append a task to the task list",
	Long: `Append a task to the end of the task list, save the list, and regenerate
its script.

Run 'autospark kinds' to see every kind and what its arguments mean.

Examples:
  autospark add open_url example.com
  autospark add delay 5
  autospark add delete_folder C:\Temp\build "contents only"
  autospark add backup_folder C:\Projects D:\Backups`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.Kind(strings.TrimSpace(args[0]))
		if !kind.IsKnown() && !addForce {
			return fmt.Errorf("unknown task kind %q (see 'autospark kinds', or pass --force to keep it anyway)", kind)
		}
		if err := openTaskList(); err != nil {
			return err
		}

		var primary, secondary string
		if len(args) > 1 {
			primary = args[1]
		}
		if len(args) > 2 {
			secondary = args[2]
		}

		store := TaskLists.Store()
		store.Add(kind, primary, secondary)
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Added task %d: %s\n", store.Count(), describeTask(store.GetAll()[store.Count()-1]))
		return saveTaskList(out)
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the tasks in the task list",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		return printTasks(cmd.OutOrStdout(), TaskLists.Path(), TaskLists.Store().GetAll(), listOutput)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <position>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove the task at a position (1 is the first task)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		store := TaskLists.Store()
		index, err := parsePosition(args[0], store.Count())
		if err != nil {
			return err
		}
		removed := store.GetAll()[index]
		if !store.Delete(index) {
			return fmt.Errorf("no task at position %s", args[0])
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Removed task %d: %s\n", index+1, describeTask(removed))
		return saveTaskList(out)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <position> <up|down>",
	Short: "Swap a task with its neighbour",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, ok := core.ParseDirection(args[1])
		if !ok {
			return fmt.Errorf("invalid direction %q (use up or down)", args[1])
		}
		if err := openTaskList(); err != nil {
			return err
		}
		store := TaskLists.Store()
		index, err := parsePosition(args[0], store.Count())
		if err != nil {
			return err
		}
		if !store.Move(index, dir) {
			return fmt.Errorf("task %d is already at the %s", index+1, edgeName(dir))
		}
		target := index - 1
		if dir == core.Down {
			target = index + 1
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Moved task %d to position %d\n", index+1, target+1)
		return saveTaskList(out)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every task from the task list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		n := TaskLists.Store().Count()
		TaskLists.Store().Clear()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Removed %d tasks\n", n)
		return saveTaskList(out)
	},
}

func init() {
	addCmd.Flags().BoolVar(&addForce, "force", false, "Accept a kind that is not recognized")
	addCmd.ValidArgsFunction = completeKinds
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "text", "Output format: text, yaml or json")
	moveCmd.ValidArgsFunction = completeDirections

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(clearCmd)
}

// parsePosition converts a 1-based position argument to a store index.
func parsePosition(s string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: must be a number", s)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("no task at position %d (the list has %d tasks)", n, count)
	}
	return n - 1, nil
}

func edgeName(dir core.Direction) string {
	if dir == core.Up {
		return "top"
	}
	return "bottom"
}

// saveTaskList saves the session and reports both written files.
func saveTaskList(out io.Writer) error {
	res, err := TaskLists.Save()
	if res != nil {
		_, _ = fmt.Fprintf(out, "Saved %s (%d tasks)\n", res.TaskListPath, res.Tasks)
		if res.ScriptWritten {
			_, _ = fmt.Fprintf(out, "Script written to %s\n", res.ScriptPath)
		}
	}
	if err != nil {
		return fmt.Errorf("saving task list: %w", err)
	}
	return nil
}

func describeTask(t models.Task) string {
	s := "[" + string(t.Kind) + "]"
	if t.Primary != "" {
		s += " " + t.Primary
	}
	if t.Secondary != "" {
		s += " | " + t.Secondary
	}
	return s
}

// listedTask is the yaml/json shape of one task in list output.
type listedTask struct {
	Position    int `yaml:"position" json:"position"`
	models.Task `yaml:",inline"`
}

func printTasks(out io.Writer, path string, tasks []models.Task, format string) error {
	switch format {
	case "json", "yaml":
		listed := make([]listedTask, len(tasks))
		for i, t := range tasks {
			listed[i] = listedTask{Position: i + 1, Task: t}
		}
		var data []byte
		var err error
		if format == "json" {
			data, err = json.MarshalIndent(listed, "", "  ")
			data = append(data, '\n')
		} else {
			data, err = yaml.Marshal(listed)
		}
		if err != nil {
			return fmt.Errorf("formatting tasks as %s: %w", format, err)
		}
		_, err = out.Write(data)
		return err
	case "text", "":
	default:
		return fmt.Errorf("unsupported output format %q (use text, yaml or json)", format)
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintf(out, "No tasks in %s\n", path)
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s (%d tasks)\n\n", path, len(tasks))
	for i, t := range tasks {
		style := kindStyle
		if !t.Kind.IsKnown() {
			style = unknownStyle
		}
		line := fmt.Sprintf("  %s %s", indexStyle.Render(fmt.Sprintf("%3d.", i+1)), style.Render(string(t.Kind)))
		if t.Primary != "" {
			line += "  " + t.Primary
		}
		if t.Secondary != "" {
			line += "  " + indexStyle.Render("| "+t.Secondary)
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
