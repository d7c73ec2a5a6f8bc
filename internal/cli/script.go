package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/pkg/models"
)

var compileWrite bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the task list with tasks parsed from text",
	Long: `Read task list text from a file (or standard input when no file or "-" is
given), replace every task in the selected task list with the tasks it
contains, and save.

Lines that are not tasks are ignored, so a hand-edited copy of a task list
file, or plain "[kind] | details | extra" lines, can be imported directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0]) //nolint:gosec // G304: file chosen by the user
		}
		if err != nil {
			return fmt.Errorf("reading import text: %w", err)
		}

		if err := openTaskList(); err != nil {
			return err
		}
		n := TaskLists.ImportText(string(data))
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Imported %d tasks\n", n)
		return saveTaskList(out)
	},
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the batch script for the task list",
	Long: `Compile the task list into a Windows batch script and print it.

With --write the task list is saved and the script is written next to it
instead (same name, script extension from the configuration).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		if compileWrite {
			return saveTaskList(cmd.OutOrStdout())
		}
		script, err := TaskLists.Compile()
		if err != nil {
			return fmt.Errorf("compiling %s: %w", TaskLists.Path(), err)
		}
		_, err = io.WriteString(cmd.OutOrStdout(), script)
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Save the task list, regenerate its script, and launch it",
	Long: `Save the task list, regenerate its script, and start the script in a new
console window using the configured launcher (cmd /c by default).

autospark does not wait for the script to finish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := TaskLists.Run(ctx)
		if err != nil {
			if errors.Is(err, core.ErrEmptyTaskList) {
				return fmt.Errorf("nothing to run: %s has no tasks", TaskLists.Path())
			}
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Launched %s (pid %d, %d tasks)\n", res.ScriptPath, res.PID, res.Tasks)
		return nil
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the task kinds and their arguments",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, k := range models.KnownKinds() {
			_, _ = fmt.Fprintf(out, "%s %s\n", kindStyle.Render(fmt.Sprintf("%-24s", k.Kind)), k.Description)
			if k.PrimaryHint != "" {
				_, _ = fmt.Fprintf(out, "  %-24s primary: %s\n", "", k.PrimaryHint)
			}
			if k.SecondaryHint != "" {
				_, _ = fmt.Fprintf(out, "  %-24s secondary: %s\n", "", k.SecondaryHint)
			}
		}
	},
}

func init() {
	compileCmd.Flags().BoolVar(&compileWrite, "write", false, "Save the task list and write the script file")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(kindsCmd)
}
