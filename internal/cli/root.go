package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/storage"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// taskFile is the --file flag shared by every command that touches a task list.
var taskFile string

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "autospark",
	Short: "AutoSpark - build desktop automation scripts from task lists",
	Long: `AutoSpark assembles an ordered list of desktop automation tasks (open a URL,
start or close an application, delete files, wait, shut down, take a screenshot,
back up a folder, ...), keeps it in a human-readable text file, and compiles it
into a Windows batch script that performs the tasks in order.

Every command works on the task list selected with --file, or on the default
task list from .autospark.yaml.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "autospark %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&taskFile, "file", "f", "", "Task list file (default from config, .txt is appended when missing)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveTaskFile returns the task list path selected by --file, falling back
// to the configured default, which is relative to BasePath.
func resolveTaskFile() string {
	name := taskFile
	if name == "" {
		name = "tasks.txt"
		if Config != nil && Config.TaskList.DefaultFile != "" {
			name = Config.TaskList.DefaultFile
		}
		if !filepath.IsAbs(name) && BasePath != "" {
			name = filepath.Join(BasePath, name)
		}
	}
	return storage.TaskListPath(name)
}

// openTaskList loads the selected task list into the editing session.
func openTaskList() error {
	if TaskLists == nil {
		return fmt.Errorf("task list manager not initialized")
	}
	if err := TaskLists.Open(resolveTaskFile()); err != nil {
		return err
	}
	return nil
}
