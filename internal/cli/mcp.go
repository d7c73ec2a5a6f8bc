package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	spmcp "github.com/valter-silva-au/autospark/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the autospark MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the autospark MCP server on stdio",
	Long: `Start the autospark MCP server on stdio transport, editing the task list
selected with --file.

The server exposes the task list as MCP tools that AI assistants can call:
list_tasks, add_task, delete_task, move_task, clear_tasks, compile_script,
save_task_list, list_kinds, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openTaskList(); err != nil {
			return err
		}

		srv := spmcp.NewServer(TaskLists, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
