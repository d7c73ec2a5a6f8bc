package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/storage"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the .autospark.yaml configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a .autospark.yaml with the default settings",
	Long: `Write a .autospark.yaml containing every setting with its default value.

The file is written to the given directory, or to the current base path
(AUTOSPARK_HOME, the nearest directory with a .autospark.yaml, or the
working directory). An existing file is kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := BasePath
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, core.ConfigFileName+".yaml")

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		data, err := yaml.Marshal(core.DefaultGlobalConfig())
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}
		if err := storage.WriteFile(path, data); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Config == nil {
			return fmt.Errorf("configuration not loaded")
		}
		data, err := yaml.Marshal(Config)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		out := cmd.OutOrStdout()
		if BasePath != "" {
			_, _ = fmt.Fprintf(out, "# base path: %s\n", BasePath)
		}
		_, err = out.Write(data)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Reload .autospark.yaml and report any invalid settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}
		cfg, err := ConfigMgr.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := ConfigMgr.ValidateConfig(cfg); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing .autospark.yaml")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
