// Package core contains the business logic for AutoSpark: the task store,
// the batch script compiler, the editing session that ties them to a task
// list file, and configuration.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// ConfigFileName is the base name Viper looks for (with a .yaml extension).
const ConfigFileName = ".autospark"

// ConfigurationManager defines the interface for loading and validating
// configuration from the .autospark.yaml file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .autospark.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with the defaults used
// when no configuration file exists.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TaskList: models.TaskListConfig{
			DefaultFile: "tasks.txt",
			Header:      "AutoSpark Application - Task List",
		},
		Script: models.ScriptConfig{
			Extension: ".bat",
			Title:     DefaultScriptTitle,
		},
		Launcher: models.LauncherConfig{
			Command: "cmd",
			Args:    []string{"/c"},
		},
		Events: models.EventsConfig{
			Enabled: true,
			File:    ".autospark_events.jsonl",
		},
	}
}

// LoadGlobalConfig reads .autospark.yaml from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("tasklist.default_file", cfg.TaskList.DefaultFile)
	v.SetDefault("tasklist.header", cfg.TaskList.Header)
	v.SetDefault("script.extension", cfg.Script.Extension)
	v.SetDefault("script.title", cfg.Script.Title)
	v.SetDefault("launcher.command", cfg.Launcher.Command)
	v.SetDefault("launcher.args", cfg.Launcher.Args)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("events.file", cfg.Events.File)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
	}

	cfg.TaskList.DefaultFile = v.GetString("tasklist.default_file")
	cfg.TaskList.Header = v.GetString("tasklist.header")
	cfg.Script.Extension = v.GetString("script.extension")
	cfg.Script.Title = v.GetString("script.title")
	cfg.Launcher.Command = v.GetString("launcher.command")
	cfg.Launcher.Args = v.GetStringSlice("launcher.args")
	cfg.Events.Enabled = v.GetBool("events.enabled")
	cfg.Events.File = v.GetString("events.file")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.TaskList.DefaultFile == "" {
		errs = append(errs, "tasklist.default_file must not be empty")
	}
	if !strings.HasPrefix(cfg.Script.Extension, ".") || len(cfg.Script.Extension) < 2 {
		errs = append(errs, fmt.Sprintf("script.extension %q must start with a dot", cfg.Script.Extension))
	} else if strings.EqualFold(cfg.Script.Extension, ".txt") {
		// the script would overwrite the task list it was compiled from
		errs = append(errs, "script.extension must differ from the task list extension .txt")
	}
	if strings.TrimSpace(cfg.Launcher.Command) == "" {
		errs = append(errs, "launcher.command must not be empty")
	}
	if cfg.Events.Enabled && cfg.Events.File == "" {
		errs = append(errs, "events.file must not be empty when events are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
