package models

// TaskListConfig controls how task list files are named and written.
type TaskListConfig struct {
	DefaultFile string `yaml:"default_file" mapstructure:"default_file"`
	Header      string `yaml:"header" mapstructure:"header"`
}

// ScriptConfig controls the compiled batch script.
type ScriptConfig struct {
	Extension string `yaml:"extension" mapstructure:"extension"`
	Title     string `yaml:"title" mapstructure:"title"`
}

// LauncherConfig is the command line used to start a compiled script. The
// script path is appended after Args.
type LauncherConfig struct {
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args,omitempty" mapstructure:"args"`
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	File    string `yaml:"file" mapstructure:"file"`
}

// GlobalConfig holds settings read from .autospark.yaml via Viper.
type GlobalConfig struct {
	TaskList TaskListConfig `yaml:"tasklist" mapstructure:"tasklist"`
	Script   ScriptConfig   `yaml:"script" mapstructure:"script"`
	Launcher LauncherConfig `yaml:"launcher" mapstructure:"launcher"`
	Events   EventsConfig   `yaml:"events" mapstructure:"events"`
}
