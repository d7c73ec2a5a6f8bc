package models

// Kind selects the behavior of a task. Unknown kinds are kept verbatim so
// that task lists written by newer versions survive a load/save cycle.
type Kind string

const (
	KindOpenURL             Kind = "open_url"
	KindOpenApp             Kind = "open_app"
	KindOpenFile            Kind = "open_file"
	KindCloseApp            Kind = "close_app"
	KindRunCommand          Kind = "run_command"
	KindDelay               Kind = "delay"
	KindShutdown            Kind = "shutdown"
	KindRestart             Kind = "restart"
	KindSleep               Kind = "sleep"
	KindScreenshot          Kind = "screenshot"
	KindCleanTemp           Kind = "clean_temp"
	KindSecurityScan        Kind = "security_scan"
	KindDeleteFile          Kind = "delete_file"
	KindDeleteFolder        Kind = "delete_folder"
	KindEmptyFolder         Kind = "empty_folder"
	KindDeleteFolderIfEmpty Kind = "delete_folder_if_empty"
	KindBackupFolder        Kind = "backup_folder"
)

// Modes accepted in the Secondary field of a delete_folder task.
const (
	DeleteModeWithContents = "with contents"
	DeleteModeContentsOnly = "contents only"
	DeleteModeIfEmpty      = "if empty"
)

// Task is one automation step. Primary and Secondary are free text whose
// meaning depends on Kind; Secondary is empty for single-argument kinds.
type Task struct {
	Kind      Kind   `yaml:"kind" json:"kind"`
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary,omitempty" json:"secondary,omitempty"`
}

// KindInfo describes a recognized kind for help output and tool listings.
type KindInfo struct {
	Kind          Kind   `yaml:"kind" json:"kind"`
	Description   string `yaml:"description" json:"description"`
	PrimaryHint   string `yaml:"primary,omitempty" json:"primary,omitempty"`
	SecondaryHint string `yaml:"secondary,omitempty" json:"secondary,omitempty"`
}

var kindCatalogue = []KindInfo{
	{KindOpenURL, "Open a URL in the default browser", "url (https:// is added when no scheme is given)", ""},
	{KindOpenApp, "Launch an application", "path to executable", ""},
	{KindOpenFile, "Open a file with its default application", "path to file", ""},
	{KindCloseApp, "Force-close a running application", "image name, e.g. notepad.exe", ""},
	{KindRunCommand, "Run a command line as-is", "command line", ""},
	{KindDelay, "Wait before the next task", "seconds", ""},
	{KindShutdown, "Shut the computer down", "delay in seconds", ""},
	{KindRestart, "Restart the computer", "delay in seconds", ""},
	{KindSleep, "Put the computer to sleep", "", ""},
	{KindScreenshot, "Capture the primary screen", "folder to save into", ""},
	{KindCleanTemp, "Delete files in the temp folder", "", ""},
	{KindSecurityScan, "Start a Windows Defender scan", "quick, full or custom", ""},
	{KindDeleteFile, "Delete a file", "path to file", ""},
	{KindDeleteFolder, "Delete a folder", "path to folder", "mode: with contents (default), contents only, if empty"},
	{KindEmptyFolder, "Delete everything inside a folder but keep it", "path to folder", ""},
	{KindDeleteFolderIfEmpty, "Delete a folder only when it is empty", "path to folder", ""},
	{KindBackupFolder, "Copy a folder into a destination folder", "source folder", "destination folder"},
}

// KnownKinds returns the catalogue of recognized kinds in menu order.
func KnownKinds() []KindInfo {
	out := make([]KindInfo, len(kindCatalogue))
	copy(out, kindCatalogue)
	return out
}

// IsKnown reports whether k is one of the recognized kinds.
func (k Kind) IsKnown() bool {
	for _, info := range kindCatalogue {
		if info.Kind == k {
			return true
		}
	}
	return false
}
