package cli

import (
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/observability"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath  string
	Config    *models.GlobalConfig
	ConfigMgr core.ConfigurationManager
	TaskLists core.TaskListManager
)

// Observability service instances. Both are nil when the event log is disabled.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
