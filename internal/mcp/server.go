// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the AutoSpark task list as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/internal/observability"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// Server wraps an editing session and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	taskLists   core.TaskListManager
	metricsCalc observability.MetricsCalculator

	// mu serializes tool calls; the editing session is not safe for
	// concurrent use.
	mu sync.Mutex
}

// NewServer creates a new MCP server over the given editing session.
// metricsCalc may be nil if observability is disabled.
func NewServer(taskLists core.TaskListManager, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		taskLists:   taskLists,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "autospark", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

type listTasksInput struct{}

type listTasksOutput struct {
	Path  string       `json:"path,omitempty"`
	Dirty bool         `json:"dirty"`
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Kind      string `json:"kind" jsonschema:"the task kind, see list_kinds (e.g. open_url, delay, backup_folder)"`
	Primary   string `json:"primary,omitempty" jsonschema:"main argument: URL, path, command, or seconds depending on kind"`
	Secondary string `json:"secondary,omitempty" jsonschema:"optional extra argument (backup destination or delete_folder mode)"`
}

type indexInput struct {
	Index int `json:"index" jsonschema:"1-based position of the task in the list"`
}

type moveTaskInput struct {
	Index     int    `json:"index" jsonschema:"1-based position of the task in the list"`
	Direction string `json:"direction" jsonschema:"up or down"`
}

type emptyInput struct{}

type messageOutput struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type compileOutput struct {
	Script string `json:"script"`
}

type saveInput struct {
	Path string `json:"path,omitempty" jsonschema:"file to save to; .txt is appended when missing. Defaults to the current file."`
}

type saveOutput struct {
	TaskListPath string `json:"task_list_path"`
	ScriptPath   string `json:"script_path"`
	Tasks        int    `json:"tasks"`
}

type kindOutput struct {
	Kind          string `json:"kind"`
	Description   string `json:"description"`
	PrimaryHint   string `json:"primary_hint,omitempty"`
	SecondaryHint string `json:"secondary_hint,omitempty"`
}

type listKindsOutput struct {
	Kinds []kindOutput `json:"kinds"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Saves               int            `json:"saves"`
	Compiles            int            `json:"compiles"`
	CompileFailures     int            `json:"compile_failures"`
	Launches            int            `json:"launches"`
	CompiledTasks       int            `json:"compiled_tasks"`
	CompiledTasksByKind map[string]int `json:"compiled_tasks_by_kind"`
	EventCount          int            `json:"event_count"`
	OldestEvent         string         `json:"oldest_event,omitempty"`
	NewestEvent         string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List the tasks of the current task list in execution order, with 1-based indexes.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Append a task to the end of the list. The kind must be one of list_kinds.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Remove the task at the given 1-based index.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "move_task",
		Description: "Swap the task at the given 1-based index with its neighbour above (up) or below (down).",
	}, s.handleMoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "clear_tasks",
		Description: "Remove every task from the list.",
	}, s.handleClearTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "compile_script",
		Description: "Compile the current tasks into a Windows batch script and return its text without saving.",
	}, s.handleCompileScript)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "save_task_list",
		Description: "Save the task list as text and regenerate the batch script beside it.",
	}, s.handleSaveTaskList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_kinds",
		Description: "List the supported task kinds and what their arguments mean.",
	}, s.handleListKinds)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: saves, compilations, failures, launches and compiled tasks by kind.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, _ listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, s.listOutput(), nil
}

func (s *Server) listOutput() listTasksOutput {
	tasks := s.taskLists.Store().GetAll()
	out := listTasksOutput{
		Path:  s.taskLists.Path(),
		Dirty: s.taskLists.Dirty(),
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(i, t)
	}
	return out
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	kind := models.Kind(input.Kind)
	if input.Kind == "" {
		return errorResult("kind is required"), messageOutput{}, nil
	}
	if !kind.IsKnown() {
		return errorResult(fmt.Sprintf("unknown task kind %q: call list_kinds for the supported kinds", input.Kind)), messageOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.taskLists.Store()
	store.Add(kind, input.Primary, input.Secondary)
	return nil, messageOutput{
		Message: fmt.Sprintf("added task %d: %s", store.Count(), kind),
		Count:   store.Count(),
	}, nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input indexInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.taskLists.Store()
	if !store.Delete(input.Index - 1) {
		return errorResult(fmt.Sprintf("no task at index %d (list has %d)", input.Index, store.Count())), messageOutput{}, nil
	}
	return nil, messageOutput{
		Message: fmt.Sprintf("deleted task %d", input.Index),
		Count:   store.Count(),
	}, nil
}

func (s *Server) handleMoveTask(_ context.Context, _ *gomcp.CallToolRequest, input moveTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	dir, ok := core.ParseDirection(input.Direction)
	if !ok {
		return errorResult(fmt.Sprintf("invalid direction %q: must be up or down", input.Direction)), messageOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.taskLists.Store()
	if !store.Move(input.Index-1, dir) {
		return errorResult(fmt.Sprintf("cannot move task %d %s", input.Index, input.Direction)), messageOutput{}, nil
	}
	return nil, messageOutput{
		Message: fmt.Sprintf("moved task %d %s", input.Index, input.Direction),
		Count:   store.Count(),
	}, nil
}

func (s *Server) handleClearTasks(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskLists.Store().Clear()
	return nil, messageOutput{Message: "cleared all tasks"}, nil
}

func (s *Server) handleCompileScript(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, compileOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	script, err := s.taskLists.Compile()
	if err != nil {
		return errorResult(fmt.Sprintf("compiling script: %s", err)), compileOutput{}, nil
	}
	return nil, compileOutput{Script: script}, nil
}

func (s *Server) handleSaveTaskList(_ context.Context, _ *gomcp.CallToolRequest, input saveInput) (*gomcp.CallToolResult, saveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res *core.SaveResult
		err error
	)
	if input.Path != "" {
		res, err = s.taskLists.SaveAs(input.Path)
	} else {
		res, err = s.taskLists.Save()
	}
	if err != nil {
		return errorResult(fmt.Sprintf("saving task list: %s", err)), saveOutput{}, nil
	}
	return nil, saveOutput{
		TaskListPath: res.TaskListPath,
		ScriptPath:   res.ScriptPath,
		Tasks:        res.Tasks,
	}, nil
}

func (s *Server) handleListKinds(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, listKindsOutput, error) {
	kinds := models.KnownKinds()
	out := listKindsOutput{Kinds: make([]kindOutput, len(kinds))}
	for i, k := range kinds {
		out.Kinds[i] = kindOutput{
			Kind:          string(k.Kind),
			Description:   k.Description,
			PrimaryHint:   k.PrimaryHint,
			SecondaryHint: k.SecondaryHint,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event logging may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := ParseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Saves:               metrics.Saves,
		Compiles:            metrics.Compiles,
		CompileFailures:     metrics.CompileFailures,
		Launches:            metrics.Launches,
		CompiledTasks:       metrics.CompiledTasks,
		CompiledTasksByKind: metrics.CompiledTasksByKind,
		EventCount:          metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(i int, t models.Task) taskOutput {
	return taskOutput{
		Index:     i + 1,
		Kind:      string(t.Kind),
		Primary:   t.Primary,
		Secondary: t.Secondary,
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		CompiledTasksByKind: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func ParseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
