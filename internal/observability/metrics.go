package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	Opens               int            `json:"opens"`
	Saves               int            `json:"saves"`
	Compiles            int            `json:"compiles"`
	CompileFailures     int            `json:"compile_failures"`
	Launches            int            `json:"launches"`
	CompiledTasks       int            `json:"compiled_tasks"`
	CompiledTasksByKind map[string]int `json:"compiled_tasks_by_kind"`
	EventCount          int            `json:"event_count"`
	OldestEvent         *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent         *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		CompiledTasksByKind: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "tasklist.opened":
			m.Opens++
		case "tasklist.saved":
			m.Saves++
		case "script.compiled":
			m.Compiles++
			m.CompiledTasks += intValue(event.Data["tasks"])
			if kinds, ok := event.Data["kinds"].(map[string]any); ok {
				for kind, n := range kinds {
					m.CompiledTasksByKind[kind] += intValue(n)
				}
			}
		case "script.compile_failed":
			m.CompileFailures++
		case "script.launched":
			m.Launches++
		}
	}

	return m, nil
}

// intValue converts a decoded JSON number to int. Anything else counts as 0.
func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
