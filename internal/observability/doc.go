// Package observability provides event logging and metrics for AutoSpark.
// Events are persisted as JSON Lines (JSONL) and metrics are derived
// on demand from the event log.
package observability
