package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"metrics"},
	Short:   "Display usage statistics from the event log",
	Long: `Display statistics derived from the event log: task lists opened and
saved, scripts compiled and launched, compile failures, and how many tasks of
each kind went into compiled scripts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (the event log may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			_, _ = fmt.Fprintln(out, string(data))
			return nil
		}

		_, _ = fmt.Fprintf(out, "Statistics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Task lists opened:", metrics.Opens)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Task lists saved:", metrics.Saves)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Scripts compiled:", metrics.Compiles)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Compile failures:", metrics.CompileFailures)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Scripts launched:", metrics.Launches)
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", "Tasks compiled:", metrics.CompiledTasks)

		if len(metrics.CompiledTasksByKind) > 0 {
			_, _ = fmt.Fprintln(out, "\n  Compiled tasks by kind:")
			kinds := make([]string, 0, len(metrics.CompiledTasksByKind))
			for kind := range metrics.CompiledTasksByKind {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				_, _ = fmt.Fprintf(out, "    %-24s %d\n", kind+":", metrics.CompiledTasksByKind[kind])
			}
		}

		if metrics.OldestEvent != nil {
			_, _ = fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			_, _ = fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output statistics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
