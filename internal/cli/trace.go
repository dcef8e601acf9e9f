package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/roach88/sdbind/internal/ir"
	"github.com/roach88/sdbind/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	Key      string // optional - filter to one scope key
	Pick     string // optional - gjson path into each update's value
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      ir.RunRecord      `json:"run"`
	Timeline []ir.UpdateRecord `json:"timeline"`
	Stats    TraceStats        `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Updates int            `json:"updates"`
	Failed  int            `json:"failed"`
	PerKey  map[string]int `json:"per_key"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List journaled directive updates",
		Long: `List the directive updates journaled for a run.

Shows every update in sequence order: the key assigned, the directive
and element it drove, the raw and filtered values, and any error.

Without --run the most recent run in the journal is shown. --pick takes a
gjson path into each update's filtered value; updates whose value has
nothing at that path are dropped and the rest show only the picked part.

Examples:
  sdbind trace --db journal.db
  sdbind trace --db journal.db --run 0192f0c4-... --key name
  sdbind trace --db journal.db --key user --pick 'roles.#'
  sdbind trace --db journal.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (default: latest run)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "filter to one scope key")
	cmd.Flags().StringVar(&opts.Pick, "pick", "", "gjson path selecting part of each value")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, stdout, stderr io.Writer) error {
	formatter := newFormatter(opts.RootOptions, stdout, stderr)

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	st, err := store.Open(opts.Database, store.WithReadOnly())
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	var run ir.RunRecord
	if opts.RunID == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, opts.RunID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		msg := "journal has no runs"
		if opts.RunID != "" {
			msg = fmt.Sprintf("run not found: %s", opts.RunID)
		}
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	formatter.VerboseLog("Tracing run %s", run.ID)

	updates, err := st.ReadUpdates(ctx, store.UpdateFilter{RunID: run.ID, Key: opts.Key})
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read updates", err)
	}

	if opts.Pick != "" {
		updates, err = pickValues(updates, opts.Pick)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to pick values", err)
		}
	}

	result := TraceResult{
		Run:      run,
		Timeline: updates,
		Stats:    buildTraceStats(updates),
	}

	if opts.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	return outputTraceText(stdout, result, opts.Verbose)
}

func buildTraceStats(updates []ir.UpdateRecord) TraceStats {
	stats := TraceStats{Updates: len(updates), PerKey: make(map[string]int)}
	for _, u := range updates {
		stats.PerKey[u.Key]++
		if u.Error != "" {
			stats.Failed++
		}
	}
	return stats
}

// pickValues replaces each update's Value with the part selected by the
// gjson path, dropping updates where the path matches nothing.
func pickValues(updates []ir.UpdateRecord, path string) ([]ir.UpdateRecord, error) {
	out := make([]ir.UpdateRecord, 0, len(updates))
	for _, u := range updates {
		data, err := ir.MarshalCanonical(u.Value)
		if err != nil {
			return nil, fmt.Errorf("update %d: %w", u.Seq, err)
		}
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			continue
		}
		u.Value = ir.Normalize(res.Value())
		out = append(out, u)
	}
	return out, nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Root: %s  Prefix: %s\n", result.Run.Root, result.Run.Prefix)
	fmt.Fprintf(w, "Keys: %s\n", strings.Join(result.Run.Keys, ", "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no updates)")
	}
	for _, u := range result.Timeline {
		formatTimelineEvent(w, u, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Updates: %d\n", result.Stats.Updates)
	fmt.Fprintf(w, "  Failed:  %d\n", result.Stats.Failed)
	keys := make([]string, 0, len(result.Stats.PerKey))
	for k := range result.Stats.PerKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, result.Stats.PerKey[k])
	}

	return nil
}

// formatTimelineEvent formats a single update for text output.
func formatTimelineEvent(w io.Writer, u ir.UpdateRecord, verbose bool) {
	name := u.Directive
	if u.Argument != "" {
		name += "-" + u.Argument
	}
	fmt.Fprintf(w, "  [%d] %s %s <- %s = %s\n", u.Seq, name, u.Element, u.Key, formatValue(u.Value))
	if verbose {
		fmt.Fprintf(w, "       Raw: %s\n", formatValue(u.Raw))
		fmt.Fprintf(w, "       ID: %s\n", truncateID(u.ID))
	}
	if u.Error != "" {
		fmt.Fprintf(w, "       Error: %s\n", u.Error)
	}
}

// formatValue renders a value as canonical JSON for display.
func formatValue(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
