package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/sdbind/internal/directives"
	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/filters"
	"github.com/roach88/sdbind/internal/store"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Root     string
	Scope    string
	Sets     []string
	Database string
	Prefix   string
	Watch    bool
}

// RenderResult is the render command payload.
type RenderResult struct {
	RunID  string   `json:"run_id"`
	Root   string   `json:"root"`
	Keys   []string `json:"keys"`
	HTML   string   `json:"html"`
	Errors []string `json:"errors,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <template.html>",
		Short: "Bind a template and print the rendered root",
		Long: `Bind a template to an initial scope and print the root element.

The scope file may be YAML, JSON or CUE. --set assignments override
file values and are read as YAML scalars. With --db every directive
update is journaled to a SQLite database; with --watch the scope file
is re-read on change and every key reassigned.

Exit codes:
  0 - Rendered without errors
  1 - A directive update failed while seeding
  2 - Command error (unreadable template, missing root, bad scope, etc.)

Examples:
  sdbind render index.html --scope data.yaml
  sdbind render index.html --root main --set name=ada --set count=3
  sdbind render index.html --scope data.cue --db journal.db
  sdbind render index.html --scope data.json --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runRender(ctx, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "app", "id of the root element")
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "initial scope file (.yaml, .yml, .json or .cue)")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "scope assignment key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal updates to this SQLite database")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", engine.DefaultPrefix, "directive attribute prefix")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-render when the scope file changes")

	return cmd
}

func runRender(ctx context.Context, opts *RenderOptions, templatePath string, stdout, stderr io.Writer) error {
	formatter := newFormatter(opts.RootOptions, stdout, stderr)
	logger := formatter.Logger()

	if opts.Watch && opts.Scope == "" {
		return renderError(formatter, ErrCodeWatch, "--watch requires --scope", nil)
	}

	doc, err := parseTemplate(templatePath)
	if err != nil {
		return renderError(formatter, ErrCodeTemplate, "failed to read template", err)
	}

	scope, err := LoadScope(opts.Scope)
	if err != nil {
		return renderError(formatter, loadErrorCode(err), "failed to load scope", err)
	}
	sets, err := ParseAssignments(opts.Sets)
	if err != nil {
		return renderError(formatter, loadErrorCode(err), "failed to parse --set", err)
	}
	for k, v := range sets {
		scope[k] = v
	}

	var journal *store.Journal
	if opts.Database != "" {
		st, err := store.Open(opts.Database, store.WithStoreLogger(logger))
		if err != nil {
			return renderError(formatter, ErrCodeJournal, "failed to open journal", err)
		}
		defer st.Close()
		journal = store.NewJournal(ctx, st, store.WithJournalLogger(logger))
	}

	eopts := []engine.Option{
		engine.WithDirectives(directives.Default()),
		engine.WithFilters(filters.Default()),
		engine.WithPrefix(opts.Prefix),
		engine.WithLogger(logger),
	}
	if journal != nil {
		eopts = append(eopts, engine.WithObserver(journal))
	}

	eng, err := engine.New(doc, engine.Options{ID: opts.Root, Scope: scope}, eopts...)
	if errors.Is(err, engine.ErrRootNotFound) {
		return renderError(formatter, ErrCodeRootNotFound, "failed to bind", err)
	}
	if eng == nil {
		return renderError(formatter, ErrCodeGeneric, "failed to bind", err)
	}

	result := RenderResult{
		RunID: eng.RunID(),
		Root:  opts.Root,
		Keys:  eng.Scope().Keys(),
	}
	for _, ue := range engine.UpdateErrors(err) {
		result.Errors = append(result.Errors, ue.Error())
	}

	if err := writeRender(formatter, eng, &result); err != nil {
		return err
	}
	if journal != nil {
		if jerr := journal.Err(); jerr != nil {
			return renderError(formatter, ErrCodeJournal, "failed to journal updates", jerr)
		}
		formatter.VerboseLog("journaled %d records for run %s", journal.Writes(), eng.RunID())
	}

	if opts.Watch {
		apply := func(next map[string]any) error {
			var errs []error
			for _, key := range sortedKeys(next) {
				if err := eng.Scope().Set(key, next[key]); err != nil {
					errs = append(errs, err)
				}
			}
			res := RenderResult{RunID: eng.RunID(), Root: opts.Root, Keys: eng.Scope().Keys()}
			for _, ue := range engine.UpdateErrors(errors.Join(errs...)) {
				res.Errors = append(res.Errors, ue.Error())
			}
			return writeRender(formatter, eng, &res)
		}
		w, err := NewScopeWatcher(opts.Scope, DefaultDebounce, apply, logger)
		if err != nil {
			return renderError(formatter, ErrCodeWatch, "failed to watch scope", err)
		}
		formatter.VerboseLog("watching %s", opts.Scope)
		if err := w.Run(ctx); err != nil {
			return renderError(formatter, ErrCodeWatch, "watch failed", err)
		}
		eng.Destroy()
		return nil
	}

	if len(result.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d directive update(s) failed", len(result.Errors)))
	}
	return nil
}

// parseTemplate reads and parses an HTML template file.
func parseTemplate(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

// writeRender fills in the root HTML and prints the result.
func writeRender(f *OutputFormatter, eng *engine.Engine, result *RenderResult) error {
	html, err := eng.El().OuterHTML()
	if err != nil {
		return renderError(f, ErrCodeGeneric, "failed to render root", err)
	}
	result.HTML = html

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if len(result.Errors) > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeSeedFailed,
				Message: fmt.Sprintf("%d directive update(s) failed", len(result.Errors)),
				Details: result.Errors,
			}
		}
		return f.JSON(resp)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(f.GetErrWriter(), "warning: %s\n", e)
	}
	fmt.Fprintln(f.Writer, result.HTML)
	return nil
}

// renderError reports a command error and returns the matching ExitError.
func renderError(f *OutputFormatter, code, message string, err error) error {
	full := message
	if err != nil {
		full = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, full, nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, message, err)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
