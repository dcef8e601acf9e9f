package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/sdbind/internal/directives"
	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/filters"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Prefix string
}

// DirectiveInfo describes one directive attribute found in a template.
type DirectiveInfo struct {
	Element   string   `json:"element"`
	Attr      string   `json:"attr"`
	Directive string   `json:"directive"`
	Argument  string   `json:"argument,omitempty"`
	Key       string   `json:"key"`
	Filters   []string `json:"filters,omitempty"`
}

// ValidationIssue is one problem found in a template.
type ValidationIssue struct {
	Code    string `json:"code"`
	Element string `json:"element"`
	Attr    string `json:"attr"`
	Message string `json:"message"`
}

// FileReport holds the validation outcome for one template.
type FileReport struct {
	File       string            `json:"file"`
	Directives []DirectiveInfo   `json:"directives"`
	Issues     []ValidationIssue `json:"issues,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Files  []FileReport `json:"files"`
	Issues int          `json:"issues"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <glob>",
		Short: "Check templates for unknown directives and filters",
		Long: `Scan HTML templates matched by a doublestar glob and report every
directive attribute found, prefixed attributes naming no known
directive, and filter names that are not registered.

Filters of directives that interpret their own filter list (sd-on
selectors) are not checked.

Exit codes:
  0 - No issues
  1 - Unknown directives or filters found
  2 - Command error (bad pattern, no files, unreadable template)

Examples:
  sdbind validate 'templates/**/*.html'
  sdbind validate 'site/*.html' --prefix x --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", engine.DefaultPrefix, "directive attribute prefix")

	return cmd
}

func runValidate(opts *ValidateOptions, pattern string, stdout, stderr io.Writer) error {
	formatter := newFormatter(opts.RootOptions, stdout, stderr)

	if !doublestar.ValidatePathPattern(pattern) {
		return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid glob pattern %q", pattern))
	}
	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("glob %q: %v", pattern, err))
	}
	if len(files) == 0 {
		return outputValidateError(formatter, ErrCodeNoFiles, fmt.Sprintf("no templates match %q", pattern))
	}
	formatter.VerboseLog("Found %d template(s) matching %s", len(files), pattern)

	reg := directives.Default()
	filt := filters.Default()

	result := ValidationResult{Valid: true, Files: make([]FileReport, 0, len(files))}
	for _, file := range files {
		report, err := ValidateTemplate(file, opts.Prefix, reg, filt)
		if err != nil {
			return outputValidateError(formatter, ErrCodeTemplate, fmt.Sprintf("%s: %v", file, err))
		}
		result.Files = append(result.Files, *report)
		result.Issues += len(report.Issues)
	}
	result.Valid = result.Issues == 0

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    firstIssueCode(result),
				Message: fmt.Sprintf("validation failed with %d issue(s)", result.Issues),
			}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		writeValidateText(formatter, result)
	}

	if !result.Valid {
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", result.Issues))
	}
	return nil
}

// ValidateTemplate scans every element of the template at path.
func ValidateTemplate(path, prefix string, reg *engine.Registry, filt *engine.Filters) (*FileReport, error) {
	doc, err := parseTemplate(path)
	if err != nil {
		return nil, err
	}

	report := &FileReport{File: path, Directives: []DirectiveInfo{}}
	for _, el := range doc.Elements() {
		for _, attr := range el.Attributes() {
			name, ok := engine.DirectiveName(attr.Name, prefix)
			if !ok {
				continue
			}
			d, known := engine.ParseDirective(attr, prefix, reg)
			if !known {
				report.Issues = append(report.Issues, ValidationIssue{
					Code:    ErrCodeUnknownDirective,
					Element: el.Path(),
					Attr:    attr.Name,
					Message: fmt.Sprintf("unknown directive %q", name),
				})
				continue
			}

			report.Directives = append(report.Directives, DirectiveInfo{
				Element:   el.Path(),
				Attr:      attr.Name,
				Directive: d.Name,
				Argument:  d.Argument,
				Key:       d.Key,
				Filters:   d.Filters,
			})

			if reg.HasCustomFilter(d.Name) {
				continue
			}
			for _, f := range d.Filters {
				if !filt.Has(f) {
					report.Issues = append(report.Issues, ValidationIssue{
						Code:    ErrCodeUnknownFilter,
						Element: el.Path(),
						Attr:    attr.Name,
						Message: fmt.Sprintf("unknown filter %q", f),
					})
				}
			}
		}
	}
	return report, nil
}

func writeValidateText(f *OutputFormatter, result ValidationResult) {
	for _, file := range result.Files {
		if len(file.Issues) == 0 {
			fmt.Fprintf(f.Writer, "✓ %s (%d directives)\n", file.File, len(file.Directives))
		} else {
			fmt.Fprintf(f.Writer, "✗ %s\n", file.File)
			for _, issue := range file.Issues {
				fmt.Fprintf(f.Writer, "  %s %s %s: %s\n", issue.Code, issue.Element, issue.Attr, issue.Message)
			}
		}
		if f.Verbose {
			for _, d := range file.Directives {
				line := fmt.Sprintf("    %s %s -> %s", d.Element, d.Attr, d.Key)
				if len(d.Filters) > 0 {
					line += " | " + strings.Join(d.Filters, " | ")
				}
				fmt.Fprintln(f.Writer, line)
			}
		}
	}

	fmt.Fprintln(f.Writer)
	if result.Valid {
		fmt.Fprintln(f.Writer, "✓ All templates valid")
		return
	}
	fmt.Fprintf(f.Writer, "✗ Validation failed with %d issue(s)\n", result.Issues)
}

func firstIssueCode(result ValidationResult) string {
	for _, file := range result.Files {
		if len(file.Issues) > 0 {
			return file.Issues[0].Code
		}
	}
	return ErrCodeGeneric
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
