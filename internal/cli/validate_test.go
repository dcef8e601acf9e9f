package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sdbind/internal/directives"
	"github.com/roach88/sdbind/internal/filters"
)

func TestValidateValidTemplates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", `<div id="app"><p sd-text="name | capitalize"></p></div>`)
	writeFile(t, dir, "nested/list.html", `<ul id="app" sd-on-click="pick | li"><li sd-class-active="on"></li></ul>`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "**", "*.html")})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "(1 directives)")
	assert.Contains(t, output, "(2 directives)")
	assert.Contains(t, output, "✓ All templates valid")
}

func TestValidateValidTemplatesJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", `<div id="app"><p sd-text="name"></p><p sd-show="visible"></p></div>`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "*.html")})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 1)
	require.Len(t, resp.Data.Files[0].Directives, 2)
	assert.Equal(t, "text", resp.Data.Files[0].Directives[0].Directive)
	assert.Equal(t, "name", resp.Data.Files[0].Directives[0].Key)
	assert.Equal(t, "div#app/p[1]", resp.Data.Files[0].Directives[0].Element)
}

func TestValidateUnknownDirectiveAndFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.html", `<div id="app"><p sd-bogus="x"></p><p sd-text="name | shout"></p></div>`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "*.html")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, ErrCodeUnknownDirective)
	assert.Contains(t, output, "bogus")
	assert.Contains(t, output, ErrCodeUnknownFilter)
	assert.Contains(t, output, `"shout"`)
	assert.Contains(t, output, "Validation failed with 2 issue(s)")
}

func TestValidateUnknownFilterJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.html", `<div id="app"><p sd-text="name | shout"></p></div>`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "*.html")})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownFilter, resp.Error.Code)
}

func TestValidateNoMatches(t *testing.T) {
	dir := t.TempDir()

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "*.html")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateBadPattern(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"templates/[.html"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid glob pattern")
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", `<div id="app"><p sd-text="name | uppercase"></p></div>`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(dir, "*.html")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "div#app/p[1] sd-text -> name | uppercase")
}

func TestValidateTemplate_CustomPrefix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.html", `<div id="app"><p x-text="name" sd-text="ignored"></p></div>`)

	report, err := ValidateTemplate(path, "x", directives.Default(), filters.Default())
	require.NoError(t, err)
	require.Len(t, report.Directives, 1)
	assert.Equal(t, "x-text", report.Directives[0].Attr)
	assert.Empty(t, report.Issues)
}

func TestValidateTemplate_OnSelectorNotChecked(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "on.html", `<ul id="app" sd-on-click="pick | li.item"></ul>`)

	report, err := ValidateTemplate(path, "sd", directives.Default(), filters.Default())
	require.NoError(t, err)
	require.Len(t, report.Directives, 1)
	assert.Equal(t, "on", report.Directives[0].Directive)
	assert.Equal(t, "click", report.Directives[0].Argument)
	assert.Empty(t, report.Issues)
}

func TestValidateTemplate_MissingFile(t *testing.T) {
	_, err := ValidateTemplate(filepath.Join(t.TempDir(), "missing.html"), "sd", directives.Default(), filters.Default())
	require.Error(t, err)
}
