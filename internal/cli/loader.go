package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sdbind/internal/ir"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeScopeParse    = "E003" // Scope file does not parse
	ErrCodeScopeFormat   = "E004" // Unsupported scope file extension
	ErrCodeBadAssignment = "E005" // Malformed --set key=value
	ErrCodeTemplate      = "E006" // Template unreadable
	ErrCodeRootNotFound  = "E007" // Root element missing
	ErrCodeJournal       = "E008" // Journal open/read failure
	ErrCodeNoFiles       = "E009" // Glob matched nothing
	ErrCodeWatch         = "E010" // Watcher failure

	// Binding errors
	ErrCodeSeedFailed       = "E101" // A directive update failed while seeding
	ErrCodeUnknownDirective = "E102" // Prefixed attribute names no registered directive
	ErrCodeUnknownFilter    = "E103" // Filter name not registered
)

// LoadError represents an error that occurred while loading a scope file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadScope reads an initial scope from a YAML, JSON or CUE file, chosen by
// extension. The top level must be an object. Values are normalized with
// ir.Normalize. An empty path yields an empty scope.
func LoadScope(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scope file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading scope file: %v", err)}
	}

	var scope map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		scope, err = decodeYAMLScope(data)
	case ".json":
		scope, err = decodeJSONScope(data)
	case ".cue":
		return decodeCUEScope(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeScopeFormat, Message: fmt.Sprintf("unsupported scope format %q (want .yaml, .yml, .json or .cue)", ext)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScopeParse, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return ir.NormalizeScope(scope), nil
}

func decodeYAMLScope(data []byte) (map[string]any, error) {
	var scope map[string]any
	if err := yaml.Unmarshal(data, &scope); err != nil {
		return nil, err
	}
	if scope == nil {
		scope = map[string]any{}
	}
	return scope, nil
}

func decodeJSONScope(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var scope map[string]any
	if err := dec.Decode(&scope); err != nil {
		return nil, err
	}
	if scope == nil {
		scope = map[string]any{}
	}
	return scope, nil
}

// decodeCUEScope evaluates a CUE file. The value must be concrete.
func decodeCUEScope(path string, data []byte) (map[string]any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(err)
	}

	var scope map[string]any
	if err := v.Decode(&scope); err != nil {
		return nil, cueLoadError(err)
	}
	if scope == nil {
		scope = map[string]any{}
	}
	return ir.NormalizeScope(scope), nil
}

// cueLoadError converts a CUE error to a LoadError carrying the first
// error position.
func cueLoadError(err error) *LoadError {
	loadErr := &LoadError{Code: ErrCodeScopeParse, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		loadErr.Message = errs[0].Error()
		loadErr.Pos = errs[0].Position()
		if ps := errs[0].InputPositions(); !loadErr.Pos.IsValid() && len(ps) > 0 {
			loadErr.Pos = ps[0]
		}
	}
	return loadErr
}

// ParseAssignments parses --set key=value flags. Values are read as YAML
// scalars, so "3" is a number, "true" a bool and "[1, 2]" a list; an empty
// value is the empty string. Later assignments win.
func ParseAssignments(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &LoadError{Code: ErrCodeBadAssignment, Message: fmt.Sprintf("invalid assignment %q: want key=value", s)}
		}
		if raw == "" {
			out[key] = ""
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, &LoadError{Code: ErrCodeBadAssignment, Message: fmt.Sprintf("invalid value for %s: %v", key, err)}
		}
		out[key] = ir.Normalize(v)
	}
	return out, nil
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
