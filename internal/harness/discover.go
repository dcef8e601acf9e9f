package harness

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ScenarioPattern matches scenario files below a directory.
const ScenarioPattern = "**/*.{yaml,yml}"

// DiscoverScenarios returns the scenario files below dir, sorted. When
// filter is non-empty only files whose scenario-relative path (without
// extension) matches the doublestar pattern are kept, so "text/*" selects
// every scenario under text/.
func DiscoverScenarios(dir, filter string) ([]string, error) {
	if filter != "" && !doublestar.ValidatePattern(filter) {
		return nil, fmt.Errorf("invalid filter pattern %q", filter)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), ScenarioPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover scenarios in %s: %w", dir, err)
	}

	var paths []string
	for _, m := range matches {
		if filter != "" {
			name := strings.TrimSuffix(m, path.Ext(m))
			if ok, _ := doublestar.Match(filter, name); !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}
