package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/sdbind/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with minimal required fields.
func createTestRun(id string) ir.RunRecord {
	return ir.RunRecord{
		ID:            id,
		Root:          "div#app",
		Prefix:        "sd",
		Keys:          []string{"name"},
		EngineVersion: ir.EngineVersion,
	}
}

// createTestUpdate creates an update record with a content-addressed ID.
func createTestUpdate(runID string, seq int64, key string, raw, value any) ir.UpdateRecord {
	return ir.UpdateRecord{
		ID:        ir.MustUpdateID(runID, seq, key, "text", ""),
		RunID:     runID,
		Seq:       seq,
		Key:       key,
		Directive: "text",
		Element:   "div#app/span[1]",
		Raw:       raw,
		Value:     value,
	}
}
