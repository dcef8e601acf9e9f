package cli

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sdbind/internal/testutil"
)

func TestScopeWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scope.yaml", "name: ada\n")
	writeFile(t, dir, "other.yaml", "ignored: true\n")

	got := make(chan map[string]any, 4)
	w, err := NewScopeWatcher(path, 10*time.Millisecond, func(scope map[string]any) error {
		got <- scope
		return nil
	}, testutil.DiscardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("name: grace\n"), 0644))

	select {
	case scope := <-got:
		assert.Equal(t, map[string]any{"name": "grace"}, scope)
	case <-time.After(5 * time.Second):
		t.Fatal("scope change not delivered")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestScopeWatcher_SkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scope.json", `{"name": "ada"}`)

	got := make(chan map[string]any, 4)
	w, err := NewScopeWatcher(path, 10*time.Millisecond, func(scope map[string]any) error {
		got <- scope
		return nil
	}, testutil.DiscardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte(`{"name":`), 0644))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "grace"}`), 0644))

	select {
	case scope := <-got:
		assert.Equal(t, map[string]any{"name": "grace"}, scope)
	case <-time.After(5 * time.Second):
		t.Fatal("scope change not delivered")
	}
}

func TestNewScopeWatcher_MissingDir(t *testing.T) {
	_, err := NewScopeWatcher("/nonexistent/dir/scope.yaml", DefaultDebounce, func(map[string]any) error { return nil }, nil)
	require.Error(t, err)
}
