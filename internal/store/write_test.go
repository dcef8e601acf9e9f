package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	require.NoError(t, s.WriteRun(ctx, run))
	require.NoError(t, s.WriteRun(ctx, run))

	runs, err := s.ReadRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}

func TestWriteUpdate_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	upd := createTestUpdate("run-1", 1, "name", "ada", "Ada")
	require.NoError(t, s.WriteUpdate(ctx, upd))
	require.NoError(t, s.WriteUpdate(ctx, upd))

	n, err := s.CountUpdates(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteUpdate_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteUpdate(context.Background(), createTestUpdate("missing", 1, "name", "a", "a"))
	assert.Error(t, err, "foreign key on run_id is enforced")
}

func TestWriteUpdate_FunctionsAndOddValues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	type point struct{ X, Y int }
	require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-1", 1, "h", func() {}, nil)))
	require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-1", 2, "p", point{1, 2}, nil)))

	ups, err := s.ReadUpdates(ctx, UpdateFilter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, ups, 2)
	assert.Equal(t, "[function]", ups[0].Raw)
	assert.Nil(t, ups[0].Value)
	assert.Equal(t, "{1 2}", ups[1].Raw)
}
