package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRuns_EmptyJournal(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ReadRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	_, err = s.LatestRun(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.ReadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReadRuns_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-b", "run-a", "run-c"} {
		require.NoError(t, s.WriteRun(ctx, createTestRun(id)))
	}

	runs, err := s.ReadRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-c", runs[2].ID)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-c", latest.ID)

	one, err := s.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, one.Keys)
}

func TestReadUpdates_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-1", seq, "name", seq, seq)))
	}

	ups, err := s.ReadUpdates(ctx, UpdateFilter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, ups, 3)
	for i, u := range ups {
		assert.Equal(t, int64(i+1), u.Seq)
		assert.Equal(t, int64(i+1), u.Raw)
	}
}

func TestReadUpdates_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-2")))

	require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-1", 1, "name", "a", "a")))
	require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-1", 2, "total", 5, 5)))
	require.NoError(t, s.WriteUpdate(ctx, createTestUpdate("run-2", 1, "name", "b", "b")))

	all, err := s.ReadUpdates(ctx, UpdateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byKey, err := s.ReadUpdates(ctx, UpdateFilter{Key: "name"})
	require.NoError(t, err)
	assert.Len(t, byKey, 2)

	both, err := s.ReadUpdates(ctx, UpdateFilter{RunID: "run-1", Key: "total"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, int64(5), both[0].Value)

	none, err := s.ReadUpdates(ctx, UpdateFilter{RunID: "run-3"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
