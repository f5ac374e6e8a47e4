package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

// fixedClock returns successive timestamps one second apart.
func fixedClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestRecord_AssignsIDAndTimestamp(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, Event{Op: OpAdd, Title: "GitHub"}))

	events, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.At.IsZero())
	assert.Equal(t, OpAdd, e.Op)
	assert.Equal(t, "GitHub", e.Title)

	got, err := j.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, e.At.Equal(got.At))
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	j := openTestJournal(t)
	j.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, op := range []Op{OpSetup, OpUnlock, OpAdd, OpRemove} {
		require.NoError(t, j.Record(ctx, Event{Op: op}))
	}

	events, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []Op{OpRemove, OpAdd, OpUnlock}, []Op{events[0].Op, events[1].Op, events[2].Op})

	none, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGet_NotFound(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPurge_RemovesOlderEvents(t *testing.T) {
	j := openTestJournal(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = fixedClock(start)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(ctx, Event{Op: OpUnlock}))
	}

	// events are at start+1s .. start+5s
	n, err := j.Purge(ctx, start.Add(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 4)
	assert.Equal(t, OpPurge, left[0].Op)

	n, err = j.Purge(ctx, start)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	left, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, left, 4, "an empty purge is not journaled")
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	j1, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, j1.Record(ctx, Event{Op: OpSetup}))
	require.NoError(t, j1.Close())

	j2, err := Open(ctx, path)
	require.NoError(t, err)
	defer j2.Close()

	events, err := j2.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestRecord_ClosedDBErrorWrapped(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.Close())

	err := j.Record(context.Background(), Event{Op: OpAdd})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to record event add")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	require.NoError(t, r.Record(context.Background(), Event{Op: OpAdd}))
}
