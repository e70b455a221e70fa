package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := OpenQueue(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func TestQueue_EnqueueListRemove(t *testing.T) {
	ctx := context.Background()
	q := openTestQueue(t)

	fixed := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	id, err := q.Enqueue(ctx, shift.ActionClockIn, "2025-03-02T08:00:00Z")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	actions, err := q.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, id, actions[0].ID)
	assert.Equal(t, shift.ActionClockIn, actions[0].Type)
	assert.Equal(t, "2025-03-02T08:00:00Z", actions[0].ClientTimestamp)
	assert.Equal(t, fixed.UnixMilli(), actions[0].QueuedAt)

	require.NoError(t, q.Remove(ctx, id))

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueue_RemoveUnknownIsNoop(t *testing.T) {
	q := openTestQueue(t)
	assert.NoError(t, q.Remove(context.Background(), "does-not-exist"))
}

func TestQueue_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	q := openTestQueue(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := q.Enqueue(ctx, shift.ActionClockOut, "2025-03-02T18:00:00Z")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestQueue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "queue.db")

	q, err := OpenQueue(path)
	require.NoError(t, err)
	id, err := q.Enqueue(ctx, shift.ActionClockIn, "2025-03-02T08:00:00Z")
	require.NoError(t, err)
	require.NoError(t, q.Close())

	reopened, err := OpenQueue(path)
	require.NoError(t, err)
	defer reopened.Close()

	actions, err := reopened.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, id, actions[0].ID)
}
