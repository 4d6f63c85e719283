package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/cisspprep/internal/storage"
	"github.com/vytor/cisspprep/internal/tracker"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTracker(t *testing.T) (tracker.Tracker, *storage.MemoryStore, *fakeClock) {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return tracker.New(store, tracker.WithClock(clock.Now)), store, clock
}

func TestSeen_EmptyWhenNoRecord(t *testing.T) {
	tr, _, _ := newTracker(t)
	assert.Empty(t, tr.Seen(context.Background()))
}

func TestAdd_UnionsIDs(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	tr.Add(ctx, []int{1, 2, 3})
	tr.Add(ctx, []int{3, 4})

	seen := tr.Seen(ctx)
	assert.Len(t, seen, 4)
	for _, id := range []int{1, 2, 3, 4} {
		assert.True(t, seen[id], "id %d should be seen", id)
	}
}

func TestSeen_ExpiredRecordIsClearedAndEmpty(t *testing.T) {
	tr, store, clock := newTracker(t)
	ctx := context.Background()

	tr.Add(ctx, []int{1, 2, 3})
	clock.Advance(7*24*time.Hour + time.Minute)

	assert.Empty(t, tr.Seen(ctx))

	// Lazy expiry removes the underlying storage entries.
	_, ok, err := store.Get(ctx, storage.KeySeen)
	require.NoError(t, err)
	assert.False(t, ok, "seen record should be deleted after expiry")
	_, ok, err = store.Get(ctx, storage.KeySeenExpiry)
	require.NoError(t, err)
	assert.False(t, ok, "expiry record should be deleted after expiry")
}

func TestAdd_ExpiryAnchoredToFirstWrite(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	tr.Add(ctx, []int{1})
	clock.Advance(6 * 24 * time.Hour)
	// A later addition must not push the window's expiry out.
	tr.Add(ctx, []int{2})
	clock.Advance(24*time.Hour + time.Minute)

	assert.Empty(t, tr.Seen(ctx), "window should expire 7 days after first write")
}

func TestSeen_UnexpiredWindowSurvives(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	tr.Add(ctx, []int{1, 2})
	clock.Advance(6 * 24 * time.Hour)

	assert.Len(t, tr.Seen(ctx), 2)
}

func TestClear_RemovesEverything(t *testing.T) {
	tr, store, _ := newTracker(t)
	ctx := context.Background()

	tr.Add(ctx, []int{1, 2})
	tr.Clear(ctx)

	assert.Empty(t, tr.Seen(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestShouldReset_CoverageThreshold(t *testing.T) {
	tests := []struct {
		name  string
		seen  int
		total int
		want  bool
	}{
		{name: "nothing seen", seen: 0, total: 100, want: false},
		{name: "just below threshold", seen: 79, total: 100, want: false},
		{name: "at threshold", seen: 80, total: 100, want: true},
		{name: "above threshold", seen: 95, total: 100, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, _ := newTracker(t)
			ctx := context.Background()

			ids := make([]int, tt.seen)
			for i := range ids {
				ids[i] = i + 1
			}
			tr.Add(ctx, ids)

			assert.Equal(t, tt.want, tr.ShouldReset(ctx, tt.total))
		})
	}
}

func TestStats(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	assert.Equal(t, 0, tr.Stats(ctx, 100).SeenCount)

	tr.Add(ctx, []int{1, 2, 3, 4, 5})

	stats := tr.Stats(ctx, 10)
	assert.Equal(t, 5, stats.SeenCount)
	assert.Equal(t, 50, stats.PercentageSeen)
	require.NotNil(t, stats.LastUpdated)
	assert.Equal(t, clock.Now().UnixMilli(), *stats.LastUpdated)
}

func TestSeen_CorruptRecordTreatedAsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeySeen, "{not json"))

	tr := tracker.New(store)
	assert.Empty(t, tr.Seen(ctx))
}
