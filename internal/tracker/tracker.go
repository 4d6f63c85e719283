// Package tracker maintains the rolling window of questions already shown to
// the user, so the selector can avoid repeats across sessions.
package tracker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/storage"
)

// ExpiryDuration is how long a rotation window lives before a read wipes it.
const ExpiryDuration = 7 * 24 * time.Hour

// ResetCoverage is the fraction of the corpus that, once seen, signals an
// early reset independent of time expiry.
const ResetCoverage = 0.8

// Tracker records seen question ids with two independent reset triggers:
// time expiry anchored to the first write of the window, and corpus coverage.
// Storage faults never propagate; reads degrade to an empty set and writes
// are dropped.
type Tracker interface {
	Seen(ctx context.Context) map[int]bool
	Add(ctx context.Context, ids []int)
	Clear(ctx context.Context)
	ShouldReset(ctx context.Context, totalAvailable int) bool
	Stats(ctx context.Context, totalAvailable int) models.SeenStats
}

type tracker struct {
	store storage.Store
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*tracker)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *tracker) { t.now = now }
}

// New creates a Tracker persisting through the given store.
func New(store storage.Store, opts ...Option) Tracker {
	t := &tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seen returns the ids shown within the current window. An expired record is
// deleted and reported as empty.
func (t *tracker) Seen(ctx context.Context) map[int]bool {
	log := logger.FromContext(ctx).WithPrefix("tracker")

	if t.expired(ctx) {
		log.Info("seen-question window expired, clearing")
		t.Clear(ctx)
		return map[int]bool{}
	}

	record, ok := t.read(ctx)
	if !ok {
		return map[int]bool{}
	}

	seen := make(map[int]bool, len(record.QuestionIDs))
	for _, id := range record.QuestionIDs {
		seen[id] = true
	}
	return seen
}

// Add unions ids into the persisted window and refreshes lastUpdated. The
// expiry timestamp is written on the first addition only, anchoring the
// window to its first use.
func (t *tracker) Add(ctx context.Context, ids []int) {
	log := logger.FromContext(ctx).WithPrefix("tracker")

	seen := t.Seen(ctx)
	for _, id := range ids {
		seen[id] = true
	}

	record := models.SeenQuestions{
		QuestionIDs:    make([]int, 0, len(seen)),
		LastUpdated:    t.now().UnixMilli(),
		TotalQuestions: len(seen),
	}
	for id := range seen {
		record.QuestionIDs = append(record.QuestionIDs, id)
	}

	data, err := json.Marshal(record)
	if err != nil {
		log.Warn("failed to encode seen questions: %v", err)
		return
	}
	if err := t.store.Set(ctx, storage.KeySeen, string(data)); err != nil {
		log.Warn("failed to save seen questions: %v", err)
		return
	}

	if _, ok, _ := t.store.Get(ctx, storage.KeySeenExpiry); !ok {
		expiry := t.now().Add(ExpiryDuration).UnixMilli()
		if err := t.store.Set(ctx, storage.KeySeenExpiry, strconv.FormatInt(expiry, 10)); err != nil {
			log.Warn("failed to save seen-question expiry: %v", err)
		}
	}
}

// Clear deletes the window unconditionally.
func (t *tracker) Clear(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("tracker")
	if err := t.store.Remove(ctx, storage.KeySeen); err != nil {
		log.Warn("failed to clear seen questions: %v", err)
	}
	if err := t.store.Remove(ctx, storage.KeySeenExpiry); err != nil {
		log.Warn("failed to clear seen-question expiry: %v", err)
	}
}

// ShouldReset reports whether the window covers at least 80% of the corpus.
func (t *tracker) ShouldReset(ctx context.Context, totalAvailable int) bool {
	seen := t.Seen(ctx)
	return float64(len(seen)) >= float64(totalAvailable)*ResetCoverage
}

// Stats summarizes the current window for dashboards.
func (t *tracker) Stats(ctx context.Context, totalAvailable int) models.SeenStats {
	record, ok := t.read(ctx)
	if !ok {
		return models.SeenStats{}
	}

	stats := models.SeenStats{SeenCount: len(record.QuestionIDs)}
	if record.LastUpdated > 0 {
		updated := record.LastUpdated
		stats.LastUpdated = &updated
	}
	if totalAvailable > 0 {
		stats.PercentageSeen = int(float64(len(record.QuestionIDs))/float64(totalAvailable)*100 + 0.5)
	}
	return stats
}

func (t *tracker) expired(ctx context.Context) bool {
	log := logger.FromContext(ctx).WithPrefix("tracker")

	raw, ok, err := t.store.Get(ctx, storage.KeySeenExpiry)
	if err != nil {
		log.Warn("failed to read seen-question expiry: %v", err)
		return false
	}
	if !ok {
		return false
	}

	expiry, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn("corrupt seen-question expiry %q, treating as expired", raw)
		return true
	}
	return t.now().UnixMilli() > expiry
}

func (t *tracker) read(ctx context.Context) (models.SeenQuestions, bool) {
	log := logger.FromContext(ctx).WithPrefix("tracker")

	raw, ok, err := t.store.Get(ctx, storage.KeySeen)
	if err != nil {
		log.Warn("failed to read seen questions: %v", err)
		return models.SeenQuestions{}, false
	}
	if !ok {
		return models.SeenQuestions{}, false
	}

	var record models.SeenQuestions
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		log.Warn("corrupt seen-question record, ignoring: %v", err)
		return models.SeenQuestions{}, false
	}
	return record, true
}
