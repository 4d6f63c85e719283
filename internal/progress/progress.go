// Package progress persists quiz history and derives per-domain performance
// aggregates. Persistence is best-effort: storage faults are logged, reads
// fall back to zeroed defaults, and writes are dropped rather than allowed
// to interrupt a quiz.
package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/storage"
)

// MaxAttempts caps the stored history; the oldest attempts are evicted first.
const MaxAttempts = 100

// Store is the progress tracking service.
type Store interface {
	Initialize(ctx context.Context) models.StudyProgress
	SaveAttempt(ctx context.Context, attempt models.QuizAttempt)
	SaveMixed(ctx context.Context, records []models.AnswerRecord, timeSpent int, difficulty []int)
	StudyProgress(ctx context.Context) models.StudyProgress
	DomainStats(ctx context.Context, domainID int) models.DomainStats
	AllDomainStats(ctx context.Context) []models.DomainStats
	RecentAttempts(ctx context.Context, limit int) []models.QuizAttempt
	OverallStats(ctx context.Context) models.OverallStats
	Recalculate(ctx context.Context)
	Clear(ctx context.Context)

	Export(ctx context.Context) (string, error)
	Import(ctx context.Context, data string) bool

	Settings(ctx context.Context) map[string]any
	SaveSettings(ctx context.Context, settings map[string]any)
	Bookmarks(ctx context.Context) []int
	AddBookmark(ctx context.Context, questionID int)
	RemoveBookmark(ctx context.Context, questionID int)
}

type store struct {
	kv  storage.Store
	now func() time.Time
}

// Option configures a Store.
type Option func(*store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

// New creates a progress Store persisting through the given key-value store.
func New(kv storage.Store, opts ...Option) Store {
	s := &store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultDomainStats() map[int]models.DomainStats {
	stats := make(map[int]models.DomainStats, models.NumDomains)
	for _, d := range models.CISSPDomains {
		stats[d.ID] = models.DomainStats{DomainID: d.ID, DomainName: d.Name}
	}
	return stats
}

// Initialize reads the persisted record, creating and persisting a zeroed one
// when absent. A record missing any of the eight domain entries gets the
// missing entries backfilled without touching the rest.
func (s *store) Initialize(ctx context.Context) models.StudyProgress {
	log := logger.FromContext(ctx).WithPrefix("progress")

	def := models.StudyProgress{
		Attempts:     []models.QuizAttempt{},
		LastActivity: s.now().Format(time.RFC3339),
		DomainStats:  defaultDomainStats(),
	}

	raw, ok, err := s.kv.Get(ctx, storage.KeyProgress)
	if err != nil {
		log.Warn("failed to read progress, using defaults: %v", err)
		return def
	}
	if !ok {
		s.write(ctx, def)
		return def
	}

	var progress models.StudyProgress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		log.Warn("corrupt progress record, using defaults: %v", err)
		return def
	}

	if progress.Attempts == nil {
		progress.Attempts = []models.QuizAttempt{}
	}
	if progress.DomainStats == nil {
		progress.DomainStats = defaultDomainStats()
	} else {
		for _, d := range models.CISSPDomains {
			if _, ok := progress.DomainStats[d.ID]; !ok {
				progress.DomainStats[d.ID] = models.DomainStats{DomainID: d.ID, DomainName: d.Name}
			}
		}
	}
	return progress
}

// SaveAttempt appends a timestamped attempt and incrementally updates the
// global totals and, when the attempt is domain-attributed, that domain's
// aggregates.
func (s *store) SaveAttempt(ctx context.Context, attempt models.QuizAttempt) {
	log := logger.FromContext(ctx).WithPrefix("progress")

	progress := s.Initialize(ctx)

	attempt.ID = uuid.NewString()
	attempt.Date = s.now().Format(time.RFC3339)

	progress.Attempts = append(progress.Attempts, attempt)
	if len(progress.Attempts) > MaxAttempts {
		progress.Attempts = progress.Attempts[len(progress.Attempts)-MaxAttempts:]
	}
	progress.TotalQuestions += attempt.QuestionsAttempted
	progress.CorrectAnswers += attempt.CorrectAnswers
	progress.LastActivity = attempt.Date

	if attempt.DomainID != nil {
		if stat, ok := progress.DomainStats[*attempt.DomainID]; ok {
			stat.TotalAttempts++
			stat.QuestionsAttempted += attempt.QuestionsAttempted
			stat.CorrectAnswers += attempt.CorrectAnswers
			stat.LastAttemptDate = attempt.Date
			if attempt.Score > stat.BestScore {
				stat.BestScore = attempt.Score
			}

			// Averages over the full domain history, new attempt included.
			var totalScore, totalTime, totalQuestions, count int
			for _, a := range progress.Attempts {
				if a.DomainID != nil && *a.DomainID == *attempt.DomainID {
					totalScore += a.Score
					totalTime += a.TimeSpent
					totalQuestions += a.QuestionsAttempted
					count++
				}
			}
			stat.AverageScore = roundDiv(totalScore, count)
			stat.AvgTimePerQuestion = roundDiv(totalTime, totalQuestions)

			progress.DomainStats[*attempt.DomainID] = stat
		}
	}

	s.write(ctx, progress)
	log.Debug("saved attempt: domain=%v score=%d", attempt.DomainID, attempt.Score)
}

// SaveMixed splits one mixed-domain session into per-domain attempts and
// saves each, allocating time proportionally to each domain's question share.
func (s *store) SaveMixed(ctx context.Context, records []models.AnswerRecord, timeSpent int, difficulty []int) {
	for _, attempt := range SplitMixed(records, timeSpent, difficulty) {
		s.SaveAttempt(ctx, attempt)
	}
}

// StudyProgress returns the full aggregate root.
func (s *store) StudyProgress(ctx context.Context) models.StudyProgress {
	return s.Initialize(ctx)
}

// DomainStats returns one domain's aggregates, zeroed when unknown.
func (s *store) DomainStats(ctx context.Context, domainID int) models.DomainStats {
	progress := s.Initialize(ctx)
	if stat, ok := progress.DomainStats[domainID]; ok {
		return stat
	}
	return models.DomainStats{DomainID: domainID, DomainName: models.DomainName(domainID)}
}

// AllDomainStats returns all eight domains ordered 1..8, backfilling any
// entry still missing for callers that read without initializing.
func (s *store) AllDomainStats(ctx context.Context) []models.DomainStats {
	progress := s.Initialize(ctx)
	stats := make([]models.DomainStats, 0, models.NumDomains)
	for i := 1; i <= models.NumDomains; i++ {
		if stat, ok := progress.DomainStats[i]; ok {
			stats = append(stats, stat)
		} else {
			stats = append(stats, models.DomainStats{DomainID: i, DomainName: models.DomainName(i)})
		}
	}
	return stats
}

// RecentAttempts returns the most recent attempts, newest first, with domain
// names resolved for display.
func (s *store) RecentAttempts(ctx context.Context, limit int) []models.QuizAttempt {
	progress := s.Initialize(ctx)

	attempts := progress.Attempts
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[len(attempts)-limit:]
	}

	out := make([]models.QuizAttempt, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		if a.DomainID != nil {
			a.DomainName = models.DomainName(*a.DomainID)
		} else {
			a.DomainName = "All Domains"
		}
		out = append(out, a)
	}
	return out
}

// OverallStats summarizes the whole history, returning zeroes for an empty
// one.
func (s *store) OverallStats(ctx context.Context) models.OverallStats {
	progress := s.Initialize(ctx)
	if len(progress.Attempts) == 0 {
		return models.OverallStats{}
	}

	var totalScore, totalTime, best int
	for _, a := range progress.Attempts {
		totalScore += a.Score
		totalTime += a.TimeSpent
		if a.Score > best {
			best = a.Score
		}
	}
	return models.OverallStats{
		TotalAttempts:  len(progress.Attempts),
		AverageScore:   roundDiv(totalScore, len(progress.Attempts)),
		TotalStudyTime: totalTime,
		BestScore:      best,
	}
}

// Recalculate rebuilds every domain aggregate by replaying the attempt list
// in order. Used as a repair path; the result matches what incremental
// updates would have produced.
func (s *store) Recalculate(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("progress")

	progress := s.Initialize(ctx)
	progress.DomainStats = defaultDomainStats()

	type tally struct {
		score, time, questions, count int
		last                          string
	}
	tallies := map[int]*tally{}

	for _, a := range progress.Attempts {
		if a.DomainID == nil {
			continue
		}
		stat, ok := progress.DomainStats[*a.DomainID]
		if !ok {
			continue
		}
		stat.TotalAttempts++
		stat.QuestionsAttempted += a.QuestionsAttempted
		stat.CorrectAnswers += a.CorrectAnswers
		if a.Score > stat.BestScore {
			stat.BestScore = a.Score
		}
		progress.DomainStats[*a.DomainID] = stat

		t := tallies[*a.DomainID]
		if t == nil {
			t = &tally{}
			tallies[*a.DomainID] = t
		}
		t.score += a.Score
		t.time += a.TimeSpent
		t.questions += a.QuestionsAttempted
		t.count++
		if a.Date > t.last {
			t.last = a.Date
		}
	}

	for id, t := range tallies {
		stat := progress.DomainStats[id]
		stat.AverageScore = roundDiv(t.score, t.count)
		stat.AvgTimePerQuestion = roundDiv(t.time, t.questions)
		stat.LastAttemptDate = t.last
		progress.DomainStats[id] = stat
	}

	s.write(ctx, progress)
	log.Info("recalculated domain stats from %d attempts", len(progress.Attempts))
}

// Clear deletes all progress. Callers are responsible for obtaining a
// destructive-action confirmation before invoking this.
func (s *store) Clear(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("progress")
	if err := s.kv.Remove(ctx, storage.KeyProgress); err != nil {
		log.Warn("failed to clear progress: %v", err)
	}
}

func (s *store) write(ctx context.Context, progress models.StudyProgress) {
	log := logger.FromContext(ctx).WithPrefix("progress")

	data, err := json.Marshal(progress)
	if err != nil {
		log.Warn("failed to encode progress: %v", err)
		return
	}
	if err := s.kv.Set(ctx, storage.KeyProgress, string(data)); err != nil {
		log.Warn("failed to save progress: %v", err)
	}
}

func roundDiv(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(float64(sum)/float64(n) + 0.5)
}
