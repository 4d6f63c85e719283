// Package selector draws shuffled, non-repeating question batches from the
// corpus under domain, subdomain, and difficulty constraints.
package selector

import (
	"context"
	"math/rand"
	"time"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/question"
	"github.com/vytor/cisspprep/internal/tracker"
)

// Filter describes one batch request. Zero values mean "no constraint":
// DomainID 0 matches every domain, empty slices match everything.
type Filter struct {
	Count            int
	DomainID         int
	SubdomainIDs     []int
	Difficulties     []int
	ShuffleQuestions bool
	ShuffleAnswers   bool
}

// Selector produces quiz batches and records what it handed out.
type Selector interface {
	Random(ctx context.Context, count int) ([]models.Question, error)
	Filtered(ctx context.Context, filter Filter) ([]models.Question, error)
}

type selector struct {
	questions *question.Store
	seen      tracker.Tracker
	rng       *rand.Rand
}

// Option configures a Selector.
type Option func(*selector)

// WithRand overrides the randomness source, for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *selector) { s.rng = rng }
}

// New creates a Selector over the given corpus and seen-question tracker.
func New(questions *question.Store, seen tracker.Tracker, opts ...Option) Selector {
	s := &selector{
		questions: questions,
		seen:      seen,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Random returns count shuffled questions, preferring ones the user has not
// seen this rotation. When the unseen pool runs short, or coverage crosses
// the reset threshold, the rotation restarts over the full corpus.
func (s *selector) Random(ctx context.Context, count int) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("selector")

	corpus, err := s.questions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, errors.NewNoQuestionsError()
	}

	seen := s.seen.Seen(ctx)
	available := unseenOf(corpus, seen)

	if len(available) < count {
		log.Info("not enough unseen questions (%d/%d), resetting rotation", len(available), count)
		s.seen.Clear(ctx)
		available = corpus
	}

	// Coverage reset is evaluated independently of the shortfall check.
	if s.seen.ShouldReset(ctx, len(corpus)) {
		log.Info("seen-question coverage crossed the reset threshold, resetting rotation")
		s.seen.Clear(ctx)
		available = corpus
	}

	selected := make([]models.Question, len(available))
	copy(selected, available)
	s.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	if count < len(selected) {
		selected = selected[:count]
	}

	s.seen.Add(ctx, idsOf(selected))
	log.Debug("selected %d random questions", len(selected))
	return selected, nil
}

// Filtered returns up to filter.Count questions matching every active
// constraint. Unseen questions come first; when they run short the gap is
// backfilled from seen questions that still match the filters, so filter
// correctness is never traded for novelty.
func (s *selector) Filtered(ctx context.Context, filter Filter) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("selector")

	corpus, err := s.questions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, errors.NewNoQuestionsError()
	}

	seen := s.seen.Seen(ctx)

	var matching []models.Question
	for _, q := range corpus {
		if filter.matches(q) {
			matching = append(matching, q)
		}
	}

	pool := unseenOf(matching, seen)

	if len(pool) < filter.Count {
		log.Debug("not enough unseen questions in filtered set (%d/%d), backfilling from seen",
			len(pool), filter.Count)
		var seenMatching []models.Question
		for _, q := range matching {
			if seen[q.ID] {
				seenMatching = append(seenMatching, q)
			}
		}
		s.rng.Shuffle(len(seenMatching), func(i, j int) {
			seenMatching[i], seenMatching[j] = seenMatching[j], seenMatching[i]
		})
		needed := filter.Count - len(pool)
		if needed > len(seenMatching) {
			needed = len(seenMatching)
		}
		// Backfilled questions go after the unseen pool; they only move
		// earlier if the whole selection is shuffled below.
		pool = append(pool, seenMatching[:needed]...)
	}

	if filter.ShuffleQuestions {
		s.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}

	if filter.Count < len(pool) {
		pool = pool[:filter.Count]
	}
	if len(pool) == 0 {
		log.Warn("no questions matched filters: domain=%d subdomains=%v difficulties=%v",
			filter.DomainID, filter.SubdomainIDs, filter.Difficulties)
		return nil, errors.NewNoMatchError()
	}

	s.seen.Add(ctx, idsOf(pool))

	if filter.ShuffleAnswers {
		for i := range pool {
			pool[i] = s.shuffleAnswers(pool[i])
		}
	}

	log.Debug("selected %d filtered questions", len(pool))
	return pool, nil
}

func (f Filter) matches(q models.Question) bool {
	if f.DomainID > 0 && q.DomainID != f.DomainID {
		return false
	}
	if len(f.SubdomainIDs) > 0 {
		found := false
		for _, id := range f.SubdomainIDs {
			if q.SubdomainID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Difficulties) > 0 {
		found := false
		for _, d := range f.Difficulties {
			if q.Difficulty == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// shuffleAnswers randomizes option order and repoints the answer letter at
// the new position of the originally-correct option text.
func (s *selector) shuffleAnswers(q models.Question) models.Question {
	correctIdx := q.CorrectOptionIndex()
	if correctIdx < 0 {
		return q
	}
	correctText := q.Options[correctIdx]

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	for i, opt := range options {
		if opt == correctText {
			q.CorrectAnswer = models.AnswerLetter(i)
			break
		}
	}
	q.Options = options
	q.CorrectIndex = nil
	return q
}

func unseenOf(questions []models.Question, seen map[int]bool) []models.Question {
	var unseen []models.Question
	for _, q := range questions {
		if !seen[q.ID] {
			unseen = append(unseen, q)
		}
	}
	return unseen
}

func idsOf(questions []models.Question) []int {
	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
