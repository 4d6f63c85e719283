// Package question loads and caches the fixed exam question corpus.
package question

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
)

// Store caches the full corpus after the first successful load. Concurrent
// callers during the initial load share one in-flight read instead of each
// hitting the source. Construct one per process and inject it.
type Store struct {
	source Source

	mu     sync.RWMutex
	cached []models.Question
	group  singleflight.Group
}

// NewStore creates a Store backed by the given source.
func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Load returns the full corpus, loading it on first call. Falls back to the
// per-domain artifacts when the primary artifact cannot be read, and fails
// with NO_QUESTIONS_AVAILABLE when both paths yield nothing.
func (s *Store) Load(ctx context.Context) ([]models.Question, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do("corpus", func() (any, error) {
		questions, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = questions
		s.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Question), nil
}

// Count returns the corpus size, loading it if necessary.
func (s *Store) Count(ctx context.Context) (int, error) {
	questions, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (s *Store) load(ctx context.Context) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_store")

	questions, err := s.source.LoadPrimary(ctx)
	if err != nil {
		log.Warn("primary load failed, falling back to per-domain artifacts: %v", err)
		return s.loadFromDomains(ctx)
	}

	normalized := make([]models.Question, 0, len(questions))
	for i, q := range questions {
		normalized = append(normalized, normalize(q, i+1, 0))
	}
	if len(normalized) == 0 {
		log.Warn("primary artifact contained no questions, trying per-domain artifacts")
		return s.loadFromDomains(ctx)
	}

	log.Info("loaded %d questions from primary artifact", len(normalized))
	return normalized, nil
}

func (s *Store) loadFromDomains(ctx context.Context) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_store")

	var all []models.Question
	for domain := 1; domain <= models.NumDomains; domain++ {
		questions, err := s.source.LoadDomain(ctx, domain)
		if err != nil {
			log.Debug("domain %d artifact unavailable: %v", domain, err)
			continue
		}
		for _, q := range questions {
			all = append(all, normalize(q, len(all)+1, domain))
		}
		log.Debug("loaded %d questions from domain %d artifact", len(questions), domain)
	}

	if len(all) == 0 {
		log.Error("no questions could be loaded from any source")
		return nil, errors.NewNoQuestionsError()
	}

	log.Info("loaded %d questions from per-domain artifacts", len(all))
	return all, nil
}

// normalize enforces the corpus guarantees on a raw record: a sequential id
// when the record has none, the owning domain for fallback-loaded records,
// and a single-letter correct answer. A full-text answer is resolved to the
// letter of the first exact option match.
func normalize(q models.Question, fallbackID, fallbackDomain int) models.Question {
	if q.ID == 0 {
		q.ID = fallbackID
	}
	if q.DomainID == 0 && fallbackDomain > 0 {
		q.DomainID = fallbackDomain
	}
	if q.QuestionType == "" {
		q.QuestionType = "multiple_choice"
	}

	if len(q.CorrectAnswer) > 1 {
		idx := -1
		if q.CorrectIndex != nil {
			idx = *q.CorrectIndex
		} else {
			for i, opt := range q.Options {
				if opt == q.CorrectAnswer {
					idx = i
					break
				}
			}
		}
		if idx >= 0 && idx < len(q.Options) {
			q.CorrectAnswer = models.AnswerLetter(idx)
		}
	}
	if q.CorrectAnswer == "" {
		q.CorrectAnswer = "a"
	}
	return q
}
