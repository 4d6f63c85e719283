package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/question"
)

// Corpus builds a deterministic test corpus of n questions spread round-robin
// across the eight domains, with difficulties cycling 1..5 and subdomain ids
// derived from the owning domain.
func Corpus(n int) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		domain := (i-1)%models.NumDomains + 1
		questions = append(questions, models.Question{
			ID:           i,
			QuestionText: fmt.Sprintf("Question %d", i),
			Options: []string{
				fmt.Sprintf("Option A for %d", i),
				fmt.Sprintf("Option B for %d", i),
				fmt.Sprintf("Option C for %d", i),
				fmt.Sprintf("Option D for %d", i),
			},
			CorrectAnswer: "b",
			Difficulty:    (i-1)%5 + 1,
			DomainID:      domain,
			SubdomainID:   domain*10 + 1,
			QuestionType:  "multiple_choice",
		})
	}
	return questions
}

// StaticSource is a question.Source serving fixed in-memory questions, with
// optional error injection for the primary path.
type StaticSource struct {
	Questions  []models.Question
	PrimaryErr error
	Domains    map[int][]models.Question
	LoadCalls  int
}

var _ question.Source = (*StaticSource)(nil)

func (s *StaticSource) LoadPrimary(context.Context) ([]models.Question, error) {
	s.LoadCalls++
	if s.PrimaryErr != nil {
		return nil, s.PrimaryErr
	}
	return s.Questions, nil
}

func (s *StaticSource) LoadDomain(_ context.Context, domainID int) ([]models.Question, error) {
	if qs, ok := s.Domains[domainID]; ok {
		return qs, nil
	}
	return nil, fmt.Errorf("no artifact for domain %d", domainID)
}

// NewQuestionStore builds a question.Store over a fixed corpus.
func NewQuestionStore(t *testing.T, questions []models.Question) *question.Store {
	t.Helper()
	store := question.NewStore(&StaticSource{Questions: questions})
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}
