package selector_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/question"
	"github.com/vytor/cisspprep/internal/selector"
	"github.com/vytor/cisspprep/internal/storage"
	"github.com/vytor/cisspprep/internal/testutil"
	"github.com/vytor/cisspprep/internal/tracker"
)

func newSelector(t *testing.T, corpus []models.Question) (selector.Selector, tracker.Tracker) {
	t.Helper()
	store := testutil.NewQuestionStore(t, corpus)
	seen := tracker.New(storage.NewMemoryStore())
	sel := selector.New(store, seen, selector.WithRand(rand.New(rand.NewSource(42))))
	return sel, seen
}

func TestRandom_ReturnsDistinctQuestionsAndTracksThem(t *testing.T) {
	sel, seen := newSelector(t, testutil.Corpus(100))
	ctx := context.Background()

	questions, err := sel.Random(ctx, 30)
	require.NoError(t, err)
	require.Len(t, questions, 30)

	ids := map[int]bool{}
	for _, q := range questions {
		assert.False(t, ids[q.ID], "question %d returned twice", q.ID)
		ids[q.ID] = true
	}

	tracked := seen.Seen(ctx)
	for id := range ids {
		assert.True(t, tracked[id], "selected question %d should be tracked as seen", id)
	}
}

func TestRandom_NoRepeatsAcrossSessions(t *testing.T) {
	sel, _ := newSelector(t, testutil.Corpus(100))
	ctx := context.Background()

	first, err := sel.Random(ctx, 30)
	require.NoError(t, err)
	second, err := sel.Random(ctx, 30)
	require.NoError(t, err)

	firstIDs := map[int]bool{}
	for _, q := range first {
		firstIDs[q.ID] = true
	}
	for _, q := range second {
		assert.False(t, firstIDs[q.ID], "question %d repeated before rotation reset", q.ID)
	}
}

func TestRandom_ShortfallResetsRotation(t *testing.T) {
	sel, seen := newSelector(t, testutil.Corpus(40))
	ctx := context.Background()

	_, err := sel.Random(ctx, 30)
	require.NoError(t, err)

	// Only 10 unseen remain; a request for 30 must restart the rotation and
	// still return a full batch.
	questions, err := sel.Random(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, questions, 30)
	assert.Len(t, seen.Seen(ctx), 30)
}

func TestRandom_CoverageResetAtEightyPercent(t *testing.T) {
	sel, seen := newSelector(t, testutil.Corpus(100))
	ctx := context.Background()

	ids := make([]int, 80)
	for i := range ids {
		ids[i] = i + 1
	}
	seen.Add(ctx, ids)

	questions, err := sel.Random(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, questions, 10)

	// The old window was cleared; only this batch is tracked now.
	assert.Len(t, seen.Seen(ctx), 10)
}

func TestRandom_CountLargerThanCorpus(t *testing.T) {
	sel, _ := newSelector(t, testutil.Corpus(5))

	questions, err := sel.Random(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestRandom_EmptyCorpus(t *testing.T) {
	store := question.NewStore(&testutil.StaticSource{})
	sel := selector.New(store, tracker.New(storage.NewMemoryStore()))

	_, err := sel.Random(context.Background(), 30)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoQuestions))
}

func TestFiltered_DomainFilter(t *testing.T) {
	for domainID := 1; domainID <= 8; domainID++ {
		sel, _ := newSelector(t, testutil.Corpus(200))

		questions, err := sel.Filtered(context.Background(), selector.Filter{
			Count:            10,
			DomainID:         domainID,
			ShuffleQuestions: true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, questions)
		for _, q := range questions {
			assert.Equal(t, domainID, q.DomainID)
		}
	}
}

func TestFiltered_SubdomainAndDifficultyFilters(t *testing.T) {
	sel, _ := newSelector(t, testutil.Corpus(200))

	questions, err := sel.Filtered(context.Background(), selector.Filter{
		Count:        20,
		SubdomainIDs: []int{11, 21},
		Difficulties: []int{4, 5},
	})
	require.NoError(t, err)
	require.NotEmpty(t, questions)
	for _, q := range questions {
		assert.Contains(t, []int{11, 21}, q.SubdomainID)
		assert.Contains(t, []int{4, 5}, q.Difficulty)
	}
}

func TestFiltered_BackfillsFromSeenWithoutBreakingFilters(t *testing.T) {
	// Domain 3 has 15 questions at difficulty 4 or 5; everything else fails
	// the filter.
	var corpus []models.Question
	for i := 1; i <= 15; i++ {
		corpus = append(corpus, models.Question{
			ID:            i,
			QuestionText:  "q",
			Options:       []string{"w", "x", "y", "z"},
			CorrectAnswer: "a",
			Difficulty:    4 + i%2,
			DomainID:      3,
			SubdomainID:   31,
		})
	}
	for i := 16; i <= 900; i++ {
		corpus = append(corpus, models.Question{
			ID:            i,
			QuestionText:  "q",
			Options:       []string{"w", "x", "y", "z"},
			CorrectAnswer: "a",
			Difficulty:    1 + i%3,
			DomainID:      1 + i%8,
			SubdomainID:   (1+i%8)*10 + 1,
		})
	}

	store := testutil.NewQuestionStore(t, corpus)
	seen := tracker.New(storage.NewMemoryStore())
	sel := selector.New(store, seen, selector.WithRand(rand.New(rand.NewSource(7))))
	ctx := context.Background()

	// 10 of the 15 matching questions are already seen.
	seen.Add(ctx, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	questions, err := sel.Filtered(ctx, selector.Filter{
		Count:        30,
		DomainID:     3,
		Difficulties: []int{4, 5},
	})
	require.NoError(t, err)

	// 5 unseen plus 10 backfilled seen, never padded from other domains.
	assert.Len(t, questions, 15)
	ids := map[int]bool{}
	for _, q := range questions {
		assert.Equal(t, 3, q.DomainID)
		assert.Contains(t, []int{4, 5}, q.Difficulty)
		ids[q.ID] = true
	}
	assert.Len(t, ids, 15)
}

func TestFiltered_BackfillAppendedAfterUnseenWhenNotShuffled(t *testing.T) {
	corpus := testutil.Corpus(80)
	store := testutil.NewQuestionStore(t, corpus)
	seen := tracker.New(storage.NewMemoryStore())
	sel := selector.New(store, seen, selector.WithRand(rand.New(rand.NewSource(1))))
	ctx := context.Background()

	// Domain 1 questions are ids 1, 9, 17, ... Mark the first five seen.
	seen.Add(ctx, []int{1, 9, 17, 25, 33})

	questions, err := sel.Filtered(ctx, selector.Filter{
		Count:            8,
		DomainID:         1,
		ShuffleQuestions: false,
	})
	require.NoError(t, err)
	require.Len(t, questions, 8)

	// Unseen questions keep corpus order up front; backfilled ones follow.
	unseenIDs := []int{41, 49, 57, 65, 73}
	for i, want := range unseenIDs {
		assert.Equal(t, want, questions[i].ID)
	}
	seenSet := map[int]bool{1: true, 9: true, 17: true, 25: true, 33: true}
	for _, q := range questions[5:] {
		assert.True(t, seenSet[q.ID], "tail question %d should come from the seen pool", q.ID)
	}
}

func TestFiltered_NoMatchIsAnError(t *testing.T) {
	sel, _ := newSelector(t, testutil.Corpus(50))

	_, err := sel.Filtered(context.Background(), selector.Filter{
		Count:    10,
		DomainID: 3,
		// testutil difficulties only span 1..5.
		Difficulties: []int{9},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoMatch))
}

func TestFiltered_ShuffleAnswersPreservesCorrectOption(t *testing.T) {
	var corpus []models.Question
	for i := 1; i <= 40; i++ {
		corpus = append(corpus, models.Question{
			ID:            i,
			QuestionText:  "q",
			Options:       []string{"alpha", "bravo", "charlie", "delta"},
			CorrectAnswer: models.AnswerLetter(i % 4),
			Difficulty:    3,
			DomainID:      1,
			SubdomainID:   11,
		})
	}

	sel, _ := newSelector(t, corpus)
	original := map[int]string{}
	for _, q := range corpus {
		original[q.ID] = q.Options[q.CorrectOptionIndex()]
	}

	questions, err := sel.Filtered(context.Background(), selector.Filter{
		Count:            40,
		ShuffleQuestions: true,
		ShuffleAnswers:   true,
	})
	require.NoError(t, err)

	for _, q := range questions {
		idx := q.CorrectOptionIndex()
		require.GreaterOrEqual(t, idx, 0, "question %d has invalid answer letter %q", q.ID, q.CorrectAnswer)
		assert.Equal(t, original[q.ID], q.Options[idx],
			"question %d: correct option text must survive the shuffle", q.ID)
	}
}

func TestFiltered_ZeroDomainMeansNoFilter(t *testing.T) {
	sel, _ := newSelector(t, testutil.Corpus(80))

	questions, err := sel.Filtered(context.Background(), selector.Filter{Count: 40})
	require.NoError(t, err)
	assert.Len(t, questions, 40)

	domains := map[int]bool{}
	for _, q := range questions {
		domains[q.DomainID] = true
	}
	assert.Greater(t, len(domains), 1, "unfiltered selection should span domains")
}
