package progress

import (
	"sort"

	"github.com/vytor/cisspprep/internal/models"
)

// SplitMixed turns one mixed-domain quiz session into per-domain attempts so
// the store only ever ingests single-domain-attributed records. Time spent is
// allocated to each domain proportionally to its share of the questions. A
// question without a domain id falls back to its subdomain's owning domain,
// then to domain 1.
func SplitMixed(records []models.AnswerRecord, timeSpent int, difficulty []int) []models.QuizAttempt {
	if len(records) == 0 {
		return nil
	}

	type group struct {
		questions int
		correct   int
	}
	groups := map[int]*group{}

	for _, r := range records {
		domainID := r.Question.DomainID
		if domainID == 0 && r.Question.SubdomainID > 0 {
			domainID = r.Question.SubdomainID / 10
		}
		if domainID == 0 {
			domainID = 1
		}

		g := groups[domainID]
		if g == nil {
			g = &group{}
			groups[domainID] = g
		}
		g.questions++
		if r.UserAnswer == r.Question.CorrectAnswer {
			g.correct++
		}
	}

	domainIDs := make([]int, 0, len(groups))
	for id := range groups {
		domainIDs = append(domainIDs, id)
	}
	sort.Ints(domainIDs)

	total := len(records)
	attempts := make([]models.QuizAttempt, 0, len(groups))
	for _, id := range domainIDs {
		g := groups[id]
		domainID := id
		attempts = append(attempts, models.QuizAttempt{
			DomainID:           &domainID,
			QuestionsAttempted: g.questions,
			CorrectAnswers:     g.correct,
			Score:              roundDiv(g.correct*100, g.questions),
			TimeSpent:          roundDiv(timeSpent*g.questions, total),
			Difficulty:         difficulty,
		})
	}
	return attempts
}
