package api

import (
	"net/http"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/selector"
)

func (s *Server) handleRandomQuestions(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 30)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if count <= 0 {
		handleError(w, r, errors.NewValidationError("count", "must be positive"))
		return
	}

	questions, err := s.Selector.Random(r.Context(), count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleFilteredQuestions(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 30)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if count <= 0 {
		handleError(w, r, errors.NewValidationError("count", "must be positive"))
		return
	}
	domainID, err := queryInt(r, "domain", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	subdomains, err := queryIntList(r, "subdomains")
	if err != nil {
		handleError(w, r, err)
		return
	}
	difficulties, err := queryIntList(r, "difficulty")
	if err != nil {
		handleError(w, r, err)
		return
	}

	questions, err := s.Selector.Filtered(r.Context(), selector.Filter{
		Count:            count,
		DomainID:         domainID,
		SubdomainIDs:     subdomains,
		Difficulties:     difficulties,
		ShuffleQuestions: queryBool(r, "shuffle", true),
		ShuffleAnswers:   queryBool(r, "shuffle_answers", true),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{"domains": models.CISSPDomains})
}

func (s *Server) handleSeenStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.Questions.Count(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, s.Tracker.Stats(r.Context(), total))
}

func (s *Server) handleClearSeen(w http.ResponseWriter, r *http.Request) {
	s.Tracker.Clear(r.Context())
	respondJSON(w, r, http.StatusOK, map[string]any{"cleared": true})
}
