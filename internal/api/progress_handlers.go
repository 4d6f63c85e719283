package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/models"
)

// saveAttemptRequest accepts either a single-domain attempt or a mixed
// session broken down per question. When Records is present the attempt is
// split across the domains represented before saving.
type saveAttemptRequest struct {
	DomainID           *int                  `json:"domain_id"`
	QuestionsAttempted int                   `json:"questions_attempted"`
	CorrectAnswers     int                   `json:"correct_answers"`
	Score              int                   `json:"score"`
	TimeSpent          int                   `json:"time_spent"`
	Difficulty         []int                 `json:"difficulty"`
	Records            []models.AnswerRecord `json:"records"`
}

func (s *Server) handleSaveAttempt(w http.ResponseWriter, r *http.Request) {
	var req saveAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if len(req.Records) > 0 {
		s.Progress.SaveMixed(r.Context(), req.Records, req.TimeSpent, req.Difficulty)
		respondJSON(w, r, http.StatusCreated, map[string]any{"saved": true})
		return
	}

	if req.CorrectAnswers > req.QuestionsAttempted {
		handleError(w, r, errors.NewValidationError("correct_answers", "cannot exceed questions_attempted"))
		return
	}
	if req.QuestionsAttempted <= 0 {
		handleError(w, r, errors.NewValidationError("questions_attempted", "must be positive"))
		return
	}

	s.Progress.SaveAttempt(r.Context(), models.QuizAttempt{
		DomainID:           req.DomainID,
		QuestionsAttempted: req.QuestionsAttempted,
		CorrectAnswers:     req.CorrectAnswers,
		Score:              req.Score,
		TimeSpent:          req.TimeSpent,
		Difficulty:         req.Difficulty,
	})
	respondJSON(w, r, http.StatusCreated, map[string]any{"saved": true})
}

func (s *Server) handleStudyProgress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.Progress.StudyProgress(r.Context()))
}

func (s *Server) handleDomainStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{"domains": s.Progress.AllDomainStats(r.Context())})
}

func (s *Server) handleRecentAttempts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"attempts": s.Progress.RecentAttempts(r.Context(), limit)})
}

func (s *Server) handleOverallStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.Progress.OverallStats(r.Context()))
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	s.Progress.Recalculate(r.Context())
	respondJSON(w, r, http.StatusOK, map[string]any{"recalculated": true})
}

// handleClearProgress deletes all history. The confirm query parameter is the
// destructive-action confirmation; without it the request is rejected.
func (s *Server) handleClearProgress(w http.ResponseWriter, r *http.Request) {
	if !queryBool(r, "confirm", false) {
		handleError(w, r, errors.NewBadRequestError("clearing progress requires confirm=true"))
		return
	}
	s.Progress.Clear(r.Context())
	respondJSON(w, r, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleExportProgress(w http.ResponseWriter, r *http.Request) {
	data, err := s.Progress.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="cissp-progress.json"`)
	_, _ = w.Write([]byte(data))
}

func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("failed to read request body"))
		return
	}
	if !s.Progress.Import(r.Context(), string(data)) {
		handleError(w, r, errors.NewBadRequestError("invalid progress document"))
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"imported": true})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.Progress.Settings(r.Context()))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings map[string]any
	if err := decodeJSON(r, &settings); err != nil {
		handleError(w, r, err)
		return
	}
	s.Progress.SaveSettings(r.Context(), settings)
	respondJSON(w, r, http.StatusOK, s.Progress.Settings(r.Context()))
}

func (s *Server) handleGetBookmarks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{"bookmarks": s.Progress.Bookmarks(r.Context())})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID int `json:"question_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.QuestionID <= 0 {
		handleError(w, r, errors.NewValidationError("question_id", "must be positive"))
		return
	}
	s.Progress.AddBookmark(r.Context(), req.QuestionID)
	respondJSON(w, r, http.StatusCreated, map[string]any{"bookmarks": s.Progress.Bookmarks(r.Context())})
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, errors.NewValidationError("id", "must be an integer"))
		return
	}
	s.Progress.RemoveBookmark(r.Context(), id)
	respondJSON(w, r, http.StatusOK, map[string]any{"bookmarks": s.Progress.Bookmarks(r.Context())})
}
