package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/cisspprep/internal/progress"
	"github.com/vytor/cisspprep/internal/question"
	"github.com/vytor/cisspprep/internal/selector"
	"github.com/vytor/cisspprep/internal/tracker"
)

// Server wires the study engine services to HTTP handlers.
type Server struct {
	Questions *question.Store
	Selector  selector.Selector
	Tracker   tracker.Tracker
	Progress  progress.Store
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions/random", s.handleRandomQuestions)
		r.Get("/questions/filtered", s.handleFilteredQuestions)
		r.Get("/domains", s.handleDomains)

		r.Get("/progress", s.handleStudyProgress)
		r.Delete("/progress", s.handleClearProgress)
		r.Get("/progress/domains", s.handleDomainStats)
		r.Get("/progress/recent", s.handleRecentAttempts)
		r.Get("/progress/overall", s.handleOverallStats)
		r.Post("/progress/recalculate", s.handleRecalculate)
		r.Get("/progress/export", s.handleExportProgress)
		r.Post("/progress/import", s.handleImportProgress)

		r.Post("/attempts", s.handleSaveAttempt)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)

		r.Get("/bookmarks", s.handleGetBookmarks)
		r.Post("/bookmarks", s.handleAddBookmark)
		r.Delete("/bookmarks/{id}", s.handleRemoveBookmark)

		r.Get("/seen/stats", s.handleSeenStats)
		r.Delete("/seen", s.handleClearSeen)
	})

	return r
}
