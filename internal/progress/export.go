package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/storage"
)

const exportVersion = "1.0.0"

type exportBundle struct {
	Progress   *models.StudyProgress `json:"progress,omitempty"`
	Settings   map[string]any        `json:"settings,omitempty"`
	Bookmarks  []int                 `json:"bookmarks,omitempty"`
	ExportDate string                `json:"exportDate"`
	Version    string                `json:"version"`
}

// Export serializes progress, settings, and bookmarks into one JSON document.
func (s *store) Export(ctx context.Context) (string, error) {
	progress := s.Initialize(ctx)
	bundle := exportBundle{
		Progress:   &progress,
		Settings:   s.Settings(ctx),
		Bookmarks:  s.Bookmarks(ctx),
		ExportDate: s.now().Format(time.RFC3339),
		Version:    exportVersion,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import restores whichever sections the document carries. Returns false on
// malformed input.
func (s *store) Import(ctx context.Context, data string) bool {
	log := logger.FromContext(ctx).WithPrefix("progress")

	var bundle exportBundle
	if err := json.Unmarshal([]byte(data), &bundle); err != nil {
		log.Warn("failed to parse import document: %v", err)
		return false
	}

	if bundle.Progress != nil {
		s.write(ctx, *bundle.Progress)
	}
	if bundle.Settings != nil {
		if raw, err := json.Marshal(bundle.Settings); err == nil {
			if err := s.kv.Set(ctx, storage.KeySettings, string(raw)); err != nil {
				log.Warn("failed to import settings: %v", err)
			}
		}
	}
	if bundle.Bookmarks != nil {
		if raw, err := json.Marshal(bundle.Bookmarks); err == nil {
			if err := s.kv.Set(ctx, storage.KeyBookmarks, string(raw)); err != nil {
				log.Warn("failed to import bookmarks: %v", err)
			}
		}
	}
	return true
}

// Settings returns the opaque settings map, empty when absent or corrupt.
func (s *store) Settings(ctx context.Context) map[string]any {
	log := logger.FromContext(ctx).WithPrefix("progress")

	raw, ok, err := s.kv.Get(ctx, storage.KeySettings)
	if err != nil {
		log.Warn("failed to read settings: %v", err)
		return map[string]any{}
	}
	if !ok {
		return map[string]any{}
	}

	var settings map[string]any
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Warn("corrupt settings record, ignoring: %v", err)
		return map[string]any{}
	}
	return settings
}

// SaveSettings merges the given keys over the stored settings.
func (s *store) SaveSettings(ctx context.Context, settings map[string]any) {
	log := logger.FromContext(ctx).WithPrefix("progress")

	merged := s.Settings(ctx)
	for k, v := range settings {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		log.Warn("failed to encode settings: %v", err)
		return
	}
	if err := s.kv.Set(ctx, storage.KeySettings, string(data)); err != nil {
		log.Warn("failed to save settings: %v", err)
	}
}

// Bookmarks returns the bookmarked question ids in insertion order.
func (s *store) Bookmarks(ctx context.Context) []int {
	log := logger.FromContext(ctx).WithPrefix("progress")

	raw, ok, err := s.kv.Get(ctx, storage.KeyBookmarks)
	if err != nil {
		log.Warn("failed to read bookmarks: %v", err)
		return []int{}
	}
	if !ok {
		return []int{}
	}

	var bookmarks []int
	if err := json.Unmarshal([]byte(raw), &bookmarks); err != nil {
		log.Warn("corrupt bookmarks record, ignoring: %v", err)
		return []int{}
	}
	return bookmarks
}

// AddBookmark adds a question id once; duplicates are ignored.
func (s *store) AddBookmark(ctx context.Context, questionID int) {
	bookmarks := s.Bookmarks(ctx)
	for _, id := range bookmarks {
		if id == questionID {
			return
		}
	}
	s.writeBookmarks(ctx, append(bookmarks, questionID))
}

// RemoveBookmark removes a question id if present.
func (s *store) RemoveBookmark(ctx context.Context, questionID int) {
	bookmarks := s.Bookmarks(ctx)
	filtered := bookmarks[:0]
	for _, id := range bookmarks {
		if id != questionID {
			filtered = append(filtered, id)
		}
	}
	s.writeBookmarks(ctx, filtered)
}

func (s *store) writeBookmarks(ctx context.Context, bookmarks []int) {
	log := logger.FromContext(ctx).WithPrefix("progress")

	data, err := json.Marshal(bookmarks)
	if err != nil {
		log.Warn("failed to encode bookmarks: %v", err)
		return
	}
	if err := s.kv.Set(ctx, storage.KeyBookmarks, string(data)); err != nil {
		log.Warn("failed to save bookmarks: %v", err)
	}
}
