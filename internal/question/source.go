package question

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vytor/cisspprep/internal/errors"
	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/models"
)

// Source provides the raw question artifacts: one primary document holding
// the whole corpus, and a per-domain fallback document for each domain.
type Source interface {
	LoadPrimary(ctx context.Context) ([]models.Question, error)
	LoadDomain(ctx context.Context, domainID int) ([]models.Question, error)
}

// FileSource reads pre-generated JSON artifacts from a data directory:
// questions-cache.json for the full corpus and domain-N-cache.json per domain.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// questionsDoc is the envelope both artifact shapes decode into.
type questionsDoc struct {
	Questions []models.Question `json:"questions"`
}

func (s *FileSource) LoadPrimary(ctx context.Context) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_source")
	path := filepath.Join(s.dir, "questions-cache.json")

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("failed to read primary artifact %s: %v", path, err)
		return nil, errors.NewLoadError(path, err)
	}

	var doc questionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("failed to parse primary artifact %s: %v", path, err)
		return nil, errors.NewLoadError(path, err)
	}
	return doc.Questions, nil
}

func (s *FileSource) LoadDomain(ctx context.Context, domainID int) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_source")
	path := filepath.Join(s.dir, fmt.Sprintf("domain-%d-cache.json", domainID))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Domain artifacts may be an envelope or a bare array.
	var doc questionsDoc
	if err := json.Unmarshal(data, &doc); err == nil && doc.Questions != nil {
		return doc.Questions, nil
	}
	var bare []models.Question
	if err := json.Unmarshal(data, &bare); err != nil {
		log.Warn("failed to parse domain artifact %s: %v", path, err)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return bare, nil
}
