package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vilaca/ci-metrics/internal/domain"
)

// SummaryStore persists the metrics summary as a JSON file.
type SummaryStore struct {
	filePath string
	logger   logrus.FieldLogger
}

// NewSummaryStore creates a store backed by the file at filePath.
func NewSummaryStore(filePath string, logger logrus.FieldLogger) *SummaryStore {
	return &SummaryStore{
		filePath: filePath,
		logger:   logger,
	}
}

// Path returns the location of the summary file.
func (s *SummaryStore) Path() string {
	return s.filePath
}

// Exists reports whether a summary has already been written.
func (s *SummaryStore) Exists() (bool, error) {
	_, err := os.Stat(s.filePath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", s.filePath, err)
}

// Load reads a previously written summary.
func (s *SummaryStore) Load() (*domain.Summary, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics file: %w", err)
	}

	var summary domain.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse metrics file %s: %w", s.filePath, err)
	}

	return &summary, nil
}

// Save writes the summary, replacing any existing file.
func (s *SummaryStore) Save(summary *domain.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to temporary file first, then rename over the target
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.WithField("path", s.filePath).Debug("Saved metrics summary")
	return nil
}
