package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"irverify/internal/domain"
	"irverify/internal/verify"
)

// Save writes the report of a finished run to the configured JSON output file.
func (s *JSONStorage) Save(report *verify.Report, run Run) (*domain.RunOutput, error) {
	output := BuildOutput(report, run)
	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last run report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.RunOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
