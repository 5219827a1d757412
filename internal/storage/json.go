package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"scr/internal/domain"
)

// Save writes the report to the configured JSON output file, replacing any previous one.
func (s *JSONStorage) Save(run *domain.Run) error {
	data, err := run.Marshal()
	if err != nil {
		return err
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

// Load reads the last report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.Run, error) {
	return LoadFile(s.cfg.GetOutputPath())
}

// LoadFile reads a Sauce JSON report from path.
func LoadFile(path string) (*domain.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	run, err := domain.ParseRun(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return run, nil
}
