package storage

import (
	"scr/internal/config"
	"scr/internal/domain"
)

// Storage persists and loads Sauce JSON reports (e.g. for the report viewer).
type Storage interface {
	Save(run *domain.Run) error
	Load() (*domain.Run, error)
}

// JSONStorage stores the report in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
