package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

// Seed is the JSON layout accepted by LoadSeed.
type Seed struct {
	Facilities []models.Facility `json:"facilities"`
	Rentals    []models.Rental   `json:"rentals"`
}

// LoadSeed fills a memory store from a JSON file.
func LoadSeed(m *Memory, path string) (int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for _, f := range seed.Facilities {
		if err := m.Insert(Facilities, f); err != nil {
			return 0, err
		}
	}
	for _, r := range seed.Rentals {
		if err := m.Insert(Rentals, r); err != nil {
			return 0, err
		}
	}
	return len(seed.Facilities) + len(seed.Rentals), nil
}
