package weights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Store persists the weight map as JSON at a fixed path. Load-at-start,
// save-at-end: scoring never touches the file mid-run, and only the
// learning pass writes.
type Store struct {
	path string
}

// NewStore creates a store for the given weights file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted weights, falling back to hardcoded defaults
// when the file is absent or unreadable.
func (s *Store) Load() Map {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("Weights file unreadable, using defaults")
		}
		return Defaults()
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Weights file corrupt, using defaults")
		return Defaults()
	}
	if len(m) == 0 {
		return Defaults()
	}
	return m
}

// Save writes the weights atomically: temp file in the same directory,
// then rename. A failed write never leaves a partial weights file.
func (s *Store) Save(m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create weights dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".weights-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp weights file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp weights file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace weights file: %w", err)
	}

	log.Info().Str("path", s.path).Int("keys", len(m)).Msg("Weights saved")
	return nil
}
