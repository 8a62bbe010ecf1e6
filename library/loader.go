package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vibelist/logger"
	"vibelist/model"
)

// LoadManifest reads a JSON track manifest from path. The manifest is a
// JSON array of track objects. Entries without a file path are dropped with
// a warning; entries without a filename get one derived from the file path.
func LoadManifest(path string) ([]model.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var raw []model.Track
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	tracks := make([]model.Track, 0, len(raw))
	dropped := 0
	for _, t := range raw {
		if t.FilePath == "" {
			dropped++
			continue
		}
		if t.Filename == "" {
			t.Filename = filepath.Base(t.FilePath)
		}
		tracks = append(tracks, t)
	}

	if dropped > 0 {
		logger.Warn("dropped manifest entries without filepath",
			logger.String("manifest", path),
			logger.Int("dropped", dropped))
	}
	logger.Info("library manifest loaded",
		logger.String("manifest", path),
		logger.Int("tracks", len(tracks)))

	return tracks, nil
}
