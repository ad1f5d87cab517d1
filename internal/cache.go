package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// cachedIndex is the on-disk form of a session index, keyed by the
// newest source mtime observed when it was built.
type cachedIndex struct {
	Version       string    `yaml:"version"`
	SourceModTime time.Time `yaml:"source_mod_time"`
	SavedAt       time.Time `yaml:"saved_at"`
	Sessions      []Session `yaml:"sessions"`
}

// IndexCache persists the session index as YAML so a restarted server
// can show sessions immediately while the initial regeneration runs in
// the background. The cache is advisory: any mismatch or parse failure
// just means a cold start.
type IndexCache struct {
	path string
}

// NewIndexCache creates a cache stored at path.
func NewIndexCache(path string) *IndexCache {
	return &IndexCache{path: path}
}

// Load returns the cached index if it matches the given newest source
// mtime, or ok=false for any miss, mismatch, or error.
func (c *IndexCache) Load(sourceModTime time.Time) ([]Session, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var cached cachedIndex
	if err := yaml.Unmarshal(data, &cached); err != nil {
		LogDebug("Ignoring unreadable index cache: %v", err)
		return nil, false
	}
	if cached.Version != cacheVersion {
		return nil, false
	}
	if !cached.SourceModTime.Equal(sourceModTime) {
		return nil, false
	}

	return cached.Sessions, true
}

// Save writes the index keyed by the newest source mtime.
func (c *IndexCache) Save(sessions []Session, sourceModTime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cachedIndex{
		Version:       cacheVersion,
		SourceModTime: sourceModTime,
		SavedAt:       time.Now(),
		Sessions:      sessions,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal index cache: %w", err)
	}

	return os.WriteFile(c.path, data, 0644)
}
