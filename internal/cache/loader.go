package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Loader loads transcript data from JSON files (used for fixtures).
// Each file holds a JSON array of transcripts.
type Loader struct {
	dir string
}

// NewLoader creates a loader reading every *.json file in dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll loads every JSON file in the directory into the cache.
func (l *Loader) LoadAll(c *Cache) error {
	jsonFiles, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("glob json files: %w", err)
	}
	if len(jsonFiles) == 0 {
		return fmt.Errorf("no transcript json files in %s", l.dir)
	}
	sort.Strings(jsonFiles)

	for _, f := range jsonFiles {
		if err := LoadJSONFile(c, f); err != nil {
			return fmt.Errorf("load json file %s: %w", f, err)
		}
	}
	return nil
}

// LoadJSONFile loads and initializes transcripts from one JSON file.
func LoadJSONFile(c *Cache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var transcripts []*Transcript
	if err := json.NewDecoder(f).Decode(&transcripts); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	for _, t := range transcripts {
		if err := t.Init(); err != nil {
			return err
		}
		c.AddTranscript(t)
	}
	return nil
}
