package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/inodb/vibe-anno/internal/cache"
)

// TranscriptCache manages gob-serialized transcript data on disk.
// Files are stored alongside the UCSC source tables:
//
//	{dir}/transcripts.gob       (serialized transcripts)
//	{dir}/transcripts.gob.meta  (source file fingerprints)
type TranscriptCache struct {
	dir string
}

// NewTranscriptCache creates a transcript cache for the given directory.
func NewTranscriptCache(dir string) *TranscriptCache {
	return &TranscriptCache{dir: dir}
}

func (tc *TranscriptCache) gobPath() string {
	return filepath.Join(tc.dir, "transcripts.gob")
}

func (tc *TranscriptCache) metaPath() string {
	return filepath.Join(tc.dir, "transcripts.gob.meta")
}

// Valid checks whether the cached transcripts were built from sources with
// exactly these fingerprints, in this order.
func (tc *TranscriptCache) Valid(sources ...FileFingerprint) bool {
	meta, err := tc.readMeta()
	if err != nil {
		return false
	}

	if meta["sources"] != strconv.Itoa(len(sources)) {
		return false
	}
	for i, fp := range sources {
		for k, v := range fingerprintFields(i, fp) {
			if meta[k] != v {
				return false
			}
		}
	}

	// Verify gob file exists
	if _, err := os.Stat(tc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized transcripts from disk into the cache. Derived
// coordinates are rebuilt with Transcript.Init.
func (tc *TranscriptCache) Load(c *cache.Cache) error {
	f, err := os.Open(tc.gobPath())
	if err != nil {
		return fmt.Errorf("open transcript cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*cache.Transcript
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode transcript cache: %w", err)
	}

	for _, transcripts := range data {
		for _, t := range transcripts {
			if err := t.Init(); err != nil {
				return fmt.Errorf("decode transcript cache: %w", err)
			}
			c.AddTranscript(t)
		}
	}
	return nil
}

// Write serializes all transcripts from the cache to disk.
func (tc *TranscriptCache) Write(c *cache.Cache, sources ...FileFingerprint) error {
	data := make(map[string][]*cache.Transcript)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.FindTranscriptsByChrom(chrom)
	}

	if err := os.MkdirAll(tc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	f, err := os.Create(tc.gobPath())
	if err != nil {
		return fmt.Errorf("create transcript cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(tc.gobPath())
		return fmt.Errorf("encode transcript cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcript cache: %w", err)
	}

	return tc.writeMeta(sources)
}

// Clear removes the cached transcript files. Missing files are not an error.
func (tc *TranscriptCache) Clear() error {
	var err error
	for _, p := range []string{tc.gobPath(), tc.metaPath()} {
		if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	return err
}

func fingerprintFields(i int, fp FileFingerprint) map[string]string {
	prefix := "source" + strconv.Itoa(i) + "_"
	return map[string]string{
		prefix + "size":    strconv.FormatInt(fp.Size, 10),
		prefix + "modtime": fp.ModTime.UTC().Format(time.RFC3339Nano),
	}
}

func (tc *TranscriptCache) writeMeta(sources []FileFingerprint) error {
	lines := []string{"sources=" + strconv.Itoa(len(sources))}
	for i, fp := range sources {
		prefix := "source" + strconv.Itoa(i) + "_"
		f := fingerprintFields(i, fp)
		lines = append(lines,
			prefix+"path="+fp.Path,
			prefix+"size="+f[prefix+"size"],
			prefix+"modtime="+f[prefix+"modtime"],
		)
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(tc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (tc *TranscriptCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(tc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
