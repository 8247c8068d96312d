package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-anno/internal/cache"
	"github.com/inodb/vibe-anno/internal/duckdb"
)

// loadTranscripts fills a cache from a UCSC table directory or a DuckDB
// transcript database. UCSC loads go through the gob transcript cache
// unless noCache is set.
func loadTranscripts(source string, noCache bool, logger *zap.Logger) (*cache.Cache, error) {
	c := cache.New()

	if cache.IsDuckDB(source) {
		db, err := cache.NewDuckDBLoader(source)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.LoadNonEmpty(c); err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		logger.Info("loaded transcripts from DuckDB",
			zap.String("path", source),
			zap.Int("transcripts", c.TranscriptCount()))
		return c, nil
	}

	loader := cache.NewUCSCLoader(source)
	loader.SetLogger(logger)

	fps, err := duckdb.StatFiles(loader.Files()...)
	if err != nil {
		return nil, fmt.Errorf("no knownGene table in %s (run vibe-anno download): %w", source, err)
	}

	tc := duckdb.NewTranscriptCache(source)
	if !noCache && tc.Valid(fps...) {
		err := tc.Load(c)
		if err == nil {
			logger.Info("loaded transcripts from cache",
				zap.String("dir", source),
				zap.Int("transcripts", c.TranscriptCount()))
			return c, nil
		}
		logger.Warn("transcript cache unreadable, reloading tables", zap.Error(err))
		c = cache.New()
	}

	if _, err := loader.Load(c); err != nil {
		return nil, err
	}
	if c.TranscriptCount() == 0 {
		return nil, fmt.Errorf("load %s: %w", source, cache.ErrNoTranscripts)
	}

	if !noCache {
		if err := tc.Write(c, fps...); err != nil {
			logger.Warn("could not write transcript cache", zap.Error(err))
		}
	}
	return c, nil
}
