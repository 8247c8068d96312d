package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-anno/internal/cache"
)

type convertOptions struct {
	input     string
	output    string
	format    string
	chrom     string
	fastaPath string
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [flags]",
		Short: "Convert transcript tables to a DuckDB transcript file",
		Long: `Load transcripts from a UCSC table directory (or a directory of JSON
transcript files) and write them to a DuckDB file that annotate and lookup
accept with --transcripts.`,
		Example: `  vibe-anno convert -o hg19.duckdb
  vibe-anno convert -i ~/data/hg38 -o hg38.duckdb --chrom 17
  vibe-anno convert -i fixtures --format json --fasta mrna.fa -o test.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.input == "" {
				opts.input = viper.GetString(keyTranscriptsDir)
			}
			return runConvert(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Input directory (default: transcripts.dir)")
	f.StringVarP(&opts.output, "output", "o", "", "Output DuckDB file path")
	f.StringVar(&opts.format, "format", "ucsc", "Input format: ucsc, json")
	f.StringVar(&opts.chrom, "chrom", "", "Only convert one chromosome")
	f.StringVar(&opts.fastaPath, "fasta", "", "FASTA file of mRNA sequences to attach")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runConvert(opts convertOptions) (err error) {
	logger, err := newLogger(viper.GetBool(keyVerbose))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	output := opts.output
	if ext := filepath.Ext(output); ext != ".duckdb" && ext != ".db" {
		output += ".duckdb"
	}

	src := cache.New()
	switch opts.format {
	case "ucsc":
		loader := cache.NewUCSCLoader(opts.input)
		loader.SetLogger(logger)
		if _, err := loader.Load(src); err != nil {
			return err
		}
	case "json":
		if err := cache.NewLoader(opts.input).LoadAll(src); err != nil {
			return err
		}
	default:
		return usageError("unknown input format %q", opts.format)
	}

	if opts.fastaPath != "" {
		fa := cache.NewFASTALoader(opts.fastaPath)
		if err := fa.Load(); err != nil {
			return fmt.Errorf("load FASTA: %w", err)
		}
		logger.Info("attached sequences",
			zap.String("path", opts.fastaPath),
			zap.Int("transcripts", fa.Attach(src)))
	}

	if opts.chrom != "" {
		filtered := cache.New()
		for _, t := range src.FindTranscriptsByChrom(opts.chrom) {
			filtered.AddTranscript(t)
		}
		src = filtered
	}

	if src.TranscriptCount() == 0 {
		return fmt.Errorf("convert %s: %w", opts.input, cache.ErrNoTranscripts)
	}

	if _, statErr := os.Stat(output); statErr == nil {
		if err := os.Remove(output); err != nil {
			return fmt.Errorf("remove existing %s: %w", output, err)
		}
	}

	db, err := cache.NewDuckDBLoader(output)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if err := db.CreateSchema(); err != nil {
		return err
	}
	if err := db.InsertCache(src); err != nil {
		return err
	}

	count, err := db.TranscriptCount()
	if err != nil {
		return fmt.Errorf("verify count: %w", err)
	}
	logger.Info("conversion complete",
		zap.String("output", output),
		zap.Int("transcripts", count),
		zap.Int("chromosomes", len(src.Chromosomes())))
	return nil
}
