package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/duckdb"
	"github.com/inodb/vibe-anno/internal/output"
	"github.com/inodb/vibe-anno/internal/vcf"
)

type annotateOptions struct {
	transcripts  string
	outputFormat string
	outputFile   string
	storePath    string
	workers      int
	noCache      bool
}

func newAnnotateCmd() *cobra.Command {
	var opts annotateOptions

	cmd := &cobra.Command{
		Use:   "annotate [flags] <input.vcf>",
		Short: "Classify the variants of a VCF file",
		Long: `Classify every alternate allele of a VCF file (plain or gzipped, '-' for
stdin) and write one merged annotation per allele.`,
		Example: `  vibe-anno annotate input.vcf
  vibe-anno annotate -f vcf -o annotated.vcf input.vcf.gz
  vibe-anno annotate --transcripts knownGene.duckdb --store results.duckdb input.vcf
  cat input.vcf | vibe-anno annotate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.BindPFlag(keyTranscriptsDir, cmd.Flags().Lookup("transcripts"))
			viper.BindPFlag(keyStorePath, cmd.Flags().Lookup("store"))
			viper.BindPFlag(keyWorkers, cmd.Flags().Lookup("workers"))
			opts.transcripts = viper.GetString(keyTranscriptsDir)
			opts.storePath = viper.GetString(keyStorePath)
			opts.workers = viper.GetInt(keyWorkers)
			return runAnnotate(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.transcripts, "transcripts", "t", "", "UCSC table directory or DuckDB transcript file (default ~/.vibe-anno/hg19)")
	f.StringVarP(&opts.outputFormat, "output-format", "f", "tab", "Output format: tab, vcf")
	f.StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&opts.storePath, "store", "", "Also write results to this DuckDB file")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Annotation workers (0 = all CPUs)")
	f.BoolVar(&opts.noCache, "no-cache", false, "Ignore and do not write the transcript gob cache")
	return cmd
}

func runAnnotate(ctx context.Context, inputPath string, opts annotateOptions, stdout io.Writer) (err error) {
	logger, err := newLogger(viper.GetBool(keyVerbose))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := classifierConfig()
	if err != nil {
		return usageError("%v", err)
	}
	if opts.outputFormat != "tab" && opts.outputFormat != "vcf" {
		return usageError("unknown output format %q", opts.outputFormat)
	}

	var parser *vcf.Parser
	if inputPath == "-" {
		parser, err = vcf.NewParserFromReader(os.Stdin)
	} else {
		parser, err = vcf.NewParser(inputPath)
	}
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, parser.Close()) }()

	c, err := loadTranscripts(opts.transcripts, opts.noCache, logger)
	if err != nil {
		return err
	}
	ann := annotate.NewAnnotator(c, cfg)
	ann.SetLogger(logger)

	out := stdout
	if opts.outputFile != "" {
		f, createErr := os.Create(opts.outputFile)
		if createErr != nil {
			return fmt.Errorf("create output file: %w", createErr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		out = f
	}

	var writer annotate.ResultWriter
	switch opts.outputFormat {
	case "tab":
		writer = output.NewTabWriter(out)
	case "vcf":
		writer = output.NewVCFWriter(out, parser.Header())
	}

	var sink *duckdb.ResultSink
	if opts.storePath != "" {
		store, openErr := duckdb.Open(opts.storePath)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		sink = duckdb.NewResultSink(ctx, store, duckdb.DefaultBatchSize)
		writer = output.NewMultiWriter(writer, sink)
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := ann.AnnotateAll(parser, writer, opts.workers); err != nil {
		return err
	}

	if sink != nil {
		logger.Info("stored results", zap.String("path", opts.storePath), zap.Int("results", sink.Written()))
	}
	return nil
}
