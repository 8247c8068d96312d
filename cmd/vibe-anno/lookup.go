package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/duckdb"
)

func newLookupCmd() *cobra.Command {
	var (
		transcripts string
		storePath   string
		byType      bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "lookup [flags] <variant|gene|type>",
		Short: "Classify one variant or search stored results",
		Long: `Classify a single variant given as chrom:pos:ref:alt (alleles may be '-'),
or search a result store written by 'annotate --store' by gene symbol or,
with --type, by variant type.`,
		Example: `  vibe-anno lookup 1:6278414:A:G
  vibe-anno lookup chr1:17087544:GCTGT:-
  vibe-anno lookup --store results.duckdb KDM4A
  vibe-anno lookup --store results.duckdb --type STOPGAIN`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.BindPFlag(keyTranscriptsDir, cmd.Flags().Lookup("transcripts"))
			viper.BindPFlag(keyStorePath, cmd.Flags().Lookup("store"))
			transcripts = viper.GetString(keyTranscriptsDir)
			storePath = viper.GetString(keyStorePath)
			out := cmd.OutOrStdout()

			if byType {
				vt, err := annotate.ParseVariantType(args[0])
				if err != nil {
					return usageError("%v", err)
				}
				return searchStore(storePath, out, func(s *duckdb.Store) ([]duckdb.VariantResult, error) {
					return s.SearchByType(vt)
				})
			}

			q, err := annotate.ParseQuery(args[0])
			if err != nil {
				return usageError("%v", err)
			}
			if q.Type == annotate.QueryGene {
				return searchStore(storePath, out, func(s *duckdb.Store) ([]duckdb.VariantResult, error) {
					return s.SearchByGene(q.Gene)
				})
			}
			return classifyQuery(q, transcripts, noCache, out)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&transcripts, "transcripts", "t", "", "UCSC table directory or DuckDB transcript file")
	f.StringVar(&storePath, "store", "", "DuckDB result store to search")
	f.BoolVar(&byType, "type", false, "Treat the argument as a variant type")
	f.BoolVar(&noCache, "no-cache", false, "Ignore the transcript gob cache")
	return cmd
}

func classifyQuery(q *annotate.Query, transcripts string, noCache bool, out io.Writer) error {
	logger, err := newLogger(viper.GetBool(keyVerbose))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := classifierConfig()
	if err != nil {
		return usageError("%v", err)
	}
	code, ok := cfg.ChromosomeCode(q.Chrom)
	if !ok {
		return fmt.Errorf("%w: %s", annotate.ErrUnknownChromosome, q.Chrom)
	}

	c, err := loadTranscripts(transcripts, noCache, logger)
	if err != nil {
		return err
	}
	r, err := annotate.NewAnnotator(c, cfg).Classify(code, q.Pos, q.Ref, q.Alt)
	if err != nil {
		return err
	}

	return printResults(out, []duckdb.VariantResult{{
		Chrom: q.Chrom, Pos: q.Pos, Ref: q.Ref, Alt: q.Alt, Result: r,
	}})
}

func searchStore(path string, out io.Writer, search func(*duckdb.Store) ([]duckdb.VariantResult, error)) (err error) {
	if path == "" {
		return usageError("searching stored results requires --store")
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	results, err := search(store)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "no stored results")
		return nil
	}
	return printResults(out, results)
}

func printResults(out io.Writer, results []duckdb.VariantResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tTYPE\tGENE\tANNOTATION")
	for _, r := range results {
		gene := r.Result.GeneSymbol
		if gene == "" {
			gene = "-"
		}
		fmt.Fprintf(tw, "%s:%d:%s:%s\t%s\t%s\t%s\n",
			r.Chrom, r.Pos, r.Ref, r.Alt, r.Result.Type, gene, r.Result.Text)
	}
	return tw.Flush()
}
