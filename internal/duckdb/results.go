package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/vcf"
)

// VariantResult is one stored classification. Alleles are in the minimal
// form, with "-" for no bases.
type VariantResult struct {
	Chrom  string
	Pos    int64
	Ref    string
	Alt    string
	Result annotate.Result
}

// NewVariantResult converts a VCF record and its result to the stored form.
func NewVariantResult(v *vcf.Variant, r annotate.Result) VariantResult {
	pos, ref, alt := v.Alleles()
	return VariantResult{Chrom: v.NormalizeChrom(), Pos: pos, Ref: ref, Alt: alt, Result: r}
}

// resultKey is the composite key for deduplicating results before writing.
type resultKey struct {
	chrom, ref, alt string
	pos             int64
}

// WriteVariantResults batch-inserts results using the Appender API. Within a
// batch the first result per (chrom, pos, ref, alt) wins; a stored result
// for the same key is replaced.
func (s *Store) WriteVariantResults(ctx context.Context, results []VariantResult) (err error) {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	deduped := make([]VariantResult, 0, len(results))
	for _, r := range results {
		k := resultKey{r.Chrom, r.Ref, r.Alt, r.Pos}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	defer func() {
		if _, clearErr := conn.ExecContext(ctx, "DELETE FROM variant_results_staging"); clearErr != nil {
			err = multierr.Append(err, fmt.Errorf("clear staging: %w", clearErr))
		}
	}()
	if err := appendStaging(conn, deduped); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO variant_results SELECT * FROM variant_results_staging"); err != nil {
		return fmt.Errorf("merge variant results: %w", err)
	}
	return nil
}

func appendStaging(conn *sql.Conn, results []VariantResult) (err error) {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variant_results_staging")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer func() {
		err = multierr.Append(err, appender.Close())
	}()

	for _, r := range results {
		res := r.Result
		if err := appender.AppendRow(
			r.Chrom, r.Pos, r.Ref, r.Alt,
			res.Type.String(), res.Type.Impact(),
			res.GeneSymbol, int32(res.GeneID), res.MultipleGenes, res.Text,
		); err != nil {
			return fmt.Errorf("append variant result: %w", err)
		}
	}
	return appender.Flush()
}

// ClearVariantResults removes all stored results.
func (s *Store) ClearVariantResults() error {
	_, err := s.db.Exec("DELETE FROM variant_results")
	return err
}

// CountVariantResults returns the number of stored results.
func (s *Store) CountVariantResults() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT count(*) FROM variant_results").Scan(&n)
	return n, err
}

const selectResults = `SELECT
		chrom, pos, ref, alt, variant_type,
		gene_symbol, gene_id, multiple_genes, annotation
		FROM variant_results`

// LookupVariant returns the stored result of one variant, or nil when the
// variant has not been classified.
func (s *Store) LookupVariant(chrom string, pos int64, ref, alt string) (*VariantResult, error) {
	rows, err := s.db.Query(selectResults+` WHERE chrom=? AND pos=? AND ref=? AND alt=?`,
		chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}
	defer rows.Close()

	results, err := scanVariantResults(rows)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

// SearchByGene returns the stored results whose first reported gene is
// geneSymbol, in genomic order.
func (s *Store) SearchByGene(geneSymbol string) ([]VariantResult, error) {
	rows, err := s.db.Query(selectResults+` WHERE gene_symbol=? ORDER BY chrom, pos, ref, alt`, geneSymbol)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanVariantResults(rows)
}

// SearchByType returns the stored results of one variant type, in genomic
// order.
func (s *Store) SearchByType(vt annotate.VariantType) ([]VariantResult, error) {
	rows, err := s.db.Query(selectResults+` WHERE variant_type=? ORDER BY chrom, pos, ref, alt`, vt.String())
	if err != nil {
		return nil, fmt.Errorf("query by type: %w", err)
	}
	defer rows.Close()

	return scanVariantResults(rows)
}

// scanVariantResults scans rows into VariantResult slices.
func scanVariantResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]VariantResult, error) {
	var results []VariantResult
	for rows.Next() {
		var r VariantResult
		var vt string
		var geneID int32

		if err := rows.Scan(
			&r.Chrom, &r.Pos, &r.Ref, &r.Alt, &vt,
			&r.Result.GeneSymbol, &geneID, &r.Result.MultipleGenes, &r.Result.Text,
		); err != nil {
			return nil, fmt.Errorf("scan variant result: %w", err)
		}
		parsed, err := annotate.ParseVariantType(vt)
		if err != nil {
			return nil, fmt.Errorf("scan variant result: %w", err)
		}
		r.Result.Type = parsed
		r.Result.GeneID = int(geneID)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant results: %w", err)
	}
	return results, nil
}

// ResultSink collects results during a run and writes them to the store in
// batches. It implements annotate.ResultWriter.
type ResultSink struct {
	store     *Store
	ctx       context.Context
	batchSize int
	pending   []VariantResult
	written   int
}

// DefaultBatchSize is the number of results buffered before a write.
const DefaultBatchSize = 10000

// NewResultSink creates a sink writing to s. A batchSize below 1 uses
// DefaultBatchSize.
func NewResultSink(ctx context.Context, s *Store, batchSize int) *ResultSink {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &ResultSink{store: s, ctx: ctx, batchSize: batchSize}
}

// WriteHeader is a no-op.
func (rs *ResultSink) WriteHeader() error { return nil }

// Write buffers one result and writes the batch when it is full.
func (rs *ResultSink) Write(v *vcf.Variant, r annotate.Result) error {
	rs.pending = append(rs.pending, NewVariantResult(v, r))
	if len(rs.pending) >= rs.batchSize {
		return rs.Flush()
	}
	return nil
}

// Flush writes all buffered results.
func (rs *ResultSink) Flush() error {
	if len(rs.pending) == 0 {
		return nil
	}
	if err := rs.store.WriteVariantResults(rs.ctx, rs.pending); err != nil {
		return err
	}
	rs.written += len(rs.pending)
	rs.pending = rs.pending[:0]
	return nil
}

// Written returns the number of results flushed so far.
func (rs *ResultSink) Written() int {
	return rs.written
}
