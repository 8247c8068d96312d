package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/cache"
	"github.com/inodb/vibe-anno/internal/vcf"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func frameshift() VariantResult {
	return VariantResult{
		Chrom: "1", Pos: 17087544, Ref: "GCTGT", Alt: "-",
		Result: annotate.Result{
			Type:       annotate.FSDeletion,
			Text:       "MST1P9(uc010ock.2:exon2:c.117_121del:p.39_41del)",
			GeneSymbol: "MST1P9",
			GeneID:     646226,
		},
	}
}

func downstream() VariantResult {
	return VariantResult{
		Chrom: "1", Pos: 949925, Ref: "C", Alt: "T",
		Result: annotate.Result{
			Type:          annotate.Downstream,
			Text:          "ISG15,HES4",
			GeneSymbol:    "ISG15",
			MultipleGenes: true,
		},
	}
}

// --- Result store tests (DuckDB) ---

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndLookupVariants(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	require.NoError(t, s.WriteVariantResults(ctx, []VariantResult{frameshift(), downstream()}))

	got, err := s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, frameshift(), *got)

	got, err = s.LookupVariant("1", 949925, "C", "T")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Result.MultipleGenes)
	assert.Equal(t, 0, got.Result.GeneID)

	got, err = s.LookupVariant("1", 99999, "C", "A")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteVariantResults_Dedup(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	changed := frameshift()
	changed.Result.Text = "changed"
	require.NoError(t, s.WriteVariantResults(ctx, []VariantResult{frameshift(), changed}))

	n, err := s.CountVariantResults()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	assert.Equal(t, frameshift().Result.Text, got.Result.Text, "first in a batch wins")

	// A later batch replaces the stored row.
	require.NoError(t, s.WriteVariantResults(ctx, []VariantResult{changed, downstream()}))
	n, err = s.CountVariantResults()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err = s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Result.Text)
	assert.Equal(t, 0, stagingCount(t, s))
}

func stagingCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT count(*) FROM variant_results_staging").Scan(&n))
	return n
}

func TestWriteVariantResults_FailedAppendClearsStaging(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	// gene_id as VARCHAR makes the appender reject the batch. The leftover
	// row must be cleared anyway.
	_, err := s.db.Exec(`CREATE OR REPLACE TABLE variant_results_staging (` +
		strings.Replace(resultColumns, "gene_id INTEGER", "gene_id VARCHAR", 1) + `)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO variant_results_staging VALUES
		('1', 1, 'A', 'G', 'INTERGENIC', 'MODIFIER', '', '0', false, '')`)
	require.NoError(t, err)

	err = s.WriteVariantResults(ctx, []VariantResult{frameshift()})
	require.Error(t, err)
	assert.Equal(t, 0, stagingCount(t, s))

	n, err := s.CountVariantResults()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteVariantResults_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteVariantResults(context.Background(), nil))
}

func TestClearVariantResults(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteVariantResults(context.Background(), []VariantResult{frameshift()}))
	got, err := s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, s.ClearVariantResults())

	got, err = s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchByGeneAndType(t *testing.T) {
	s := openInMemory(t)
	second := frameshift()
	second.Pos = 17087600
	second.Ref = "A"
	require.NoError(t, s.WriteVariantResults(context.Background(), []VariantResult{second, downstream(), frameshift()}))

	found, err := s.SearchByGene("MST1P9")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(17087544), found[0].Pos, "genomic order")
	assert.Equal(t, int64(17087600), found[1].Pos)

	found, err = s.SearchByGene("HES4")
	require.NoError(t, err)
	assert.Empty(t, found, "only the first reported gene is indexed")

	found, err = s.SearchByType(annotate.Downstream)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ISG15,HES4", found[0].Result.Text)

	found, err = s.SearchByType(annotate.StopGain)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestResultSink(t *testing.T) {
	s := openInMemory(t)
	sink := NewResultSink(context.Background(), s, 2)
	require.NoError(t, sink.WriteHeader())

	variants := []*vcf.Variant{
		{Chrom: "chr1", Pos: 17087543, Ref: "AGCTGT", Alt: "A"},
		{Chrom: "chr1", Pos: 949925, Ref: "C", Alt: "T"},
		{Chrom: "chr1", Pos: 1013, Ref: "G", Alt: "GTAA"},
	}
	results := []annotate.Result{frameshift().Result, downstream().Result, {Type: annotate.StopGain, Text: "TOY(x)", GeneSymbol: "TOY"}}
	for i, v := range variants {
		require.NoError(t, sink.Write(v, results[i]))
	}
	assert.Equal(t, 2, sink.Written(), "first batch flushed when full")
	require.NoError(t, sink.Flush())
	assert.Equal(t, 3, sink.Written())

	got, err := s.LookupVariant("1", 17087544, "GCTGT", "-")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, annotate.FSDeletion, got.Result.Type)

	got, err = s.LookupVariant("1", 1013, "-", "TAA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "TOY", got.Result.GeneSymbol)
}

// --- Transcript cache tests (gob) ---

func codingTranscript(t *testing.T) *cache.Transcript {
	t.Helper()
	tx := &cache.Transcript{
		ID: "uc001amg.3", GeneSymbol: "RNF207", GeneID: 388591,
		Chrom: "1", Strand: 1, TxStart: 1001, TxEnd: 1350,
		CDSStart: 1011, CDSEnd: 1331,
		ExonStarts: []int64{1001, 1101, 1301},
		ExonEnds:   []int64{1050, 1200, 1350},
	}
	require.NoError(t, tx.Init())
	return tx
}

func TestTranscriptCacheWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	tc := NewTranscriptCache(dir)

	c := cache.New()
	c.AddTranscript(codingTranscript(t))
	nc := &cache.Transcript{
		ID: "uc001nc.1", GeneSymbol: "NCRNA", Chrom: "chrX", Strand: -1,
		TxStart: 2001, TxEnd: 2200,
		ExonStarts: []int64{2001, 2101}, ExonEnds: []int64{2050, 2200},
	}
	require.NoError(t, nc.Init())
	c.AddTranscript(nc)

	fp := FileFingerprint{Size: 1000, ModTime: time.Now()}
	require.NoError(t, tc.Write(c, fp, fp))

	c2 := cache.New()
	require.NoError(t, tc.Load(c2))

	assert.Equal(t, 2, c2.TranscriptCount())
	assert.Equal(t, []string{"1", "X"}, c2.Chromosomes())

	rnf := c2.GetTranscript("uc001amg.3")
	require.NotNil(t, rnf)
	assert.Equal(t, "RNF207", rnf.GeneSymbol)
	assert.Equal(t, 388591, rnf.GeneID)
	assert.Equal(t, []int64{1101, 1200}, []int64{rnf.ExonStarts[1], rnf.ExonEnds[1]})
	assert.Equal(t, int64(171), rnf.CDSLength(), "derived fields rebuilt on load")
	assert.Equal(t, int64(11), rnf.RefCDSStart())

	ncLoaded := c2.GetTranscript("uc001nc.1")
	require.NotNil(t, ncLoaded)
	assert.False(t, ncLoaded.IsCoding())
	assert.Equal(t, int8(-1), ncLoaded.Strand)
}

func TestTranscriptCacheValidation(t *testing.T) {
	dir := t.TempDir()
	tc := NewTranscriptCache(dir)

	now := time.Now()
	genes := FileFingerprint{Path: "knownGene.txt", Size: 1000, ModTime: now}
	xref := FileFingerprint{Path: "kgXref.txt", Size: 2000, ModTime: now}
	mrna := FileFingerprint{Path: "knownGeneMrna.txt", Size: -1}

	// No cache yet → invalid
	assert.False(t, tc.Valid(genes, xref, mrna))

	c := cache.New()
	c.AddTranscript(codingTranscript(t))
	require.NoError(t, tc.Write(c, genes, xref, mrna))

	// Same fingerprints → valid
	assert.True(t, tc.Valid(genes, xref, mrna))

	// Different size → stale
	changed := genes
	changed.Size = 9999
	assert.False(t, tc.Valid(changed, xref, mrna))

	// Different modtime → stale
	touched := xref
	touched.ModTime = now.Add(time.Hour)
	assert.False(t, tc.Valid(genes, touched, mrna))

	// A new optional file → stale
	assert.False(t, tc.Valid(genes, xref, FileFingerprint{Size: 10, ModTime: now}))

	// Different source count → stale
	assert.False(t, tc.Valid(genes, xref))
}

func TestTranscriptCacheClear(t *testing.T) {
	tc := NewTranscriptCache(t.TempDir())
	fp := FileFingerprint{Size: 100, ModTime: time.Now()}

	c := cache.New()
	c.AddTranscript(codingTranscript(t))
	require.NoError(t, tc.Write(c, fp))
	assert.True(t, tc.Valid(fp))

	require.NoError(t, tc.Clear())
	assert.False(t, tc.Valid(fp))
	require.NoError(t, tc.Clear(), "clearing twice is fine")
}

func TestStatFiles(t *testing.T) {
	dir := t.TempDir()
	genes := filepath.Join(dir, "knownGene.txt")
	require.NoError(t, os.WriteFile(genes, []byte("x\n"), 0644))

	fps, err := StatFiles(genes, filepath.Join(dir, "kgXref.txt"))
	require.NoError(t, err)
	require.Len(t, fps, 2)
	assert.Equal(t, int64(2), fps[0].Size)
	assert.Equal(t, int64(-1), fps[1].Size)

	_, err = StatFiles(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err, "the first file is required")
}
