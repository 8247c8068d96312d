package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-anno/internal/cache"
)

// genomeBase is a synthetic reference: a fixed repeat with per-test
// overrides.
func genomeBase(pos int64, overrides map[int64]byte) byte {
	if b, ok := overrides[pos]; ok {
		return b
	}
	return "ACGTTGCA"[pos%8]
}

// bases places seq on the synthetic reference starting at pos.
func bases(pos int64, seq string) map[int64]byte {
	m := make(map[int64]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		m[pos+int64(i)] = seq[i]
	}
	return m
}

// newTx builds a transcript on chromosome 1 whose mRNA is spliced from the
// synthetic reference.
func newTx(t *testing.T, id, symbol string, strand int8, starts, ends []int64, cdsStart, cdsEnd int64, overrides map[int64]byte) *cache.Transcript {
	t.Helper()
	tx := &cache.Transcript{
		ID:         id,
		GeneSymbol: symbol,
		Chrom:      "1",
		Strand:     strand,
		TxStart:    starts[0],
		TxEnd:      ends[len(ends)-1],
		CDSStart:   cdsStart,
		CDSEnd:     cdsEnd,
		ExonStarts: starts,
		ExonEnds:   ends,
	}
	var b strings.Builder
	for i := range starts {
		for p := starts[i]; p <= ends[i]; p++ {
			b.WriteByte(genomeBase(p, overrides))
		}
	}
	tx.Sequence = b.String()
	if strand < 0 {
		tx.Sequence = ReverseComplement(tx.Sequence)
	}
	require.NoError(t, tx.Init())
	return tx
}

// toyTranscript is a plus-strand, three-exon coding transcript with a
// hand-written mRNA:
//
//	exons  [1001,1050] [1101,1200] [1301,1350]
//	CDS    1011..1331, c.1 at mRNA 11, 57 codons
//	codons ATG TGG AAC GAA GCT... TAA
func toyTranscript(t *testing.T) *cache.Transcript {
	t.Helper()
	cds := "ATG" + "TGG" + "AAC" + "GAA" + strings.Repeat("GCT", 52) + "TAA"
	tx := &cache.Transcript{
		ID:         "uc009toy.1",
		GeneSymbol: "TOY",
		GeneID:     7,
		Chrom:      "1",
		Strand:     1,
		TxStart:    1001,
		TxEnd:      1350,
		CDSStart:   1011,
		CDSEnd:     1331,
		ExonStarts: []int64{1001, 1101, 1301},
		ExonEnds:   []int64{1050, 1200, 1350},
		Sequence:   strings.Repeat("G", 10) + cds + strings.Repeat("C", 19),
	}
	require.NoError(t, tx.Init())
	require.Equal(t, int64(171), tx.CDSLength())
	return tx
}

// noncodingTranscript has two exons [2001,2050] [2101,2200] and no CDS.
func noncodingTranscript(t *testing.T) *cache.Transcript {
	t.Helper()
	tx := &cache.Transcript{
		ID:         "uc001nc.1",
		GeneSymbol: "NCRNA",
		Chrom:      "1",
		Strand:     1,
		TxStart:    2001,
		TxEnd:      2200,
		ExonStarts: []int64{2001, 2101},
		ExonEnds:   []int64{2050, 2200},
	}
	require.NoError(t, tx.Init())
	return tx
}

// geneSpan is a single-exon non-coding transcript covering [start, end].
func geneSpan(t *testing.T, id, symbol string, strand int8, start, end int64) *cache.Transcript {
	t.Helper()
	tx := &cache.Transcript{
		ID: id, GeneSymbol: symbol, Chrom: "1", Strand: strand,
		TxStart: start, TxEnd: end,
		ExonStarts: []int64{start}, ExonEnds: []int64{end},
	}
	require.NoError(t, tx.Init())
	return tx
}

func newTestAnnotator(transcripts ...*cache.Transcript) *Annotator {
	c := cache.New()
	for _, tx := range transcripts {
		c.AddTranscript(tx)
	}
	return NewAnnotator(c, DefaultConfig())
}

// classify runs one variant on chromosome 1.
func classify(t *testing.T, a *Annotator, pos int64, ref, alt string) Result {
	t.Helper()
	r, err := a.Classify(1, pos, ref, alt)
	require.NoError(t, err)
	return r
}
