package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DuckDBLoader {
	t.Helper()
	loader, err := NewDuckDBLoader(filepath.Join(t.TempDir(), "transcripts.duckdb"))
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })
	require.NoError(t, loader.CreateSchema())
	return loader
}

func TestDuckDBLoader_RoundTrip(t *testing.T) {
	loader := openTestDB(t)

	tx := newTestTranscript(t, -1)
	tx.Sequence = "ACGT"
	require.NoError(t, loader.InsertTranscript(tx))

	count, err := loader.TranscriptCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := loader.GetTranscript("uc000tst.1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.GeneSymbol, got.GeneSymbol)
	assert.Equal(t, tx.GeneID, got.GeneID)
	assert.Equal(t, int8(-1), got.Strand)
	assert.Equal(t, tx.ExonStarts, got.ExonStarts)
	assert.Equal(t, tx.ExonEnds, got.ExonEnds)
	assert.Equal(t, "ACGT", got.Sequence)
	assert.Equal(t, tx.RefCDSStart(), got.RefCDSStart())

	missing, err := loader.GetTranscript("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDuckDBLoader_InsertCacheAndLoad(t *testing.T) {
	loader := openTestDB(t)

	src := New()
	src.AddTranscript(newTestTranscript(t, 1))
	other := newTestTranscript(t, 1)
	other.ID = "uc000oth.1"
	other.Chrom = "X"
	src.AddTranscript(other)
	require.NoError(t, loader.InsertCache(src))

	chroms, err := loader.Chromosomes()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "X"}, chroms)

	all := New()
	require.NoError(t, loader.LoadNonEmpty(all))
	assert.Equal(t, 2, all.TranscriptCount())

	one := New()
	require.NoError(t, loader.LoadChromosome(one, "chrX"))
	assert.Equal(t, 1, one.TranscriptCount())
	assert.NotNil(t, one.GetTranscript("uc000oth.1"))
}

func TestDuckDBLoader_Empty(t *testing.T) {
	loader := openTestDB(t)
	assert.ErrorIs(t, loader.LoadNonEmpty(New()), ErrNoTranscripts)
}

func TestIsDuckDB(t *testing.T) {
	assert.True(t, IsDuckDB("a.duckdb"))
	assert.True(t, IsDuckDB("s3://bucket/a"))
	assert.False(t, IsDuckDB("knownGene.txt"))
}
