package cache

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFASTALoader_ParseHeader(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{">uc001aaa.3 GENEA mRNA", "uc001aaa.3"},
		{">uc001aaa.3|GENEA|extra", "uc001aaa.3"},
		{">uc001aaa.3\tdescription", "uc001aaa.3"},
		{">uc001aaa.3", "uc001aaa.3"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHeader(tt.header))
		})
	}
}

func TestFASTALoader_ParseFASTA(t *testing.T) {
	fastaContent := `>uc001aaa.3 GENEA
atgactgaat
ataaactt
>uc001bbb.1
ATGCGATCG
`

	loader := NewFASTALoader("")
	require.NoError(t, loader.parseFASTA(strings.NewReader(fastaContent)))

	assert.Equal(t, 2, loader.SequenceCount())
	assert.Equal(t, "ATGACTGAATATAAACTT", loader.GetSequence("uc001aaa.3"))
	assert.Equal(t, "ATGCGATCG", loader.GetSequence("uc001bbb.1"))
	assert.True(t, loader.HasSequence("uc001bbb.1"))
	assert.False(t, loader.HasSequence("uc001bbb"), "version is part of the accession")
	assert.Empty(t, loader.GetSequence("missing"))
}

func TestFASTALoader_LoadGzipAndAttach(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mrna.fa.gz")
	writeGzip(t, path, ">uc000tst.1\n"+strings.Repeat("G", 131)+"\n")

	loader := NewFASTALoader(path)
	require.NoError(t, loader.Load())
	assert.Equal(t, 1, loader.SequenceCount())

	c := New()
	tx := newTestTranscript(t, 1)
	c.AddTranscript(tx)
	c.AddTranscript(span("other", 1, 10, 1))

	assert.Equal(t, 1, loader.Attach(c))
	assert.Len(t, tx.Sequence, 131)
	assert.Equal(t, 0, loader.Attach(c), "existing sequences are kept")
}

func TestFASTALoader_MissingFile(t *testing.T) {
	assert.Error(t, NewFASTALoader(filepath.Join(t.TempDir(), "nope.fa")).Load())
}
