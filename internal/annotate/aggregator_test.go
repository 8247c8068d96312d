package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ann(vt VariantType, gene, change string, cdsPos int64) Annotation {
	return Annotation{Type: vt, GeneSymbol: gene, Change: change, CDSPos: cdsPos}
}

func finalize(t *testing.T, anns ...Annotation) Result {
	t.Helper()
	l := NewAnnotationList()
	for _, a := range anns {
		l.Add(a)
	}
	r, err := l.Finalize()
	require.NoError(t, err)
	return r
}

func TestAnnotationList_Empty(t *testing.T) {
	l := NewAnnotationList()
	_, err := l.Finalize()
	assert.ErrorIs(t, err, ErrEmptyAnnotationList)
}

func TestAnnotationList_DuplicateSuppression(t *testing.T) {
	l := NewAnnotationList()
	a := ann(Nonsynonymous, "G", "tx1:exon2:c.5A>G:p.K2R", 5)
	assert.True(t, l.Add(a))
	assert.False(t, l.Add(a))
	assert.True(t, l.Add(ann(Nonsynonymous, "G", "tx2:exon2:c.5A>G:p.K2R", 5)))
	assert.True(t, l.Add(ann(Intronic, "G", "", 0)))
	assert.False(t, l.Add(ann(Intronic, "G", "", 0)))
	assert.Equal(t, 3, l.Len())
}

func TestAnnotationList_ResetReusesList(t *testing.T) {
	l := NewAnnotationList()
	l.Add(ann(Intronic, "A", "", 0))
	l.Add(ann(Intronic, "B", "", 0))
	_, err := l.Finalize()
	require.NoError(t, err)

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.genes)
	_, err = l.Finalize()
	assert.ErrorIs(t, err, ErrEmptyAnnotationList)

	l.Add(ann(Downstream, "C", "", 0))
	r, err := l.Finalize()
	require.NoError(t, err)
	assert.Equal(t, Result{Type: Downstream, Text: "C", GeneSymbol: "C"}, r)
}

func TestAnnotationList_MergeSortsByCDSPosition(t *testing.T) {
	r := finalize(t,
		ann(Synonymous, "GENE", "tx2:exon3:c.300A>G:p.A100A", 300),
		ann(Synonymous, "GENE", "tx1:exon2:c.120A>G:p.A40A", 120),
	)
	assert.Equal(t, Synonymous, r.Type)
	assert.Equal(t, "GENE(tx1:exon2:c.120A>G:p.A40A,tx2:exon3:c.300A>G:p.A100A)", r.Text)
	assert.False(t, r.MultipleGenes)
}

func TestAnnotationList_MultiGeneGroups(t *testing.T) {
	r := finalize(t,
		ann(FSDeletion, "B", "b1:exon1:c.10del:p.4del", 10),
		ann(Nonsynonymous, "A", "a1:exon1:c.5C>T:p.P2L", 5),
		ann(StopGain, "A", "a2:exon1:c.20C>T:p.Q7*", 20),
	)
	assert.Equal(t, "A(a1:exon1:c.5C>T:p.P2L,a2:exon1:c.20C>T:p.Q7*) B(b1:exon1:c.10del:p.4del)", r.Text)
	assert.Equal(t, Nonsynonymous, r.Type, "first exonic annotation after sorting")
	assert.True(t, r.MultipleGenes)
	assert.Equal(t, "A", r.GeneSymbol)
}

func TestAnnotationList_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		anns     []Annotation
		wantType VariantType
		wantText string
	}{
		{
			"exonic beats intronic",
			[]Annotation{ann(Intronic, "A", "", 0), ann(Splicing, "B", "b:exon2:c.10-1G>A", 0)},
			Splicing, "B(b:exon2:c.10-1G>A)",
		},
		{
			"tier two is returned together",
			[]Annotation{ann(Intronic, "A", "", 0), ann(UTR3, "B", "b:c.*5A>G", 205), ann(Synonymous, "C", "c:exon1:c.3G>A:p.M1M", 3)},
			UTR3, "A C(c:exon1:c.3G>A:p.M1M) B(b:c.*5A>G)",
		},
		{
			"UTR5 and UTR3 beat synonymous",
			[]Annotation{ann(UTR5, "A", "", -3), ann(UTR3, "B", "", 400), ann(Synonymous, "C", "c:exon1:c.3G>A:p.M1M", 3)},
			UTR53, "A C(c:exon1:c.3G>A:p.M1M) B",
		},
		{
			"UTR5 and UTR3 combine",
			[]Annotation{ann(UTR5, "A", "", -3), ann(UTR3, "B", "", 400)},
			UTR53, "A,B",
		},
		{
			"intronic wins the scan over ncRNA exonic",
			[]Annotation{ann(NcRNAExonic, "NC", "", 0), ann(Intronic, "A", "", 0)},
			Intronic, "A,NC",
		},
		{
			"ncRNA exonic over ncRNA intronic",
			[]Annotation{ann(NcRNAIntronic, "N1", "", 0), ann(NcRNAExonic, "N2", "", 0)},
			NcRNAExonic, "N1,N2",
		},
		{
			"error only when nothing else",
			[]Annotation{ann(Error, "", "tx: bad", 0), ann(Intergenic, "", "L(dist=1),R(dist=2)", 0)},
			Intergenic, "L(dist=1),R(dist=2)",
		},
		{
			"errors are joined",
			[]Annotation{ann(Error, "", "tx1: bad", 0), ann(Error, "", "tx2: bad", 0)},
			Error, "tx1: bad,tx2: bad",
		},
		{
			"upstream and downstream",
			[]Annotation{ann(Upstream, "Z", "", 0), ann(Downstream, "A", "", 0)},
			Downstream, "Z,A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := finalize(t, tt.anns...)
			assert.Equal(t, tt.wantType, r.Type)
			assert.Equal(t, tt.wantText, r.Text)
		})
	}
}

func TestCategoryOf(t *testing.T) {
	for _, vt := range []VariantType{Splicing, StopLoss, StopGain, Nonsynonymous,
		NonFSSubstitution, NonFSInsertion, NonFSDeletion, FSSubstitution, FSDeletion, FSInsertion} {
		assert.Equal(t, catExonic, categoryOf(vt), vt.String())
		assert.True(t, vt.IsExonic(), vt.String())
	}
	assert.Equal(t, catSynonymous, categoryOf(Synonymous))
	assert.Equal(t, catUTR3, categoryOf(UTR53))
	assert.Equal(t, catError, categoryOf(Error))
	assert.False(t, Error.IsExonic())
	assert.Equal(t, "ncRNA_intronic", catNcIntronic.String())
}
