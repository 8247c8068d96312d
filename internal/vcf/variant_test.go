package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariant_IsSNV(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"A to G", "A", "G", true},
		{"deletion", "AT", "A", false},
		{"insertion", "A", "AT", false},
		{"MNV", "AT", "GC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			assert.Equal(t, tt.want, v.IsSNV())
		})
	}
}

func TestVariant_IsSymbolic(t *testing.T) {
	for _, alt := range []string{"<DEL>", "*", ".", "G]17:198982]", "<INS:ME>"} {
		assert.True(t, (&Variant{Ref: "A", Alt: alt}).IsSymbolic(), alt)
	}
	assert.False(t, (&Variant{Ref: "A", Alt: "ACGT"}).IsSymbolic())
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"chrM", "M"},
		{"MT", "MT"},
		{"", ""},
		{"ch", "ch"},
	}

	for _, tt := range tests {
		t.Run(tt.chrom, func(t *testing.T) {
			v := &Variant{Chrom: tt.chrom}
			assert.Equal(t, tt.want, v.NormalizeChrom())
		})
	}
}

func TestVariant_Alleles(t *testing.T) {
	tests := []struct {
		name    string
		pos     int64
		ref     string
		alt     string
		wantPos int64
		wantRef string
		wantAlt string
	}{
		{"SNV unchanged", 6278414, "A", "G", 6278414, "A", "G"},
		{"anchored deletion", 17087543, "AGCTGT", "A", 17087544, "GCTGT", "-"},
		{"anchored insertion", 100, "A", "ATT", 100, "-", "TT"},
		{"insertion before anchor", 100, "A", "GA", 99, "-", "G"},
		{"shared prefix and suffix", 100, "ACGT", "ATTT", 101, "CG", "TT"},
		{"MNV", 21848622, "GCA", "TTG", 21848622, "GCA", "TTG"},
		{"repeat insertion", 100, "AT", "ATT", 101, "-", "T"},
		{"identical", 100, "A", "A", 100, "A", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Pos: tt.pos, Ref: tt.ref, Alt: tt.alt}
			pos, ref, alt := v.Alleles()
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantRef, ref)
			assert.Equal(t, tt.wantAlt, alt)
		})
	}
}
