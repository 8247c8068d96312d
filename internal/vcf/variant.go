// Package vcf reads variants from VCF files.
package vcf

import "strings"

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom  string            // Chromosome name (e.g., "12", "chr12")
	Pos    int64             // 1-based genomic position
	ID     string            // Variant identifier (e.g., rs ID)
	Ref    string            // Reference allele
	Alt    string            // Alternate allele (single allele after splitting)
	Qual   float64           // Quality score
	Filter string            // Filter status (PASS or filter name)
	Info   map[string]string // INFO key-value pairs; flags have empty values

	RawInfo string // INFO column as read, for pass-through output
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsSymbolic reports whether the alternate allele is symbolic ("<DEL>"),
// a breakend, missing (".") or the spanning deletion marker ("*").
func (v *Variant) IsSymbolic() bool {
	return v.Alt == "." || v.Alt == "*" ||
		strings.ContainsAny(v.Alt, "<>[]")
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}

// Alleles converts the VCF anchored representation into the minimal
// (pos, ref, alt) form, where "-" stands for no bases. Shared leading and
// then trailing bases are trimmed. An insertion is placed after the
// returned position.
//
//	1 100 A   ATT   ->  100 - TT
//	1 100 ATT A     ->  101 TT -
//	1 100 ACG ATG   ->  101 C T
func (v *Variant) Alleles() (pos int64, ref, alt string) {
	ref, alt = v.Ref, v.Alt
	if ref == alt || v.IsSNV() {
		return v.Pos, ref, alt
	}

	p := 0
	for p < len(ref) && p < len(alt) && ref[p] == alt[p] {
		p++
	}
	ref, alt = ref[p:], alt[p:]
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}

	pos = v.Pos + int64(p)
	if ref == "" {
		pos-- // inserted after the last shared base
	}
	return pos, dash(ref), dash(alt)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
