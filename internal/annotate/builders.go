package annotate

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-anno/internal/cache"
)

// build produces the annotation of v on t for the located site.
func build(t *cache.Transcript, v variant, s site) Annotation {
	switch s.kind {
	case kindSplicing:
		return buildSplicing(t, v, s)
	case kindNoncodingExonic:
		return geneAnnotation(t, NcRNAExonic)
	case kindNoncodingIntronic:
		return geneAnnotation(t, NcRNAIntronic)
	case kindIntronic:
		return geneAnnotation(t, Intronic)
	case kindUTR5:
		return buildUTR(t, v, s, UTR5)
	case kindUTR3:
		return buildUTR(t, v, s, UTR3)
	case kindSNV:
		return buildSNV(t, s)
	case kindDeletion:
		return buildDeletion(t, s)
	case kindInsertion:
		return buildInsertion(t, s)
	case kindBlockSubstitution:
		return buildBlockSubstitution(t, s)
	}
	return errorAnnotation(t, s.err)
}

// geneAnnotation is a symbol-only annotation.
func geneAnnotation(t *cache.Transcript, vt VariantType) Annotation {
	return Annotation{Type: vt, GeneSymbol: t.GeneSymbol, GeneID: t.GeneID}
}

// errorAnnotation carries a diagnostic instead of a change. t may be nil.
func errorAnnotation(t *cache.Transcript, err error) Annotation {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if t == nil {
		return Annotation{Type: Error, Change: msg}
	}
	return Annotation{Type: Error, GeneSymbol: t.GeneSymbol, GeneID: t.GeneID, Change: t.ID + ": " + msg}
}

// exonPrefix is "tx:exonK:" with K counted in transcript direction.
func exonPrefix(t *cache.Transcript, k int) string {
	var b strings.Builder
	b.WriteString(t.ID)
	b.WriteString(":exon")
	b.WriteString(itoa(int64(t.ExonNumber(k))))
	b.WriteByte(':')
	return b.String()
}

// buildSplicing reports the intronic offset of the variant from the exon
// whose splice window it hits, e.g. "uc001cjx.3:exon4:c.315-2A>-".
func buildSplicing(t *cache.Transcript, v variant, s site) Annotation {
	lo, hi := v.start, v.end
	if v.isInsertion() {
		hi = v.pos + 1
	}
	if !t.IsPlusStrand() {
		lo, hi = hi, lo
	}

	var b strings.Builder
	b.WriteString(exonPrefix(t, s.exon))
	if t.IsCoding() {
		b.WriteString("c.")
	} else {
		b.WriteString("n.")
	}
	b.WriteString(t.PositionString(lo))
	if lo != hi {
		b.WriteByte('_')
		b.WriteString(t.PositionString(hi))
	}
	b.WriteString(shown(s.ref))
	b.WriteByte('>')
	b.WriteString(shown(s.alt))

	a := geneAnnotation(t, Splicing)
	a.Change = b.String()
	a.CDSPos = spliceAnchor(t, v, s.exon)
	return a
}

// spliceAnchor is the CDS position (mRNA position for non-coding
// transcripts) of the exon boundary whose splice window v hits.
func spliceAnchor(t *cache.Transcript, v variant, k int) int64 {
	boundary := t.ExonEnds[k]
	if k > 0 && v.start < t.ExonStarts[k] {
		boundary = t.ExonStarts[k]
	}
	r, err := t.GenomicToTranscript(boundary)
	if err != nil {
		return 0
	}
	if !t.IsCoding() {
		return r
	}
	return t.TranscriptToCDS(r)
}

// buildUTR gives SNVs a c.-N / c.*N descriptor. Indels in a UTR are
// reported by gene symbol only.
func buildUTR(t *cache.Transcript, v variant, s site, vt VariantType) Annotation {
	a := geneAnnotation(t, vt)
	a.CDSPos = s.cStart
	if v.isSNV() {
		a.Change = t.ID + ":c." + t.CDSPositionString(s.cStart) + s.ref + ">" + s.alt
	}
	return a
}

// buildFlanking reports a transcript near but not overlapping the variant.
func buildFlanking(t *cache.Transcript, pos int64) Annotation {
	if t.IsUpstream(pos) {
		return geneAnnotation(t, Upstream)
	}
	return geneAnnotation(t, Downstream)
}

// buildIntergenic names the closest genes on each side with their genomic
// distances, e.g. "GENEA(dist=120),NONE(dist=NONE)".
func buildIntergenic(left, right *cache.Transcript, v variant) Annotation {
	leftText, rightText := noGene, noGene
	if left != nil {
		leftText = left.GeneSymbol + "(dist=" + itoa(v.start-left.TxEnd) + ")"
	}
	if right != nil {
		rightText = right.GeneSymbol + "(dist=" + itoa(right.TxStart-v.end) + ")"
	}
	return Annotation{Type: Intergenic, Change: leftText + "," + rightText}
}

const noGene = "NONE(dist=NONE)"

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
