package annotate

import (
	"strings"

	"github.com/inodb/vibe-anno/internal/cache"
)

// aaNumber is the 1-based codon number of a CDS position.
func aaNumber(c int64) int64 {
	return (c-1)/3 + 1
}

func exonicAnnotation(t *cache.Transcript, s site, vt VariantType, change string) Annotation {
	a := geneAnnotation(t, vt)
	a.Change = exonPrefix(t, s.exon) + change
	a.CDSPos = s.cStart
	return a
}

// buildSNV translates the wild-type and mutant codon of a single-base
// substitution.
func buildSNV(t *cache.Transcript, s site) Annotation {
	frame, wt, _, err := t.Codon(s.cStart)
	if err != nil {
		return errorAnnotation(t, err)
	}
	mut := MutateCodon(wt, frame, s.alt[0])
	wtAA, mutAA := TranslateCodon(wt), TranslateCodon(mut)
	wtStop, mutStop := IsStopCodon(wt), IsStopCodon(mut)

	var vt VariantType
	switch {
	case wtStop && mutStop:
		vt = Synonymous
	case wtStop:
		vt = StopLoss
	case mutStop:
		vt = StopGain
	case wtAA == mutAA:
		vt = Synonymous
	default:
		vt = Nonsynonymous
	}

	var b strings.Builder
	b.WriteString("c.")
	b.WriteString(itoa(s.cStart))
	b.WriteString(s.ref)
	b.WriteByte('>')
	b.WriteString(s.alt)
	b.WriteString(":p.")
	b.WriteByte(wtAA)
	b.WriteString(itoa(aaNumber(s.cStart)))
	b.WriteByte(mutAA)
	return exonicAnnotation(t, s, vt, b.String())
}

// cdsRange renders "N" or "N_M" using CDS positions, with -N/*N outside
// the coding region.
func cdsRange(t *cache.Transcript, from, to int64) string {
	if from == to {
		return t.CDSPositionString(from)
	}
	return t.CDSPositionString(from) + "_" + t.CDSPositionString(to)
}

// aaRange renders the codon numbers of [from, to] clipped to the CDS.
func aaRange(t *cache.Transcript, from, to int64) (first, last int64, text string) {
	first = aaNumber(max(from, 1))
	last = aaNumber(min(to, t.CDSLength()))
	if first == last {
		return first, last, itoa(first)
	}
	return first, last, itoa(first) + "_" + itoa(last)
}

// buildDeletion is frameshift iff the deleted length is not a multiple of
// three; the reported amino-acid range is clipped to the CDS.
func buildDeletion(t *cache.Transcript, s site) Annotation {
	vt := NonFSDeletion
	if len(s.ref)%3 != 0 {
		vt = FSDeletion
	}
	_, _, aa := aaRange(t, s.cStart, s.cEnd)
	return exonicAnnotation(t, s, vt, "c."+cdsRange(t, s.cStart, s.cEnd)+"del:p."+aa+"del")
}

// buildInsertion translates the codon receiving the inserted bases. For
// frameshifts the following codon is appended so a stop created across
// the codon boundary is seen.
func buildInsertion(t *cache.Transcript, s site) Annotation {
	ins := s.alt
	frame, wt, next, err := t.Codon(s.cStart + 1)
	if err != nil {
		return errorAnnotation(t, err)
	}
	varnt := wt[:frame] + ins + wt[frame:]
	fs := len(ins)%3 != 0
	if fs {
		varnt += next
		varnt = varnt[:len(varnt)/3*3]
	}
	wtAA := TranslateCodon(wt)
	varAA := TranslateSequence(varnt)
	truncated, hasStop := firstStop(varAA)
	pos := itoa(aaNumber(s.cStart + 1))

	var vt VariantType
	var protein string
	switch {
	case wtAA == '*' && hasStop:
		vt, protein = NonFSInsertion, "*"+pos+"delins"+truncated
	case wtAA == '*':
		vt, protein = StopLoss, "*"+pos+"delins"+varAA
	case hasStop:
		vt, protein = StopGain, string(wtAA)+pos+"delins"+truncated
	case !fs:
		vt, protein = NonFSInsertion, string(wtAA)+pos+"delins"+varAA
	default:
		vt, protein = FSInsertion, string(wtAA)+pos+"fs"
	}
	change := "c." + itoa(s.cStart) + "_" + itoa(s.cStart+1) + "ins" + ins + ":p." + protein
	return exonicAnnotation(t, s, vt, change)
}

// buildBlockSubstitution handles a multi-base replacement. It is frameshift
// iff the net length change is not a multiple of three.
func buildBlockSubstitution(t *cache.Transcript, s site) Annotation {
	cdna := "c." + cdsRange(t, s.cStart, s.cEnd) + "delins" + s.alt
	first, last, _ := aaRange(t, s.cStart, s.cEnd)

	if (len(s.ref)-len(s.alt))%3 != 0 {
		_, wt, _, err := t.Codon((first-1)*3 + 1)
		if err != nil {
			return errorAnnotation(t, err)
		}
		return exonicAnnotation(t, s, FSSubstitution, cdna+":p."+string(TranslateCodon(wt))+itoa(first)+"fs")
	}
	if s.cStart < 1 || s.cEnd > t.CDSLength() {
		// Crosses a CDS boundary; no protein-level description.
		return exonicAnnotation(t, s, NonFSSubstitution, cdna)
	}

	// Codon-aligned wild-type and variant sequences covering the change.
	from := t.RefCDSStart() + (first-1)*3
	wtnt := t.MRNASlice(from, t.RefCDSStart()+last*3-1)
	off := int(s.cStart - (first-1)*3 - 1)
	varnt := wtnt[:off] + s.alt + wtnt[off+len(s.ref):]
	wtAA, varAA := TranslateSequence(wtnt), TranslateSequence(varnt)

	vt := NonFSSubstitution
	switch {
	case strings.Contains(wtAA, "*") && !strings.Contains(varAA, "*"):
		vt = StopLoss
	case !strings.Contains(wtAA, "*") && strings.Contains(varAA, "*"):
		vt = StopGain
	}

	protein := wtAA[:1] + itoa(first)
	if first != last {
		protein += "_" + wtAA[len(wtAA)-1:] + itoa(last)
	}
	return exonicAnnotation(t, s, vt, cdna+":p."+protein+"delins"+varAA)
}
