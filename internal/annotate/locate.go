package annotate

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-anno/internal/cache"
)

// builderKind selects the builder that produces a transcript's annotation.
type builderKind uint8

const (
	kindError builderKind = iota
	kindSplicing
	kindNoncodingExonic
	kindNoncodingIntronic
	kindIntronic
	kindUTR5
	kindUTR3
	kindSNV
	kindDeletion
	kindInsertion
	kindBlockSubstitution
)

var errNilTranscript = errors.New("nil transcript")

// site is where a variant falls on one transcript. CDS positions and
// alleles are in transcript orientation.
type site struct {
	kind   builderKind
	exon   int   // genomic-order exon index used for the exon number
	cStart int64 // first affected CDS position; insertion anchor for insertions
	cEnd   int64
	ref    string
	alt    string
	err    error
}

// locate decides which builder handles v on t.
func locate(t *cache.Transcript, v variant, cfg Config) site {
	if t == nil {
		return site{kind: kindError, err: errNilTranscript}
	}
	s := site{ref: v.ref, alt: v.alt}
	if !t.IsPlusStrand() {
		s.ref, s.alt = ReverseComplement(v.ref), ReverseComplement(v.alt)
	}

	if k, ok := t.SpliceWindow(v.start, v.queryEnd(), cfg.SpliceThreshold); ok {
		s.kind, s.exon = kindSplicing, k
		return s
	}

	first, last, ok := exonicBounds(t, v.start, v.queryEnd())
	if !ok {
		s.kind = kindIntronic
		if !t.IsCoding() {
			s.kind = kindNoncodingIntronic
		}
		return s
	}
	if !t.IsCoding() {
		s.kind = kindNoncodingExonic
		return s
	}

	if v.isInsertion() {
		return locateInsertion(t, v, s)
	}

	r1, err1 := t.GenomicToTranscript(first)
	r2, err2 := t.GenomicToTranscript(last)
	if err := errors.Join(err1, err2); err != nil {
		return site{kind: kindError, err: err}
	}
	s.exon, _ = t.LocateExon(first)
	if !t.IsPlusStrand() {
		r1, r2 = r2, r1
		s.exon, _ = t.LocateExon(last)
	}
	s.cStart, s.cEnd = t.TranscriptToCDS(r1), t.TranscriptToCDS(r2)

	switch {
	case s.cEnd <= 0:
		s.kind = kindUTR5
		return s
	case s.cStart > t.CDSLength():
		s.kind = kindUTR3
		return s
	case v.isSNV():
		s.kind = kindSNV
	case v.isDeletion():
		s.kind = kindDeletion
	default:
		s.kind = kindBlockSubstitution
	}
	s = requireSequence(t, s)
	if s.kind == kindError || first != v.start || last != v.end || r2 > int64(len(t.Sequence)) {
		return s
	}
	if got := t.MRNASlice(r1, r2); got != s.ref {
		return site{kind: kindError, err: fmt.Errorf("%w: %s at c.%s, transcript has %s",
			ErrRefMismatch, s.ref, cdsRange(t, s.cStart, s.cEnd), got)}
	}
	return s
}

// locateInsertion anchors an exonic insertion on the CDS base it follows in
// transcript orientation.
func locateInsertion(t *cache.Transcript, v variant, s site) site {
	before, after := v.pos, v.pos+1 // genomic neighbours
	if !t.IsPlusStrand() {
		before, after = after, before
	}
	var a int64
	if r, err := t.GenomicToTranscript(before); err == nil {
		a = r
		s.exon, _ = t.LocateExon(before)
	} else if r, err := t.GenomicToTranscript(after); err == nil {
		a = r - 1
		s.exon, _ = t.LocateExon(after)
	} else {
		return site{kind: kindError, err: err}
	}

	s.cStart = t.TranscriptToCDS(a)
	s.cEnd = s.cStart + 1
	switch {
	case s.cStart <= 0:
		s.kind = kindUTR5
		return s
	case s.cStart >= t.CDSLength():
		s.kind = kindUTR3
		return s
	}
	s.kind = kindInsertion
	return requireSequence(t, s)
}

func requireSequence(t *cache.Transcript, s site) site {
	if int64(len(t.Sequence)) < t.RefCDSEnd() {
		return site{kind: kindError, err: fmt.Errorf("mRNA sequence has %d bases, CDS ends at %d", len(t.Sequence), t.RefCDSEnd())}
	}
	return s
}

// exonicBounds returns the first and last exonic bases within [lo, hi].
func exonicBounds(t *cache.Transcript, lo, hi int64) (first, last int64, ok bool) {
	k, exonic := t.LocateExon(lo)
	if k == t.ExonCount() {
		return 0, 0, false
	}
	first = lo
	if !exonic {
		first = t.ExonStarts[k]
	}
	if first > hi {
		return 0, 0, false
	}
	last = hi
	if k2, exonic := t.LocateExon(hi); !exonic {
		last = t.ExonEnds[k2-1]
	}
	return first, last, true
}
