// Package cache provides transcript models, per-chromosome interval indexes
// and the loaders that populate them.
package cache

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Transcript represents a specific gene isoform.
// All genomic coordinates are 1-based and inclusive.
type Transcript struct {
	ID         string  // Transcript accession (e.g., uc001amg.3)
	GeneSymbol string  // Gene symbol (e.g., RNF207)
	GeneID     int     // Entrez gene id, 0 if unknown
	Chrom      string  // Chromosome name without "chr" prefix
	Strand     int8    // +1 or -1
	TxStart    int64   // Transcript start
	TxEnd      int64   // Transcript end
	CDSStart   int64   // CDS start, genomic; CDSStart > CDSEnd for non-coding
	CDSEnd     int64   // CDS end, genomic
	ExonStarts []int64 // Exon starts, ascending genomic order
	ExonEnds   []int64 // Exon ends, ascending genomic order
	Sequence   string  // mRNA sequence in transcript orientation

	// Derived by Init. Unexported so gob and JSON round trips re-run Init.
	exonOffset  []int64 // exonic bases preceding each exon, genomic order
	mrnaLength  int64
	refCDSStart int64 // mRNA position of the first CDS base
	refCDSEnd   int64 // mRNA position of the last CDS base
}

// ErrNotExonic is returned when a position does not fall in an exon.
var ErrNotExonic = errors.New("position is not exonic")

// Init validates the exon and CDS layout and derives the mRNA-level CDS
// coordinates. It must be called before any mapping query.
func (t *Transcript) Init() error {
	n := len(t.ExonStarts)
	if n == 0 {
		return fmt.Errorf("transcript %s: no exons", t.ID)
	}
	if len(t.ExonEnds) != n {
		return fmt.Errorf("transcript %s: %d exon starts but %d exon ends", t.ID, n, len(t.ExonEnds))
	}
	if t.Strand != 1 && t.Strand != -1 {
		return fmt.Errorf("transcript %s: invalid strand %d", t.ID, t.Strand)
	}
	for i := 0; i < n; i++ {
		if t.ExonStarts[i] > t.ExonEnds[i] {
			return fmt.Errorf("transcript %s: exon %d start %d after end %d", t.ID, i, t.ExonStarts[i], t.ExonEnds[i])
		}
		if i > 0 && t.ExonStarts[i] <= t.ExonEnds[i-1] {
			return fmt.Errorf("transcript %s: exon %d overlaps previous exon", t.ID, i)
		}
	}
	if t.TxStart > t.ExonStarts[0] || t.TxEnd < t.ExonEnds[n-1] {
		return fmt.Errorf("transcript %s: exons outside transcript bounds", t.ID)
	}

	t.exonOffset = make([]int64, n)
	var total int64
	for i := 0; i < n; i++ {
		t.exonOffset[i] = total
		total += t.ExonEnds[i] - t.ExonStarts[i] + 1
	}
	t.mrnaLength = total
	t.refCDSStart, t.refCDSEnd = 0, 0

	if !t.IsCoding() {
		return nil
	}
	if t.CDSStart < t.TxStart || t.CDSEnd > t.TxEnd {
		return fmt.Errorf("transcript %s: CDS outside transcript bounds", t.ID)
	}
	first, err := t.GenomicToTranscript(t.CDSStart)
	if err != nil {
		return fmt.Errorf("transcript %s: CDS start: %w", t.ID, err)
	}
	last, err := t.GenomicToTranscript(t.CDSEnd)
	if err != nil {
		return fmt.Errorf("transcript %s: CDS end: %w", t.ID, err)
	}
	if t.IsPlusStrand() {
		t.refCDSStart, t.refCDSEnd = first, last
	} else {
		t.refCDSStart, t.refCDSEnd = last, first
	}
	return nil
}

// IsCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsCoding() bool {
	return t.CDSStart > 0 && t.CDSStart <= t.CDSEnd
}

// IsPlusStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsPlusStrand() bool {
	return t.Strand == 1
}

// Contains returns true if pos is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.TxStart && pos <= t.TxEnd
}

// IsUpstream reports whether pos lies 5' of the transcript on its own strand.
func (t *Transcript) IsUpstream(pos int64) bool {
	if t.IsPlusStrand() {
		return pos < t.TxStart
	}
	return pos > t.TxEnd
}

// IsDownstream reports whether pos lies 3' of the transcript on its own strand.
func (t *Transcript) IsDownstream(pos int64) bool {
	if t.IsPlusStrand() {
		return pos > t.TxEnd
	}
	return pos < t.TxStart
}

// ExonCount returns the number of exons.
func (t *Transcript) ExonCount() int {
	return len(t.ExonStarts)
}

// MRNALength returns the number of exonic bases.
func (t *Transcript) MRNALength() int64 {
	return t.mrnaLength
}

// RefCDSStart returns the mRNA position (1-based) of the first CDS base,
// or 0 for non-coding transcripts.
func (t *Transcript) RefCDSStart() int64 {
	return t.refCDSStart
}

// RefCDSEnd returns the mRNA position (1-based) of the last CDS base,
// or 0 for non-coding transcripts.
func (t *Transcript) RefCDSEnd() int64 {
	return t.refCDSEnd
}

// CDSLength returns the number of coding bases.
func (t *Transcript) CDSLength() int64 {
	if !t.IsCoding() {
		return 0
	}
	return t.refCDSEnd - t.refCDSStart + 1
}

// LocateExon returns the index (genomic order) of the first exon whose end
// is >= pos, and whether pos lies inside that exon. For an intronic pos the
// index is the exon immediately 3' on the genome; it equals ExonCount() when
// pos is past the last exon.
func (t *Transcript) LocateExon(pos int64) (int, bool) {
	k := sort.Search(len(t.ExonEnds), func(i int) bool {
		return t.ExonEnds[i] >= pos
	})
	return k, k < len(t.ExonStarts) && t.ExonStarts[k] <= pos
}

// ExonNumber converts a genomic-order exon index into a 1-based exon number
// counted in transcript direction.
func (t *Transcript) ExonNumber(k int) int {
	if t.IsPlusStrand() {
		return k + 1
	}
	return len(t.ExonStarts) - k
}

// GenomicToTranscript maps an exonic genomic position onto the 1-based mRNA
// position in transcript orientation.
func (t *Transcript) GenomicToTranscript(pos int64) (int64, error) {
	k, exonic := t.LocateExon(pos)
	if !exonic {
		return 0, ErrNotExonic
	}
	r := t.exonOffset[k] + pos - t.ExonStarts[k]
	if t.IsPlusStrand() {
		return r + 1, nil
	}
	return t.mrnaLength - r, nil
}

// TranscriptToCDS converts an mRNA position into a CDS position. Values <= 0
// fall in the 5'UTR, values > CDSLength() in the 3'UTR.
func (t *Transcript) TranscriptToCDS(r int64) int64 {
	return r - t.refCDSStart + 1
}

// Codon returns the frame (0, 1 or 2) of the CDS position within its codon,
// the codon itself and the following codon. next is shorter than three bases
// (possibly empty) when the sequence runs out.
func (t *Transcript) Codon(cdsPos int64) (frame int, codon, next string, err error) {
	if cdsPos < 1 || cdsPos > t.CDSLength() {
		return 0, "", "", fmt.Errorf("transcript %s: CDS position %d out of range", t.ID, cdsPos)
	}
	frame = int((cdsPos - 1) % 3)
	start := t.refCDSStart + cdsPos - 1 - int64(frame) - 1 // 0-based
	if start+3 > int64(len(t.Sequence)) {
		return 0, "", "", fmt.Errorf("transcript %s: sequence too short for codon at c.%d", t.ID, cdsPos)
	}
	codon = t.Sequence[start : start+3]
	end := min(start+6, int64(len(t.Sequence)))
	next = t.Sequence[start+3 : end]
	return frame, codon, next, nil
}

// MRNASlice returns the mRNA bases from position from to to (1-based,
// inclusive), clipped to the available sequence.
func (t *Transcript) MRNASlice(from, to int64) string {
	from = max(from, 1)
	to = min(to, int64(len(t.Sequence)))
	if from > to {
		return ""
	}
	return t.Sequence[from-1 : to]
}

// PositionString renders a genomic position as an HGVS-style transcript
// position: "76", "-14", "*6", "88+1" or "89-2". Non-coding transcripts use
// plain mRNA positions.
func (t *Transcript) PositionString(pos int64) string {
	k, exonic := t.LocateExon(pos)
	if exonic {
		r, _ := t.GenomicToTranscript(pos)
		return t.mrnaPositionString(r)
	}

	n := len(t.ExonStarts)
	switch {
	case k == 0:
		return t.PositionString(t.ExonStarts[0]) + offsetString(pos-t.ExonStarts[0], t.IsPlusStrand())
	case k == n:
		return t.PositionString(t.ExonEnds[n-1]) + offsetString(pos-t.ExonEnds[n-1], t.IsPlusStrand())
	}

	// Intronic: anchor on the closer boundary, lower exon on ties.
	up := pos - t.ExonEnds[k-1]
	down := t.ExonStarts[k] - pos
	if up <= down {
		return t.PositionString(t.ExonEnds[k-1]) + offsetString(up, t.IsPlusStrand())
	}
	return t.PositionString(t.ExonStarts[k]) + offsetString(-down, t.IsPlusStrand())
}

// CDSPositionString renders a CDS position, using "-N" and "*N" outside the
// coding region.
func (t *Transcript) CDSPositionString(c int64) string {
	return t.mrnaPositionString(c + t.refCDSStart - 1)
}

func (t *Transcript) mrnaPositionString(r int64) string {
	if !t.IsCoding() {
		return strconv.FormatInt(r, 10)
	}
	if r < t.refCDSStart {
		return "-" + strconv.FormatInt(t.refCDSStart-r, 10)
	}
	if r > t.refCDSEnd {
		return "*" + strconv.FormatInt(r-t.refCDSEnd, 10)
	}
	return strconv.FormatInt(r-t.refCDSStart+1, 10)
}

// offsetString renders a genomic offset from an exon boundary in transcript
// direction.
func offsetString(d int64, plus bool) string {
	if !plus {
		d = -d
	}
	if d >= 0 {
		return "+" + strconv.FormatInt(d, 10)
	}
	return strconv.FormatInt(d, 10)
}

// SpliceWindow reports whether the genomic span [start, end] intersects the
// intronic bases within width of an exon/intron boundary. It returns the
// genomic-order index of the exon the window belongs to.
func (t *Transcript) SpliceWindow(start, end, width int64) (int, bool) {
	if width <= 0 {
		return 0, false
	}
	n := len(t.ExonStarts)
	for k := 0; k < n; k++ {
		if k > 0 && start <= t.ExonStarts[k]-1 && end >= t.ExonStarts[k]-width {
			return k, true
		}
		if k < n-1 && start <= t.ExonEnds[k]+width && end >= t.ExonEnds[k]+1 {
			return k, true
		}
	}
	return 0, false
}
