package annotate

import (
	"errors"
	"fmt"
	"strings"
)

// NoBases is the allele marker for an empty reference (insertion) or an
// empty alternate (deletion).
const NoBases = "-"

// Allele validation errors.
var (
	ErrEmptyAllele   = errors.New("empty allele")
	ErrNoBases       = errors.New("reference and alternate are both empty")
	ErrInvalidAllele = errors.New("allele contains non-nucleotide characters")
	ErrBadPosition   = errors.New("position must be positive")
	ErrRefMismatch   = errors.New("reference allele does not match transcript")
)

// variant is a validated genomic change. Empty ref marks an insertion after
// pos, empty alt marks a deletion.
type variant struct {
	pos      int64
	ref, alt string
	start    int64 // first affected base; pos for insertions
	end      int64 // last affected base; pos for insertions
}

func newVariant(pos int64, ref, alt string) (variant, error) {
	if pos < 1 {
		return variant{}, fmt.Errorf("%w: %d", ErrBadPosition, pos)
	}
	if ref == "" || alt == "" {
		return variant{}, ErrEmptyAllele
	}
	ref, alt = strings.ToUpper(ref), strings.ToUpper(alt)
	if ref == NoBases && alt == NoBases {
		return variant{}, ErrNoBases
	}
	if ref == NoBases {
		ref = ""
	} else if !ValidBases(ref) {
		return variant{}, fmt.Errorf("%w: ref %q", ErrInvalidAllele, ref)
	}
	if alt == NoBases {
		alt = ""
	} else if !ValidBases(alt) {
		return variant{}, fmt.Errorf("%w: alt %q", ErrInvalidAllele, alt)
	}

	v := variant{pos: pos, ref: ref, alt: alt, start: pos, end: pos}
	if ref != "" {
		v.end = pos + int64(len(ref)) - 1
	}
	return v, nil
}

func (v variant) isInsertion() bool { return v.ref == "" }

func (v variant) isDeletion() bool { return v.alt == "" }

func (v variant) isSNV() bool { return len(v.ref) == 1 && len(v.alt) == 1 }

// queryEnd is the last genomic base that must be inspected. An insertion
// sits between pos and pos+1.
func (v variant) queryEnd() int64 {
	if v.isInsertion() {
		return v.pos + 1
	}
	return v.end
}

// shown renders an allele for change text.
func shown(allele string) string {
	if allele == "" {
		return NoBases
	}
	return allele
}
