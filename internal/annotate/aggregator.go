package annotate

import (
	"errors"
	"sort"
)

// ErrEmptyAnnotationList is returned by Finalize when nothing was added.
// The classifier always adds at least one annotation, so this indicates a
// bug rather than bad input.
var ErrEmptyAnnotationList = errors.New("finalize called on empty annotation list")

// tiers lists the aggregation tiers from highest to lowest precedence. The
// buckets of a tier are concatenated in the listed order.
var tiers = [][]category{
	{catExonic},
	{catNcExonic, catUTR5, catUTR3, catIntronic, catNcIntronic, catSynonymous},
	{catUpstream, catDownstream},
	{catIntergenic},
	{catError},
}

// AnnotationList collects the per-transcript annotations of one variant.
// It is reset between variants, reusing its buffers, and must not be
// shared between goroutines.
type AnnotationList struct {
	buckets [numCategories][]Annotation
	present [numCategories]bool
	count   int
	genes   []string // distinct non-empty symbols, first-seen order
	merged  []Annotation
}

// NewAnnotationList creates an empty list.
func NewAnnotationList() *AnnotationList {
	return &AnnotationList{}
}

// Reset empties the list, keeping allocated capacity.
func (l *AnnotationList) Reset() {
	for i := range l.buckets {
		l.buckets[i] = l.buckets[i][:0]
		l.present[i] = false
	}
	l.count = 0
	l.genes = l.genes[:0]
	l.merged = l.merged[:0]
}

// Add collects a. It returns false when an identical annotation (same type,
// gene symbol and change text) is already present.
func (l *AnnotationList) Add(a Annotation) bool {
	c := categoryOf(a.Type)
	for _, b := range l.buckets[c] {
		if b.sameAs(a) {
			return false
		}
	}
	l.buckets[c] = append(l.buckets[c], a)
	l.present[c] = true
	l.count++
	if a.GeneSymbol != "" && !contains(l.genes, a.GeneSymbol) {
		l.genes = append(l.genes, a.GeneSymbol)
	}
	return true
}

// Len returns the number of collected annotations.
func (l *AnnotationList) Len() int {
	return l.count
}

// Finalize reduces the collected annotations to one Result: the highest
// present tier is merged, sorted by CDS position, and formatted.
func (l *AnnotationList) Finalize() (Result, error) {
	if l.count == 0 {
		return Result{}, ErrEmptyAnnotationList
	}

	var tier []category
	for _, cats := range tiers {
		if l.anyPresent(cats) {
			tier = cats
			break
		}
	}

	l.merged = l.merged[:0]
	for _, c := range tier {
		l.merged = append(l.merged, l.buckets[c]...)
	}
	sort.SliceStable(l.merged, func(i, j int) bool {
		return l.merged[i].CDSPos < l.merged[j].CDSPos
	})

	r := Result{
		Type:          l.variantType(),
		Text:          formatTier(tier[0], l.merged),
		GeneSymbol:    l.merged[0].GeneSymbol,
		GeneID:        l.merged[0].GeneID,
		MultipleGenes: len(l.genes) > 1,
	}
	return r, nil
}

func (l *AnnotationList) anyPresent(cats []category) bool {
	for _, c := range cats {
		if l.present[c] {
			return true
		}
	}
	return false
}

var typeScan = [...]struct {
	c  category
	vt VariantType
}{
	{catIntergenic, Intergenic},
	{catNcIntronic, NcRNAIntronic},
	{catNcExonic, NcRNAExonic},
	{catIntronic, Intronic},
	{catUpstream, Upstream},
	{catDownstream, Downstream},
	{catSynonymous, Synonymous},
}

// variantType scans the categories from least to most severe; the last
// present one wins. ERROR only survives when nothing else was collected.
func (l *AnnotationList) variantType() VariantType {
	vt := Error
	for _, s := range typeScan {
		if l.present[s.c] {
			vt = s.vt
		}
	}
	switch {
	case l.present[catUTR5] && l.present[catUTR3]:
		vt = UTR53
	case l.present[catUTR5]:
		vt = UTR5
	case l.present[catUTR3]:
		vt = UTR3
	}
	if l.present[catExonic] {
		// merged holds the sorted exonic tier here.
		vt = l.merged[0].Type
	}
	return vt
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
