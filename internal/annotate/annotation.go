// Package annotate classifies variants against transcripts and reduces the
// per-transcript results to one annotation per variant.
package annotate

// Annotation is the result of classifying a variant against one transcript,
// or against the flanking genes when no transcript overlaps.
// Annotations are values and are never modified after construction.
type Annotation struct {
	Type       VariantType
	GeneSymbol string
	GeneID     int
	Change     string // e.g. "uc001amg.3:exon17:c.1718A>G:p.N573S"; empty for symbol-only
	CDSPos     int64  // sort key within a merged result
}

// Result is the single finalized annotation for one variant.
type Result struct {
	Type          VariantType
	Text          string
	GeneSymbol    string
	GeneID        int
	MultipleGenes bool
}

// category is the aggregation bucket an annotation is collected into.
type category uint8

const (
	catExonic category = iota // includes splicing
	catNcExonic
	catUTR5
	catUTR3
	catIntronic
	catNcIntronic
	catSynonymous
	catUpstream
	catDownstream
	catIntergenic
	catError
	numCategories
)

var categoryNames = [numCategories]string{
	catExonic:     "exonic",
	catNcExonic:   "ncRNA_exonic",
	catUTR5:       "UTR5",
	catUTR3:       "UTR3",
	catIntronic:   "intronic",
	catNcIntronic: "ncRNA_intronic",
	catSynonymous: "synonymous",
	catUpstream:   "upstream",
	catDownstream: "downstream",
	catIntergenic: "intergenic",
	catError:      "error",
}

func (c category) String() string {
	return categoryNames[c]
}

func categoryOf(t VariantType) category {
	if t.IsExonic() {
		return catExonic
	}
	switch t {
	case NcRNAExonic:
		return catNcExonic
	case UTR5:
		return catUTR5
	case UTR3, UTR53:
		return catUTR3
	case Intronic:
		return catIntronic
	case NcRNAIntronic:
		return catNcIntronic
	case Synonymous:
		return catSynonymous
	case Upstream:
		return catUpstream
	case Downstream:
		return catDownstream
	case Intergenic:
		return catIntergenic
	}
	return catError
}

// sameAs reports structural identity used for duplicate suppression.
func (a Annotation) sameAs(b Annotation) bool {
	return a.Type == b.Type && a.GeneSymbol == b.GeneSymbol && a.Change == b.Change
}
