package annotate

import (
	"sort"
	"strings"
)

// formatTier renders the merged annotations of the tier headed by head:
//
//	exonic           GENE(c1,c2) GENE2(c3)
//	intronic-only    SYM1,SYM2 (alphabetical)
//	up/downstream    SYM1,SYM2 (discovery order)
//	intergenic       L(dist=N),R(dist=M)
//	error            msg1,msg2
func formatTier(head category, merged []Annotation) string {
	switch head {
	case catUpstream:
		return joinUnique(merged, func(a Annotation) string { return a.GeneSymbol })
	case catIntergenic, catError:
		return joinUnique(merged, func(a Annotation) string { return a.Change })
	case catExonic:
		return groupByGene(merged)
	}
	for _, a := range merged {
		if a.Change != "" {
			return groupByGene(merged)
		}
	}
	return sortedSymbols(merged)
}

// groupByGene writes one "GENE(change,...)" group per gene in first-seen
// order. A gene without change text is written as the bare symbol.
func groupByGene(merged []Annotation) string {
	var b strings.Builder
	var seen []string
	for _, a := range merged {
		if contains(seen, a.GeneSymbol) {
			continue
		}
		seen = append(seen, a.GeneSymbol)
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.GeneSymbol)
		n := 0
		for _, o := range merged {
			if o.GeneSymbol != a.GeneSymbol || o.Change == "" {
				continue
			}
			if n == 0 {
				b.WriteByte('(')
			} else {
				b.WriteByte(',')
			}
			b.WriteString(o.Change)
			n++
		}
		if n > 0 {
			b.WriteByte(')')
		}
	}
	return b.String()
}

func joinUnique(merged []Annotation, field func(Annotation) string) string {
	var parts []string
	for _, a := range merged {
		if s := field(a); s != "" && !contains(parts, s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

func sortedSymbols(merged []Annotation) string {
	var syms []string
	for _, a := range merged {
		if !contains(syms, a.GeneSymbol) {
			syms = append(syms, a.GeneSymbol)
		}
	}
	sort.Strings(syms)
	return strings.Join(syms, ",")
}
