// Package output provides annotation output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/vcf"
)

// tabColumns are the tab-delimited output columns.
var tabColumns = []string{
	"#CHROM",
	"POS",
	"REF",
	"ALT",
	"VARIANT_TYPE",
	"IMPACT",
	"GENE",
	"GENE_ID",
	"MULTIPLE_GENES",
	"ANNOTATION",
}

// TabWriter writes one finalized annotation per line in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tabColumns, "\t") + "\n")
	return err
}

// Write writes the result of one alternate allele. Alleles are written in
// the minimal form used for classification.
func (tw *TabWriter) Write(v *vcf.Variant, r annotate.Result) error {
	pos, ref, alt := v.Alleles()

	gene := r.GeneSymbol
	if gene == "" {
		gene = "-"
	}
	geneID := "-"
	if r.GeneID > 0 {
		geneID = strconv.Itoa(r.GeneID)
	}
	multiple := "0"
	if r.MultipleGenes {
		multiple = "1"
	}
	text := r.Text
	if text == "" {
		text = "-"
	}

	values := []string{
		v.Chrom,
		strconv.FormatInt(pos, 10),
		ref,
		alt,
		r.Type.String(),
		r.Type.Impact(),
		gene,
		geneID,
		multiple,
		text,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
