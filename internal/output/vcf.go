package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/vcf"
)

// INFO keys added to annotated VCF records, one value per ALT allele.
const (
	InfoType = "ANNO_TYPE"
	InfoGene = "ANNO_GENE"
	InfoText = "ANNO_TEXT"
)

var infoHeaders = []string{
	`##INFO=<ID=ANNO_TYPE,Number=A,Type=String,Description="Variant type from vibe-anno">`,
	`##INFO=<ID=ANNO_GENE,Number=A,Type=String,Description="Gene symbol of the first reported annotation">`,
	`##INFO=<ID=ANNO_TEXT,Number=A,Type=String,Description="Annotation text from vibe-anno, percent-encoded">`,
}

// infoEscaper percent-encodes the characters VCF reserves inside INFO values.
var infoEscaper = strings.NewReplacer(
	"%", "%25",
	",", "%2C",
	";", "%3B",
	"=", "%3D",
	" ", "%20",
	"\t", "%09",
)

// VCFWriter writes the input records back with annotation INFO fields.
// Results are buffered per record and written when the record changes, so
// split multi-allelic sites are rejoined.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)

	// Buffered state for the current record.
	current *vcf.Variant
	alts    []string
	results []annotate.Result
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original header with the annotation INFO lines
// inserted before #CHROM.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if isOwnInfoHeader(line) {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			for _, h := range infoHeaders {
				if _, err := vw.w.WriteString(h + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func isOwnInfoHeader(line string) bool {
	for _, key := range []string{InfoType, InfoGene, InfoText} {
		if strings.HasPrefix(line, "##INFO=<ID="+key+",") {
			return true
		}
	}
	return false
}

// Write buffers the result of one alternate allele.
func (vw *VCFWriter) Write(v *vcf.Variant, r annotate.Result) error {
	if vw.current != nil && !sameRecord(vw.current, v) {
		if err := vw.flushRecord(); err != nil {
			return err
		}
	}
	if vw.current == nil {
		vw.current = v
	}
	vw.alts = append(vw.alts, v.Alt)
	vw.results = append(vw.results, r)
	return nil
}

func sameRecord(a, b *vcf.Variant) bool {
	return a.Chrom == b.Chrom && a.Pos == b.Pos && a.Ref == b.Ref && a.ID == b.ID
}

// Flush writes any buffered record and flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	if vw.current != nil {
		if err := vw.flushRecord(); err != nil {
			return err
		}
	}
	return vw.w.Flush()
}

func (vw *VCFWriter) flushRecord() error {
	v := vw.current

	var lb strings.Builder
	lb.Grow(256)
	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(v.ID)
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(strings.Join(vw.alts, ","))
	lb.WriteByte('\t')
	if v.Qual != 0 {
		lb.WriteString(strconv.FormatFloat(v.Qual, 'g', -1, 64))
	} else {
		lb.WriteByte('.')
	}
	lb.WriteByte('\t')
	lb.WriteString(v.Filter)
	lb.WriteByte('\t')
	if info := stripInfo(v.RawInfo); info != "." {
		lb.WriteString(info)
		lb.WriteByte(';')
	}

	writeInfo(&lb, InfoType, vw.results, func(r annotate.Result) string { return r.Type.String() })
	lb.WriteByte(';')
	writeInfo(&lb, InfoGene, vw.results, func(r annotate.Result) string { return r.GeneSymbol })
	lb.WriteByte(';')
	writeInfo(&lb, InfoText, vw.results, func(r annotate.Result) string { return r.Text })
	lb.WriteByte('\n')

	vw.current, vw.alts, vw.results = nil, nil, nil
	_, err := vw.w.WriteString(lb.String())
	return err
}

func writeInfo(b *strings.Builder, key string, results []annotate.Result, value func(annotate.Result) string) {
	b.WriteString(key)
	b.WriteByte('=')
	for i, r := range results {
		if i > 0 {
			b.WriteByte(',')
		}
		s := value(r)
		if s == "" {
			b.WriteByte('.')
			continue
		}
		b.WriteString(infoEscaper.Replace(s))
	}
}

// stripInfo removes annotation fields from a previous run.
func stripInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}
	if !strings.Contains(rawInfo, "ANNO_") {
		return rawInfo
	}

	var kept []string
	for _, field := range strings.Split(rawInfo, ";") {
		key, _, _ := strings.Cut(field, "=")
		if key == InfoType || key == InfoGene || key == InfoText {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}
