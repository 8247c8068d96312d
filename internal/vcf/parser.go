package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser reads variants from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     []string
}

// NewParser creates a VCF parser for the given file, or stdin when path is
// "-". Plain and gzipped VCF are both accepted.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	p, err := newParser(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.file = file
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader. Gzipped input is
// detected by its magic number.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser(r)
}

func newParser(r io.Reader) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r)}

	magic, err := p.reader.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(p.reader)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// parseHeader reads header lines up to and including #CHROM.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		switch {
		case strings.HasPrefix(line, "##"):
			p.header = append(p.header, line)
		case strings.HasPrefix(line, "#CHROM"):
			p.header = append(p.header, line)
			return nil
		default:
			return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
		}
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// Next reads the next variant. It returns nil, nil at end of input.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line. Columns after INFO are ignored.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.SplitN(line, "\t", 9)
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	qual := 0.0
	if fields[5] != "." {
		qual, _ = strconv.ParseFloat(fields[5], 64)
	}

	return &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    strings.ToUpper(fields[3]),
		Alt:    strings.ToUpper(fields[4]),
		Qual:   qual,
		Filter: fields[6],
		Info:   parseInfo(fields[7]),

		RawInfo: fields[7],
	}, nil
}

// parseInfo parses the INFO field. Flags map to an empty value.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." || info == "" {
		return result
	}
	for _, kv := range strings.Split(info, ";") {
		key, value, _ := strings.Cut(kv, "=")
		result[key] = value
	}
	return result
}

// SplitMultiAllelic splits a multi-allelic variant into one variant per
// alternate allele. The INFO map is shared between the copies.
func SplitMultiAllelic(v *Variant) []*Variant {
	alts := strings.Split(v.Alt, ",")
	if len(alts) == 1 {
		return []*Variant{v}
	}

	variants := make([]*Variant, len(alts))
	for i, alt := range alts {
		split := *v
		split.Alt = alt
		variants[i] = &split
	}
	return variants
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
