package cache

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Default UCSC table dump file names.
const (
	KnownGeneFile     = "knownGene.txt"
	KnownXrefFile     = "kgXref.txt"
	KnownLocusFile    = "knownToLocusLink.txt"
	KnownGeneMrnaFile = "knownGeneMrna.txt"
)

// UCSCLoader loads transcripts from UCSC knownGene table dumps.
type UCSCLoader struct {
	KnownGenePath string
	XrefPath      string
	LocusLinkPath string
	MrnaPath      string // knownGeneMrna.txt or an mRNA FASTA file

	logger *zap.Logger
}

// LoadStats summarizes a load.
type LoadStats struct {
	Loaded          int
	SkippedChrom    int
	SkippedInvalid  int
	MissingSequence int
}

// NewUCSCLoader creates a loader for the standard file names in dir.
// Gzipped variants (name + ".gz") are used when the plain file is absent.
func NewUCSCLoader(dir string) *UCSCLoader {
	return &UCSCLoader{
		KnownGenePath: resolvePath(dir, KnownGeneFile),
		XrefPath:      resolvePath(dir, KnownXrefFile),
		LocusLinkPath: resolvePath(dir, KnownLocusFile),
		MrnaPath:      resolvePath(dir, KnownGeneMrnaFile),
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger for load diagnostics.
func (l *UCSCLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Files returns the source files in a fixed order, for fingerprinting.
func (l *UCSCLoader) Files() []string {
	return []string{l.KnownGenePath, l.XrefPath, l.LocusLinkPath, l.MrnaPath}
}

func resolvePath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err != nil {
		if _, gzErr := os.Stat(p + ".gz"); gzErr == nil {
			return p + ".gz"
		}
	}
	return p
}

// Load reads all tables and adds every valid transcript to the cache.
// Cross-reference and sequence files are optional.
func (l *UCSCLoader) Load(c *Cache) (LoadStats, error) {
	var stats LoadStats

	symbols, err := l.loadTwoColumn(l.XrefPath, 0, 4)
	if err != nil {
		return stats, fmt.Errorf("load kgXref: %w", err)
	}
	locus, err := l.loadTwoColumn(l.LocusLinkPath, 0, 1)
	if err != nil {
		return stats, fmt.Errorf("load knownToLocusLink: %w", err)
	}
	sequences, err := l.loadSequences()
	if err != nil {
		return stats, fmt.Errorf("load mRNA sequences: %w", err)
	}

	r, closeFn, err := openMaybeGzip(l.KnownGenePath)
	if err != nil {
		return stats, fmt.Errorf("open knownGene: %w", err)
	}
	defer closeFn()

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		t, err := parseKnownGeneLine(line)
		if err != nil {
			return stats, &ParseError{File: l.KnownGenePath, Line: lineNum, Message: err.Error()}
		}
		if !IsPrimaryChrom(t.Chrom) {
			stats.SkippedChrom++
			continue
		}

		t.GeneSymbol = symbols[t.ID]
		if t.GeneSymbol == "" {
			t.GeneSymbol = t.ID
		}
		if id, ok := locus[t.ID]; ok {
			t.GeneID, _ = strconv.Atoi(id)
		}
		t.Sequence = sequences[t.ID]
		if t.Sequence == "" {
			stats.MissingSequence++
		}

		if err := t.Init(); err != nil {
			l.logger.Debug("skip invalid transcript", zap.String("id", t.ID), zap.Error(err))
			stats.SkippedInvalid++
			continue
		}
		c.AddTranscript(t)
		stats.Loaded++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan knownGene: %w", err)
	}

	l.logger.Info("loaded UCSC transcripts",
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped_chrom", stats.SkippedChrom),
		zap.Int("skipped_invalid", stats.SkippedInvalid),
		zap.Int("missing_sequence", stats.MissingSequence))
	return stats, nil
}

// parseKnownGeneLine parses one knownGene record. UCSC starts are 0-based
// half-open; they are converted to 1-based inclusive.
func parseKnownGeneLine(line string) (*Transcript, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 10 {
		return nil, fmt.Errorf("expected at least 10 fields, got %d", len(fields))
	}

	nums := make([]int64, 4)
	for i, f := range fields[3:7] {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse coordinate %q: %w", f, err)
		}
		nums[i] = n
	}
	exonCount, err := strconv.Atoi(fields[7])
	if err != nil {
		return nil, fmt.Errorf("parse exon count %q: %w", fields[7], err)
	}
	starts, err := parseIntList(fields[8])
	if err != nil {
		return nil, fmt.Errorf("parse exon starts: %w", err)
	}
	ends, err := parseIntList(fields[9])
	if err != nil {
		return nil, fmt.Errorf("parse exon ends: %w", err)
	}
	if len(starts) != exonCount || len(ends) != exonCount {
		return nil, fmt.Errorf("exon count %d does not match %d starts and %d ends", exonCount, len(starts), len(ends))
	}
	for i := range starts {
		starts[i]++
	}

	return &Transcript{
		ID:         fields[0],
		Chrom:      NormalizeChrom(fields[1]),
		Strand:     parseStrand(fields[2]),
		TxStart:    nums[0] + 1,
		TxEnd:      nums[1],
		CDSStart:   nums[2] + 1,
		CDSEnd:     nums[3],
		ExonStarts: starts,
		ExonEnds:   ends,
	}, nil
}

// parseIntList parses a UCSC comma-separated list with trailing comma.
func parseIntList(s string) ([]int64, error) {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// loadTwoColumn reads a tab-separated file into a key -> value map. A missing
// file yields an empty map.
func (l *UCSCLoader) loadTwoColumn(path string, keyCol, valCol int) (map[string]string, error) {
	out := make(map[string]string)
	if path == "" {
		return out, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.Warn("optional table missing", zap.String("path", path))
		return out, nil
	}

	r, closeFn, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= keyCol || len(fields) <= valCol {
			continue
		}
		if _, seen := out[fields[keyCol]]; !seen {
			out[fields[keyCol]] = fields[valCol]
		}
	}
	return out, scanner.Err()
}

// loadSequences reads knownGeneMrna.txt (id<TAB>sequence) or a FASTA file,
// detected by a leading '>'.
func (l *UCSCLoader) loadSequences() (map[string]string, error) {
	if l.MrnaPath == "" {
		return map[string]string{}, nil
	}
	if _, err := os.Stat(l.MrnaPath); os.IsNotExist(err) {
		l.logger.Warn("mRNA sequence file missing", zap.String("path", l.MrnaPath))
		return map[string]string{}, nil
	}

	r, closeFn, err := openMaybeGzip(l.MrnaPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	br := bufio.NewReader(r)
	first, err := br.Peek(1)
	if err == io.EOF {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if first[0] == '>' {
		fl := NewFASTALoader(l.MrnaPath)
		if err := fl.parseFASTA(br); err != nil {
			return nil, err
		}
		return fl.sequences, nil
	}

	out := make(map[string]string)
	scanner := bufio.NewScanner(br)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)
	for scanner.Scan() {
		id, seq, ok := strings.Cut(scanner.Text(), "\t")
		if !ok {
			continue
		}
		out[id] = strings.ToUpper(strings.TrimSpace(seq))
	}
	return out, scanner.Err()
}

// openMaybeGzip opens path, decompressing when it ends in ".gz".
func openMaybeGzip(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return gz, func() { gz.Close(); f.Close() }, nil
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// IsPrimaryChrom reports whether a normalized chromosome name is an
// assembled chromosome (1-22, X, Y, M/MT) rather than a haplotype,
// random or unplaced contig.
func IsPrimaryChrom(chrom string) bool {
	switch chrom {
	case "X", "Y", "M", "MT":
		return true
	}
	n, err := strconv.Atoi(chrom)
	return err == nil && n >= 1 && n <= 22
}

// ParseError represents a malformed transcript table record.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("transcript table parse error at %s:%d: %s", e.File, e.Line, e.Message)
}
