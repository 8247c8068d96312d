package cache

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FASTALoader loads mRNA sequences keyed by transcript accession.
type FASTALoader struct {
	path      string
	sequences map[string]string // transcript id -> upper-case sequence
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:      path,
		sequences: make(map[string]string),
	}
}

// Load parses the FASTA file and stores sequences indexed by transcript ID.
func (l *FASTALoader) Load() error {
	r, closeFn, err := openMaybeGzip(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer closeFn()

	return l.parseFASTA(r)
}

// parseFASTA parses FASTA content. Headers look like
// ">uc001aaa.3 description" or ">uc001aaa.3|extra".
func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentID string
	var currentSeq strings.Builder

	flush := func() {
		if currentID != "" && currentSeq.Len() > 0 {
			l.sequences[currentID] = strings.ToUpper(currentSeq.String())
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			currentID = parseHeader(line)
			currentSeq.Reset()
			continue
		}
		currentSeq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}
	return nil
}

// parseHeader extracts the transcript accession from a FASTA header. The
// version suffix is kept because UCSC accessions carry it as part of the ID.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, "| \t"); idx != -1 {
		return header[:idx]
	}
	return header
}

// GetSequence returns the mRNA sequence for a transcript ID.
func (l *FASTALoader) GetSequence(transcriptID string) string {
	return l.sequences[transcriptID]
}

// SequenceCount returns the number of loaded sequences.
func (l *FASTALoader) SequenceCount() int {
	return len(l.sequences)
}

// HasSequence checks if a sequence exists for the given transcript ID.
func (l *FASTALoader) HasSequence(transcriptID string) bool {
	_, ok := l.sequences[transcriptID]
	return ok
}

// Attach copies loaded sequences onto the cached transcripts that lack one.
// It returns the number of transcripts updated.
func (l *FASTALoader) Attach(c *Cache) int {
	n := 0
	for id, seq := range l.sequences {
		t := c.GetTranscript(id)
		if t == nil || t.Sequence != "" {
			continue
		}
		t.Sequence = seq
		n++
	}
	return n
}
