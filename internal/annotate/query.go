package annotate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QueryType identifies the kind of lookup query.
type QueryType int

const (
	QueryGenomic QueryType = iota
	QueryGene
)

// Query is a parsed command-line lookup: either one genomic variant or a
// gene symbol.
type Query struct {
	Type  QueryType
	Chrom string // without "chr" prefix
	Pos   int64
	Ref   string // "-" for no bases
	Alt   string
	Gene  string
}

var (
	// chr1:44125967:A:-  or  1:6278414:A>G  or  1:6278414:A/G
	reGenomicColon = regexp.MustCompile(`^(?:chr)?(\w+):(\d+):([ACGTNacgtn]+|-)[>:/]([ACGTNacgtn]+|-)$`)
	// 1-6278414-A-G; dash-separated queries cannot use "-" alleles
	reGenomicDash = regexp.MustCompile(`^(?:chr)?(\w+)-(\d+)-([ACGTNacgtn]+)-([ACGTNacgtn]+)$`)
	reGene        = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)
)

// ParseQuery parses a lookup query, trying the genomic forms before a
// gene symbol.
func ParseQuery(input string) (*Query, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty query")
	}

	for _, re := range []*regexp.Regexp{reGenomicColon, reGenomicDash} {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		pos, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || pos < 1 {
			return nil, fmt.Errorf("invalid position in %q", input)
		}
		return &Query{
			Type:  QueryGenomic,
			Chrom: m[1],
			Pos:   pos,
			Ref:   strings.ToUpper(m[3]),
			Alt:   strings.ToUpper(m[4]),
		}, nil
	}

	if reGene.MatchString(input) {
		return &Query{Type: QueryGene, Gene: input}, nil
	}
	return nil, fmt.Errorf("cannot parse query %q (expected chrom:pos:ref:alt or a gene symbol)", input)
}
