package cache

import (
	"sort"
	"strings"
)

// Cache holds transcripts grouped by chromosome for variant annotation.
type Cache struct {
	transcripts map[string][]*Transcript
	byID        map[string]*Transcript
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		byID:        make(map[string]*Transcript),
	}
}

// AddTranscript adds a transcript to the cache.
func (c *Cache) AddTranscript(t *Transcript) {
	chrom := NormalizeChrom(t.Chrom)
	t.Chrom = chrom
	c.transcripts[chrom] = append(c.transcripts[chrom], t)
	if _, ok := c.byID[t.ID]; !ok {
		c.byID[t.ID] = t
	}
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
// When an ID is repeated the first transcript added wins.
func (c *Cache) GetTranscript(id string) *Transcript {
	return c.byID[id]
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	return c.transcripts[NormalizeChrom(chrom)]
}

// Index builds the interval index for one chromosome. It returns nil when
// the chromosome has no transcripts.
func (c *Cache) Index(chrom string) *ChromosomeIndex {
	transcripts := c.FindTranscriptsByChrom(chrom)
	if len(transcripts) == 0 {
		return nil
	}
	return NewChromosomeIndex(transcripts)
}

// NormalizeChrom removes a leading "chr" prefix.
func NormalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

// ChromosomeIndex answers overlap and flanking-gene queries over the
// transcripts of one chromosome. It is read-only after construction.
type ChromosomeIndex struct {
	tree    *IntervalTree[*Transcript]
	byStart []*Transcript
	byEnd   []*Transcript
}

// NewChromosomeIndex builds the index from transcripts of a single chromosome.
func NewChromosomeIndex(transcripts []*Transcript) *ChromosomeIndex {
	ivs := make([]Interval[*Transcript], len(transcripts))
	for i, t := range transcripts {
		ivs[i] = Interval[*Transcript]{Low: t.TxStart, High: t.TxEnd, Value: t}
	}

	byStart := append([]*Transcript(nil), transcripts...)
	sort.Slice(byStart, func(i, j int) bool { return txLess(byStart[i], byStart[j]) })

	byEnd := append([]*Transcript(nil), transcripts...)
	sort.Slice(byEnd, func(i, j int) bool {
		if byEnd[i].TxEnd != byEnd[j].TxEnd {
			return byEnd[i].TxEnd < byEnd[j].TxEnd
		}
		return txLess(byEnd[i], byEnd[j])
	})

	return &ChromosomeIndex{
		tree:    BuildIntervalTree(ivs),
		byStart: byStart,
		byEnd:   byEnd,
	}
}

// Len returns the number of indexed transcripts.
func (x *ChromosomeIndex) Len() int {
	return len(x.byStart)
}

// Overlapping returns the transcripts intersecting [start, end], ordered by
// transcript start, end and ID.
func (x *ChromosomeIndex) Overlapping(start, end int64) []*Transcript {
	found := x.tree.Overlap(start, end)
	sort.Slice(found, func(i, j int) bool { return txLess(found[i], found[j]) })
	return found
}

// Nearby returns the transcripts intersecting [start-window, end+window].
func (x *ChromosomeIndex) Nearby(start, end, window int64) []*Transcript {
	return x.Overlapping(start-window, end+window)
}

// Flanking returns the closest transcript ending before start and the closest
// transcript starting after end. Either may be nil at a chromosome edge.
func (x *ChromosomeIndex) Flanking(start, end int64) (left, right *Transcript) {
	i := sort.Search(len(x.byEnd), func(i int) bool { return x.byEnd[i].TxEnd >= start })
	if i > 0 {
		left = x.byEnd[i-1]
	}
	j := sort.Search(len(x.byStart), func(i int) bool { return x.byStart[i].TxStart > end })
	if j < len(x.byStart) {
		right = x.byStart[j]
	}
	return left, right
}

func txLess(a, b *Transcript) bool {
	if a.TxStart != b.TxStart {
		return a.TxStart < b.TxStart
	}
	if a.TxEnd != b.TxEnd {
		return a.TxEnd < b.TxEnd
	}
	return a.ID < b.ID
}
