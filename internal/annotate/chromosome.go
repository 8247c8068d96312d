package annotate

import (
	"fmt"

	"github.com/inodb/vibe-anno/internal/cache"
)

// Chromosome classifies variants against the transcripts of one chromosome.
// It is read-only after construction and safe for concurrent use with one
// AnnotationList per goroutine.
type Chromosome struct {
	name  string
	index *cache.ChromosomeIndex
	cfg   Config
}

// NewChromosome creates a classifier over index. A nil index is allowed;
// every variant then gets an ERROR annotation.
func NewChromosome(name string, index *cache.ChromosomeIndex, cfg Config) *Chromosome {
	return &Chromosome{name: name, index: index, cfg: cfg}
}

// Annotate adds the annotations of one variant to list. It always adds at
// least one annotation. ref or alt may be "-" for no bases.
func (c *Chromosome) Annotate(list *AnnotationList, pos int64, ref, alt string) {
	v, err := newVariant(pos, ref, alt)
	if err != nil {
		list.Add(errorAnnotation(nil, err))
		return
	}
	if c.index == nil || c.index.Len() == 0 {
		list.Add(errorAnnotation(nil, fmt.Errorf("no transcripts on chromosome %s", c.name)))
		return
	}

	if overlapping := c.index.Overlapping(v.start, v.end); len(overlapping) > 0 {
		for _, t := range overlapping {
			list.Add(build(t, v, locate(t, v, c.cfg)))
		}
		return
	}

	if near := c.index.Nearby(v.start, v.end, c.cfg.NearGeneDistance); len(near) > 0 {
		for _, t := range near {
			list.Add(buildFlanking(t, v.start))
		}
		return
	}

	left, right := c.index.Flanking(v.start, v.end)
	list.Add(buildIntergenic(left, right, v))
}
