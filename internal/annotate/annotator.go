package annotate

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-anno/internal/cache"
	"github.com/inodb/vibe-anno/internal/vcf"
)

// ErrUnknownChromosome is reported for variants on a chromosome name that
// has no byte code in the Config.
var ErrUnknownChromosome = errors.New("unknown chromosome")

// Annotator classifies variants against every chromosome of a transcript
// cache. It is safe for concurrent use.
type Annotator struct {
	cfg         Config
	chromosomes map[byte]*Chromosome
	lists       sync.Pool
	logger      *zap.Logger
}

// NewAnnotator indexes the transcripts of c per chromosome. Chromosome
// names without a byte code are skipped.
func NewAnnotator(c *cache.Cache, cfg Config) *Annotator {
	a := &Annotator{
		cfg:         cfg,
		chromosomes: make(map[byte]*Chromosome),
		logger:      zap.NewNop(),
	}
	a.lists.New = func() any { return NewAnnotationList() }

	for _, name := range c.Chromosomes() {
		code, ok := cfg.ChromosomeCode(name)
		if !ok {
			continue
		}
		a.chromosomes[code] = NewChromosome(name, c.Index(name), cfg)
	}
	return a
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Config returns the classifier configuration.
func (a *Annotator) Config() Config {
	return a.cfg
}

// Chromosomes returns the indexed chromosome codes in ascending order.
func (a *Annotator) Chromosomes() []byte {
	codes := make([]byte, 0, len(a.chromosomes))
	for code := range a.chromosomes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Classify returns the single finalized annotation of one variant. ref and
// alt use "-" for no bases. Data problems are reported as an ERROR result;
// the error return is reserved for internal failures.
func (a *Annotator) Classify(chrom byte, pos int64, ref, alt string) (Result, error) {
	list := a.lists.Get().(*AnnotationList)
	defer a.lists.Put(list)
	return a.ClassifyInto(list, chrom, pos, ref, alt)
}

// ClassifyInto is Classify using a caller-owned list, which is reset first.
func (a *Annotator) ClassifyInto(list *AnnotationList, chrom byte, pos int64, ref, alt string) (Result, error) {
	list.Reset()
	c, ok := a.chromosomes[chrom]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownChromosome, a.cfg.ChromosomeName(chrom))
		list.Add(errorAnnotation(nil, err))
	} else {
		c.Annotate(list, pos, ref, alt)
	}
	return list.Finalize()
}

// ClassifyVariant classifies a VCF record, converting its anchored alleles
// to the minimal representation first.
func (a *Annotator) ClassifyVariant(v *vcf.Variant) (Result, error) {
	list := a.lists.Get().(*AnnotationList)
	defer a.lists.Put(list)
	return a.classifyVariantInto(list, v)
}

func (a *Annotator) classifyVariantInto(list *AnnotationList, v *vcf.Variant) (Result, error) {
	code, ok := a.cfg.ChromosomeCode(v.Chrom)
	if !ok {
		list.Reset()
		list.Add(errorAnnotation(nil, fmt.Errorf("%w: %s", ErrUnknownChromosome, v.Chrom)))
		return list.Finalize()
	}
	pos, ref, alt := v.Alleles()
	return a.ClassifyInto(list, code, pos, ref, alt)
}

// AnnotateAll classifies all variants from a parser and writes one result
// per alternate allele, in input order. Symbolic alleles are skipped.
func (a *Annotator) AnnotateAll(parser vcf.VariantParser, writer ResultWriter, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make(chan WorkItem, 2*workers)
	var parseErr error
	variantCount, skipped := 0, 0

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			variantCount++

			// Split multi-allelic variants, each gets its own sequence number.
			for _, variant := range vcf.SplitMultiAllelic(v) {
				if variant.IsSymbolic() {
					skipped++
					continue
				}
				items <- WorkItem{Seq: seq, Variant: variant}
				seq++
			}
		}
	}()

	results := a.ParallelAnnotate(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			a.logger.Warn("failed to annotate variant",
				zap.String("chrom", r.Variant.Chrom),
				zap.Int64("pos", r.Variant.Pos),
				zap.Error(r.Err))
			return nil
		}
		if r.Result.Type == Error {
			a.logger.Debug("variant classified as ERROR",
				zap.String("chrom", r.Variant.Chrom),
				zap.Int64("pos", r.Variant.Pos),
				zap.String("reason", r.Result.Text))
		}
		if err := writer.Write(r.Variant, r.Result); err != nil {
			return fmt.Errorf("write annotation: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}

	if variantCount == 0 {
		a.logger.Info("0 variants processed")
	}
	if skipped > 0 {
		a.logger.Info("skipped symbolic alleles", zap.Int("count", skipped))
	}

	return writer.Flush()
}

// ResultWriter defines the interface for writing finalized annotations.
type ResultWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, r Result) error
	Flush() error
}
