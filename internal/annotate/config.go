package annotate

import (
	"strconv"
	"strings"
)

// Default thresholds and chromosome codes.
const (
	DefaultSpliceThreshold  = 2
	DefaultNearGeneDistance = 1000
	DefaultChromX           = 23
	DefaultChromY           = 24
	DefaultChromMT          = 25
)

// Config holds the classifier thresholds and the byte codes used for the
// non-numeric chromosomes.
type Config struct {
	SpliceThreshold  int64 // intronic bases on each side of an exon counted as splicing
	NearGeneDistance int64 // window for UPSTREAM/DOWNSTREAM calls
	ChromX           byte
	ChromY           byte
	ChromMT          byte
}

// DefaultConfig returns the standard human configuration.
func DefaultConfig() Config {
	return Config{
		SpliceThreshold:  DefaultSpliceThreshold,
		NearGeneDistance: DefaultNearGeneDistance,
		ChromX:           DefaultChromX,
		ChromY:           DefaultChromY,
		ChromMT:          DefaultChromMT,
	}
}

// autosomes is the number of numeric chromosome codes available before the
// first sex/mitochondrial code.
func (c Config) autosomes() int {
	return int(min(c.ChromX, c.ChromY, c.ChromMT)) - 1
}

// ChromosomeCode maps a chromosome name ("1", "chr7", "X", "MT") to its
// byte code.
func (c Config) ChromosomeCode(name string) (byte, bool) {
	name = strings.TrimPrefix(name, "chr")
	switch name {
	case "X":
		return c.ChromX, true
	case "Y":
		return c.ChromY, true
	case "M", "MT":
		return c.ChromMT, true
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 1 || n > c.autosomes() {
		return 0, false
	}
	return byte(n), true
}

// ChromosomeName is the inverse of ChromosomeCode. It returns the name
// without a "chr" prefix.
func (c Config) ChromosomeName(code byte) string {
	switch code {
	case c.ChromX:
		return "X"
	case c.ChromY:
		return "Y"
	case c.ChromMT:
		return "MT"
	}
	return strconv.Itoa(int(code))
}
