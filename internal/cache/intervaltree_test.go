package cache

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/biogo/store/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree[string](nil)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.Stab(100))
	assert.Empty(t, tree.Overlap(1, 1000))
}

func TestIntervalTree_Single(t *testing.T) {
	tree := BuildIntervalTree([]Interval[string]{{Low: 100, High: 200, Value: "A"}})

	assert.Equal(t, []string{"A"}, tree.Stab(150))
	assert.Len(t, tree.Stab(100), 1, "low boundary inclusive")
	assert.Len(t, tree.Stab(200), 1, "high boundary inclusive")
	assert.Empty(t, tree.Stab(99), "before low")
	assert.Empty(t, tree.Stab(201), "after high")
}

func TestIntervalTree_Overlapping(t *testing.T) {
	tree := BuildIntervalTree([]Interval[string]{
		{Low: 100, High: 300, Value: "A"},
		{Low: 150, High: 250, Value: "B"},
		{Low: 200, High: 400, Value: "C"},
	})

	assert.ElementsMatch(t, []string{"A", "B"}, tree.Stab(175))
	assert.ElementsMatch(t, []string{"A", "B", "C"}, tree.Stab(250))
	assert.ElementsMatch(t, []string{"C"}, tree.Stab(350))
}

func TestIntervalTree_RangeOverlap(t *testing.T) {
	tree := BuildIntervalTree([]Interval[string]{
		{Low: 100, High: 200, Value: "A"},
		{Low: 300, High: 400, Value: "B"},
		{Low: 500, High: 600, Value: "C"},
	})

	assert.Empty(t, tree.Overlap(201, 299), "gap between A and B")
	assert.ElementsMatch(t, []string{"A", "B"}, tree.Overlap(200, 300), "touching both ends")
	assert.ElementsMatch(t, []string{"A", "B", "C"}, tree.Overlap(0, 1000))
	assert.Empty(t, tree.Overlap(300, 200), "inverted query")
}

func TestIntervalTree_MaxHighPruning(t *testing.T) {
	// A short interval followed by a long one; the long one must still be found.
	tree := BuildIntervalTree([]Interval[string]{
		{Low: 100, High: 110, Value: "short"},
		{Low: 105, High: 500, Value: "long"},
		{Low: 106, High: 107, Value: "tiny"},
	})

	assert.Equal(t, []string{"long"}, tree.Stab(400))
}

func TestIntervalTree_DropsInverted(t *testing.T) {
	tree := BuildIntervalTree([]Interval[string]{
		{Low: 200, High: 100, Value: "bad"},
		{Low: 100, High: 200, Value: "good"},
	})

	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, []string{"good"}, tree.Stab(150))
}

// oracleInterval adapts an Interval to the biogo/store tree, which uses
// half-open ranges.
type oracleInterval struct {
	low, high int
	uid       uintptr
}

func (o oracleInterval) Overlap(b interval.IntRange) bool {
	return o.high+1 > b.Start && o.low < b.End
}
func (o oracleInterval) ID() uintptr              { return o.uid }
func (o oracleInterval) Range() interval.IntRange { return interval.IntRange{Start: o.low, End: o.high + 1} }

func TestIntervalTree_RandomizedStab(t *testing.T) {
	const n = 5000
	rng := rand.New(rand.NewSource(42))

	ivs := make([]Interval[int], n)
	oracle := &interval.IntTree{}
	for i := range ivs {
		low := rng.Int63n(1_000_000)
		high := low + rng.Int63n(20_000)
		ivs[i] = Interval[int]{Low: low, High: high, Value: i}
		require.NoError(t, oracle.Insert(oracleInterval{low: int(low), high: int(high), uid: uintptr(i)}, true))
	}
	oracle.AdjustRanges()
	tree := BuildIntervalTree(ivs)
	require.Equal(t, n, tree.Len())

	for q := 0; q < 2000; q++ {
		point := rng.Int63n(1_050_000)

		var linear []int
		for _, iv := range ivs {
			if iv.Low <= point && point <= iv.High {
				linear = append(linear, iv.Value)
			}
		}

		var fromOracle []int
		for _, hit := range oracle.Get(oracleInterval{low: int(point), high: int(point)}) {
			fromOracle = append(fromOracle, int(hit.ID()))
		}

		got := tree.Stab(point)
		sort.Ints(got)
		sort.Ints(linear)
		sort.Ints(fromOracle)

		require.Equal(t, linear, got, "point=%d", point)
		require.Equal(t, fromOracle, got, "point=%d (oracle)", point)
	}
}

func TestIntervalTree_RandomizedOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	ivs := make([]Interval[int], 5000)
	for i := range ivs {
		low := rng.Int63n(500_000)
		ivs[i] = Interval[int]{Low: low, High: low + rng.Int63n(5_000), Value: i}
	}
	tree := BuildIntervalTree(ivs)

	for q := 0; q < 500; q++ {
		low := rng.Int63n(510_000)
		high := low + rng.Int63n(10_000)

		var linear []int
		for _, iv := range ivs {
			if iv.Low <= high && iv.High >= low {
				linear = append(linear, iv.Value)
			}
		}
		got := tree.Overlap(low, high)
		sort.Ints(got)
		sort.Ints(linear)
		require.Equal(t, linear, got, "range=[%d,%d]", low, high)
	}
}
