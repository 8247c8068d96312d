package cache

import "sort"

// Interval is a closed range [Low, High] carrying a value.
type Interval[T any] struct {
	Low   int64
	High  int64
	Value T
}

// IntervalTree provides O(log n + k) stabbing and overlap queries.
// Intervals are kept sorted by Low; the subtree over intervals[lo:hi] is
// rooted at the median, and maxHigh[i] holds the largest High in the subtree
// rooted at i. The tree is never modified after build.
type IntervalTree[T any] struct {
	intervals []Interval[T]
	maxHigh   []int64
}

// BuildIntervalTree bulk-builds a balanced tree. Intervals with Low > High
// are dropped. The input slice is not modified.
func BuildIntervalTree[T any](ivs []Interval[T]) *IntervalTree[T] {
	intervals := make([]Interval[T], 0, len(ivs))
	for _, iv := range ivs {
		if iv.Low <= iv.High {
			intervals = append(intervals, iv)
		}
	}
	if len(intervals) == 0 {
		return &IntervalTree[T]{}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		if intervals[i].Low != intervals[j].Low {
			return intervals[i].Low < intervals[j].Low
		}
		return intervals[i].High < intervals[j].High
	})

	t := &IntervalTree[T]{intervals: intervals, maxHigh: make([]int64, len(intervals))}
	t.augment(0, len(intervals))
	return t
}

// augment fills maxHigh for the subtree over [lo, hi) and returns its max.
func (t *IntervalTree[T]) augment(lo, hi int) int64 {
	mid := int(uint(lo+hi) >> 1)
	m := t.intervals[mid].High
	if lo < mid {
		m = max(m, t.augment(lo, mid))
	}
	if mid+1 < hi {
		m = max(m, t.augment(mid+1, hi))
	}
	t.maxHigh[mid] = m
	return m
}

// Len returns the number of intervals in the tree.
func (t *IntervalTree[T]) Len() int {
	return len(t.intervals)
}

// Stab returns the values of all intervals containing point, unordered.
func (t *IntervalTree[T]) Stab(point int64) []T {
	return t.Overlap(point, point)
}

// Overlap returns the values of all intervals intersecting [low, high].
func (t *IntervalTree[T]) Overlap(low, high int64) []T {
	if len(t.intervals) == 0 || low > high {
		return nil
	}
	return t.collect(0, len(t.intervals), low, high, nil)
}

func (t *IntervalTree[T]) collect(lo, hi int, low, high int64, out []T) []T {
	if lo >= hi {
		return out
	}
	mid := int(uint(lo+hi) >> 1)
	// Nothing in this subtree reaches low.
	if t.maxHigh[mid] < low {
		return out
	}
	out = t.collect(lo, mid, low, high, out)
	iv := &t.intervals[mid]
	// Everything at or right of mid starts after high.
	if iv.Low > high {
		return out
	}
	if iv.High >= low {
		out = append(out, iv.Value)
	}
	return t.collect(mid+1, hi, low, high, out)
}
