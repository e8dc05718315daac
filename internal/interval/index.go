// Package interval provides a static index answering "which intervals contain
// this point" queries over half-open ranges.
//
// The index is built once from a slice of tagged intervals and is read-only
// afterwards, so it can be shared freely between goroutines. Intervals are
// kept sorted by start; together with the longest interval length this bounds
// the window that has to be scanned for any point, giving O(log n + k)
// queries for k results.
package interval

import (
	"cmp"
	"iter"
	"slices"
	"sort"
)

// Interval is a half-open range [Start, End) carrying a value.
type Interval[T any] struct {
	Start int
	End   int
	Val   T
}

// Contains reports whether point lies inside the interval.
func (iv Interval[T]) Contains(point int) bool {
	return point >= iv.Start && point < iv.End
}

// Index is an immutable interval index.
type Index[T any] struct {
	entries []Interval[T]
	maxLen  int
}

// Build constructs an index from the given intervals. The input slice is not
// retained. Empty or inverted intervals can never contain a point and are
// dropped.
func Build[T any](intervals []Interval[T]) *Index[T] {
	entries := make([]Interval[T], 0, len(intervals))
	maxLen := 0
	for _, iv := range intervals {
		if iv.End <= iv.Start {
			continue
		}
		entries = append(entries, iv)
		if l := iv.End - iv.Start; l > maxLen {
			maxLen = l
		}
	}

	// Stable so that equal intervals keep insertion order.
	slices.SortStableFunc(entries, func(a, b Interval[T]) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	return &Index[T]{entries: entries, maxLen: maxLen}
}

// Len returns the number of indexed intervals.
func (ix *Index[T]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Query yields every interval containing point, smallest start first.
func (ix *Index[T]) Query(point int) iter.Seq[Interval[T]] {
	return func(yield func(Interval[T]) bool) {
		if ix == nil || len(ix.entries) == 0 {
			return
		}
		// Any interval containing point starts in (point-maxLen, point].
		lo := point - ix.maxLen + 1
		i := sort.Search(len(ix.entries), func(i int) bool {
			return ix.entries[i].Start >= lo
		})
		for ; i < len(ix.entries) && ix.entries[i].Start <= point; i++ {
			if ix.entries[i].End > point {
				if !yield(ix.entries[i]) {
					return
				}
			}
		}
	}
}

// First returns the first interval containing point that satisfies match.
func (ix *Index[T]) First(point int, match func(T) bool) (Interval[T], bool) {
	for iv := range ix.Query(point) {
		if match == nil || match(iv.Val) {
			return iv, true
		}
	}
	var zero Interval[T]
	return zero, false
}

// All yields every interval in start order.
func (ix *Index[T]) All() iter.Seq[Interval[T]] {
	return func(yield func(Interval[T]) bool) {
		if ix == nil {
			return
		}
		for _, iv := range ix.entries {
			if !yield(iv) {
				return
			}
		}
	}
}
